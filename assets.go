package arbor

import (
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"path/filepath"

	// Image formats resolvable through image.Decode.
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/ftrvxmtrx/tga"
)

// DecodeImage decodes PNG, JPEG or TGA data from r into straight-alpha NRGBA,
// the pixel layout the software backend and the capture path work in.
func DecodeImage(r io.Reader) (*image.NRGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("arbor: failed to decode image: %w", err)
	}
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba, nil
	}
	out := image.NewNRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, nil
}

// LoadImage reads and decodes an image file.
func LoadImage(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("arbor: failed to open %s: %w", path, err)
	}
	defer f.Close()
	img, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("arbor: %s: %w", path, err)
	}
	return img, nil
}

// LoadBMFont reads a BMFont XML file, loads the page images it declares from
// the same directory, and attaches them through the backend. The returned font
// is Ready.
func LoadBMFont(b Backend, path string) (*BitmapFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("arbor: failed to read %s: %w", path, err)
	}
	font, err := ParseBMFont(data)
	if err != nil {
		return nil, fmt.Errorf("arbor: %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, file := range font.PageFiles() {
		if file == "" {
			return nil, fmt.Errorf("arbor: %s: page %d has no file name", path, i)
		}
		img, err := LoadImage(filepath.Join(dir, file))
		if err != nil {
			return nil, err
		}
		if err := font.AttachPage(i, b.TextureFromSurface(img)); err != nil {
			return nil, err
		}
	}
	return font, nil
}

// LoadAtlasFile reads a TexturePacker JSON file along with the page images
// referenced by its array format (or a single page named like the JSON file
// for the hash format), uploading each page through the backend.
func LoadAtlasFile(b Backend, path string) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("arbor: failed to read %s: %w", path, err)
	}
	names, err := atlasPageFiles(data)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		base := path[:len(path)-len(filepath.Ext(path))]
		names = []string{filepath.Base(base) + ".png"}
	}
	dir := filepath.Dir(path)
	pages := make([]any, len(names))
	for i, name := range names {
		img, err := LoadImage(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		pages[i] = b.TextureFromSurface(img).Source()
	}
	return LoadAtlas(data, pages...)
}

// atlasPageFiles extracts the page image file names from array-format atlas
// JSON. Hash-format data yields an empty list.
func atlasPageFiles(data []byte) ([]string, error) {
	var probe struct {
		Textures []struct {
			Image string `json:"image"`
		} `json:"textures"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("arbor: failed to parse atlas JSON: %w", err)
	}
	names := make([]string, 0, len(probe.Textures))
	for _, t := range probe.Textures {
		names = append(names, t.Image)
	}
	return names, nil
}
