package arbor

import (
	"encoding/json"
	"fmt"
	"log"
)

// Atlas maps sprite names to textures addressing one or more shared page
// images. All textures from one page share that page's source, so the atlas
// layer is where atlas sharing is established.
type Atlas struct {
	// Pages contains the backend-native page images indexed by page number.
	Pages    []any
	textures map[string]*Texture
}

// Texture returns the named texture. If the name doesn't exist, it logs a
// warning (debug mode) and returns an invalid texture, which backends
// silently skip.
func (a *Atlas) Texture(name string) *Texture {
	if t, ok := a.textures[name]; ok {
		return t
	}
	if globalDebug {
		log.Printf("arbor: atlas texture %q not found", name)
	}
	return NewTexture(nil, Rect{}, Rect{})
}

// Names returns the number of named textures in the atlas.
func (a *Atlas) Names() int {
	return len(a.textures)
}

// LoadAtlas parses TexturePacker JSON data and associates the given page
// images. Supports both the hash format (single "frames" object) and the
// array format ("textures" array with per-page frame lists).
func LoadAtlas(jsonData []byte, pages ...any) (*Atlas, error) {
	// Probe top-level keys to detect format.
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("arbor: failed to parse atlas JSON: %w", err)
	}

	atlas := &Atlas{
		Pages:    pages,
		textures: make(map[string]*Texture),
	}

	switch {
	case probe.Textures != nil:
		// Multi-page array format
		if err := parseArrayFormat(probe.Textures, atlas); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		// Single-page hash format
		if err := parseHashFrames(probe.Frames, 0, atlas); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("arbor: atlas JSON has neither \"frames\" nor \"textures\" key")
	}

	return atlas, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

// parseHashFrames parses the hash format: {"name": {frame...}, ...}
func parseHashFrames(raw json.RawMessage, pageIndex int, atlas *Atlas) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("arbor: failed to parse atlas frames: %w", err)
	}
	for name, f := range frames {
		atlas.textures[name] = atlas.frameToTexture(f, pageIndex)
	}
	return nil
}

// parseArrayFormat parses the array format: [{"image":"...", "frames":{...}}, ...]
func parseArrayFormat(raw json.RawMessage, atlas *Atlas) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("arbor: failed to parse atlas textures array: %w", err)
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			atlas.textures[name] = atlas.frameToTexture(f, i)
		}
	}
	return nil
}

// frameToTexture converts one TexturePacker frame into a texture. The frame
// rect becomes the packed region; spriteSourceSize carries the trim offset
// into the untrimmed region's origin, and sourceSize its authored size.
func (a *Atlas) frameToTexture(f jsonFrame, page int) *Texture {
	var source any
	if page >= 0 && page < len(a.Pages) {
		source = a.Pages[page]
	}
	untrimmed := Rect{
		X:     float64(f.SpriteSourceSize.X),
		Y:     float64(f.SpriteSourceSize.Y),
		Width: float64(f.SourceSize.W), Height: float64(f.SourceSize.H),
	}
	if !f.Trimmed && untrimmed.Width == 0 && untrimmed.Height == 0 {
		untrimmed = Rect{Width: float64(f.Frame.W), Height: float64(f.Frame.H)}
	}
	return NewTexture(
		source,
		Rect{X: float64(f.Frame.X), Y: float64(f.Frame.Y), Width: float64(f.Frame.W), Height: float64(f.Frame.H)},
		untrimmed,
	)
}
