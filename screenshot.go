package arbor

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
)

// ScreenshotFormat selects the encoding for capture files.
type ScreenshotFormat int

const (
	// ScreenshotPNG writes lossless PNG files.
	ScreenshotPNG ScreenshotFormat = iota
	// ScreenshotWebP writes lossless WebP files.
	ScreenshotWebP
)

// surfaceReader is implemented by backends that can hand back their rendered
// surface as a CPU image.
type surfaceReader interface {
	readSurface() *image.NRGBA
}

// Screenshot queues a labeled screenshot to be captured at the end of the
// current Render call. The resulting file is written to ScreenshotDir with a
// timestamped filename. Safe to call from update or draw code.
func (v *Viewport) Screenshot(label string) {
	v.screenshotQueue = append(v.screenshotQueue, label)
}

// flushScreenshots captures the rendered frame for every queued label and
// writes each as a file. Called at the end of Viewport.Render. Backends that
// cannot read back their surface drop the queue silently.
func (v *Viewport) flushScreenshots() {
	if len(v.screenshotQueue) == 0 {
		return
	}
	queue := v.screenshotQueue
	v.screenshotQueue = v.screenshotQueue[:0]

	reader, ok := v.backend.(surfaceReader)
	if !ok {
		return
	}
	img := reader.readSurface()
	if img == nil {
		return
	}

	if err := os.MkdirAll(v.ScreenshotDir, 0o755); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[arbor] screenshot: mkdir %s: %v\n", v.ScreenshotDir, err)
		return
	}

	stamp := time.Now().Format("20060102_150405")
	ext := "png"
	if v.ScreenshotFormat == ScreenshotWebP {
		ext = "webp"
	}

	for _, label := range queue {
		safe := sanitizeLabel(label)
		path := fmt.Sprintf("%s/%s_%s.%s", v.ScreenshotDir, stamp, safe, ext)
		if err := writeScreenshot(path, img, v.ScreenshotFormat); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "[arbor] screenshot: %v\n", err)
		}
	}
}

// writeScreenshot encodes an image to a file at the given path.
func writeScreenshot(path string, img *image.NRGBA, format ScreenshotFormat) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := encodeScreenshot(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// encodeScreenshot writes img to w in the requested format.
func encodeScreenshot(w io.Writer, img *image.NRGBA, format ScreenshotFormat) error {
	if format == ScreenshotWebP {
		return nativewebp.Encode(w, img, nil)
	}
	return png.Encode(w, img)
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
