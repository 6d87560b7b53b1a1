package arbor

import (
	"bytes"
	"image"
	"image/png"
	"path/filepath"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"boot", "boot"},
		{"  spaced out  ", "spaced_out"},
		{"a/b\\c:d", "a_b_c_d"},
		{"v1.2-rc", "v1.2-rc"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
	}
	for _, c := range cases {
		if got := sanitizeLabel(c.in); got != c.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEncodeScreenshotPNGRoundTrip(t *testing.T) {
	img := solidNRGBA(4, 4, red)
	var buf bytes.Buffer
	if err := encodeScreenshot(&buf, img, ScreenshotPNG); err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds().Dx() != 4 || decoded.Bounds().Dy() != 4 {
		t.Errorf("decoded bounds = %v", decoded.Bounds())
	}
	r, _, _, a := decoded.At(1, 1).RGBA()
	if r != 0xffff || a != 0xffff {
		t.Errorf("decoded pixel = (%d, %d), want opaque red", r, a)
	}
}

func TestEncodeScreenshotWebPProducesData(t *testing.T) {
	img := solidNRGBA(8, 8, red)
	var buf bytes.Buffer
	if err := encodeScreenshot(&buf, img, ScreenshotWebP); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("WebP encoding produced no data")
	}
	// RIFF container magic.
	if !bytes.HasPrefix(buf.Bytes(), []byte("RIFF")) {
		t.Error("WebP output should start with a RIFF header")
	}
}

func TestScreenshotQueuedAndFlushedByRender(t *testing.T) {
	b := newTestSoftBackend(16, 16)
	v := NewViewport(b, 16, 16)
	v.ScreenshotDir = t.TempDir()
	v.Background = Color{R: 1, A: 1}

	v.Screenshot("frame-one")
	if len(v.screenshotQueue) != 1 {
		t.Fatal("label should be queued until Render")
	}

	v.Render()
	if len(v.screenshotQueue) != 0 {
		t.Error("queue should be drained by Render")
	}

	files, err := filepath.Glob(filepath.Join(v.ScreenshotDir, "*_frame-one.png"))
	if err != nil || len(files) != 1 {
		t.Fatalf("capture files = %v (err %v), want exactly one", files, err)
	}

	img, err := LoadImage(files[0])
	if err != nil {
		t.Fatalf("load capture: %v", err)
	}
	if got := img.NRGBAAt(8, 8); got.R != 255 {
		t.Errorf("captured pixel = %v, want red background", got)
	}
}

func TestScreenshotDroppedWithoutSurfaceReader(t *testing.T) {
	b := NewNullBackend(16, 16)
	v := NewViewport(b, 16, 16)
	v.ScreenshotDir = t.TempDir()

	v.Screenshot("ignored")
	v.Render()

	files, _ := filepath.Glob(filepath.Join(v.ScreenshotDir, "*"))
	if len(files) != 0 {
		t.Errorf("no files expected from a backend without readback, got %v", files)
	}
	if len(v.screenshotQueue) != 0 {
		t.Error("queue should still be drained")
	}
}

func TestSoftBackendReadSurfaceIsACopy(t *testing.T) {
	b := newTestSoftBackend(4, 4)
	b.Clear(Color{R: 1, A: 1}, true)
	snap := b.readSurface()

	b.Clear(Color{B: 1, A: 1}, true)
	if got := snap.NRGBAAt(1, 1); got.R != 255 {
		t.Error("readSurface must return an independent copy")
	}
	if snap.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Errorf("snapshot bounds = %v", snap.Bounds())
	}
}
