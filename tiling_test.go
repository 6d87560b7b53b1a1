package arbor

import "testing"

func tileTexture(w, h float64) *Texture {
	return NewTexture(stubSource, Rect{Width: w, Height: h}, Rect{Width: w, Height: h})
}

func TestTilingExactGrid(t *testing.T) {
	r := &tilingRenderer{}
	n := NewTiling("bg", tileTexture(16, 16), 64, 32)
	r.Rebuild(n)

	if !r.IsRenderable() {
		t.Fatal("tiling should be renderable")
	}
	if len(r.tiles) != 4*2 {
		t.Errorf("tile count = %d, want 8", len(r.tiles))
	}
	// Full tiles reuse the node texture directly.
	if r.tiles[0].tex != n.Texture {
		t.Error("full tiles should share the source texture")
	}
	if b := r.Bounds(); b.Width != 64 || b.Height != 32 {
		t.Errorf("bounds = %v, want 64x32", b)
	}
}

func TestTilingPartialEdgeTiles(t *testing.T) {
	r := &tilingRenderer{}
	n := NewTiling("bg", tileTexture(16, 16), 40, 16)
	r.Rebuild(n)

	// ceil(40/16) = 3 columns; the last column is 8 wide.
	if len(r.tiles) != 3 {
		t.Fatalf("tile count = %d, want 3", len(r.tiles))
	}
	last := r.tiles[2]
	if last.x != 32 {
		t.Errorf("last tile x = %v, want 32", last.x)
	}
	if last.tex.RenderWidth() != 8 {
		t.Errorf("last tile render width = %v, want 8", last.tex.RenderWidth())
	}
	// The source region is cut proportionally, keeping texel density.
	if got := last.tex.Region(); got.Width != 8 {
		t.Errorf("last tile region width = %v, want 8", got.Width)
	}
}

func TestTilingPartialUsesProportionalRegion(t *testing.T) {
	// A texture with forced render size: 32x32 region shown at 16x16. A
	// 8-wide partial tile must take half the region (16 source pixels).
	tex := NewTexture(stubSource, Rect{Width: 32, Height: 32}, Rect{Width: 32, Height: 32}).WithRenderSize(16, 16)
	r := &tilingRenderer{}
	n := NewTiling("bg", tex, 24, 16)
	r.Rebuild(n)

	if len(r.tiles) != 2 {
		t.Fatalf("tile count = %d, want 2", len(r.tiles))
	}
	partial := r.tiles[1]
	if got := partial.tex.Region(); got.Width != 16 {
		t.Errorf("partial region width = %v, want 16", got.Width)
	}
	if partial.tex.RenderWidth() != 8 {
		t.Errorf("partial render width = %v, want 8", partial.tex.RenderWidth())
	}
}

func TestTilingUnrenderableCases(t *testing.T) {
	r := &tilingRenderer{}

	r.Rebuild(NewTiling("bg", nil, 64, 64))
	if r.IsRenderable() {
		t.Error("tiling without a texture should not be renderable")
	}

	r.Rebuild(NewTiling("bg", tileTexture(16, 16), 0, 64))
	if r.IsRenderable() {
		t.Error("zero-width tiling should not be renderable")
	}
}

func TestTilingRebuildResetsTiles(t *testing.T) {
	r := &tilingRenderer{}
	n := NewTiling("bg", tileTexture(16, 16), 64, 64)
	r.Rebuild(n)
	n.SetSize(16, 16)
	r.Rebuild(n)

	if len(r.tiles) != 1 {
		t.Errorf("tile count after shrink = %d, want 1", len(r.tiles))
	}
}
