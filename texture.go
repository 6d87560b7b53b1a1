package arbor

// Texture addresses a rectangular part of one backend-native image resource.
// It carries two rectangles: Region is the trimmed sub-rectangle actually
// packed into the atlas (in atlas pixel coordinates), and UntrimmedRegion is
// the logical pre-trim placement — its origin is the trim offset applied
// before packing, its size the sprite's authored size. RenderWidth and
// RenderHeight are the display-space dimensions of the blit, which default to
// the region size and change only through forced scaling (WithRenderSize).
//
// Textures are immutable once constructed, except for Dispose. Many logical
// textures may share one source image (atlas sharing); the render core never
// mutates the source.
type Texture struct {
	source    any // backend-native image (*ebiten.Image, image.Image, ...)
	region    Rect
	untrimmed Rect
	renderW   float64
	renderH   float64
	disposed  bool
}

// NewTexture creates a texture addressing region within source. untrimmed is
// the logical pre-trim rectangle; pass Rect{0, 0, region.Width, region.Height}
// for an untrimmed sprite. Render size defaults to the region size.
// Panics if region has negative size (a corrupted atlas, not a runtime
// condition).
func NewTexture(source any, region, untrimmed Rect) *Texture {
	if region.Width < 0 || region.Height < 0 {
		panic("arbor: texture region has negative size")
	}
	return &Texture{
		source:    source,
		region:    region,
		untrimmed: untrimmed,
		renderW:   region.Width,
		renderH:   region.Height,
	}
}

// Source returns the backend-native image this texture addresses, or nil.
func (t *Texture) Source() any {
	return t.source
}

// Region returns the trimmed sub-rectangle in atlas pixel coordinates.
func (t *Texture) Region() Rect {
	return t.region
}

// UntrimmedRegion returns the logical pre-trim rectangle. Its origin is the
// trim offset, its size the authored sprite size.
func (t *Texture) UntrimmedRegion() Rect {
	return t.untrimmed
}

// RenderWidth returns the display-space blit width.
func (t *Texture) RenderWidth() float64 {
	return t.renderW
}

// RenderHeight returns the display-space blit height.
func (t *Texture) RenderHeight() float64 {
	return t.renderH
}

// IsValid reports whether the texture can be drawn. Backends silently skip
// invalid textures — a not-yet-loaded or disposed texture is a resource
// condition, not an error.
func (t *Texture) IsValid() bool {
	return t != nil && !t.disposed && t.source != nil
}

// Dispose invalidates the texture. The shared source image is not touched;
// other textures addressing it remain valid.
func (t *Texture) Dispose() {
	t.disposed = true
}

// Sub derives a texture addressing a sub-rectangle of this texture's region,
// sharing the same source image. sub is given in this texture's region-local
// pixel space ((0, 0) = region origin). The derived texture is untrimmed:
// its logical placement starts at (0, 0) with the sub-rectangle's size.
func (t *Texture) Sub(sub Rect) *Texture {
	return NewTexture(
		t.source,
		Rect{X: t.region.X + sub.X, Y: t.region.Y + sub.Y, Width: sub.Width, Height: sub.Height},
		Rect{X: 0, Y: 0, Width: sub.Width, Height: sub.Height},
	)
}

// WithRenderSize returns a copy of the texture with forced display-space
// dimensions. Used for stretching (nine-slice edges) without touching the
// source addressing.
func (t *Texture) WithRenderSize(w, h float64) *Texture {
	c := *t
	c.renderW = w
	c.renderH = h
	return &c
}

// destRect computes the destination rectangle for blitting t offset by
// (ox, oy), in logical units before the backend's device scale. All backends
// share this so that an offset draw and an equivalently shifted untrimmed
// origin produce identical destinations.
func destRect(t *Texture, ox, oy float64) Rect {
	return Rect{
		X:      t.untrimmed.X + ox,
		Y:      t.untrimmed.Y + oy,
		Width:  t.renderW,
		Height: t.renderH,
	}
}
