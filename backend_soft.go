package arbor

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// softOps maps blend modes onto the CPU compositor's operations. The scaler
// only knows source-over and source-copy; other modes degrade to source-over
// (a resource-fidelity condition, not an error).
var softOps = [numBlendModes]draw.Op{
	BlendAuto:     draw.Over,
	BlendNormal:   draw.Over,
	BlendAdd:      draw.Over,
	BlendMultiply: draw.Over,
	BlendScreen:   draw.Over,
	BlendErase:    draw.Over,
	BlendBelow:    draw.Over,
	BlendNone:     draw.Src,
}

// SoftBackend rasterizes on the CPU into an *image.NRGBA. It exists for
// headless rendering — golden-image tests, server-side capture — and as the
// reference raster implementation of the backend contract.
type SoftBackend struct {
	state backendState

	surface *image.NRGBA
	clip    image.Rectangle
	clips   []image.Rectangle

	op draw.Op

	// Interpolator selects the resampling kernel. Defaults to draw.BiLinear;
	// tests that need exact pixel addressing set draw.NearestNeighbor.
	Interpolator draw.Interpolator

	// Renderers overrides entries of the stock renderer table when non-nil.
	Renderers map[NodeType]RendererFactory
}

// NewSoftBackend creates a CPU backend with a width x height surface at scale
// factor 1.
func NewSoftBackend(width, height int) *SoftBackend {
	b := &SoftBackend{
		state: newBackendState(width, height),
		op:    draw.Over,
	}
	b.allocSurface()
	return b
}

// Surface returns the backing image. The caller must not hold it across a
// Resize.
func (b *SoftBackend) Surface() *image.NRGBA {
	return b.surface
}

// SetScaleFactor sets the device pixel scale factor and reallocates the
// surface in device pixels.
func (b *SoftBackend) SetScaleFactor(scale float64) {
	b.state.scaleFactor = scale
	b.state.setTransform(b.state.transform)
	b.allocSurface()
}

// SetPixelSnap selects whether translation components are snapped to whole
// pixels before scaling. Global to the backend instance.
func (b *SoftBackend) SetPixelSnap(snap bool) {
	b.state.pixelSnap = snap
}

func (b *SoftBackend) allocSurface() {
	s := b.state.scaleFactor
	w := int(math.Ceil(float64(b.state.width) * s))
	h := int(math.Ceil(float64(b.state.height) * s))
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	b.surface = image.NewNRGBA(image.Rect(0, 0, w, h))
	b.clip = b.surface.Bounds()
	b.clips = b.clips[:0]
	b.state.clipDepth = 0
}

func (b *SoftBackend) NewRenderer(n *Node) Renderer {
	return rendererFromTable(b.Renderers, n)
}

func (b *SoftBackend) Resize(width, height int) {
	b.state.resize(width, height)
	b.op = draw.Over
	b.allocSurface()
}

func (b *SoftBackend) Size() (int, int) {
	return b.state.width, b.state.height
}

func (b *SoftBackend) SetTransform(m [6]float64) {
	b.state.setTransform(m)
}

func (b *SoftBackend) SetGlobalAlpha(alpha float64) {
	b.state.applyAlpha(alpha)
}

func (b *SoftBackend) SetGlobalBlendMode(mode BlendMode) {
	if b.state.applyBlend(mode) {
		b.op = softOps[mode]
	}
}

func (b *SoftBackend) BeginClip(r Rect, offsetX, offsetY float64) {
	b.state.pushClip()
	b.clips = append(b.clips, b.clip)
	s := b.state.scaleFactor
	rect := image.Rect(
		int(math.Floor((r.X+offsetX)*s)),
		int(math.Floor((r.Y+offsetY)*s)),
		int(math.Ceil((r.X+r.Width+offsetX)*s)),
		int(math.Ceil((r.Y+r.Height+offsetY)*s)),
	)
	b.clip = b.clip.Intersect(rect)
}

func (b *SoftBackend) EndClip() {
	b.state.popClip()
	b.clip = b.clips[len(b.clips)-1]
	b.clips = b.clips[:len(b.clips)-1]
}

func (b *SoftBackend) DrawTexture(t *Texture) {
	b.DrawTextureWithOffset(t, 0, 0)
}

func (b *SoftBackend) DrawTextureWithOffset(t *Texture, offsetX, offsetY float64) {
	if !t.IsValid() || b.clip.Empty() {
		return
	}
	src, ok := t.Source().(image.Image)
	if !ok {
		panic("arbor: texture source is not an image.Image")
	}

	region := t.Region()
	if region.Width <= 0 || region.Height <= 0 {
		return
	}
	dst := destRect(t, offsetX, offsetY)

	// Map region pixels onto the destination rectangle, then through the
	// device transform. Region coordinates are absolute in src's space, so
	// the local matrix folds in the region origin.
	sx := dst.Width / region.Width
	sy := dst.Height / region.Height
	local := [6]float64{sx, 0, 0, sy, dst.X - sx*region.X, dst.Y - sy*region.Y}
	c := multiplyAffine(b.state.device, local)

	srcRect := image.Rect(
		int(region.X), int(region.Y),
		int(region.X+region.Width), int(region.Y+region.Height),
	)

	var opts *draw.Options
	if a := b.state.effectiveAlpha(); a < 1 {
		opts = &draw.Options{
			SrcMask: image.NewUniform(color.Alpha16{A: uint16(clamp01(a) * 0xffff)}),
		}
	}

	interp := b.Interpolator
	if interp == nil {
		interp = draw.BiLinear
	}
	target := b.surface.SubImage(b.clip).(*image.NRGBA)
	interp.Transform(target, f64.Aff3{c[0], c[2], c[4], c[1], c[3], c[5]}, src, srcRect, b.op, opts)
}

func (b *SoftBackend) Clear(bg Color, opaque bool) {
	b.SetTransform(identityTransform)
	if opaque {
		draw.Draw(b.surface, b.surface.Bounds(), image.NewUniform(bg.toRGBA()), image.Point{}, draw.Src)
	} else {
		clear(b.surface.Pix)
	}
}

// RenderTarget returns an offscreen *image.NRGBA sized in device pixels.
func (b *SoftBackend) RenderTarget(width, height int) any {
	s := b.state.scaleFactor
	w := int(math.Ceil(float64(width) * s))
	h := int(math.Ceil(float64(height) * s))
	if w <= 0 || h <= 0 {
		return nil
	}
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

// TextureFromSurface wraps any image.Image in a Texture covering its bounds.
func (b *SoftBackend) TextureFromSurface(surface any) *Texture {
	img, ok := surface.(image.Image)
	if !ok {
		return NewTexture(nil, Rect{}, Rect{})
	}
	bounds := img.Bounds()
	full := Rect{
		X: float64(bounds.Min.X), Y: float64(bounds.Min.Y),
		Width: float64(bounds.Dx()), Height: float64(bounds.Dy()),
	}
	return NewTexture(img, full, Rect{Width: full.Width, Height: full.Height})
}

// readSurface returns a straight-alpha copy of the surface for capture.
func (b *SoftBackend) readSurface() *image.NRGBA {
	out := image.NewNRGBA(b.surface.Bounds())
	copy(out.Pix, b.surface.Pix)
	return out
}
