package arbor

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// ebitenBlends translates engine blend modes into ebiten composite
// operations. Indexed by BlendMode; BlendAuto never reaches the table.
var ebitenBlends = [numBlendModes]ebiten.Blend{
	BlendAuto:   ebiten.BlendSourceOver,
	BlendNormal: ebiten.BlendSourceOver,
	BlendAdd:    ebiten.BlendLighter,
	BlendMultiply: {
		BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
		BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
	BlendScreen: {
		BlendFactorSourceRGB:        ebiten.BlendFactorOne,
		BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
	BlendErase: ebiten.BlendDestinationOut,
	BlendBelow: ebiten.BlendDestinationOver,
	BlendNone:  ebiten.BlendCopy,
}

// EbitenBackend renders through Ebitengine onto an *ebiten.Image target.
// Attach the per-frame screen with SetTarget before calling Viewport.Render
// (the Run helper does this for you).
type EbitenBackend struct {
	state backendState

	surface *ebiten.Image   // root target for the current frame
	target  *ebiten.Image   // surface restricted by the active clip scope
	clips   []*ebiten.Image // saved targets for nested clip scopes

	geom  ebiten.GeoM  // device transform as a GeoM, rebuilt on SetTransform
	blend ebiten.Blend // resolved composite operation

	// Renderers overrides entries of the stock renderer table when non-nil.
	Renderers map[NodeType]RendererFactory
}

// NewEbitenBackend creates a GPU backend with no target attached. SetTarget
// must be called with the frame's screen image before drawing.
func NewEbitenBackend() *EbitenBackend {
	return &EbitenBackend{
		state: newBackendState(0, 0),
		blend: ebiten.BlendSourceOver,
	}
}

// SetTarget attaches the drawing surface for the current frame. Any open clip
// scopes are discarded.
func (b *EbitenBackend) SetTarget(img *ebiten.Image) {
	b.surface = img
	b.target = img
	b.clips = b.clips[:0]
	b.state.clipDepth = 0
	if img != nil {
		bounds := img.Bounds()
		b.state.width = bounds.Dx()
		b.state.height = bounds.Dy()
	}
}

// SetScaleFactor sets the device pixel scale factor.
func (b *EbitenBackend) SetScaleFactor(scale float64) {
	b.state.scaleFactor = scale
	b.SetTransform(b.state.transform)
}

// SetPixelSnap selects whether translation components are snapped to whole
// pixels before scaling. Global to the backend instance.
func (b *EbitenBackend) SetPixelSnap(snap bool) {
	b.state.pixelSnap = snap
}

func (b *EbitenBackend) NewRenderer(n *Node) Renderer {
	return rendererFromTable(b.Renderers, n)
}

func (b *EbitenBackend) Resize(width, height int) {
	b.state.resize(width, height)
	b.blend = ebiten.BlendSourceOver
}

func (b *EbitenBackend) Size() (int, int) {
	return b.state.width, b.state.height
}

func (b *EbitenBackend) SetTransform(m [6]float64) {
	b.state.setTransform(m)
	d := b.state.device
	b.geom.SetElement(0, 0, d[0])
	b.geom.SetElement(1, 0, d[1])
	b.geom.SetElement(0, 1, d[2])
	b.geom.SetElement(1, 1, d[3])
	b.geom.SetElement(0, 2, d[4])
	b.geom.SetElement(1, 2, d[5])
}

func (b *EbitenBackend) SetGlobalAlpha(alpha float64) {
	b.state.applyAlpha(alpha)
}

func (b *EbitenBackend) SetGlobalBlendMode(mode BlendMode) {
	if b.state.applyBlend(mode) {
		b.blend = ebitenBlends[mode]
	}
}

func (b *EbitenBackend) BeginClip(r Rect, offsetX, offsetY float64) {
	b.state.pushClip()
	b.clips = append(b.clips, b.target)
	if b.target == nil {
		return
	}
	s := b.state.scaleFactor
	rect := image.Rect(
		int(math.Floor((r.X+offsetX)*s)),
		int(math.Floor((r.Y+offsetY)*s)),
		int(math.Ceil((r.X+r.Width+offsetX)*s)),
		int(math.Ceil((r.Y+r.Height+offsetY)*s)),
	)
	// SubImage coordinates stay in the original image's space, so nested
	// scopes intersect naturally.
	b.target = b.target.SubImage(rect.Intersect(b.target.Bounds())).(*ebiten.Image)
}

func (b *EbitenBackend) EndClip() {
	b.state.popClip()
	b.target = b.clips[len(b.clips)-1]
	b.clips = b.clips[:len(b.clips)-1]
}

func (b *EbitenBackend) DrawTexture(t *Texture) {
	b.DrawTextureWithOffset(t, 0, 0)
}

func (b *EbitenBackend) DrawTextureWithOffset(t *Texture, offsetX, offsetY float64) {
	if !t.IsValid() || b.target == nil {
		return
	}
	src, ok := t.Source().(*ebiten.Image)
	if !ok {
		panic("arbor: texture source is not an *ebiten.Image")
	}

	region := t.Region()
	if region.Width <= 0 || region.Height <= 0 {
		return
	}
	sub := src.SubImage(image.Rect(
		int(region.X), int(region.Y),
		int(region.X+region.Width), int(region.Y+region.Height),
	)).(*ebiten.Image)

	dst := destRect(t, offsetX, offsetY)

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(dst.Width/region.Width, dst.Height/region.Height)
	op.GeoM.Translate(dst.X, dst.Y)
	op.GeoM.Concat(b.geom)

	a := float32(b.state.effectiveAlpha())
	op.ColorScale.Scale(a, a, a, a) // premultiplied
	op.Blend = b.blend

	b.target.DrawImage(sub, &op)
}

func (b *EbitenBackend) Clear(bg Color, opaque bool) {
	b.SetTransform(identityTransform)
	if b.target == nil {
		return
	}
	if opaque {
		b.target.Fill(bg.toRGBA())
	} else {
		b.target.Clear()
	}
}

// RenderTarget returns an offscreen *ebiten.Image sized in device pixels.
func (b *EbitenBackend) RenderTarget(width, height int) any {
	s := b.state.scaleFactor
	w := int(math.Ceil(float64(width) * s))
	h := int(math.Ceil(float64(height) * s))
	if w <= 0 || h <= 0 {
		return nil
	}
	return ebiten.NewImage(w, h)
}

// readSurface downloads the current target and converts the premultiplied
// pixels to straight-alpha NRGBA for capture.
func (b *EbitenBackend) readSurface() *image.NRGBA {
	if b.surface == nil {
		return nil
	}
	bounds := b.surface.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	b.surface.ReadPixels(pixels)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, g, bl, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			bl = uint8(min(int(bl)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = bl
		img.Pix[i+3] = a
	}
	return img
}

// TextureFromSurface wraps a drawable surface in a Texture. Accepts an
// *ebiten.Image directly or any image.Image (uploaded to a new GPU image).
func (b *EbitenBackend) TextureFromSurface(surface any) *Texture {
	var img *ebiten.Image
	switch s := surface.(type) {
	case *ebiten.Image:
		img = s
	case image.Image:
		img = ebiten.NewImageFromImage(s)
	default:
		return NewTexture(nil, Rect{}, Rect{})
	}
	bounds := img.Bounds()
	full := Rect{
		X: float64(bounds.Min.X), Y: float64(bounds.Min.Y),
		Width: float64(bounds.Dx()), Height: float64(bounds.Dy()),
	}
	return NewTexture(img, full, Rect{Width: full.Width, Height: full.Height})
}
