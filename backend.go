package arbor

import (
	"fmt"
	"math"
)

// Backend is the drawing-surface contract behind the render core. A backend
// holds per-viewport state — current transform, global alpha, global blend
// mode, a clip stack, surface dimensions, and the device pixel scale factor —
// mutated only by the traversal driver, never by scene nodes directly.
//
// Alpha and blend mode apply only on change, compared against the backend's
// last-applied shadow value. Resize invalidates those shadows (the underlying
// surface technology may silently reset its state when dimensions change), so
// the first application after a resize is never short-circuited.
type Backend interface {
	// NewRenderer creates a renderer for the node through this backend's type
	// table. Panics on unknown node types.
	NewRenderer(n *Node) Renderer

	// Resize updates the target surface dimensions. All shadow state is
	// invalidated; callers must also mark the scene tree render-dirty.
	Resize(width, height int)

	// Size returns the current logical surface dimensions.
	Size() (width, height int)

	// SetTransform applies a 6-component affine transform [a, b, c, d, tx, ty]
	// to the drawing context, scaled by the device scale factor. Panics if any
	// component is non-finite: a non-finite transform is a corrupted scene
	// graph and continuing would corrupt every subsequent draw.
	SetTransform(m [6]float64)

	// SetGlobalAlpha sets the global alpha applied to subsequent draws.
	SetGlobalAlpha(alpha float64)

	// SetGlobalBlendMode sets the global composite operation for subsequent
	// draws. BlendAuto means "no change" and is rejected before lookup.
	SetGlobalBlendMode(mode BlendMode)

	// BeginClip pushes a rectangular clip scope. r is in node-local space,
	// translated by (offsetX, offsetY) and scaled by the device scale factor.
	// Scopes nest; each BeginClip must be matched by exactly one EndClip.
	BeginClip(r Rect, offsetX, offsetY float64)

	// EndClip pops the most recent unmatched clip scope. An unmatched pop is
	// a programmer error and panics.
	EndClip()

	// DrawTexture blits t.Region to the destination rectangle derived from
	// t.UntrimmedRegion and its render size, under the current transform,
	// alpha, and blend state. Invalid textures are silently skipped.
	DrawTexture(t *Texture)

	// DrawTextureWithOffset is DrawTexture with the destination shifted by
	// (offsetX, offsetY) in node-local units.
	DrawTextureWithOffset(t *Texture, offsetX, offsetY float64)

	// Clear resets the transform to identity, then fills the surface with bg
	// (opaque mode) or clears it to transparent. The mode is owned by the
	// viewport, not the backend.
	Clear(bg Color, opaque bool)

	// RenderTarget returns a backend-native offscreen surface, or nil if the
	// backend has none. The seam through which render-to-texture attaches.
	RenderTarget(width, height int) any

	// TextureFromSurface wraps a backend-native drawable surface in a Texture.
	TextureFromSurface(surface any) *Texture
}

// blendUnset is the shadow-state sentinel meaning "no blend mode applied yet".
const blendUnset = numBlendModes

// backendState is the explicit state block shared by every backend: shadow
// values for change detection, the active transform, clip depth, and surface
// geometry. It lives on the backend value (not in package state) so multiple
// simultaneous viewports stay independent.
type backendState struct {
	width, height int
	scaleFactor   float64
	pixelSnap     bool

	transform [6]float64 // last set transform, after snapping
	device    [6]float64 // transform premultiplied by scaleFactor

	alpha     float64   // last applied global alpha; < 0 means unset
	blendMode BlendMode // last applied blend; blendUnset means unset

	clipDepth int
}

func newBackendState(width, height int) backendState {
	st := backendState{width: width, height: height, scaleFactor: 1}
	st.setTransform(identityTransform)
	st.invalidate()
	return st
}

// invalidate resets the shadow values to their unset sentinels so the next
// state application is not skipped by a stale-value comparison.
func (st *backendState) invalidate() {
	st.alpha = -1
	st.blendMode = blendUnset
}

func (st *backendState) resize(width, height int) {
	st.width = width
	st.height = height
	st.invalidate()
}

func (st *backendState) setTransform(m [6]float64) {
	if !finiteAffine(m) {
		panic(fmt.Sprintf("arbor: non-finite transform component in %v", m))
	}
	if st.pixelSnap {
		m[4] = math.Round(m[4])
		m[5] = math.Round(m[5])
	}
	st.transform = m
	s := st.scaleFactor
	st.device = [6]float64{m[0] * s, m[1] * s, m[2] * s, m[3] * s, m[4] * s, m[5] * s}
}

// applyAlpha records alpha as applied and reports whether it differed from
// the last applied value. The comparison uses the backend's shadow value, not
// the caller's previous argument — consecutive nodes may carry equal alphas.
func (st *backendState) applyAlpha(alpha float64) bool {
	if alpha == st.alpha {
		return false
	}
	st.alpha = alpha
	return true
}

// applyBlend resolves and records mode, reporting whether the backend must
// re-apply it. BlendAuto is rejected before any lookup.
func (st *backendState) applyBlend(mode BlendMode) bool {
	if mode == BlendAuto || mode >= numBlendModes {
		return false
	}
	if mode == st.blendMode {
		return false
	}
	st.blendMode = mode
	return true
}

// effectiveAlpha returns the alpha to use at draw time (1 when unset).
func (st *backendState) effectiveAlpha() float64 {
	if st.alpha < 0 {
		return 1
	}
	return st.alpha
}

func (st *backendState) pushClip() {
	st.clipDepth++
}

func (st *backendState) popClip() {
	if st.clipDepth == 0 {
		panic("arbor: EndClip without matching BeginClip")
	}
	st.clipDepth--
}

// NullBackend implements the full backend contract but draws nothing. It is
// the reference for the state machine — shadow invalidation, clip nesting,
// transform validation — and backs headless tests and server-side scenes.
type NullBackend struct {
	state backendState

	// Renderers overrides entries of the stock renderer table when non-nil.
	Renderers map[NodeType]RendererFactory
}

// NewNullBackend creates a no-op backend with the given logical size.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{state: newBackendState(width, height)}
}

// SetScaleFactor sets the device pixel scale factor.
func (b *NullBackend) SetScaleFactor(scale float64) {
	b.state.scaleFactor = scale
	b.state.setTransform(b.state.transform)
}

// SetPixelSnap selects whether translation components are snapped to whole
// pixels before scaling. Global to the backend instance.
func (b *NullBackend) SetPixelSnap(snap bool) {
	b.state.pixelSnap = snap
}

func (b *NullBackend) NewRenderer(n *Node) Renderer {
	return rendererFromTable(b.Renderers, n)
}

func (b *NullBackend) Resize(width, height int) {
	b.state.resize(width, height)
}

func (b *NullBackend) Size() (int, int) {
	return b.state.width, b.state.height
}

func (b *NullBackend) SetTransform(m [6]float64) {
	b.state.setTransform(m)
}

func (b *NullBackend) SetGlobalAlpha(alpha float64) {
	b.state.applyAlpha(alpha)
}

func (b *NullBackend) SetGlobalBlendMode(mode BlendMode) {
	b.state.applyBlend(mode)
}

func (b *NullBackend) BeginClip(Rect, float64, float64) {
	b.state.pushClip()
}

func (b *NullBackend) EndClip() {
	b.state.popClip()
}

func (b *NullBackend) DrawTexture(t *Texture) {
	b.DrawTextureWithOffset(t, 0, 0)
}

func (b *NullBackend) DrawTextureWithOffset(t *Texture, _, _ float64) {
	if !t.IsValid() {
		return
	}
}

func (b *NullBackend) Clear(Color, bool) {
	b.state.setTransform(identityTransform)
}

func (b *NullBackend) RenderTarget(int, int) any {
	return nil
}

func (b *NullBackend) TextureFromSurface(any) *Texture {
	return NewTexture(nil, Rect{}, Rect{})
}
