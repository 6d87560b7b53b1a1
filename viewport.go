package arbor

import "time"

// Viewport is the frame driver: it owns the scene root, the backend bound to
// it, and the per-surface presentation flags. One Render call is one frame:
// a synchronous pre-order walk that reconciles dirty nodes against the
// backend and issues draws in paint order.
type Viewport struct {
	root    *Node
	backend Backend

	// Background fills the surface each frame when Transparent is false.
	Background Color

	// Transparent clears the surface to transparent instead of filling it
	// with Background.
	Transparent bool

	// CullEnabled suppresses draw calls for nodes wholly outside the active
	// clip scope. Children are still traversed: a child's world position may
	// escape its parent's bounds.
	CullEnabled bool

	// ScreenshotDir receives capture files. Defaults to "screenshots".
	ScreenshotDir string

	// ScreenshotFormat selects the capture encoding. Defaults to PNG.
	ScreenshotFormat ScreenshotFormat

	// Pending resize, applied at the start of the next frame so that no
	// frame begins traversal mid-resize.
	resizeW, resizeH int
	resizePending    bool

	cullActive bool
	cullBounds Rect

	screenshotQueue []string

	debug bool
	stats frameStats
}

// NewViewport creates a viewport driving the given backend at the given
// logical size, with a pre-created root container.
func NewViewport(b Backend, width, height int) *Viewport {
	b.Resize(width, height)
	root := NewContainer("root")
	return &Viewport{
		root:          root,
		backend:       b,
		Background:    ColorBlack,
		ScreenshotDir: "screenshots",
	}
}

// Root returns the viewport's root container node.
func (v *Viewport) Root() *Node {
	return v.root
}

// Backend returns the backend this viewport drives.
func (v *Viewport) Backend() Backend {
	return v.backend
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are printed, and
// per-frame timing stats are logged to stderr.
func (v *Viewport) SetDebugMode(enabled bool) {
	v.debug = enabled
	globalDebug = enabled
}

// Resize records a surface resize. Resizes originate from external layout
// notifications and are linearized with traversal: the request is applied at
// the start of the next Render, never mid-frame. Applying it invalidates the
// backend's shadow state and marks the whole tree render-dirty.
func (v *Viewport) Resize(width, height int) {
	v.resizeW = width
	v.resizeH = height
	v.resizePending = true
}

// Render runs one frame: pending resize, clear, then the reconciliation walk.
func (v *Viewport) Render() {
	if v.resizePending {
		v.resizePending = false
		v.backend.Resize(v.resizeW, v.resizeH)
		v.root.SetDirty(DirtyTransform|DirtyRender, true)
	}

	var t0 time.Time
	if v.debug {
		v.stats = frameStats{}
		t0 = time.Now()
	}

	v.backend.Clear(v.Background, !v.Transparent)
	v.cullActive = false
	v.renderNode(v.root, identityTransform, 1, BlendNormal, false)

	if v.debug {
		v.stats.frameTime = time.Since(t0)
		v.debugLog()
	}

	v.flushScreenshots()
}

// renderNode reconciles one node and recurses into its children in insertion
// order (the paint order). parentSynced forces a resync even when the node's
// own flags are clear, because inherited transform/alpha/blend changed above.
func (v *Viewport) renderNode(n *Node, parentTransform [6]float64, parentAlpha float64, parentBlend BlendMode, parentSynced bool) {
	if !n.Visible {
		return
	}
	b := v.backend
	r := n.EnsureRenderer(b)

	synced := parentSynced || n.dirty&(DirtyTransform|DirtyRender) != 0
	if synced {
		n.worldTransform = multiplyAffine(parentTransform, computeLocalTransform(n))
		r.SyncState(n, parentAlpha, parentBlend)
		// This step cannot fail; clear unconditionally. AND-NOT exactly
		// these bits, DirtyRenderCache may have been set in the meantime.
		n.clearDirty(DirtyTransform | DirtyRender)
	}

	if n.dirty&DirtyRenderCache != 0 {
		r.Rebuild(n)
		if _, noCache := r.(cacheless); noCache || r.IsRenderable() {
			n.clearDirty(DirtyRenderCache)
		}
		// Otherwise the flag stays set and next frame retries: clearing on a
		// failed rebuild would freeze the node in an unrenderable state.
	}

	clipped := n.Clip != nil
	prevActive, prevBounds := v.cullActive, v.cullBounds
	if clipped {
		b.BeginClip(*n.Clip, n.worldTransform[4], n.worldTransform[5])
		if v.CullEnabled {
			clipWorld := Rect{
				X:     n.Clip.X + n.worldTransform[4],
				Y:     n.Clip.Y + n.worldTransform[5],
				Width: n.Clip.Width, Height: n.Clip.Height,
			}
			if v.cullActive {
				clipWorld = rectIntersect(clipWorld, v.cullBounds)
			}
			v.cullActive = true
			v.cullBounds = clipWorld
		}
	}

	if r.IsRenderable() && !v.culled(n, r) {
		b.SetTransform(r.Transform())
		b.SetGlobalAlpha(r.Alpha())
		b.SetGlobalBlendMode(r.Blend())
		r.Draw(b)
		v.stats.drawnNodes++
	}

	for _, child := range n.children {
		v.renderNode(child, n.worldTransform, r.Alpha(), r.Blend(), synced)
	}

	if clipped {
		b.EndClip()
	}
	v.cullActive, v.cullBounds = prevActive, prevBounds
}

// culled reports whether the node's content lies wholly outside the active
// clip scope. Suppresses draw emission only; traversal still descends.
func (v *Viewport) culled(n *Node, r Renderer) bool {
	if !v.cullActive {
		return false
	}
	bounds := r.Bounds()
	if bounds.Empty() {
		return false
	}
	aabb := transformRectAABB(n.worldTransform, bounds)
	return !aabb.Intersects(v.cullBounds)
}

// rectIntersect returns the overlap of a and b (zero-size when disjoint).
func rectIntersect(a, b Rect) Rect {
	x0 := max(a.X, b.X)
	y0 := max(a.Y, b.Y)
	x1 := min(a.X+a.Width, b.X+b.Width)
	y1 := min(a.Y+a.Height, b.Y+b.Height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
