package arbor

import "fmt"

// Renderer is the per-node cache object consumed by the backend. One renderer
// exists per node, created lazily through the backend's type table on the
// first traversal and owned by the node for its lifetime.
//
// SyncState mirrors the node's transform/alpha/blend/visibility (the
// DirtyRender step; cannot fail). Rebuild refreshes type-specific drawable
// content (the DirtyRenderCache step); when it cannot produce a usable result
// IsRenderable stays false and the caller keeps the flag armed for a retry.
type Renderer interface {
	// SyncState copies the node's world transform and resolves inherited
	// state: effective alpha is node alpha times parentAlpha, and a node
	// blend of BlendAuto resolves to parentBlend.
	SyncState(n *Node, parentAlpha float64, parentBlend BlendMode)

	// Rebuild recomputes type-specific drawable content from the node.
	Rebuild(n *Node)

	// IsRenderable reports whether Draw would produce output. It is the sole
	// gate for clearing DirtyRenderCache.
	IsRenderable() bool

	// Bounds returns the node-local content rectangle, used for clip culling.
	Bounds() Rect

	// Draw issues backend calls for the cached content. The traversal has
	// already applied transform, alpha, and blend state to the backend.
	Draw(b Backend)

	// Transform returns the mirrored world transform.
	Transform() [6]float64

	// Alpha returns the resolved effective alpha (multiplicative inheritance).
	Alpha() float64

	// Blend returns the resolved blend mode (never BlendAuto).
	Blend() BlendMode
}

// RendererFactory constructs a renderer for a node. Backends map node types
// to factories; resolving happens once per node, not per frame.
type RendererFactory func(n *Node) Renderer

// defaultRenderers is the stock type table shared by the built-in backends.
// A backend overrides entries (or the whole table) to change rendering
// strategy per node type without touching Node.
var defaultRenderers = map[NodeType]RendererFactory{
	NodeTypeContainer: func(*Node) Renderer { return &containerRenderer{} },
	NodeTypeSprite:    func(*Node) Renderer { return &spriteRenderer{} },
	NodeTypeText:      func(*Node) Renderer { return &textRenderer{} },
	NodeTypeTiling:    func(*Node) Renderer { return &tilingRenderer{} },
	NodeTypeNineSlice: func(*Node) Renderer { return &nineSliceRenderer{} },
}

// rendererFromTable resolves n's renderer factory from table, falling back to
// the stock table for types the backend did not override. An unknown node
// type is a programmer error and panics.
func rendererFromTable(table map[NodeType]RendererFactory, n *Node) Renderer {
	if f, ok := table[n.Type]; ok {
		return f(n)
	}
	if f, ok := defaultRenderers[n.Type]; ok {
		return f(n)
	}
	panic(fmt.Sprintf("arbor: no renderer registered for node type %d (node %q)", n.Type, n.Name))
}

// rendererState is the state mirror embedded by every concrete renderer.
type rendererState struct {
	transform [6]float64
	alpha     float64
	blend     BlendMode
	visible   bool
}

func (s *rendererState) SyncState(n *Node, parentAlpha float64, parentBlend BlendMode) {
	s.transform = n.worldTransform
	s.alpha = n.Alpha * parentAlpha
	if n.Blend == BlendAuto {
		s.blend = parentBlend
	} else {
		s.blend = n.Blend
	}
	s.visible = n.Visible
}

func (s *rendererState) Transform() [6]float64 { return s.transform }
func (s *rendererState) Alpha() float64        { return s.alpha }

// Blend returns the resolved blend mode. A renderer that has never synced
// reports BlendNormal rather than leaking the zero value (BlendAuto).
func (s *rendererState) Blend() BlendMode {
	if s.blend == BlendAuto {
		return BlendNormal
	}
	return s.blend
}

// --- Container ---

// cacheless marks renderers that keep no drawable cache. Their Rebuild is a
// no-op that can never fail, so the traversal clears DirtyRenderCache even
// though IsRenderable stays false.
type cacheless interface {
	cachelessRenderer()
}

// containerRenderer carries inherited state for its children but draws
// nothing itself.
type containerRenderer struct {
	rendererState
}

func (r *containerRenderer) Rebuild(*Node)      {}
func (r *containerRenderer) IsRenderable() bool { return false }
func (r *containerRenderer) Bounds() Rect       { return Rect{} }
func (r *containerRenderer) Draw(Backend)       {}
func (r *containerRenderer) cachelessRenderer() {}

// --- Sprite ---

// spriteRenderer caches the node's texture and blits it as-is.
type spriteRenderer struct {
	rendererState
	tex *Texture
}

func (r *spriteRenderer) Rebuild(n *Node) {
	r.tex = n.Texture
}

func (r *spriteRenderer) IsRenderable() bool {
	return r.tex.IsValid()
}

func (r *spriteRenderer) Bounds() Rect {
	if r.tex == nil {
		return Rect{}
	}
	return destRect(r.tex, 0, 0)
}

func (r *spriteRenderer) Draw(b Backend) {
	b.DrawTexture(r.tex)
}
