package arbor

// nodeIDCounter is a plain counter (no atomic — arbor is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the fundamental scene graph element. A single flat struct is used
// for all node types; behavior differences live in the renderer bound to the
// node, not in the node itself.
//
// Exported fields may be written directly for bulk setup, but the writer must
// then call MarkDirty (or SetDirty) so the next traversal picks the change up.
// The Set* methods do this automatically.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy. Parent is a non-owning back-reference; ownership flows
	// strictly parent -> children, and child order is paint order.
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y         float64
	ScaleX       float64
	ScaleY       float64
	Rotation     float64
	SkewX, SkewY float64
	PivotX       float64
	PivotY       float64

	// Visibility & compositing
	Alpha   float64
	Visible bool
	Blend   BlendMode // BlendAuto inherits the parent's resolved mode

	// Clip, when non-nil, restricts this node and its subtree to a rectangle
	// in node-local space.
	Clip *Rect

	// Layout size for tiling and nine-slice nodes.
	Width, Height float64

	// Type-specific content
	Texture   *Texture   // NodeTypeSprite, NodeTypeTiling, NodeTypeNineSlice
	Text      *TextBlock // NodeTypeText
	NineSlice Rect       // NodeTypeNineSlice: the stretchable center, in texture-local pixels

	// Metadata
	UserData any

	// Computed (updated during traversal)
	worldTransform [6]float64

	dirty    DirtyFlag
	renderer Renderer
	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Visible = true
	n.Blend = BlendAuto
	n.worldTransform = identityTransform
	n.dirty = dirtyAll
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewSprite creates a sprite node that renders a texture.
func NewSprite(name string, tex *Texture) *Node {
	n := &Node{Name: name, Type: NodeTypeSprite, Texture: tex}
	nodeDefaults(n)
	return n
}

// NewText creates a text node with the given content and font.
func NewText(name, content string, font *BitmapFont) *Node {
	n := &Node{
		Name: name,
		Type: NodeTypeText,
		Text: &TextBlock{Content: content, Font: font},
	}
	nodeDefaults(n)
	return n
}

// NewTiling creates a node that repeats tex across a width x height area.
func NewTiling(name string, tex *Texture, width, height float64) *Node {
	n := &Node{Name: name, Type: NodeTypeTiling, Texture: tex, Width: width, Height: height}
	nodeDefaults(n)
	return n
}

// NewNineSlice creates a node that stretches tex to width x height through a
// 3x3 grid. The grid rect is the stretchable center in texture-local pixels;
// the four corners keep their authored size.
func NewNineSlice(name string, tex *Texture, grid Rect, width, height float64) *Node {
	n := &Node{
		Name:      name,
		Type:      NodeTypeNineSlice,
		Texture:   tex,
		NineSlice: grid,
		Width:     width,
		Height:    height,
	}
	nodeDefaults(n)
	return n
}

// --- Renderer binding ---

// Renderer returns the renderer bound to this node, or nil if the node has
// not been rendered yet. Renderers are created lazily by the first traversal
// through the backend's type table.
func (n *Node) Renderer() Renderer {
	return n.renderer
}

// EnsureRenderer returns this node's renderer, creating it through the
// backend's type table if absent. Panics if the backend has no renderer
// registered for the node's type (a corrupted scene graph, not a runtime
// condition).
func (n *Node) EnsureRenderer(b Backend) Renderer {
	if n.renderer == nil {
		n.renderer = b.NewRenderer(n)
	}
	return n.renderer
}

// --- Tree manipulation ---

// AddChild appends child to this node's children. Children render in list
// order, so the new child paints above its existing siblings.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("arbor: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("arbor: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	child.SetDirty(dirtyAll, true)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// AddChildAt inserts child at the given index in the paint order.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("arbor: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("arbor: adding child would create a cycle")
	}
	if index < 0 || index > len(n.children) {
		panic("arbor: child index out of range")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	child.SetDirty(dirtyAll, true)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild (parent)")
		debugCheckDisposed(child, "RemoveChild (child)")
	}
	if child.Parent != n {
		panic("arbor: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	child.SetDirty(dirtyAll, true)
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChildAt")
	}
	if index < 0 || index >= len(n.children) {
		panic("arbor: child index out of range")
	}
	child := n.children[index]
	copy(n.children[index:], n.children[index+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	child.Parent = nil
	child.SetDirty(dirtyAll, true)
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.Parent = nil
		child.SetDirty(dirtyAll, true)
	}
	n.children = n.children[:0]
}

// Children returns the child list. The returned slice MUST NOT be mutated by
// the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetChildIndex moves child to a new position in the paint order.
func (n *Node) SetChildIndex(child *Node, index int) {
	if child.Parent != n {
		panic("arbor: child's parent is not this node")
	}
	nc := len(n.children)
	if index < 0 || index >= nc {
		panic("arbor: child index out of range")
	}
	oldIndex := -1
	for i, c := range n.children {
		if c == child {
			oldIndex = i
			break
		}
	}
	if oldIndex == index {
		return
	}
	// Shift elements to fill the gap and open the target slot.
	if oldIndex < index {
		copy(n.children[oldIndex:], n.children[oldIndex+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:oldIndex])
	}
	n.children[index] = child
}

// --- Property setters ---

// SetPosition sets the node's local X and Y and marks it dirty.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.SetRenderDirty()
}

// SetScale sets the node's ScaleX and ScaleY and marks it dirty.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
	n.SetRenderDirty()
}

// SetRotation sets the node's rotation (in radians) and marks it dirty.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	n.SetRenderDirty()
}

// SetSkew sets the node's SkewX and SkewY and marks it dirty.
func (n *Node) SetSkew(sx, sy float64) {
	n.SkewX = sx
	n.SkewY = sy
	n.SetRenderDirty()
}

// SetPivot sets the node's PivotX and PivotY and marks it dirty.
func (n *Node) SetPivot(px, py float64) {
	n.PivotX = px
	n.PivotY = py
	n.SetRenderDirty()
}

// SetAlpha sets the node's alpha and marks it dirty. Alpha is inherited
// multiplicatively: the renderer's effective alpha is this value times the
// parent renderer's effective alpha.
func (n *Node) SetAlpha(a float64) {
	n.Alpha = a
	n.SetDirty(DirtyRender, false)
}

// SetVisible sets the node's visibility and marks it dirty. An invisible
// node's entire subtree is skipped during traversal.
func (n *Node) SetVisible(v bool) {
	n.Visible = v
	n.SetDirty(DirtyRender, false)
}

// SetBlend sets the node's blend mode and marks it dirty.
func (n *Node) SetBlend(mode BlendMode) {
	n.Blend = mode
	n.SetDirty(DirtyRender, false)
}

// SetClip sets or clears (nil) the node's clip rectangle.
func (n *Node) SetClip(r *Rect) {
	n.Clip = r
	n.SetDirty(DirtyRender, false)
}

// SetTexture swaps the node's texture and marks its drawable content stale.
func (n *Node) SetTexture(tex *Texture) {
	n.Texture = tex
	n.SetDirty(DirtyRender|DirtyRenderCache, false)
}

// SetSize sets the layout size used by tiling and nine-slice nodes and marks
// their drawable content stale.
func (n *Node) SetSize(width, height float64) {
	n.Width = width
	n.Height = height
	n.SetDirty(DirtyRender|DirtyRenderCache, false)
}

// SetText replaces a text node's content and marks its layout stale.
// No-op on nodes without a TextBlock.
func (n *Node) SetText(content string) {
	if n.Text == nil {
		return
	}
	n.Text.Content = content
	n.SetDirty(DirtyRenderCache, false)
}

// MarkDirty marks the node's transform and renderer state stale, forcing
// recomputation on the next frame. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.SetRenderDirty()
}

// --- Computed state accessors ---

// WorldTransform returns the node's cached concatenated transform. Valid only
// after a traversal has visited the node with no dirty ancestors since.
func (n *Node) WorldTransform() [6]float64 {
	return n.worldTransform
}

// WorldToLocal converts a world-space point to this node's local coordinate space.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	inv := invertAffine(n.worldTransform)
	return transformPoint(inv, wx, wy)
}

// LocalToWorld converts a local-space point to world-space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(n.worldTransform, lx, ly)
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.renderer = nil
	n.Texture = nil
	n.Text = nil
	n.Clip = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
