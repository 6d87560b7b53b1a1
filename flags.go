package arbor

// DirtyFlag is a bitmask marking which synchronization steps a node still owes
// before its next draw. Flags are additive: producers OR bits in, and the
// traversal clears exactly the bits it serviced with an AND-NOT. Clearing by
// XOR/toggle is forbidden — two independent producers may set the same bit
// between clears, and a toggle would silently re-arm a flag that was already
// clear.
type DirtyFlag uint8

const (
	// DirtyTransform marks the cached world transform as stale. The node
	// re-derives it from the parent's world transform on the next traversal.
	DirtyTransform DirtyFlag = 1 << iota

	// DirtyRender marks the node's transform/alpha/blend/visibility state as
	// not yet pushed to its renderer. Synchronizing this state cannot fail,
	// so the bit is cleared unconditionally once serviced.
	DirtyRender

	// DirtyRenderCache marks the node's type-specific drawable content (text
	// layout, tile counts, nine-slice geometry) as needing a rebuild. The bit
	// is cleared only when the rebuild produced a renderable result; a rebuild
	// blocked on a missing resource leaves it set so the next frame retries.
	DirtyRenderCache

	// dirtyAll is the initial mask for freshly constructed nodes.
	dirtyAll = DirtyTransform | DirtyRender | DirtyRenderCache
)

// SetDirty ORs flags into the node's dirty mask. When propagate is true the
// same flags are ORed into every descendant, used when a change invalidates
// layout that children's caches depend on (reparenting, size changes).
// Setting an already-set flag is a no-op.
func (n *Node) SetDirty(flags DirtyFlag, propagate bool) {
	n.dirty |= flags
	if !propagate {
		return
	}
	for _, child := range n.children {
		child.SetDirty(flags, true)
	}
}

// SetRenderDirty marks the node's transform and renderer state stale. This is
// the convenience entry point for property writers (tweens, particles,
// application code mutating exported fields directly). Ancestors are not
// notified — they re-derive their own state independently.
func (n *Node) SetRenderDirty() {
	n.dirty |= DirtyTransform | DirtyRender
}

// Dirty returns the node's current dirty mask.
func (n *Node) Dirty() DirtyFlag {
	return n.dirty
}

// clearDirty clears exactly the given bits. AND-NOT, never toggle.
func (n *Node) clearDirty(flags DirtyFlag) {
	n.dirty &^= flags
}
