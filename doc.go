// Package arbor is a retained-mode 2D scene-graph rendering engine.
//
// Arbor keeps a tree of display nodes and incrementally reconciles it against
// a pluggable drawing backend every frame. Nodes carry a dirty-flag bitmask;
// traversal recomputes cached world transforms, refreshes per-node renderer
// caches, and issues atlas-aware texture blits only where flags demand it.
//
// Three backends ship with the engine: [NullBackend] (draws nothing, useful
// for headless tests), [EbitenBackend] (GPU rendering through [Ebitengine]),
// and [SoftBackend] (CPU rasterization into an *image.NRGBA).
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	backend := arbor.NewEbitenBackend()
//	vp := arbor.NewViewport(backend, 640, 480)
//	// ... add nodes under vp.Root() ...
//	arbor.Run(vp, arbor.RunConfig{Title: "My Game", Width: 640, Height: 480})
//
// For full control, implement [ebiten.Game] yourself and call
// [EbitenBackend.SetTarget] and [Viewport.Render] directly.
//
// [Ebitengine]: https://ebitengine.org
package arbor
