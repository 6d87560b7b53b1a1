package arbor

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures the Run helper.
type RunConfig struct {
	Title  string
	Width  int
	Height int

	// OnUpdate is called once per tick with the tick duration in seconds,
	// before the frame is rendered. Returning an error stops the loop.
	OnUpdate func(dt float64) error

	// ShowFPS overlays an FPS/TPS counter in the top-left corner.
	ShowFPS bool
}

// game adapts a Viewport to the ebiten game loop.
type game struct {
	viewport *Viewport
	backend  *EbitenBackend
	cfg      RunConfig
}

func (g *game) Update() error {
	if g.cfg.OnUpdate != nil {
		return g.cfg.OnUpdate(1.0 / float64(ebiten.TPS()))
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.backend.SetTarget(screen)
	g.viewport.Render()
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.0f  TPS: %.0f",
			ebiten.ActualFPS(), ebiten.ActualTPS()), 4, 4)
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and drives the viewport with the ebiten game loop until
// the window closes or OnUpdate returns an error. The viewport must be bound
// to an *EbitenBackend. For full control, implement [ebiten.Game] yourself,
// call EbitenBackend.SetTarget with the frame's screen and then
// Viewport.Render from your Draw method.
func Run(v *Viewport, cfg RunConfig) error {
	backend, ok := v.Backend().(*EbitenBackend)
	if !ok {
		return fmt.Errorf("arbor: Run requires an EbitenBackend, got %T", v.Backend())
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = backend.Size()
	}
	v.Resize(cfg.Width, cfg.Height)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	return ebiten.RunGame(&game{viewport: v, backend: backend, cfg: cfg})
}
