package arbor

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenPositionReachesTarget(t *testing.T) {
	node := NewContainer("pos")
	node.X = 10
	node.Y = 20

	g := TweenPosition(node, 100, 200, 1.0, ease.Linear)

	// Run for full duration using exact halves to avoid float32 accumulation drift.
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(node.X-100) > 0.5 {
		t.Errorf("X = %f, want ~100", node.X)
	}
	if math.Abs(node.Y-200) > 0.5 {
		t.Errorf("Y = %f, want ~200", node.Y)
	}
}

func TestTweenScaleReachesTarget(t *testing.T) {
	node := NewContainer("scale")

	g := TweenScale(node, 2.0, 3.0, 0.5, ease.Linear)

	g.Update(0.25)
	g.Update(0.25)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(node.ScaleX-2.0) > 0.01 {
		t.Errorf("ScaleX = %f, want ~2.0", node.ScaleX)
	}
	if math.Abs(node.ScaleY-3.0) > 0.01 {
		t.Errorf("ScaleY = %f, want ~3.0", node.ScaleY)
	}
}

func TestTweenAlphaInterpolates(t *testing.T) {
	node := NewContainer("alpha")

	g := TweenAlpha(node, 0, 1.0, ease.Linear)
	g.Update(0.5)

	if g.Done {
		t.Error("should not be done at half duration")
	}
	if math.Abs(node.Alpha-0.5) > 0.01 {
		t.Errorf("Alpha = %f, want ~0.5", node.Alpha)
	}
}

func TestTweenRotationReachesTarget(t *testing.T) {
	node := NewContainer("rot")

	g := TweenRotation(node, math.Pi, 1.0, ease.Linear)
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(node.Rotation-math.Pi) > 0.01 {
		t.Errorf("Rotation = %f, want ~pi", node.Rotation)
	}
}

func TestTweenMarksNodeRenderDirty(t *testing.T) {
	node := NewContainer("dirty")
	node.clearDirty(dirtyAll)

	g := TweenPosition(node, 50, 50, 1.0, ease.Linear)
	g.Update(0.1)

	if node.Dirty()&(DirtyTransform|DirtyRender) != DirtyTransform|DirtyRender {
		t.Errorf("Dirty() = %b, tween updates must mark the node", node.Dirty())
	}
}

func TestTweenStopsOnDisposedTarget(t *testing.T) {
	node := NewContainer("gone")
	g := TweenPosition(node, 100, 100, 1.0, ease.Linear)
	g.Update(0.25)

	node.Dispose()
	xBefore := node.X
	g.Update(0.25)

	if !g.Done {
		t.Error("tween should stop once its target is disposed")
	}
	if node.X != xBefore {
		t.Error("no writes may occur after disposal")
	}
}

func TestTweenUpdateAfterDoneIsNoop(t *testing.T) {
	node := NewContainer("done")
	g := TweenAlpha(node, 0, 0.5, ease.Linear)
	g.Update(0.5)
	if !g.Done {
		t.Fatal("expected Done")
	}
	g.Update(0.5)
	if math.Abs(node.Alpha) > 0.01 {
		t.Errorf("Alpha = %f, want 0", node.Alpha)
	}
}
