package arbor

import (
	"math"
	"testing"
)

// --- Shadow state ---

func TestApplyAlphaSkipsRepeatedValue(t *testing.T) {
	st := newBackendState(100, 100)
	if !st.applyAlpha(0.5) {
		t.Error("first application should report a change")
	}
	if st.applyAlpha(0.5) {
		t.Error("repeated value should be skipped")
	}
	if !st.applyAlpha(0.75) {
		t.Error("new value should report a change")
	}
}

func TestResizeInvalidatesShadowState(t *testing.T) {
	st := newBackendState(100, 100)
	st.applyAlpha(0.5)
	st.applyBlend(BlendAdd)

	st.resize(200, 200)

	if !st.applyAlpha(0.5) {
		t.Error("alpha application after resize must not be skipped")
	}
	if !st.applyBlend(BlendAdd) {
		t.Error("blend application after resize must not be skipped")
	}
}

func TestApplyBlendRejectsAuto(t *testing.T) {
	st := newBackendState(100, 100)
	if st.applyBlend(BlendAuto) {
		t.Error("BlendAuto must never be applied")
	}
	if st.blendMode != blendUnset {
		t.Error("BlendAuto must not disturb the shadow value")
	}
}

func TestApplyBlendSkipsRepeatedMode(t *testing.T) {
	st := newBackendState(100, 100)
	if !st.applyBlend(BlendMultiply) {
		t.Error("first application should report a change")
	}
	if st.applyBlend(BlendMultiply) {
		t.Error("repeated mode should be skipped")
	}
}

func TestEffectiveAlphaDefaultsToOpaque(t *testing.T) {
	st := newBackendState(100, 100)
	if st.effectiveAlpha() != 1 {
		t.Errorf("effectiveAlpha = %v, want 1", st.effectiveAlpha())
	}
	st.applyAlpha(0.25)
	if st.effectiveAlpha() != 0.25 {
		t.Errorf("effectiveAlpha = %v, want 0.25", st.effectiveAlpha())
	}
}

// --- Transform handling ---

func TestSetTransformNonFinitePanics(t *testing.T) {
	b := NewNullBackend(100, 100)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for NaN transform component")
		}
	}()
	b.SetTransform([6]float64{1, 0, 0, 1, math.NaN(), 0})
}

func TestPixelSnapRoundsTranslationBeforeScaling(t *testing.T) {
	b := NewNullBackend(100, 100)
	b.SetScaleFactor(2)
	b.SetPixelSnap(true)
	b.SetTransform([6]float64{1, 0, 0, 1, 10.4, 10.6})

	// Snap to logical pixels first, then scale to device pixels: the device
	// translation stays a whole multiple of the scale factor.
	d := b.state.device
	if d[4] != 20 || d[5] != 22 {
		t.Errorf("device translation = (%v, %v), want (20, 22)", d[4], d[5])
	}
}

func TestScaleFactorMultipliesDeviceTransform(t *testing.T) {
	b := NewNullBackend(100, 100)
	b.SetScaleFactor(1.5)
	b.SetTransform([6]float64{2, 0, 0, 2, 10, 20})

	d := b.state.device
	want := [6]float64{3, 0, 0, 3, 15, 30}
	for i := range d {
		if !approx(d[i], want[i]) {
			t.Errorf("device = %v, want %v", d, want)
			break
		}
	}
}

// --- Clip stack ---

func TestClipScopesNest(t *testing.T) {
	b := NewNullBackend(100, 100)
	b.BeginClip(Rect{Width: 50, Height: 50}, 0, 0)
	b.BeginClip(Rect{Width: 10, Height: 10}, 5, 5)
	b.EndClip()
	b.EndClip()
	if b.state.clipDepth != 0 {
		t.Errorf("clipDepth = %d, want 0", b.state.clipDepth)
	}
}

func TestUnmatchedEndClipPanics(t *testing.T) {
	b := NewNullBackend(100, 100)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for EndClip without BeginClip")
		}
	}()
	b.EndClip()
}

// --- Draw path ---

func TestNullBackendSkipsInvalidTextures(t *testing.T) {
	b := NewNullBackend(100, 100)
	// Must not panic for nil or disposed textures.
	b.DrawTexture(nil)
	b.DrawTexture(NewTexture(nil, Rect{}, Rect{}))

	tex := NewTexture(stubSource, Rect{Width: 8, Height: 8}, Rect{Width: 8, Height: 8})
	tex.Dispose()
	b.DrawTexture(tex)
}

func TestRendererFromTableOverride(t *testing.T) {
	b := NewNullBackend(100, 100)
	called := false
	b.Renderers = map[NodeType]RendererFactory{
		NodeTypeSprite: func(*Node) Renderer {
			called = true
			return &containerRenderer{}
		},
	}

	n := NewSprite("s", nil)
	b.NewRenderer(n)
	if !called {
		t.Error("override factory should be used for sprites")
	}

	// Types without an override fall back to the stock table.
	if _, ok := b.NewRenderer(NewContainer("c")).(*containerRenderer); !ok {
		t.Error("container should come from the stock table")
	}
}
