package arbor

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// These tests stay off the GPU: no images are created, only the pure state
// machine and the blend lookup table are exercised.

func TestEbitenBlendTable(t *testing.T) {
	cases := []struct {
		mode BlendMode
		want ebiten.Blend
	}{
		{BlendNormal, ebiten.BlendSourceOver},
		{BlendAdd, ebiten.BlendLighter},
		{BlendErase, ebiten.BlendDestinationOut},
		{BlendBelow, ebiten.BlendDestinationOver},
		{BlendNone, ebiten.BlendCopy},
	}
	for _, c := range cases {
		if ebitenBlends[c.mode] != c.want {
			t.Errorf("mode %d maps to %+v, want %+v", c.mode, ebitenBlends[c.mode], c.want)
		}
	}
}

func TestEbitenBlendMultiplyFactors(t *testing.T) {
	m := ebitenBlends[BlendMultiply]
	if m.BlendFactorSourceRGB != ebiten.BlendFactorDestinationColor {
		t.Error("multiply should scale source by destination color")
	}
	if m.BlendFactorDestinationRGB != ebiten.BlendFactorOneMinusSourceAlpha {
		t.Error("multiply should fade destination by source coverage")
	}
}

func TestEbitenBackendStateWithoutTarget(t *testing.T) {
	b := NewEbitenBackend()

	// All state operations must work before a target is attached.
	b.Resize(320, 240)
	if w, h := b.Size(); w != 320 || h != 240 {
		t.Errorf("Size = (%d, %d)", w, h)
	}
	b.SetTransform([6]float64{1, 0, 0, 1, 5, 5})
	b.SetGlobalAlpha(0.5)
	b.SetGlobalBlendMode(BlendAdd)
	if b.blend != ebiten.BlendLighter {
		t.Error("blend should resolve through the table")
	}

	// Draws without a target are dropped, not a crash.
	b.DrawTexture(NewTexture(stubSource, Rect{Width: 4, Height: 4}, Rect{Width: 4, Height: 4}))
	b.Clear(ColorBlack, true)

	if b.readSurface() != nil {
		t.Error("readSurface without a surface should be nil")
	}
}

func TestEbitenBackendBlendAutoLeavesTableAlone(t *testing.T) {
	b := NewEbitenBackend()
	b.SetGlobalBlendMode(BlendMultiply)
	prev := b.blend
	b.SetGlobalBlendMode(BlendAuto)
	if b.blend != prev {
		t.Error("BlendAuto must never reach the lookup table")
	}
}
