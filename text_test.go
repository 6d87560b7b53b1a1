package arbor

import "testing"

func layoutBlock(t *testing.T, blk *TextBlock) ([]glyphDraw, float64, float64) {
	t.Helper()
	glyphs, w, h := layoutText(blk, nil)
	return glyphs, w, h
}

func TestLayoutSingleLineAdvance(t *testing.T) {
	f := loadTestFont(t)
	blk := &TextBlock{Content: "AB", Font: f}
	glyphs, width, height := layoutBlock(t, blk)

	if len(glyphs) != 2 {
		t.Fatalf("glyph count = %d, want 2", len(glyphs))
	}
	if glyphs[0].x != 0 {
		t.Errorf("glyph A x = %v, want 0", glyphs[0].x)
	}
	// B starts after A's advance (11).
	if glyphs[1].x != 11 {
		t.Errorf("glyph B x = %v, want 11", glyphs[1].x)
	}
	// Width is the pen advance: 11 + 9.
	if width != 20 {
		t.Errorf("width = %v, want 20", width)
	}
	if height != 20 {
		t.Errorf("height = %v, want lineHeight 20", height)
	}
}

func TestLayoutAppliesKerning(t *testing.T) {
	f := loadTestFont(t)
	glyphs, _, _ := layoutBlock(t, &TextBlock{Content: "AV", Font: f})

	// V after A: advance 11 plus kerning -2.
	if glyphs[1].x != 9 {
		t.Errorf("glyph V x = %v, want 9", glyphs[1].x)
	}
}

func TestLayoutLetterSpacing(t *testing.T) {
	f := loadTestFont(t)
	glyphs, _, _ := layoutBlock(t, &TextBlock{Content: "AB", Font: f, LetterSpacing: 3})

	if glyphs[1].x != 14 {
		t.Errorf("glyph B x = %v, want 14", glyphs[1].x)
	}
}

func TestLayoutExplicitNewlines(t *testing.T) {
	f := loadTestFont(t)
	glyphs, _, height := layoutBlock(t, &TextBlock{Content: "A\nB", Font: f})

	if len(glyphs) != 2 {
		t.Fatalf("glyph count = %d, want 2", len(glyphs))
	}
	if glyphs[1].y != 20 {
		t.Errorf("second line y = %v, want 20", glyphs[1].y)
	}
	if height != 40 {
		t.Errorf("height = %v, want 40", height)
	}
}

func TestLayoutLineSpacing(t *testing.T) {
	f := loadTestFont(t)
	glyphs, _, height := layoutBlock(t, &TextBlock{Content: "A\nB", Font: f, LineSpacing: 4})

	if glyphs[1].y != 24 {
		t.Errorf("second line y = %v, want 24", glyphs[1].y)
	}
	// Two advances of 24 minus the spacing after the last line.
	if height != 44 {
		t.Errorf("height = %v, want 44", height)
	}
}

func TestLayoutSkipsMissingGlyphs(t *testing.T) {
	f := loadTestFont(t)
	glyphs, _, _ := layoutBlock(t, &TextBlock{Content: "AZB", Font: f})

	// Z has no glyph; it is skipped without advancing.
	if len(glyphs) != 2 {
		t.Fatalf("glyph count = %d, want 2", len(glyphs))
	}
	if glyphs[1].x != 11 {
		t.Errorf("glyph B x = %v, want 11", glyphs[1].x)
	}
}

func TestLayoutMissingSpaceFallsBack(t *testing.T) {
	f := loadTestFont(t)
	glyphs, _, _ := layoutBlock(t, &TextBlock{Content: "A B", Font: f})

	// The test font has no space glyph; the pen advances Size/3 anyway.
	want := 11 + f.Size/3
	if !approx(glyphs[1].x, want) {
		t.Errorf("glyph B x = %v, want %v", glyphs[1].x, want)
	}
}

func TestLayoutWordWrap(t *testing.T) {
	f := loadTestFont(t)
	blk := &TextBlock{Content: "AA AA", Font: f, Multiline: true, MaxWidth: 30}
	glyphs, _, height := layoutBlock(t, blk)

	// "AA" measures 22; "AA AA" with the space fallback exceeds 30, so the
	// second word wraps to line two.
	if len(glyphs) != 4 {
		t.Fatalf("glyph count = %d, want 4", len(glyphs))
	}
	if glyphs[2].y != 20 {
		t.Errorf("wrapped word y = %v, want 20", glyphs[2].y)
	}
	if height != 40 {
		t.Errorf("height = %v, want 40 (two lines)", height)
	}
}

func TestLayoutAlignment(t *testing.T) {
	f := loadTestFont(t)

	// Two lines: "AA" (width 22) and "A" (width 11).
	center := &TextBlock{Content: "AA\nA", Font: f, Align: TextAlignCenter}
	glyphs, _, _ := layoutBlock(t, center)
	if !approx(glyphs[2].x, (22-11)/2.0) {
		t.Errorf("centered short line x = %v, want 5.5", glyphs[2].x)
	}

	right := &TextBlock{Content: "AA\nA", Font: f, Align: TextAlignRight}
	glyphs, _, _ = layoutBlock(t, right)
	if !approx(glyphs[2].x, 11) {
		t.Errorf("right-aligned short line x = %v, want 11", glyphs[2].x)
	}
}

func TestMeasureLineMatchesLayout(t *testing.T) {
	f := loadTestFont(t)
	blk := &TextBlock{Content: "", Font: f}
	// A advance 11, kerning -2, V advance 10.
	if got := measureLine(blk, f, "AV"); got != 19 {
		t.Errorf("measureLine(AV) = %v, want 19", got)
	}
}

func TestTextRendererNotReadyWithoutFont(t *testing.T) {
	r := &textRenderer{}
	n := NewText("t", "A", nil)
	r.Rebuild(n)
	if r.IsRenderable() {
		t.Error("text without a font should not be renderable")
	}
}

func TestTextRendererBoundsFollowAutoSize(t *testing.T) {
	f := loadTestFont(t)

	// Without AutoSize the block is unbounded: no rectangle, never culled.
	r := &textRenderer{}
	n := NewText("t", "AB", f)
	r.Rebuild(n)
	if !r.IsRenderable() {
		t.Fatal("renderer should be ready")
	}
	if !r.Bounds().Empty() {
		t.Errorf("bounds = %v, want empty without AutoSize", r.Bounds())
	}

	// With AutoSize the measured layout size is reported.
	n.Text.AutoSize = true
	r.Rebuild(n)
	b := r.Bounds()
	if b.Width != 20 || b.Height != 20 {
		t.Errorf("bounds = %v, want 20x20", b)
	}
}
