package arbor

import "strings"

// TextBlock holds the content and layout parameters of a text node. Mutating
// fields directly requires marking the node with DirtyRenderCache afterwards;
// Node.SetText does this for content changes.
type TextBlock struct {
	Content string
	Font    *BitmapFont

	// Multiline enables word wrapping at MaxWidth. Explicit newlines break
	// lines in either mode.
	Multiline bool
	MaxWidth  float64

	Align         TextAlign
	LetterSpacing float64
	LineSpacing   float64

	// AutoSize reports the measured text size through the renderer's bounds
	// (and thus culling) instead of treating the block as unbounded.
	AutoSize bool
}

// glyphDraw is one positioned glyph in a finished layout.
type glyphDraw struct {
	tex  *Texture
	x, y float64
}

// textRenderer caches a laid-out glyph run. The layout is rebuilt when
// DirtyRenderCache is set; a font with unattached pages keeps the cache
// unrenderable so the flag stays armed and the rebuild retries.
type textRenderer struct {
	rendererState
	glyphs   []glyphDraw
	width    float64
	height   float64
	autoSize bool
	ready    bool
}

func (r *textRenderer) Rebuild(n *Node) {
	blk := n.Text
	if blk == nil || blk.Font == nil || !blk.Font.Ready() {
		r.ready = false
		r.glyphs = r.glyphs[:0]
		return
	}
	r.glyphs, r.width, r.height = layoutText(blk, r.glyphs[:0])
	r.autoSize = blk.AutoSize
	r.ready = true
}

func (r *textRenderer) IsRenderable() bool {
	return r.ready
}

// Bounds is the measured layout size when AutoSize is set; otherwise the
// block is unbounded and reports no rectangle, so it is never clip-culled.
func (r *textRenderer) Bounds() Rect {
	if !r.autoSize {
		return Rect{}
	}
	return Rect{Width: r.width, Height: r.height}
}

func (r *textRenderer) Draw(b Backend) {
	for _, g := range r.glyphs {
		b.DrawTextureWithOffset(g.tex, g.x, g.y)
	}
}

// layoutText measures and positions blk's content. Glyphs the font lacks are
// skipped (spaces fall back to a third of the font size so missing space
// glyphs don't collapse words together).
func layoutText(blk *TextBlock, out []glyphDraw) (glyphs []glyphDraw, width, height float64) {
	font := blk.Font
	lines := strings.Split(blk.Content, "\n")
	if blk.Multiline && blk.MaxWidth > 0 {
		lines = wrapLines(blk, lines)
	}

	lineAdvance := font.LineHeight + blk.LineSpacing
	lineStarts := make([]int, len(lines))
	lineWidths := make([]float64, len(lines))
	for i, line := range lines {
		lineStarts[i] = len(out)
		penX := 0.0
		penY := float64(i) * lineAdvance
		prev := rune(0)
		for _, r := range line {
			if prev != 0 {
				penX += font.Kerning(prev, r)
			}
			tex, advance, ok := font.Glyph(r)
			if !ok {
				if r == ' ' {
					penX += font.Size / 3
				}
				prev = r
				continue
			}
			out = append(out, glyphDraw{tex: tex, x: penX, y: penY})
			penX += advance + blk.LetterSpacing
			prev = r
		}
		lineWidths[i] = penX
		if penX > width {
			width = penX
		}
	}
	// Spacing separates lines; it does not trail the last one.
	height = float64(len(lines))*lineAdvance - blk.LineSpacing

	if blk.Align != TextAlignLeft {
		blockWidth := width
		if blk.Multiline && blk.MaxWidth > blockWidth {
			blockWidth = blk.MaxWidth
		}
		for i := range lines {
			end := len(out)
			if i+1 < len(lines) {
				end = lineStarts[i+1]
			}
			var shift float64
			switch blk.Align {
			case TextAlignCenter:
				shift = (blockWidth - lineWidths[i]) / 2
			case TextAlignRight:
				shift = blockWidth - lineWidths[i]
			}
			for j := lineStarts[i]; j < end; j++ {
				out[j].x += shift
			}
		}
	}
	return out, width, height
}

// wrapLines greedily word-wraps each input line at blk.MaxWidth.
func wrapLines(blk *TextBlock, lines []string) []string {
	font := blk.Font
	var wrapped []string
	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			wrapped = append(wrapped, "")
			continue
		}
		cur := words[0]
		for _, word := range words[1:] {
			candidate := cur + " " + word
			if measureLine(blk, font, candidate) > blk.MaxWidth {
				wrapped = append(wrapped, cur)
				cur = word
			} else {
				cur = candidate
			}
		}
		wrapped = append(wrapped, cur)
	}
	return wrapped
}

// measureLine returns the pen advance of s without emitting glyphs.
func measureLine(blk *TextBlock, font *BitmapFont, s string) float64 {
	penX := 0.0
	prev := rune(0)
	for _, r := range s {
		if prev != 0 {
			penX += font.Kerning(prev, r)
		}
		_, advance, ok := font.Glyph(r)
		if !ok {
			if r == ' ' {
				penX += font.Size / 3
			}
			prev = r
			continue
		}
		penX += advance + blk.LetterSpacing
		prev = r
	}
	return penX
}
