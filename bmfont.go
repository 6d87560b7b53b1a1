package arbor

import (
	"encoding/xml"
	"fmt"
)

// bmGlyph is one glyph's atlas addressing and metrics.
type bmGlyph struct {
	page     int
	region   Rect    // atlas pixel rect on the page
	offsetX  float64 // pen-relative placement of the glyph quad
	offsetY  float64
	xadvance float64

	tex *Texture // built once the page texture is attached
}

// BitmapFont is a glyph atlas parsed from BMFont XML. The font is an asset
// object: metrics are available after parsing, but glyphs become drawable
// only after AttachPage binds each page to a texture. A font with missing
// pages reports Ready() == false, and text rebuilt against it stays armed for
// retry (the resource-not-ready path).
type BitmapFont struct {
	Face       string
	Size       float64
	LineHeight float64
	Base       float64

	pageFiles []string
	pages     []*Texture
	glyphs    map[rune]*bmGlyph
	kerning   map[[2]rune]float64
}

// --- BMFont XML structure ---

type bmXMLFont struct {
	Info struct {
		Face string  `xml:"face,attr"`
		Size float64 `xml:"size,attr"`
	} `xml:"info"`
	Common struct {
		LineHeight float64 `xml:"lineHeight,attr"`
		Base       float64 `xml:"base,attr"`
		Pages      int     `xml:"pages,attr"`
	} `xml:"common"`
	Pages struct {
		Page []struct {
			ID   int    `xml:"id,attr"`
			File string `xml:"file,attr"`
		} `xml:"page"`
	} `xml:"pages"`
	Chars struct {
		Char []struct {
			ID       int     `xml:"id,attr"`
			X        float64 `xml:"x,attr"`
			Y        float64 `xml:"y,attr"`
			Width    float64 `xml:"width,attr"`
			Height   float64 `xml:"height,attr"`
			XOffset  float64 `xml:"xoffset,attr"`
			YOffset  float64 `xml:"yoffset,attr"`
			XAdvance float64 `xml:"xadvance,attr"`
			Page     int     `xml:"page,attr"`
		} `xml:"char"`
	} `xml:"chars"`
	Kernings struct {
		Kerning []struct {
			First  int     `xml:"first,attr"`
			Second int     `xml:"second,attr"`
			Amount float64 `xml:"amount,attr"`
		} `xml:"kerning"`
	} `xml:"kernings"`
}

// ParseBMFont parses BMFont XML data into a BitmapFont. Page textures are not
// loaded here; bind them afterwards with AttachPage.
func ParseBMFont(data []byte) (*BitmapFont, error) {
	var raw bmXMLFont
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("arbor: failed to parse bmfont XML: %w", err)
	}
	if len(raw.Chars.Char) == 0 {
		return nil, fmt.Errorf("arbor: bmfont has no chars")
	}

	pageCount := raw.Common.Pages
	if pageCount < len(raw.Pages.Page) {
		pageCount = len(raw.Pages.Page)
	}
	if pageCount == 0 {
		pageCount = 1
	}

	f := &BitmapFont{
		Face:       raw.Info.Face,
		Size:       raw.Info.Size,
		LineHeight: raw.Common.LineHeight,
		Base:       raw.Common.Base,
		pageFiles:  make([]string, pageCount),
		pages:      make([]*Texture, pageCount),
		glyphs:     make(map[rune]*bmGlyph, len(raw.Chars.Char)),
	}
	for _, p := range raw.Pages.Page {
		if p.ID >= 0 && p.ID < pageCount {
			f.pageFiles[p.ID] = p.File
		}
	}
	for _, c := range raw.Chars.Char {
		if c.Page < 0 || c.Page >= pageCount {
			return nil, fmt.Errorf("arbor: bmfont char %d references page %d of %d", c.ID, c.Page, pageCount)
		}
		f.glyphs[rune(c.ID)] = &bmGlyph{
			page:     c.Page,
			region:   Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height},
			offsetX:  c.XOffset,
			offsetY:  c.YOffset,
			xadvance: c.XAdvance,
		}
	}
	if len(raw.Kernings.Kerning) > 0 {
		f.kerning = make(map[[2]rune]float64, len(raw.Kernings.Kerning))
		for _, k := range raw.Kernings.Kerning {
			f.kerning[[2]rune{rune(k.First), rune(k.Second)}] = k.Amount
		}
	}
	return f, nil
}

// PageFiles returns the page image file names declared by the font, indexed
// by page number. The asset layer uses these to load and attach pages.
func (f *BitmapFont) PageFiles() []string {
	return f.pageFiles
}

// AttachPage binds a page texture. page must cover the whole atlas page; its
// region origin is honored, so a page packed inside a larger master atlas
// works too. Glyph textures on that page are derived immediately and share
// the page's source image.
func (f *BitmapFont) AttachPage(index int, page *Texture) error {
	if index < 0 || index >= len(f.pages) {
		return fmt.Errorf("arbor: bmfont page index %d out of range (%d pages)", index, len(f.pages))
	}
	f.pages[index] = page
	origin := page.Region()
	for _, g := range f.glyphs {
		if g.page != index {
			continue
		}
		g.tex = NewTexture(
			page.Source(),
			Rect{X: origin.X + g.region.X, Y: origin.Y + g.region.Y, Width: g.region.Width, Height: g.region.Height},
			Rect{X: g.offsetX, Y: g.offsetY, Width: g.region.Width, Height: g.region.Height},
		)
	}
	return nil
}

// Ready reports whether every declared page has a texture attached.
func (f *BitmapFont) Ready() bool {
	for _, p := range f.pages {
		if !p.IsValid() {
			return false
		}
	}
	return true
}

// Glyph returns the drawable texture and advance width for r. The texture's
// untrimmed origin carries the glyph's pen-relative offsets, so drawing it at
// the pen position places it correctly.
func (f *BitmapFont) Glyph(r rune) (tex *Texture, xadvance float64, ok bool) {
	g, found := f.glyphs[r]
	if !found {
		return nil, 0, false
	}
	return g.tex, g.xadvance, true
}

// Kerning returns the pen adjustment between two adjacent runes.
func (f *BitmapFont) Kerning(prev, next rune) float64 {
	if f.kerning == nil {
		return 0
	}
	return f.kerning[[2]rune{prev, next}]
}
