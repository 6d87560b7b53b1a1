package arbor

import "math"

// tileDraw is one positioned blit in a tiling or nine-slice cache.
type tileDraw struct {
	tex  *Texture
	x, y float64
}

// tilingRenderer caches the tile grid that fills the node's Width x Height
// area. Edge tiles that would overflow are cut down with sub-textures instead
// of relying on a clip scope. Tiling assumes an untrimmed source texture.
type tilingRenderer struct {
	rendererState
	tiles  []tileDraw
	width  float64
	height float64
	ok     bool
}

func (r *tilingRenderer) Rebuild(n *Node) {
	r.tiles = r.tiles[:0]
	r.ok = false
	r.width, r.height = n.Width, n.Height

	tex := n.Texture
	if !tex.IsValid() || n.Width <= 0 || n.Height <= 0 {
		return
	}
	tw := tex.RenderWidth()
	th := tex.RenderHeight()
	if tw <= 0 || th <= 0 {
		return
	}
	region := tex.Region()

	cols := int(math.Ceil(n.Width / tw))
	rows := int(math.Ceil(n.Height / th))
	for j := 0; j < rows; j++ {
		h := math.Min(th, n.Height-float64(j)*th)
		for i := 0; i < cols; i++ {
			w := math.Min(tw, n.Width-float64(i)*tw)
			tile := tex
			if w < tw || h < th {
				// Partial edge tile: take the matching fraction of the
				// source region so the texel density stays constant.
				tile = tex.Sub(Rect{
					Width:  region.Width * w / tw,
					Height: region.Height * h / th,
				}).WithRenderSize(w, h)
			}
			r.tiles = append(r.tiles, tileDraw{tex: tile, x: float64(i) * tw, y: float64(j) * th})
		}
	}
	r.ok = len(r.tiles) > 0
}

func (r *tilingRenderer) IsRenderable() bool {
	return r.ok
}

func (r *tilingRenderer) Bounds() Rect {
	return Rect{Width: r.width, Height: r.height}
}

func (r *tilingRenderer) Draw(b Backend) {
	for _, t := range r.tiles {
		b.DrawTextureWithOffset(t.tex, t.x, t.y)
	}
}
