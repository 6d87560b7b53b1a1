package arbor

// nineSliceRenderer caches the nine stretched slices that scale a texture to
// the node's Width x Height. The node's NineSlice rect is the stretchable
// center in texture-local pixels; the four corners keep their authored size,
// edges stretch along one axis, and the center stretches along both.
// Slicing assumes an untrimmed source texture.
type nineSliceRenderer struct {
	rendererState
	slices []tileDraw
	width  float64
	height float64
	ok     bool
}

func (r *nineSliceRenderer) Rebuild(n *Node) {
	r.slices = r.slices[:0]
	r.ok = false
	r.width, r.height = n.Width, n.Height

	tex := n.Texture
	grid := n.NineSlice
	if !tex.IsValid() || n.Width <= 0 || n.Height <= 0 || grid.Width <= 0 || grid.Height <= 0 {
		return
	}
	region := tex.Region()

	// Source bands in region-local pixels.
	left := grid.X
	top := grid.Y
	right := region.Width - grid.X - grid.Width
	bottom := region.Height - grid.Y - grid.Height
	if left < 0 || top < 0 || right < 0 || bottom < 0 {
		return
	}

	// Destination bands: corners fixed, center absorbs the rest.
	centerW := n.Width - left - right
	centerH := n.Height - top - bottom
	if centerW < 0 {
		centerW = 0
	}
	if centerH < 0 {
		centerH = 0
	}

	srcX := [3]float64{0, left, left + grid.Width}
	srcW := [3]float64{left, grid.Width, right}
	srcY := [3]float64{0, top, top + grid.Height}
	srcH := [3]float64{top, grid.Height, bottom}
	dstX := [3]float64{0, left, left + centerW}
	dstW := [3]float64{left, centerW, right}
	dstY := [3]float64{0, top, top + centerH}
	dstH := [3]float64{top, centerH, bottom}

	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if srcW[col] <= 0 || srcH[row] <= 0 || dstW[col] <= 0 || dstH[row] <= 0 {
				continue
			}
			slice := tex.Sub(Rect{
				X: srcX[col], Y: srcY[row], Width: srcW[col], Height: srcH[row],
			}).WithRenderSize(dstW[col], dstH[row])
			r.slices = append(r.slices, tileDraw{tex: slice, x: dstX[col], y: dstY[row]})
		}
	}
	r.ok = len(r.slices) > 0
}

func (r *nineSliceRenderer) IsRenderable() bool {
	return r.ok
}

func (r *nineSliceRenderer) Bounds() Rect {
	return Rect{Width: r.width, Height: r.height}
}

func (r *nineSliceRenderer) Draw(b Backend) {
	for _, s := range r.slices {
		b.DrawTextureWithOffset(s.tex, s.x, s.y)
	}
}
