package surface

import (
	"image"
	"math"

	"github.com/gogpu/gg"

	"ScreenNote/internal/state"
)

// paint draws pts with st's style. Erase strokes remove coverage instead of
// adding color.
func (s *Surface) paint(st *state.Stroke, pts []state.Point) {
	if len(pts) == 0 {
		return
	}
	width := st.Width
	if !(width > 0) {
		width = defaultWidth
	}
	if st.Composite == state.CompositeErase {
		s.erase(width, pts)
		return
	}
	color := st.Color
	if color == "" {
		color = defaultColor
	}
	s.dc.SetHexColor(color)
	if err := trace(s.dc, width, pts); err != nil {
		s.logger.Warn("stroke render failed", "id", st.ID, "err", err)
	}
}

// trace strokes pts as one polyline with round caps and joins. A lone point
// becomes a dot of the stroke's width.
func trace(dc *gg.Context, width float64, pts []state.Point) error {
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.SetLineWidth(width)
	if len(pts) == 1 {
		dc.DrawCircle(pts[0].X, pts[0].Y, width/2)
		return dc.Fill()
	}
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	return dc.Stroke()
}

// erase rasterizes the eraser path into the scratch context and subtracts its
// coverage from the surface alpha, touching only the path's pixel bounds.
func (s *Surface) erase(width float64, pts []state.Point) {
	s.scratch.SetRGBA(1, 1, 1, 1)
	if err := trace(s.scratch, width, pts); err != nil {
		s.logger.Warn("eraser render failed", "err", err)
	}
	r := s.pixelBounds(width, pts)
	subtractCoverage(s.dc.ResizeTarget(), s.scratch.ResizeTarget(), r)
}

// pixelBounds is the backing-pixel rectangle that can be touched by a stroke
// of the given width through pts.
func (s *Surface) pixelBounds(width float64, pts []state.Point) image.Rectangle {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	pad := width/2 + 2
	r := image.Rect(
		int(math.Floor((minX-pad)*s.scale)),
		int(math.Floor((minY-pad)*s.scale)),
		int(math.Ceil((maxX+pad)*s.scale)),
		int(math.Ceil((maxY+pad)*s.scale)),
	)
	pw, ph := s.PixelSize()
	return r.Intersect(image.Rect(0, 0, pw, ph))
}

// subtractCoverage scales dst alpha by the inverse of mask alpha inside r and
// resets the mask pixels it consumed. Both pixmaps hold straight RGBA bytes.
func subtractCoverage(dst, mask *gg.Pixmap, r image.Rectangle) {
	d, m := dst.Data(), mask.Data()
	stride := dst.Width() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := y*stride + x*4
			a := m[i+3]
			if a == 0 {
				continue
			}
			m[i], m[i+1], m[i+2], m[i+3] = 0, 0, 0, 0
			keep := uint32(d[i+3]) * (255 - uint32(a)) / 255
			if keep == 0 {
				d[i], d[i+1], d[i+2], d[i+3] = 0, 0, 0, 0
				continue
			}
			d[i+3] = uint8(keep)
		}
	}
}
