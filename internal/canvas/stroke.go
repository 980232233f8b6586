package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// StrokePolyline paints a connected polyline through pts in order. Ends are
// butt capped and interior vertices get round joins. Fewer than two points is
// a degenerate path and paints nothing.
func (s *Surface) StrokePolyline(pts []Point, width float64, col color.Color) {
	if len(pts) < 2 || width <= 0 {
		return
	}
	b := s.img.Bounds()
	if b.Empty() {
		return
	}
	r := width * s.scale / 2
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	drawn := false
	for i := 1; i < len(pts); i++ {
		x0, y0 := s.toPixel(pts[i-1])
		x1, y1 := s.toPixel(pts[i])
		if segmentPath(z, x0, y0, x1, y1, r) {
			drawn = true
		}
	}
	if !drawn {
		return
	}
	for i := 1; i < len(pts)-1; i++ {
		cx, cy := s.toPixel(pts[i])
		discPath(z, cx, cy, r)
	}
	z.Draw(s.img, b, image.NewUniform(col), image.Point{})
}

// segmentPath adds the rectangle covering a line segment of half width r.
// Every rectangle and disc is wound the same way; the rasterizer takes the
// absolute accumulated coverage, so opposite windings would cancel where they
// overlap.
func segmentPath(z *vector.Rasterizer, x0, y0, x1, y1, r float64) bool {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return false
	}
	nx, ny := -dy/l*r, dx/l*r
	z.MoveTo(float32(x0+nx), float32(y0+ny))
	z.LineTo(float32(x1+nx), float32(y1+ny))
	z.LineTo(float32(x1-nx), float32(y1-ny))
	z.LineTo(float32(x0-nx), float32(y0-ny))
	z.ClosePath()
	return true
}

func discPath(z *vector.Rasterizer, cx, cy, r float64) {
	if r <= 0 {
		return
	}
	steps := int(math.Ceil(math.Pi * r))
	if steps < 12 {
		steps = 12
	}
	if steps > 128 {
		steps = 128
	}
	z.MoveTo(float32(cx+r), float32(cy))
	for k := 1; k < steps; k++ {
		a := -2 * math.Pi * float64(k) / float64(steps)
		z.LineTo(float32(cx+r*math.Cos(a)), float32(cy+r*math.Sin(a)))
	}
	z.ClosePath()
}
