package canvas

import (
	"image"
	"image/color"
	"math"
)

// StrokeCircle paints an unfilled circle centred at c with logical radius r.
// The outline is one logical unit wide.
func (s *Surface) StrokeCircle(c Point, r float64, col color.Color) {
	if r < 0 || !c.Finite() {
		return
	}
	cx, cy := s.toPixel(c)
	thick := int(math.Round(s.scale))
	if thick < 1 {
		thick = 1
	}
	drawCircle(s.img, int(math.Round(cx)), int(math.Round(cy)), int(math.Round(r*s.scale)), col, thick)
}

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

func drawCircleThin(img *image.RGBA, cx, cy, r int, col color.Color) {
	if r == 0 {
		setThickPixel(img, cx, cy, 1, col)
		return
	}
	x := r
	y := 0
	err := 1 - r
	for x >= y {
		pts := [][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}}
		for _, p := range pts {
			px := cx + p[0]
			py := cy + p[1]
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}

func drawCircle(img *image.RGBA, cx, cy, r int, col color.Color, thick int) {
	if thick <= 1 {
		drawCircleThin(img, cx, cy, r, col)
		return
	}
	start := -thick / 2
	for i := 0; i < thick; i++ {
		rr := r + start + i
		if rr >= 0 {
			drawCircleThin(img, cx, cy, rr, col)
		}
	}
}

// DrawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func DrawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	if size <= 0 {
		size = 8
	}
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}
