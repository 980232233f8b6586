// Package canvas provides the raster drawing surface that sketch drawables
// paint on. A Surface works in logical, surface-local pixels with the origin
// at the top-left corner; a uniform scale factor maps logical units onto the
// backing RGBA image so the same drawables can be painted at screen size or at
// export resolution.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Point is a position in logical surface coordinates.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Finite reports whether both coordinates are usable numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Painter is a drawing target in logical coordinates. Surface paints into a
// raster; the PDF exporter records vector output. Paintables report failures
// through SetError; a painter keeps the first one.
type Painter interface {
	StrokePolyline(pts []Point, width float64, col color.Color)
	StrokeCircle(c Point, r float64, col color.Color)
	DrawGlyph(glyph string, c Point, rotation, size float64, fill color.Color) error
	SetError(err error)
}

// Paintable is anything that can paint itself onto a Painter.
type Paintable interface {
	Render(p Painter)
}

// Surface is an RGBA raster painted through a uniformly scaled coordinate
// system.
type Surface struct {
	img        *image.RGBA
	width      int
	height     int
	scale      float64
	background color.RGBA
	fonts      *FontSet
	err        error
}

var _ Painter = (*Surface)(nil)

// Option modifies a Surface during creation.
type Option func(*Surface)

// WithScale sets the factor between logical units and backing pixels.
func WithScale(scale float64) Option { return func(s *Surface) { s.scale = scale } }

// WithBackground sets the colour Clear fills the surface with.
func WithBackground(col color.RGBA) Option { return func(s *Surface) { s.background = col } }

// WithFonts sets the font set used to paint glyphs.
func WithFonts(fs *FontSet) Option { return func(s *Surface) { s.fonts = fs } }

// NewSurface allocates a surface of width×height logical units. The backing
// image is width*scale by height*scale pixels.
func NewSurface(width, height int, opts ...Option) *Surface {
	s := &Surface{width: width, height: height, scale: 1}
	for _, o := range opts {
		o(s)
	}
	if s.scale <= 0 || math.IsNaN(s.scale) {
		s.scale = 1
	}
	if s.fonts == nil {
		s.fonts = DefaultFonts()
	}
	pw := int(math.Round(float64(width) * s.scale))
	ph := int(math.Round(float64(height) * s.scale))
	if pw < 0 {
		pw = 0
	}
	if ph < 0 {
		ph = 0
	}
	s.img = image.NewRGBA(image.Rect(0, 0, pw, ph))
	s.Clear()
	return s
}

// Image returns the backing raster.
func (s *Surface) Image() *image.RGBA { return s.img }

// Scale returns the logical to pixel scale factor.
func (s *Surface) Scale() float64 { return s.scale }

// Size returns the logical dimensions.
func (s *Surface) Size() (width, height int) { return s.width, s.height }

// Fonts returns the font set used for glyphs.
func (s *Surface) Fonts() *FontSet { return s.fonts }

// SetError records err unless an earlier error is already held.
func (s *Surface) SetError(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Err returns the first error reported since the last Clear.
func (s *Surface) Err() error { return s.err }

// Clear fills the whole surface with the background colour and forgets any
// recorded error.
func (s *Surface) Clear() {
	s.err = nil
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
}

// toPixel maps a logical point into backing image coordinates.
func (s *Surface) toPixel(p Point) (float64, float64) {
	return p.X * s.scale, p.Y * s.scale
}
