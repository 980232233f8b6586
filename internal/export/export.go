// Package export renders committed drawings offscreen at export resolution
// and serializes them as PNG or PDF.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/example/sketchpad/internal/canvas"
)

const (
	DefaultWidth  = 256
	DefaultHeight = 256
	DefaultScale  = 4

	PNGFilename = "sketchpad.png"
	PDFFilename = "sketchpad.pdf"
	PNGMIME     = "image/png"
	PDFMIME     = "application/pdf"
)

// Exporter paints drawables onto a fresh offscreen target. It holds no
// reference to the drawing history and never modifies what it is given.
type Exporter struct {
	width      int
	height     int
	scale      float64
	background color.RGBA
	fonts      *canvas.FontSet
}

// Option modifies an Exporter during creation.
type Option func(*Exporter)

// WithSize sets the logical canvas size.
func WithSize(width, height int) Option {
	return func(e *Exporter) { e.width, e.height = width, height }
}

// WithScale sets the linear factor between the canvas and the exported image.
func WithScale(scale float64) Option { return func(e *Exporter) { e.scale = scale } }

// WithBackground sets the colour painted under the drawables.
func WithBackground(col color.RGBA) Option { return func(e *Exporter) { e.background = col } }

// WithFonts sets the font set used for sticker glyphs.
func WithFonts(fs *canvas.FontSet) Option { return func(e *Exporter) { e.fonts = fs } }

// New creates an Exporter with the provided options.
func New(opts ...Option) *Exporter {
	e := &Exporter{width: DefaultWidth, height: DefaultHeight, scale: DefaultScale}
	for _, o := range opts {
		o(e)
	}
	if e.width <= 0 {
		e.width = DefaultWidth
	}
	if e.height <= 0 {
		e.height = DefaultHeight
	}
	if e.scale <= 0 {
		e.scale = DefaultScale
	}
	if e.fonts == nil {
		e.fonts = canvas.DefaultFonts()
	}
	return e
}

// Size returns the pixel dimensions of exported images.
func (e *Exporter) Size() (width, height int) {
	return int(math.Round(float64(e.width) * e.scale)), int(math.Round(float64(e.height) * e.scale))
}

// Scale returns the export scale factor.
func (e *Exporter) Scale() float64 { return e.scale }

// Raster paints items in order onto a new surface at export resolution.
func (e *Exporter) Raster(items []canvas.Paintable) *image.RGBA {
	return e.paint(items).Image()
}

func (e *Exporter) paint(items []canvas.Paintable) *canvas.Surface {
	s := canvas.NewSurface(e.width, e.height,
		canvas.WithScale(e.scale),
		canvas.WithBackground(e.background),
		canvas.WithFonts(e.fonts),
	)
	for _, it := range items {
		if it != nil {
			it.Render(s)
		}
	}
	return s
}

// PNG renders items and encodes the result. An empty list yields a blank
// image of the full export size.
func (e *Exporter) PNG(items []canvas.Paintable) ([]byte, error) {
	s := e.paint(items)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes data to path, creating parent directories as needed, and
// returns the absolute path when it can be resolved.
func Save(path string, data []byte) (string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs, nil
	}
	return path, nil
}
