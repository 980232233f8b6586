// Package sketch holds the drawing model: the committed history of strokes
// and stickers, the transient object that follows the pointer, and the
// session that turns pointer and tool intents into history transitions.
package sketch

import (
	"fmt"
	"image/color"

	"github.com/google/uuid"

	"github.com/example/sketchpad/internal/canvas"
)

// Kind identifies a Drawable variant.
type Kind int

const (
	KindStroke Kind = iota
	KindSticker
)

func (k Kind) String() string {
	switch k {
	case KindStroke:
		return "stroke"
	case KindSticker:
		return "sticker"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Drawable is a unit of history. Only *Stroke and *Sticker implement it.
type Drawable interface {
	canvas.Paintable
	ID() uuid.UUID
	Kind() Kind
	drawable()
}

// Stroke is a freehand polyline. Points are appended only while the stroke
// is being drawn.
type Stroke struct {
	id        uuid.UUID
	Points    []canvas.Point
	Thickness float64
	Color     color.RGBA
}

// NewStroke starts a stroke at p.
func NewStroke(p canvas.Point, thickness float64, col color.RGBA) *Stroke {
	s := &Stroke{id: uuid.New(), Thickness: thickness, Color: col}
	s.Append(p)
	return s
}

func (s *Stroke) ID() uuid.UUID { return s.id }
func (s *Stroke) Kind() Kind    { return KindStroke }
func (s *Stroke) drawable()     {}

// Append adds p to the end of the stroke. Points with NaN or infinite
// coordinates are dropped.
func (s *Stroke) Append(p canvas.Point) {
	if !p.Finite() {
		return
	}
	s.Points = append(s.Points, p)
}

// Render paints the stroke. A single point is a degenerate path and paints
// nothing.
func (s *Stroke) Render(p canvas.Painter) {
	p.StrokePolyline(s.Points, s.Thickness, s.Color)
}

// Sticker is a glyph placed with a fixed rotation.
type Sticker struct {
	id    uuid.UUID
	X, Y  float64
	Glyph string
	// Rotation is in degrees, clockwise, in [0,360).
	Rotation float64
	Size     float64
	Color    color.RGBA
}

// NewSticker creates a sticker centred on p.
func NewSticker(glyph string, p canvas.Point, rotation, size float64, col color.RGBA) *Sticker {
	return &Sticker{id: uuid.New(), X: p.X, Y: p.Y, Glyph: glyph, Rotation: rotation, Size: size, Color: col}
}

func (s *Sticker) ID() uuid.UUID { return s.id }
func (s *Sticker) Kind() Kind    { return KindSticker }
func (s *Sticker) drawable()     {}

// Retarget moves the sticker centre.
func (s *Sticker) Retarget(p canvas.Point) {
	if !p.Finite() {
		return
	}
	s.X, s.Y = p.X, p.Y
}

// Render paints the glyph with an outline, rotated about its centre.
func (s *Sticker) Render(p canvas.Painter) {
	if err := p.DrawGlyph(s.Glyph, canvas.Pt(s.X, s.Y), s.Rotation, s.Size, s.Color); err != nil {
		p.SetError(fmt.Errorf("sticker %q: %w", s.Glyph, err))
	}
}

// ToolPreview outlines the brush under the pointer. It never enters history.
type ToolPreview struct {
	X, Y      float64
	Thickness float64
	Color     color.RGBA
}

// Render paints an unfilled circle the size of the brush.
func (t *ToolPreview) Render(p canvas.Painter) {
	p.StrokeCircle(canvas.Pt(t.X, t.Y), t.Thickness/2, t.Color)
}

// Paintables adapts a drawable list for the exporter and renderer.
func Paintables(ds []Drawable) []canvas.Paintable {
	out := make([]canvas.Paintable, len(ds))
	for i, d := range ds {
		out[i] = d
	}
	return out
}
