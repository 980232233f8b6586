package sketch

import (
	"fmt"
	"image/color"
	"testing"

	"github.com/example/sketchpad/internal/canvas"
)

type recorder struct {
	calls []string
	err   error
}

func (r *recorder) StrokePolyline(pts []canvas.Point, width float64, col color.Color) {
	r.calls = append(r.calls, fmt.Sprintf("polyline %v", pts))
}

func (r *recorder) StrokeCircle(c canvas.Point, radius float64, col color.Color) {
	r.calls = append(r.calls, fmt.Sprintf("circle %v r=%v", c, radius))
}

func (r *recorder) DrawGlyph(glyph string, c canvas.Point, rotation, size float64, fill color.Color) error {
	r.calls = append(r.calls, fmt.Sprintf("glyph %s %v", glyph, c))
	if glyph == "" {
		return canvas.ErrEmptyGlyph
	}
	return nil
}

func (r *recorder) SetError(err error) {
	if r.err == nil {
		r.err = err
	}
}

func TestRenderFullOrder(t *testing.T) {
	s := canvas.NewSurface(32, 32)
	blue := color.RGBA{B: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}
	older := NewStroke(canvas.Pt(0, 16), 6, blue)
	older.Append(canvas.Pt(32, 16))
	newer := NewStroke(canvas.Pt(16, 0), 6, red)
	newer.Append(canvas.Pt(16, 32))
	RenderFull(s, []Drawable{older, newer}, nil)
	if got := s.Image().RGBAAt(16, 16); got != red {
		t.Fatalf("crossing pixel %+v, want the newer stroke on top", got)
	}
	RenderFull(s, []Drawable{newer, older}, nil)
	if got := s.Image().RGBAAt(16, 16); got != blue {
		t.Fatalf("crossing pixel %+v, want the newer stroke on top", got)
	}
}

func TestRenderFullTransientOnTop(t *testing.T) {
	s := canvas.NewSurface(32, 32)
	green := color.RGBA{G: 255, A: 255}
	committed := NewStroke(canvas.Pt(0, 16), 6, color.RGBA{R: 255, A: 255})
	committed.Append(canvas.Pt(32, 16))
	live := NewStroke(canvas.Pt(16, 0), 6, green)
	live.Append(canvas.Pt(16, 32))
	RenderFull(s, []Drawable{committed}, live)
	if got := s.Image().RGBAAt(16, 16); got != green {
		t.Fatalf("crossing pixel %+v, want the transient stroke on top", got)
	}
}

func TestRenderFullClearsPreviousFrame(t *testing.T) {
	s := canvas.NewSurface(16, 16)
	st := NewStroke(canvas.Pt(0, 8), 4, color.RGBA{A: 255})
	st.Append(canvas.Pt(16, 8))
	RenderFull(s, []Drawable{st}, nil)
	RenderFull(s, nil, nil)
	if s.Image().RGBAAt(8, 8).A != 0 {
		t.Fatal("stale paint survived a full render")
	}
}

func TestStrokeRendersSegmentsInOrder(t *testing.T) {
	st := NewStroke(canvas.Pt(0, 0), 2, color.RGBA{A: 255})
	st.Append(canvas.Pt(10, 0))
	st.Append(canvas.Pt(10, 10))
	r := &recorder{}
	st.Render(r)
	want := "polyline [{0 0} {10 0} {10 10}]"
	if len(r.calls) != 1 || r.calls[0] != want {
		t.Fatalf("calls %v, want %q", r.calls, want)
	}

	s := canvas.NewSurface(16, 16)
	st.Render(s)
	if s.Image().RGBAAt(5, 0).A == 0 {
		t.Fatal("first segment missing")
	}
	if s.Image().RGBAAt(10, 5).A == 0 {
		t.Fatal("second segment missing")
	}
	if s.Image().RGBAAt(4, 6).A != 0 {
		t.Fatal("segments were closed into a triangle")
	}
}

func TestSinglePointStrokePaintsNothing(t *testing.T) {
	st := NewStroke(canvas.Pt(8, 8), 6, color.RGBA{A: 255})
	s := canvas.NewSurface(16, 16)
	st.Render(s)
	for i := 3; i < len(s.Image().Pix); i += 4 {
		if s.Image().Pix[i] != 0 {
			t.Fatal("single point stroke painted pixels")
		}
	}
}

func TestStickerAndPreviewRender(t *testing.T) {
	r := &recorder{}
	NewSticker("⭐", canvas.Pt(3, 4), 45, 32, color.RGBA{A: 255}).Render(r)
	(&ToolPreview{X: 5, Y: 6, Thickness: 8}).Render(r)
	want := []string{"glyph ⭐ {3 4}", "circle {5 6} r=4"}
	if len(r.calls) != 2 || r.calls[0] != want[0] || r.calls[1] != want[1] {
		t.Fatalf("calls %v, want %v", r.calls, want)
	}
}
