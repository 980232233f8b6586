package window

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/sketchpad/internal/canvas"
	"github.com/example/sketchpad/internal/sketch"
)

func newTestWindow(t *testing.T, opts ...Option) (*Window, *sketch.Session) {
	t.Helper()
	s := sketch.New(sketch.WithSize(100, 100), sketch.WithRand(rand.New(rand.NewPCG(1, 2))))
	return New(s, opts...), s
}

func press(x, y float32) mouse.Event {
	return mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress}
}

func release(x, y float32) mouse.Event {
	return mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirRelease}
}

func move(x, y float32) mouse.Event {
	return mouse.Event{X: x, Y: y}
}

func TestLookupKey(t *testing.T) {
	cases := []struct {
		ev      key.Event
		action  string
		sticker int
	}{
		{key.Event{Rune: 'u'}, ActionUndo, -1},
		{key.Event{Rune: 'U', Modifiers: key.ModShift}, ActionUndo, -1},
		{key.Event{Rune: 'z', Modifiers: key.ModControl}, ActionUndo, -1},
		{key.Event{Rune: 0x1a, Modifiers: key.ModControl}, ActionUndo, -1},
		{key.Event{Rune: 'y', Modifiers: key.ModControl}, ActionRedo, -1},
		{key.Event{Rune: 'c'}, ActionClear, -1},
		{key.Event{Rune: 'c', Modifiers: key.ModControl}, ActionCopy, -1},
		{key.Event{Rune: 's', Modifiers: key.ModControl}, ActionSave, -1},
		{key.Event{Rune: 'p', Modifiers: key.ModControl}, ActionPDF, -1},
		{key.Event{Rune: '['}, ActionThinner, -1},
		{key.Event{Rune: ']'}, ActionThicker, -1},
		{key.Event{Rune: -1, Code: key.CodeEscape}, ActionDisarm, -1},
		{key.Event{Rune: 'q'}, ActionQuit, -1},
		{key.Event{Rune: '3'}, "", 2},
		{key.Event{Rune: '1', Modifiers: key.ModControl}, "", -1},
		{key.Event{Rune: 'x'}, "", -1},
	}
	for _, tc := range cases {
		action, sticker := lookupKey(tc.ev)
		if action != tc.action || sticker != tc.sticker {
			t.Errorf("lookupKey(%+v) = %q, %d; want %q, %d", tc.ev, action, sticker, tc.action, tc.sticker)
		}
	}
}

func TestNextThickness(t *testing.T) {
	opts := []float64{2, 5, 10}
	cases := []struct {
		current float64
		dir     int
		want    float64
	}{
		{2, 1, 5},
		{10, 1, 2},
		{2, -1, 10},
		{5, -1, 2},
		{3, 1, 5},
		{3, -1, 2},
		{20, 1, 2},
		{1, -1, 10},
	}
	for _, tc := range cases {
		if got := nextThickness(opts, tc.current, tc.dir); got != tc.want {
			t.Errorf("nextThickness(%v, %d) = %v, want %v", tc.current, tc.dir, got, tc.want)
		}
	}
	if got := nextThickness(nil, 7, 1); got != 7 {
		t.Fatalf("empty options changed thickness to %v", got)
	}
}

func TestMouseDrawsStroke(t *testing.T) {
	w, s := newTestWindow(t)
	var p pointer
	w.handleMouse(press(10, 10), &p)
	w.handleMouse(move(20, 20), &p)
	w.handleMouse(release(20, 20), &p)
	if s.History().Len() != 1 {
		t.Fatalf("committed=%d, want 1", s.History().Len())
	}
	st := s.History().Snapshot()[0].(*sketch.Stroke)
	if len(st.Points) != 2 {
		t.Fatalf("points=%v", st.Points)
	}
}

func TestMouseLeavingCanvasCommits(t *testing.T) {
	w, s := newTestWindow(t)
	var p pointer
	w.handleMouse(move(5, 5), &p)
	w.handleMouse(press(10, 10), &p)
	w.handleMouse(move(50, 50), &p)
	w.handleMouse(move(50, 150), &p)
	if s.History().Len() != 1 {
		t.Fatalf("leaving did not commit, committed=%d", s.History().Len())
	}
	if s.Mode() != sketch.ModeIdle {
		t.Fatalf("mode %s after leave", s.Mode())
	}
	w.handleMouse(release(50, 150), &p)
	if s.History().Len() != 1 {
		t.Fatalf("release outside committed again, committed=%d", s.History().Len())
	}
}

func TestMouseScale(t *testing.T) {
	w, s := newTestWindow(t, WithScale(2))
	if b := w.canvasRect; b.Dx() != 200 || b.Dy() != 200 {
		t.Fatalf("canvas rect %v", b)
	}
	var p pointer
	w.handleMouse(press(20, 40), &p)
	w.handleMouse(release(20, 40), &p)
	st := s.History().Snapshot()[0].(*sketch.Stroke)
	if st.Points[0] != canvas.Pt(10, 20) {
		t.Fatalf("first point %v, want (10,20)", st.Points[0])
	}
}

func TestBarClickRunsAction(t *testing.T) {
	w, s := newTestWindow(t)
	s.PointerDown(1, 1)
	s.PointerUp()
	undo := w.shortcuts[0]
	if undo.action != ActionUndo {
		t.Fatalf("first bar button is %q", undo.action)
	}
	var p pointer
	c := undo.rect.Min.Add(undo.rect.Size().Div(2))
	w.handleMouse(press(float32(c.X), float32(c.Y)), &p)
	if s.History().Len() != 0 {
		t.Fatalf("bar click did not undo, committed=%d", s.History().Len())
	}
	if p.hover != ActionUndo {
		t.Fatalf("hover %q", p.hover)
	}
}

func TestKeysDriveSession(t *testing.T) {
	w, s := newTestWindow(t, WithThicknessOptions([]float64{2, 5}))
	w.handleKey(key.Event{Rune: ']', Direction: key.DirPress})
	if s.Thickness() != 5 {
		t.Fatalf("thickness %v, want 5", s.Thickness())
	}
	w.handleKey(key.Event{Rune: '2', Direction: key.DirPress})
	if glyph, _, ok := s.Armed(); !ok || glyph != "⭐" {
		t.Fatalf("armed %q %v", glyph, ok)
	}
	if got := w.statusText(time.Now()); got != "placing ⭐" {
		t.Fatalf("status %q", got)
	}
	w.handleKey(key.Event{Rune: -1, Code: key.CodeEscape, Direction: key.DirPress})
	if _, _, ok := s.Armed(); ok {
		t.Fatal("escape did not disarm")
	}
	w.handleKey(key.Event{Rune: 'u', Direction: key.DirRelease})
	if !w.handleKey(key.Event{Rune: 'q', Direction: key.DirPress}) {
		t.Fatal("q did not request close")
	}
}

func TestSaveWritesFiles(t *testing.T) {
	dir := t.TempDir()
	w, s := newTestWindow(t, WithOutputDir(dir))
	s.PointerDown(10, 10)
	s.PointerMove(20, 20)
	s.PointerUp()
	w.handleAction(ActionSave)
	w.handleAction(ActionPDF)
	for _, name := range []string{"sketchpad.png", "sketchpad.pdf"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s not written: %v", name, err)
		}
	}
	if w.message == "" {
		t.Fatal("no message after save")
	}
}

func TestCopyWritesPNG(t *testing.T) {
	w, _ := newTestWindow(t)
	var got []byte
	w.copyPNG = func(b []byte) error {
		got = b
		return nil
	}
	w.handleAction(ActionCopy)
	if !bytes.HasPrefix(got, []byte("\x89PNG")) {
		t.Fatalf("clipboard received %d bytes without PNG signature", len(got))
	}
}

func TestNotifyChangedCoalesces(t *testing.T) {
	w, s := newTestWindow(t)
	for i := 0; i < 5; i++ {
		s.PointerMove(float64(i), float64(i))
	}
	if n := len(w.updateCh); n != 1 {
		t.Fatalf("pending updates %d, want 1", n)
	}
}

func TestCloseDetachesFromSession(t *testing.T) {
	closed := 0
	w, s := newTestWindow(t, WithOnClose(func() { closed++ }))
	w.notifyClose()
	w.notifyClose()
	if closed != 1 {
		t.Fatalf("onClose ran %d times, want 1", closed)
	}
	s.PointerMove(3, 3)
	s.PointerDown(3, 3)
	s.PointerUp()
	if n := len(w.updateCh); n != 0 {
		t.Fatalf("closed window received %d updates", n)
	}
}

func TestDrawFrame(t *testing.T) {
	bar := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	light := color.RGBA{R: 250, G: 250, B: 250, A: 255}
	w, s := newTestWindow(t, WithColors(light, color.RGBA{R: 200, G: 200, B: 200, A: 255}, bar))
	s.SelectThickness(4)
	s.PointerDown(50, 50)
	s.PointerMove(90, 50)
	s.PointerUp()

	b := w.Bounds()
	if b.Y != 100+barHeight {
		t.Fatalf("window height %d", b.Y)
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.X, b.Y))
	if !w.drawFrame(context.Background(), dst, s.NewSurface(1), frameState{width: b.X, height: b.Y}) {
		t.Fatal("frame reported cancellation")
	}
	if got := dst.RGBAAt(70, 50); got != (color.RGBA{A: 255}) {
		t.Fatalf("stroke pixel %v", got)
	}
	if got := dst.RGBAAt(1, 1); got != light {
		t.Fatalf("backdrop pixel %v", got)
	}
	if got := dst.RGBAAt(b.X-1, b.Y-1); got != bar {
		t.Fatalf("bar pixel %v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if w.drawFrame(ctx, dst, s.NewSurface(1), frameState{width: b.X, height: b.Y}) {
		t.Fatal("cancelled frame reported success")
	}
}
