// Package window hosts a sketch session in a native shiny window. It only
// forwards pointer and key intents to the session and repaints when the
// session reports a change; all drawing semantics live in package sketch.
package window

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/sketchpad/internal/canvas"
	"github.com/example/sketchpad/internal/clipboard"
	"github.com/example/sketchpad/internal/export"
	"github.com/example/sketchpad/internal/notify"
	"github.com/example/sketchpad/internal/sketch"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

const messageDuration = 2 * time.Second

// Window drives one session from a shiny window.
type Window struct {
	session    *sketch.Session
	scale      float64
	outputDir  string
	thickness  []float64
	notifier   *notify.Notifier
	logger     *log.Logger
	light      color.RGBA
	dark       color.RGBA
	barBG      color.RGBA
	copyPNG    func([]byte) error
	updateCh   chan struct{}
	message    string
	msgUntil   time.Time
	closeOnce  sync.Once
	onClose    func()
	unsub      func()
	shortcuts  []shortcut
	canvasRect image.Rectangle
}

// Option modifies a Window during creation.
type Option func(*Window)

// WithScale sets how many screen pixels one logical unit covers.
func WithScale(scale float64) Option { return func(w *Window) { w.scale = scale } }

// WithOutputDir sets where Ctrl+S and Ctrl+P write their files.
func WithOutputDir(dir string) Option { return func(w *Window) { w.outputDir = dir } }

// WithThicknessOptions sets the widths cycled by [ and ].
func WithThicknessOptions(opts []float64) Option {
	return func(w *Window) { w.thickness = append([]float64(nil), opts...) }
}

// WithNotifier sets the desktop notifier used after saves and copies.
func WithNotifier(n *notify.Notifier) Option { return func(w *Window) { w.notifier = n } }

// WithLogger sets the logger for saves, copies and failures.
func WithLogger(l *log.Logger) Option { return func(w *Window) { w.logger = l } }

// WithColors sets the checkerboard and shortcut bar colours.
func WithColors(light, dark, bar color.RGBA) Option {
	return func(w *Window) { w.light, w.dark, w.barBG = light, dark, bar }
}

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(w *Window) { w.onClose = fn } }

// New creates a Window for s. Session notifications start requesting
// repaints immediately.
func New(s *sketch.Session, opts ...Option) *Window {
	w := &Window{
		session:   s,
		scale:     1,
		outputDir: ".",
		thickness: []float64{2, 5, 10},
		light:     color.RGBA{R: 220, G: 220, B: 220, A: 255},
		dark:      color.RGBA{R: 192, G: 192, B: 192, A: 255},
		barBG:     color.RGBA{R: 220, G: 220, B: 220, A: 255},
		copyPNG:   clipboard.WritePNG,
		updateCh:  make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(w)
	}
	if w.scale <= 0 || math.IsNaN(w.scale) {
		w.scale = 1
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	cw, ch := s.Size()
	w.canvasRect = image.Rect(0, 0, int(math.Round(float64(cw)*w.scale)), int(math.Round(float64(ch)*w.scale)))
	w.shortcuts = layoutShortcuts(w.canvasRect.Max.Y)
	w.unsub = s.Subscribe(func(sketch.Change) { w.NotifyChanged() })
	return w
}

// NotifyChanged requests a repaint. Bursts of requests collapse into one.
func (w *Window) NotifyChanged() {
	select {
	case w.updateCh <- struct{}{}:
	default:
	}
}

// Bounds returns the initial window size: the canvas plus the shortcut bar.
func (w *Window) Bounds() image.Point {
	width := w.canvasRect.Dx()
	if n := len(w.shortcuts); n > 0 {
		if bw := w.shortcuts[n-1].rect.Max.X + 4; bw > width {
			width = bw
		}
	}
	return image.Pt(width, w.canvasRect.Dy()+barHeight)
}

// toCanvas converts window pixels to logical canvas coordinates.
func (w *Window) toCanvas(x, y float32) (float64, float64) {
	return float64(x) / w.scale, float64(y) / w.scale
}

func (w *Window) inCanvas(x, y float32) bool {
	return image.Pt(int(math.Floor(float64(x))), int(math.Floor(float64(y)))).In(w.canvasRect)
}

func (w *Window) setMessage(format string, args ...any) {
	w.message = fmt.Sprintf(format, args...)
	w.msgUntil = time.Now().Add(messageDuration)
	w.logger.Info(w.message)
}

// statusText is shown to the right of the bar buttons.
func (w *Window) statusText(now time.Time) string {
	if w.message != "" && now.Before(w.msgUntil) {
		return w.message
	}
	if glyph, _, ok := w.session.Armed(); ok {
		return "placing " + glyph
	}
	return fmt.Sprintf("%gpx", w.session.Thickness())
}

// handleAction runs a named action and reports whether the window should
// close.
func (w *Window) handleAction(action string) bool {
	switch action {
	case ActionUndo:
		w.session.Undo()
	case ActionRedo:
		w.session.Redo()
	case ActionClear:
		w.session.Clear()
	case ActionThinner:
		w.session.SelectThickness(nextThickness(w.thickness, w.session.Thickness(), -1))
	case ActionThicker:
		w.session.SelectThickness(nextThickness(w.thickness, w.session.Thickness(), 1))
	case ActionDisarm:
		w.session.Disarm()
	case ActionSave, ActionPDF:
		w.save(action == ActionPDF)
	case ActionCopy:
		w.copy()
	case ActionQuit:
		return true
	}
	return false
}

func (w *Window) save(pdf bool) {
	var (
		res sketch.ExportResult
		err error
	)
	if pdf {
		res, err = w.session.ExportPDF()
	} else {
		res, err = w.session.Export()
	}
	if err != nil {
		w.logger.Error("export failed", "err", err)
		w.setMessage("export failed")
		return
	}
	saved, err := export.Save(filepath.Join(w.outputDir, res.Filename), res.Data)
	if err != nil {
		w.logger.Error("save failed", "err", err)
		w.setMessage("save failed")
		return
	}
	w.setMessage("saved %s", saved)
	w.notifier.Export(saved)
}

func (w *Window) copy() {
	res, err := w.session.Export()
	if err != nil {
		w.logger.Error("export failed", "err", err)
		w.setMessage("copy failed")
		return
	}
	if err := w.copyPNG(res.Data); err != nil {
		w.logger.Error("copy failed", "err", err)
		w.setMessage("copy failed")
		return
	}
	w.setMessage("drawing copied to clipboard")
	w.notifier.Copy(res.Filename)
}

// handleKey forwards a key press. It reports whether the window should close.
func (w *Window) handleKey(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	action, sticker := lookupKey(e)
	if sticker >= 0 {
		if err := w.session.ArmStickerIndex(sticker); err != nil {
			w.logger.Debug("arm sticker", "err", err)
		}
		return false
	}
	if action == "" {
		return false
	}
	return w.handleAction(action)
}

// pointer tracks whether the pointer was last seen over the canvas.
type pointer struct {
	inside bool
	down   bool
	hover  string
}

// handleMouse forwards a mouse event. It reports whether the window should
// close.
func (w *Window) handleMouse(e mouse.Event, p *pointer) bool {
	inside := w.inCanvas(e.X, e.Y)
	x, y := w.toCanvas(e.X, e.Y)
	if p.inside && !inside {
		w.session.PointerLeave()
		p.down = false
	}
	p.inside = inside
	hover := hitShortcut(w.shortcuts, image.Pt(int(e.X), int(e.Y)))
	if hover != p.hover {
		p.hover = hover
		w.NotifyChanged()
	}
	if e.Button != mouse.ButtonLeft && e.Direction != mouse.DirNone {
		return false
	}
	switch e.Direction {
	case mouse.DirPress:
		if inside {
			p.down = true
			w.session.PointerDown(x, y)
			return false
		}
		if hover != "" {
			return w.handleAction(hover)
		}
	case mouse.DirRelease:
		if p.down {
			p.down = false
			w.session.PointerUp()
		}
	case mouse.DirNone:
		if inside {
			w.session.PointerMove(x, y)
		}
	}
	return false
}

func (w *Window) notifyClose() {
	w.closeOnce.Do(func() {
		w.unsub()
		if w.onClose != nil {
			w.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (w *Window) Run() { driver.Main(w.Main) }

// Main runs the event loop on s until the window closes or q is pressed.
func (w *Window) Main(s screen.Screen) {
	b := w.Bounds()
	win, err := s.NewWindow(&screen.NewWindowOptions{Width: b.X, Height: b.Y, Title: "Sketchpad"})
	if err != nil {
		w.logger.Error("new window", "err", err)
		return
	}
	defer win.Release()
	defer w.notifyClose()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-w.updateCh:
				win.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan frameState, 1)
	defer close(paintCh)
	go func() {
		surface := w.session.NewSurface(w.scale)
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			w.publish(ctx, s, win, surface, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	width, height := b.X, b.Y
	var ptr pointer
	for {
		switch e := win.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			win.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := frameState{
				width:  width,
				height: height,
				hover:  ptr.hover,
				status: w.statusText(time.Now()),
			}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if w.handleMouse(e, &ptr) {
				stopPaint()
				return
			}
		case key.Event:
			if w.handleKey(e) {
				stopPaint()
				return
			}
			win.Send(paint.Event{})
		case error:
			w.logger.Error("window", "err", e)
		}
	}
}

func (w *Window) publish(ctx context.Context, s screen.Screen, win screen.Window, surface *canvas.Surface, st frameState) {
	buf, err := s.NewBuffer(image.Point{X: st.width, Y: st.height})
	if err != nil {
		w.logger.Error("new buffer", "err", err)
		return
	}
	defer buf.Release()
	if !w.drawFrame(ctx, buf.RGBA(), surface, st) {
		return
	}
	win.Upload(image.Point{}, buf, buf.Bounds())
	win.Publish()
}
