package sketch

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/example/sketchpad/internal/canvas"
	"github.com/example/sketchpad/internal/export"
)

// ErrNoSticker is returned when a sticker index is out of range.
var ErrNoSticker = errors.New("no such sticker")

// DefaultStickers is the glyph set a new session starts with.
var DefaultStickers = []string{"🙂", "⭐", "🎉"}

// ExportResult is an encoded drawing plus the name it should be saved as.
type ExportResult struct {
	Data     []byte
	Filename string
	MIME     string
}

// Status is a point-in-time summary of a session.
type Status struct {
	Mode      Mode
	Thickness float64
	Color     color.RGBA
	Committed int
	Redo      int
	Armed     string
	Rotation  float64
	Stickers  []string
}

// Session owns one drawing: its history, the interaction state and the tool
// settings. Intents may arrive from one goroutine while another renders.
type Session struct {
	mu       sync.Mutex
	history  *History
	ctrl     *Controller
	stickers []string

	width       int
	height      int
	background  color.RGBA
	thickness   float64
	color       color.RGBA
	stickerSize float64
	exportScale float64
	rnd         *rand.Rand
	fonts       *canvas.FontSet
	exporter    *export.Exporter
	logger      *log.Logger

	listenersMu sync.Mutex
	listeners   map[int]func(Change)
	nextID      int
}

// Option modifies a Session during creation.
type Option func(*Session)

// WithSize sets the logical canvas size.
func WithSize(width, height int) Option {
	return func(s *Session) { s.width, s.height = width, height }
}

// WithThickness sets the initial brush width.
func WithThickness(n float64) Option { return func(s *Session) { s.thickness = n } }

// WithColor sets the initial drawing colour.
func WithColor(col color.RGBA) Option { return func(s *Session) { s.color = col } }

// WithStickers replaces the initial sticker set.
func WithStickers(glyphs []string) Option {
	return func(s *Session) { s.stickers = append([]string(nil), glyphs...) }
}

// WithStickerSize sets the glyph size of stickers in logical units.
func WithStickerSize(size float64) Option { return func(s *Session) { s.stickerSize = size } }

// WithRand sets the source of sticker rotations.
func WithRand(r *rand.Rand) Option { return func(s *Session) { s.rnd = r } }

// WithLogger sets the logger used for history transitions.
func WithLogger(l *log.Logger) Option { return func(s *Session) { s.logger = l } }

// WithExporter replaces the exporter built from the session settings.
func WithExporter(e *export.Exporter) Option { return func(s *Session) { s.exporter = e } }

// WithBackground sets the colour the canvas is cleared to.
func WithBackground(col color.RGBA) Option { return func(s *Session) { s.background = col } }

// WithExportScale sets the linear export factor.
func WithExportScale(scale float64) Option { return func(s *Session) { s.exportScale = scale } }

// WithFonts sets the font set used for sticker glyphs.
func WithFonts(fs *canvas.FontSet) Option { return func(s *Session) { s.fonts = fs } }

// New creates a Session with the provided options.
func New(opts ...Option) *Session {
	s := &Session{
		width:       export.DefaultWidth,
		height:      export.DefaultHeight,
		thickness:   DefaultThickness,
		color:       color.RGBA{A: 255},
		stickerSize: DefaultStickerSize,
		exportScale: export.DefaultScale,
		stickers:    append([]string(nil), DefaultStickers...),
	}
	for _, o := range opts {
		o(s)
	}
	if s.width <= 0 {
		s.width = export.DefaultWidth
	}
	if s.height <= 0 {
		s.height = export.DefaultHeight
	}
	if s.fonts == nil {
		s.fonts = canvas.DefaultFonts()
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.exporter == nil {
		s.exporter = export.New(
			export.WithSize(s.width, s.height),
			export.WithScale(s.exportScale),
			export.WithBackground(s.background),
			export.WithFonts(s.fonts),
		)
	}
	s.stickers = dedupe(s.stickers)
	s.history = NewHistory()
	s.ctrl = NewController(s.history, s.rnd)
	s.ctrl.SelectThickness(s.thickness)
	s.ctrl.SelectColor(s.color)
	s.ctrl.SetStickerSize(s.stickerSize)
	return s
}

func dedupe(glyphs []string) []string {
	out := make([]string, 0, len(glyphs))
	seen := make(map[string]bool, len(glyphs))
	for _, g := range glyphs {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// Subscribe registers fn to be called after every intent that changed what a
// render would show. Calls happen synchronously on the intent's goroutine
// with no session lock held.
func (s *Session) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.listenersMu.Lock()
	if s.listeners == nil {
		s.listeners = make(map[int]func(Change))
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()
	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Session) emit(ch Change) {
	if ch == ChangeNone {
		return
	}
	s.listenersMu.Lock()
	fns := make([]func(Change), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()
	for _, fn := range fns {
		fn(ch)
	}
}

// apply runs fn against the controller under the session lock, then logs
// history transitions and notifies listeners. History listeners are held
// until the lock is released so they may call back into the session.
func (s *Session) apply(op string, fn func(c *Controller) Change) Change {
	s.history.hold()
	s.mu.Lock()
	ch := fn(s.ctrl)
	mode := s.ctrl.Mode()
	s.mu.Unlock()
	s.history.release()
	if ch == ChangeContent {
		s.logger.Debug(op, "committed", s.history.Len(), "redo", s.history.RedoLen(), "mode", mode)
	}
	s.emit(ch)
	return ch
}

// PointerDown handles a press at (x, y).
func (s *Session) PointerDown(x, y float64) {
	s.apply("pointer down", func(c *Controller) Change { return c.PointerDown(canvas.Pt(x, y)) })
}

// PointerMove handles pointer motion to (x, y).
func (s *Session) PointerMove(x, y float64) {
	s.apply("pointer move", func(c *Controller) Change { return c.PointerMove(canvas.Pt(x, y)) })
}

// PointerUp handles a release.
func (s *Session) PointerUp() {
	s.apply("pointer up", func(c *Controller) Change { return c.PointerUp() })
}

// PointerLeave handles the pointer leaving the canvas.
func (s *Session) PointerLeave() {
	s.apply("pointer leave", func(c *Controller) Change { return c.PointerLeave() })
}

// SelectThickness sets the brush width used from the next stroke on.
func (s *Session) SelectThickness(n float64) {
	s.apply("thickness", func(c *Controller) Change { return c.SelectThickness(n) })
}

// SelectColor parses value and uses it from the next drawable on. On error the
// current colour is kept.
func (s *Session) SelectColor(value string) error {
	col, err := canvas.ParseColor(value)
	if err != nil {
		return fmt.Errorf("select color: %w", err)
	}
	s.SetColor(col)
	return nil
}

// SetColor uses col from the next drawable on.
func (s *Session) SetColor(col color.RGBA) {
	s.apply("color", func(c *Controller) Change { return c.SelectColor(col) })
}

// ArmSticker prepares glyph for placement with a freshly chosen rotation.
func (s *Session) ArmSticker(glyph string) error {
	var err error
	s.apply("arm sticker", func(c *Controller) Change {
		var ch Change
		ch, err = c.ArmSticker(glyph)
		return ch
	})
	return err
}

// ArmStickerIndex arms the i-th glyph of the sticker set.
func (s *Session) ArmStickerIndex(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.stickers) {
		n := len(s.stickers)
		s.mu.Unlock()
		return fmt.Errorf("sticker %d of %d: %w", i+1, n, ErrNoSticker)
	}
	glyph := s.stickers[i]
	s.mu.Unlock()
	return s.ArmSticker(glyph)
}

// Disarm abandons the sticker being placed.
func (s *Session) Disarm() {
	s.apply("disarm", func(c *Controller) Change { return c.Disarm() })
}

// AddCustomSticker appends glyph to the sticker set. Adding a glyph that is
// already present does nothing.
func (s *Session) AddCustomSticker(glyph string) error {
	glyph = strings.TrimSpace(glyph)
	if glyph == "" {
		return ErrEmptyGlyph
	}
	s.mu.Lock()
	for _, g := range s.stickers {
		if g == glyph {
			s.mu.Unlock()
			return nil
		}
	}
	s.stickers = append(s.stickers, glyph)
	s.mu.Unlock()
	s.logger.Debug("sticker added", "glyph", glyph)
	s.emit(ChangeTransient)
	return nil
}

// Clear discards everything drawn, including work in progress.
func (s *Session) Clear() {
	s.apply("clear", func(c *Controller) Change { return c.Clear() })
}

// Undo reports whether a drawable was moved to the redo stack.
func (s *Session) Undo() bool {
	return s.apply("undo", func(c *Controller) Change { return c.Undo() }) == ChangeContent
}

// Redo reports whether a drawable was restored.
func (s *Session) Redo() bool {
	return s.apply("redo", func(c *Controller) Change { return c.Redo() }) == ChangeContent
}

// Render repaints surface from the committed history and the transient
// object. Drawables that fail to paint are logged and skipped; the error
// stays on the surface.
func (s *Session) Render(surface *canvas.Surface) {
	s.mu.Lock()
	RenderFull(surface, s.history.Snapshot(), s.ctrl.Transient())
	s.mu.Unlock()
	if err := surface.Err(); err != nil {
		s.logger.Warn("render", "err", err)
	}
}

// NewSurface allocates a surface matching the canvas size at the given scale.
func (s *Session) NewSurface(scale float64) *canvas.Surface {
	return canvas.NewSurface(s.width, s.height,
		canvas.WithScale(scale),
		canvas.WithBackground(s.background),
		canvas.WithFonts(s.fonts),
	)
}

// Export encodes the committed drawables as a PNG at export resolution.
// Work in progress is not included.
func (s *Session) Export() (ExportResult, error) {
	data, err := s.exporter.PNG(Paintables(s.history.Snapshot()))
	if err != nil {
		return ExportResult{}, err
	}
	s.logger.Debug("export", "format", "png", "bytes", len(data))
	return ExportResult{Data: data, Filename: export.PNGFilename, MIME: export.PNGMIME}, nil
}

// ExportPDF encodes the committed drawables as a single page PDF.
func (s *Session) ExportPDF() (ExportResult, error) {
	data, err := s.exporter.PDF(Paintables(s.history.Snapshot()))
	if err != nil {
		return ExportResult{}, err
	}
	s.logger.Debug("export", "format", "pdf", "bytes", len(data))
	return ExportResult{Data: data, Filename: export.PDFFilename, MIME: export.PDFMIME}, nil
}

// History exposes the committed drawables for read access. Mutate through
// the session so transient state and listeners stay in step.
func (s *Session) History() *History { return s.history }

// Size returns the logical canvas size.
func (s *Session) Size() (width, height int) { return s.width, s.height }

// Exporter returns the exporter used by Export and ExportPDF.
func (s *Session) Exporter() *export.Exporter { return s.exporter }

// Stickers returns a copy of the sticker set.
func (s *Session) Stickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stickers...)
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Mode()
}

func (s *Session) Thickness() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Thickness()
}

func (s *Session) Color() color.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Color()
}

// Armed returns the glyph and rotation waiting to be placed.
func (s *Session) Armed() (glyph string, rotation float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Armed()
}

// Status summarises the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	glyph, rot, _ := s.ctrl.Armed()
	return Status{
		Mode:      s.ctrl.Mode(),
		Thickness: s.ctrl.Thickness(),
		Color:     s.ctrl.Color(),
		Committed: s.history.Len(),
		Redo:      s.history.RedoLen(),
		Armed:     glyph,
		Rotation:  rot,
		Stickers:  append([]string(nil), s.stickers...),
	}
}
