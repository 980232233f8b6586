package sketch

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/example/sketchpad/internal/canvas"
)

// ErrEmptyGlyph is returned when a sticker glyph is blank.
var ErrEmptyGlyph = errors.New("sticker glyph is empty")

// Mode is the interaction state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrawing
	ModePlacingSticker
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDrawing:
		return "drawing"
	case ModePlacingSticker:
		return "placing-sticker"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Change describes what an intent altered.
type Change int

const (
	// ChangeNone means nothing visible changed.
	ChangeNone Change = iota
	// ChangeTransient means only the object following the pointer changed.
	ChangeTransient
	// ChangeContent means the history changed.
	ChangeContent
)

func (c Change) String() string {
	switch c {
	case ChangeNone:
		return "none"
	case ChangeTransient:
		return "transient"
	case ChangeContent:
		return "content"
	default:
		return fmt.Sprintf("Change(%d)", int(c))
	}
}

const (
	DefaultThickness   = 2
	DefaultStickerSize = 32
)

// Controller turns pointer and tool intents into drawable lifecycle calls.
// It owns the single transient slot: at most one of the in-progress stroke,
// the sticker ghost and the brush preview is set at any time. A Controller
// is not safe for concurrent use; Session serializes access to it.
type Controller struct {
	history *History
	rnd     *rand.Rand

	mode    Mode
	current *Stroke
	ghost   *Sticker
	preview *ToolPreview
	last    canvas.Point

	thickness   float64
	color       color.RGBA
	stickerSize float64
}

// NewController creates an idle controller committing into h. A nil rnd
// uses a randomly seeded source.
func NewController(h *History, rnd *rand.Rand) *Controller {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Controller{
		history:     h,
		rnd:         rnd,
		thickness:   DefaultThickness,
		color:       color.RGBA{A: 255},
		stickerSize: DefaultStickerSize,
	}
}

func (c *Controller) Mode() Mode              { return c.mode }
func (c *Controller) Thickness() float64      { return c.thickness }
func (c *Controller) Color() color.RGBA       { return c.color }
func (c *Controller) StickerSize() float64    { return c.stickerSize }
func (c *Controller) LastPoint() canvas.Point { return c.last }

// Armed returns the glyph and rotation of the sticker being placed.
func (c *Controller) Armed() (glyph string, rotation float64, ok bool) {
	if c.mode != ModePlacingSticker || c.ghost == nil {
		return "", 0, false
	}
	return c.ghost.Glyph, c.ghost.Rotation, true
}

// Transient returns the object painted on top of the committed drawables,
// or nil.
func (c *Controller) Transient() canvas.Paintable {
	switch {
	case c.current != nil:
		return c.current
	case c.ghost != nil:
		return c.ghost
	case c.preview != nil:
		return c.preview
	}
	return nil
}

// PointerDown starts a stroke, or places the armed sticker.
func (c *Controller) PointerDown(p canvas.Point) Change {
	if !p.Finite() {
		return ChangeNone
	}
	c.last = p
	switch c.mode {
	case ModePlacingSticker:
		g := c.ghost
		c.ghost = nil
		c.mode = ModeIdle
		if g == nil {
			return ChangeTransient
		}
		g.Retarget(p)
		c.history.Commit(g)
		return ChangeContent
	case ModeDrawing:
		// The release for the previous stroke never arrived.
		c.commitCurrent()
		c.begin(p)
		return ChangeContent
	default:
		c.begin(p)
		return ChangeTransient
	}
}

func (c *Controller) begin(p canvas.Point) {
	c.preview = nil
	c.current = NewStroke(p, c.thickness, c.color)
	c.mode = ModeDrawing
}

func (c *Controller) commitCurrent() {
	s := c.current
	c.current = nil
	c.mode = ModeIdle
	if s != nil {
		c.history.Commit(s)
	}
}

// PointerMove extends the stroke, moves the ghost or moves the preview.
func (c *Controller) PointerMove(p canvas.Point) Change {
	if !p.Finite() {
		return ChangeNone
	}
	c.last = p
	switch c.mode {
	case ModeDrawing:
		c.current.Append(p)
	case ModePlacingSticker:
		c.ghost.Retarget(p)
	default:
		if c.preview == nil {
			c.preview = &ToolPreview{}
		}
		c.preview.X, c.preview.Y = p.X, p.Y
		c.preview.Thickness = c.thickness
		c.preview.Color = c.color
	}
	return ChangeTransient
}

// PointerUp commits the stroke being drawn.
func (c *Controller) PointerUp() Change {
	if c.mode != ModeDrawing {
		return ChangeNone
	}
	c.commitCurrent()
	return ChangeContent
}

// PointerLeave commits the stroke being drawn and hides the brush preview.
// A sticker ghost stays armed.
func (c *Controller) PointerLeave() Change {
	switch c.mode {
	case ModeDrawing:
		c.commitCurrent()
		return ChangeContent
	case ModeIdle:
		if c.preview != nil {
			c.preview = nil
			return ChangeTransient
		}
	}
	return ChangeNone
}

// SelectThickness sets the brush width for the next stroke. Values that are
// not positive become 1.
func (c *Controller) SelectThickness(n float64) Change {
	if n <= 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		n = 1
	}
	c.thickness = n
	if c.preview != nil {
		c.preview.Thickness = n
		return ChangeTransient
	}
	return ChangeNone
}

// SelectColor sets the colour for the next drawable.
func (c *Controller) SelectColor(col color.RGBA) Change {
	c.color = col
	if c.preview != nil {
		c.preview.Color = col
		return ChangeTransient
	}
	return ChangeNone
}

// SetStickerSize sets the size of stickers armed from now on.
func (c *Controller) SetStickerSize(size float64) {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		size = DefaultStickerSize
	}
	c.stickerSize = size
}

// ArmSticker picks a rotation and shows a ghost of glyph at the last pointer
// position until the next PointerDown places it. A stroke being drawn is
// committed first.
func (c *Controller) ArmSticker(glyph string) (Change, error) {
	glyph = strings.TrimSpace(glyph)
	if glyph == "" {
		return ChangeNone, ErrEmptyGlyph
	}
	change := ChangeTransient
	if c.mode == ModeDrawing {
		c.commitCurrent()
		change = ChangeContent
	}
	c.preview = nil
	c.ghost = NewSticker(glyph, c.last, c.randomRotation(), c.stickerSize, c.color)
	c.mode = ModePlacingSticker
	return change, nil
}

func (c *Controller) randomRotation() float64 {
	r := c.rnd.Float64() * 360
	if r >= 360 {
		r = 0
	}
	return r
}

// Disarm drops the sticker ghost without placing it.
func (c *Controller) Disarm() Change {
	if c.mode != ModePlacingSticker {
		return ChangeNone
	}
	c.ghost = nil
	c.mode = ModeIdle
	return ChangeTransient
}

// Clear discards any stroke or ghost in progress and empties the history.
func (c *Controller) Clear() Change {
	c.current = nil
	c.ghost = nil
	c.mode = ModeIdle
	c.history.Clear()
	return ChangeContent
}

func (c *Controller) Undo() Change {
	if c.history.Undo() {
		return ChangeContent
	}
	return ChangeNone
}

func (c *Controller) Redo() Change {
	if c.history.Redo() {
		return ChangeContent
	}
	return ChangeNone
}
