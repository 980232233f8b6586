package window

import (
	"image"
	"image/color"
	"image/draw"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"
)

const barHeight = 24

// Action names bound to keys and bar buttons.
const (
	ActionUndo    = "undo"
	ActionRedo    = "redo"
	ActionClear   = "clear"
	ActionThinner = "thinner"
	ActionThicker = "thicker"
	ActionSave    = "save"
	ActionPDF     = "pdf"
	ActionCopy    = "copy"
	ActionDisarm  = "disarm"
	ActionQuit    = "quit"
)

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

type binding struct {
	action string
	keys   []KeyShortcut
}

var bindings = []binding{
	{ActionUndo, []KeyShortcut{{Rune: 'u'}, {Rune: 'z', Modifiers: key.ModControl}}},
	{ActionRedo, []KeyShortcut{{Rune: 'r'}, {Rune: 'y', Modifiers: key.ModControl}}},
	{ActionClear, []KeyShortcut{{Rune: 'c'}}},
	{ActionThinner, []KeyShortcut{{Rune: '['}}},
	{ActionThicker, []KeyShortcut{{Rune: ']'}}},
	{ActionSave, []KeyShortcut{{Rune: 's', Modifiers: key.ModControl}}},
	{ActionPDF, []KeyShortcut{{Rune: 'p', Modifiers: key.ModControl}}},
	{ActionCopy, []KeyShortcut{{Rune: 'c', Modifiers: key.ModControl}}},
	{ActionDisarm, []KeyShortcut{{Code: key.CodeEscape}}},
	{ActionQuit, []KeyShortcut{{Rune: 'q'}}},
}

var keyboardAction = func() map[KeyShortcut]string {
	m := make(map[KeyShortcut]string)
	for _, b := range bindings {
		for _, k := range b.keys {
			m[k] = b.action
		}
	}
	return m
}()

// lookupKey maps a key press to an action name, or to a sticker slot for the
// digits 1-9. It returns "" and -1 for unbound keys.
func lookupKey(e key.Event) (action string, sticker int) {
	mods := e.Modifiers &^ key.ModShift
	r := unicode.ToLower(e.Rune)
	if mods&key.ModControl != 0 && r > 0 && r < 27 {
		// Some drivers report control characters for Ctrl+letter.
		r += 'a' - 1
	}
	if r >= '1' && r <= '9' && mods == 0 {
		return "", int(r - '1')
	}
	ks := KeyShortcut{Rune: r, Modifiers: mods}
	if r <= 0 {
		ks = KeyShortcut{Code: e.Code, Modifiers: mods}
	}
	return keyboardAction[ks], -1
}

// nextThickness steps through options from current. dir is +1 or -1; the
// walk wraps at both ends.
func nextThickness(options []float64, current float64, dir int) float64 {
	if len(options) == 0 {
		return current
	}
	idx := -1
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if dir > 0 {
			for _, o := range options {
				if o > current {
					return o
				}
			}
			return options[0]
		}
		for i := len(options) - 1; i >= 0; i-- {
			if options[i] < current {
				return options[i]
			}
		}
		return options[len(options)-1]
	}
	idx = (idx + dir + len(options)) % len(options)
	return options[idx]
}

// shortcut is a labelled button in the bar below the canvas.
type shortcut struct {
	label  string
	action string
	rect   image.Rectangle
}

var barShortcuts = []shortcut{
	{label: "U:undo", action: ActionUndo},
	{label: "R:redo", action: ActionRedo},
	{label: "C:clear", action: ActionClear},
	{label: "[ ]:size", action: ActionThicker},
	{label: "^S:png", action: ActionSave},
	{label: "^P:pdf", action: ActionPDF},
	{label: "^C:copy", action: ActionCopy},
	{label: "Q:quit", action: ActionQuit},
}

// layoutShortcuts positions the bar buttons for a bar starting at top.
func layoutShortcuts(top int) []shortcut {
	out := make([]shortcut, len(barShortcuts))
	copy(out, barShortcuts)
	meas := &font.Drawer{Face: basicfont.Face7x13}
	x := 4
	y := top + 16
	for i := range out {
		w := meas.MeasureString(out[i].label).Ceil()
		out[i].rect = image.Rect(x-2, y-14, x+w+2, y+4)
		x = out[i].rect.Max.X + 8
	}
	return out
}

// hitShortcut returns the action of the button under p.
func hitShortcut(shortcuts []shortcut, p image.Point) string {
	for _, sc := range shortcuts {
		if p.In(sc.rect) {
			return sc.action
		}
	}
	return ""
}

func drawShortcuts(dst *image.RGBA, shortcuts []shortcut, hover string, status string, bg color.Color) {
	if len(shortcuts) == 0 {
		return
	}
	top := shortcuts[0].rect.Min.Y - 2
	draw.Draw(dst, image.Rect(0, top, dst.Bounds().Dx(), top+barHeight), &image.Uniform{bg}, image.Point{}, draw.Src)
	x := 0
	for _, sc := range shortcuts {
		col := color.RGBA{R: 200, G: 200, B: 200, A: 255}
		if sc.action == hover {
			col = color.RGBA{R: 180, G: 180, B: 180, A: 255}
		}
		draw.Draw(dst, sc.rect, &image.Uniform{col}, image.Point{}, draw.Src)
		drawRect(dst, sc.rect, color.Black)
		d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13,
			Dot: fixed.P(sc.rect.Min.X+2, sc.rect.Min.Y+14)}
		d.DrawString(sc.label)
		x = sc.rect.Max.X
	}
	if status != "" {
		d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13,
			Dot: fixed.P(x+12, top+18)}
		d.DrawString(status)
	}
}

func drawRect(dst *image.RGBA, r image.Rectangle, col color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.Set(x, r.Min.Y, col)
		dst.Set(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.Set(r.Min.X, y, col)
		dst.Set(r.Max.X-1, y, col)
	}
}
