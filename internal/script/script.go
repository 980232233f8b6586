// Package script drives a sketch session from line-oriented text commands.
// It backs the replay and interactive commands and doubles as a headless
// collaborator for tests.
package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/sketchpad/internal/canvas"
	"github.com/example/sketchpad/internal/sketch"
)

// ErrUnknownCommand is returned for a line whose first word is not a command.
var ErrUnknownCommand = errors.New("unknown command")

// LineError ties a failure to the script line that caused it.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Sink performs the side effects a script asks for.
type Sink interface {
	// WriteFile stores an export and returns where it ended up.
	WriteFile(path string, res sketch.ExportResult) (string, error)
	// Copy places an export on the clipboard.
	Copy(res sketch.ExportResult) error
}

type options struct {
	out             io.Writer
	prompt          string
	continueOnError bool
}

// Option configures Run.
type Option func(*options)

// WithOutput sets where status lines and messages are written.
func WithOutput(w io.Writer) Option { return func(o *options) { o.out = w } }

// WithPrompt prints prompt before reading each line.
func WithPrompt(prompt string) Option { return func(o *options) { o.prompt = prompt } }

// ContinueOnError reports failing lines to the output and keeps going.
func ContinueOnError() Option { return func(o *options) { o.continueOnError = true } }

// Run executes every line of r against s. Blank lines and lines starting
// with # are skipped; "exit" or "quit" stops early. Cancelling ctx stops the
// run before the next line.
func Run(ctx context.Context, s *sketch.Session, r io.Reader, sink Sink, opts ...Option) error {
	o := options{out: io.Discard}
	for _, fn := range opts {
		fn(&o)
	}
	ex := &executor{session: s, sink: sink, out: o.out}
	scanner := bufio.NewScanner(r)
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if o.prompt != "" {
			fmt.Fprint(o.out, o.prompt)
		}
		if !scanner.Scan() {
			break
		}
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		done, err := ex.exec(text)
		if err != nil {
			lerr := &LineError{Line: line, Text: text, Err: err}
			if !o.continueOnError {
				return lerr
			}
			fmt.Fprintln(o.out, lerr)
		}
		if done {
			return nil
		}
	}
	return scanner.Err()
}

type executor struct {
	session *sketch.Session
	sink    Sink
	out     io.Writer
}

func (e *executor) exec(line string) (bool, error) {
	args := strings.Fields(line)
	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "exit", "quit":
		return true, nil
	case "down", "move":
		p, err := point(rest)
		if err != nil {
			return false, err
		}
		if cmd == "down" {
			e.session.PointerDown(p.X, p.Y)
		} else {
			e.session.PointerMove(p.X, p.Y)
		}
	case "up":
		e.session.PointerUp()
	case "leave":
		e.session.PointerLeave()
	case "thickness":
		if len(rest) != 1 {
			return false, fmt.Errorf("thickness needs one value")
		}
		n, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return false, fmt.Errorf("invalid thickness %q: %w", rest[0], err)
		}
		e.session.SelectThickness(n)
	case "color":
		if len(rest) != 1 {
			return false, fmt.Errorf("color needs one value")
		}
		return false, e.session.SelectColor(rest[0])
	case "sticker":
		if len(rest) != 1 {
			return false, fmt.Errorf("sticker needs a glyph or #index")
		}
		if idx, ok := strings.CutPrefix(rest[0], "#"); ok && idx != "" {
			n, err := strconv.Atoi(idx)
			if err != nil {
				return false, fmt.Errorf("invalid sticker index %q: %w", rest[0], err)
			}
			return false, e.session.ArmStickerIndex(n - 1)
		}
		return false, e.session.ArmSticker(rest[0])
	case "custom":
		return false, e.session.AddCustomSticker(strings.Join(rest, " "))
	case "disarm":
		e.session.Disarm()
	case "undo":
		e.session.Undo()
	case "redo":
		e.session.Redo()
	case "clear":
		e.session.Clear()
	case "export", "pdf":
		return false, e.export(cmd == "pdf", rest)
	case "copy":
		res, err := e.session.Export()
		if err != nil {
			return false, err
		}
		if err := e.sink.Copy(res); err != nil {
			return false, fmt.Errorf("copy PNG to clipboard: %w", err)
		}
		fmt.Fprintln(e.out, "copied drawing to clipboard")
	case "status":
		fmt.Fprintln(e.out, FormatStatus(e.session.Status()))
	default:
		return false, fmt.Errorf("%w %q", ErrUnknownCommand, cmd)
	}
	return false, nil
}

func (e *executor) export(pdf bool, rest []string) error {
	var (
		res sketch.ExportResult
		err error
	)
	if pdf {
		res, err = e.session.ExportPDF()
	} else {
		res, err = e.session.Export()
	}
	if err != nil {
		return err
	}
	path := res.Filename
	if len(rest) > 0 {
		path = strings.Join(rest, " ")
	}
	saved, err := e.sink.WriteFile(path, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "saved %s\n", saved)
	return nil
}

func point(args []string) (canvas.Point, error) {
	if len(args) != 2 {
		return canvas.Point{}, fmt.Errorf("expected X Y, got %d values", len(args))
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return canvas.Point{}, fmt.Errorf("invalid x %q: %w", args[0], err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return canvas.Point{}, fmt.Errorf("invalid y %q: %w", args[1], err)
	}
	return canvas.Pt(x, y), nil
}

// FormatStatus renders a session summary on one line.
func FormatStatus(st sketch.Status) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "mode=%s committed=%d redo=%d thickness=%g color=%s",
		st.Mode, st.Committed, st.Redo, st.Thickness, canvas.Hex(st.Color))
	if st.Armed != "" {
		fmt.Fprintf(&sb, " armed=%s rotation=%.1f", st.Armed, st.Rotation)
	}
	fmt.Fprintf(&sb, " stickers=%s", strings.Join(st.Stickers, ","))
	return sb.String()
}
