package main

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/sketchpad/internal/config"
	"github.com/example/sketchpad/internal/script"
	"github.com/example/sketchpad/internal/sketch"
	"github.com/example/sketchpad/internal/window"
)

// isolate points every config search location at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv(config.EnvPath, "")
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := &app{stdin: strings.NewReader(stdin), stdout: &out, stderr: &errOut}
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "drawing.txt")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "sketchpad version dev\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestConfigPrintAndSave(t *testing.T) {
	dir := isolate(t)
	out, _, err := execute(t, "", "config", "print")
	if err != nil {
		t.Fatalf("config print: %v", err)
	}
	if !strings.Contains(out, "width = 256") {
		t.Fatalf("defaults missing from output:\n%s", out)
	}

	out, _, err = execute(t, "", "config", "save")
	if err != nil {
		t.Fatalf("config save: %v", err)
	}
	want := filepath.Join(dir, "xdg", "sketchpad", "config.toml")
	if !strings.Contains(out, want) {
		t.Fatalf("expected save to %s, got %q", want, out)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("config not written: %v", err)
	}
}

func TestBrokenConfigFallsBackToDefaults(t *testing.T) {
	dir := isolate(t)
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("width = -3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, stderr, err := execute(t, "", "--config", bad, "config", "print")
	if err != nil {
		t.Fatalf("config print: %v", err)
	}
	if !strings.Contains(out, "width = 256") {
		t.Fatalf("expected defaults:\n%s", out)
	}
	if !strings.Contains(stderr, "failed to load config") {
		t.Fatalf("expected a warning, got %q", stderr)
	}
}

func TestReplayWritesPNG(t *testing.T) {
	dir := isolate(t)
	path := writeScript(t, dir, "thickness 3\ndown 10 10\nmove 100 100\nup\nsticker #1\ndown 50 50\n")
	target := filepath.Join(dir, "out", "drawing.png")
	_, _, err := execute(t, "", "replay", path, "--output", target)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	f, err := os.Open(target)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 1024 || cfg.Height != 1024 {
		t.Fatalf("export size %dx%d, want 1024x1024", cfg.Width, cfg.Height)
	}
}

func TestReplayUsesConfigSize(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "small.toml")
	if err := os.WriteFile(cfgPath, []byte("width = 10\nheight = 20\nexport_scale = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := writeScript(t, dir, "down 1 1\nup\n")
	target := filepath.Join(dir, "small.png")
	if _, _, err := execute(t, "", "--config", cfgPath, "replay", path, "-o", target); err != nil {
		t.Fatalf("replay: %v", err)
	}
	f, err := os.Open(target)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 20 || cfg.Height != 40 {
		t.Fatalf("export size %dx%d, want 20x40", cfg.Width, cfg.Height)
	}
}

func TestReplayPDFFromStdin(t *testing.T) {
	dir := isolate(t)
	target := filepath.Join(dir, "drawing.pdf")
	if _, _, err := execute(t, "down 1 1\nmove 5 5\nup\n", "replay", "-", "--pdf", "-o", target); err != nil {
		t.Fatalf("replay: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", data[:8])
	}
}

func TestReplayToClipboardOnly(t *testing.T) {
	dir := isolate(t)
	orig := copyExport
	var copied []byte
	copyExport = func(_ *script.FileSink, res sketch.ExportResult) error {
		copied = res.Data
		return nil
	}
	t.Cleanup(func() { copyExport = orig })

	path := writeScript(t, dir, "down 1 1\nup\n")
	if _, _, err := execute(t, "", "replay", path, "--to-clipboard"); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !bytes.HasPrefix(copied, []byte("\x89PNG")) {
		t.Fatal("clipboard did not receive a PNG")
	}
	if _, err := os.Stat(filepath.Join(dir, "sketchpad.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unexpected file written: %v", err)
	}
}

func TestReplayReportsLine(t *testing.T) {
	dir := isolate(t)
	path := writeScript(t, dir, "down 1 1\nsquiggle\n")
	_, _, err := execute(t, "", "replay", path, "-o", filepath.Join(dir, "x.png"))
	if err == nil {
		t.Fatal("expected an error")
	}
	var lerr *script.LineError
	if !errors.As(err, &lerr) || lerr.Line != 2 {
		t.Fatalf("expected line 2 error, got %v", err)
	}
}

func TestInteractive(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "down 1 1\nup\nbogus\nstatus\n", "interactive")
	if err != nil {
		t.Fatalf("interactive: %v", err)
	}
	if !strings.Contains(out, "line 3") {
		t.Fatalf("bad line not reported:\n%s", out)
	}
	if !strings.Contains(out, "committed=1") {
		t.Fatalf("status missing:\n%s", out)
	}
}

func TestDrawOpensWindow(t *testing.T) {
	isolate(t)
	orig := runWindow
	var opened *window.Window
	runWindow = func(w *window.Window) { opened = w }
	t.Cleanup(func() { runWindow = orig })

	if _, _, err := execute(t, "", "draw", "--scale", "2"); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if opened == nil {
		t.Fatal("window was not run")
	}
	if b := opened.Bounds(); b.Y != 512+24 {
		t.Fatalf("window height %d, want %d", b.Y, 512+24)
	}
}
