package notify

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/sketchpad/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
}

func capture(n *Notifier, err error) *[]sent {
	var out []sent
	n.send = func(title, body string, opts platform.Options) error {
		out = append(out, sent{title, body, opts})
		return err
	}
	return &out
}

func TestDisabledEventsAreSilent(t *testing.T) {
	n := New(DefaultPreferences(), nil)
	got := capture(n, nil)
	n.Export("sketchpad.png")
	n.Copy("sketchpad.png")
	if len(*got) != 0 {
		t.Fatalf("sent %d notifications while disabled", len(*got))
	}
}

func TestExportUsesPNGAsIcon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sketchpad.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	n := New(DefaultPreferences(), nil)
	n.Enable(EventExport, true)
	got := capture(n, nil)
	n.Export(path)
	if len(*got) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(*got))
	}
	s := (*got)[0]
	if s.title != "Sketchpad" || s.body != "Saved "+path {
		t.Fatalf("unexpected notification %+v", s)
	}
	if s.opts.IconPath != path {
		t.Fatalf("icon %q, want %q", s.opts.IconPath, path)
	}
}

func TestCopyDefaultsDetail(t *testing.T) {
	n := New(DefaultPreferences(), nil)
	n.Enable(EventCopy, true)
	got := capture(n, errors.New("no bus"))
	n.Copy(" ")
	if len(*got) != 1 || (*got)[0].body != "Copied drawing to clipboard" {
		t.Fatalf("unexpected notifications %+v", *got)
	}
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("SKETCHPAD_NOTIFY_TITLE", "Doodles")
	t.Setenv("SKETCHPAD_NOTIFY_EXPORT_TEXT", "Wrote %s")
	prefs := LoadPreferences()
	if prefs.Title != "Doodles" {
		t.Fatalf("title %q", prefs.Title)
	}
	if prefs.Events[EventExport].Template != "Wrote %s" {
		t.Fatalf("template %q", prefs.Events[EventExport].Template)
	}
	if prefs.Events[EventCopy].Template == "" {
		t.Fatal("copy template lost")
	}
}
