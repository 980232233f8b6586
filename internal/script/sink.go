package script

import (
	"path/filepath"

	"github.com/example/sketchpad/internal/clipboard"
	"github.com/example/sketchpad/internal/export"
	"github.com/example/sketchpad/internal/notify"
	"github.com/example/sketchpad/internal/sketch"
)

// FileSink saves exports under Dir and copies through the system clipboard.
// A nil Notifier sends no notifications.
type FileSink struct {
	Dir      string
	Notifier *notify.Notifier
}

// WriteFile saves res to path, resolved against Dir when relative.
func (f *FileSink) WriteFile(path string, res sketch.ExportResult) (string, error) {
	if !filepath.IsAbs(path) && f.Dir != "" {
		path = filepath.Join(f.Dir, path)
	}
	saved, err := export.Save(path, res.Data)
	if err != nil {
		return "", err
	}
	f.Notifier.Export(saved)
	return saved, nil
}

// Copy places res on the clipboard.
func (f *FileSink) Copy(res sketch.ExportResult) error {
	if err := clipboard.WritePNG(res.Data); err != nil {
		return err
	}
	f.Notifier.Copy(res.Filename)
	return nil
}
