package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/example/sketchpad/internal/canvas"
	"github.com/example/sketchpad/internal/config"
	"github.com/example/sketchpad/internal/notify"
	"github.com/example/sketchpad/internal/sketch"
)

// app is the state shared by every command.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath   string
	verbose      bool
	notifyExport bool
	notifyCopy   bool

	logger *log.Logger
	loader *config.Loader
	cfg    *config.Config
}

// newLogger creates a logger writing timestamps as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "sketchpad",
		Short:        "Sketchpad is a freehand drawing canvas with stickers",
		Long:         `Sketchpad draws freehand strokes and rotated emoji stickers on a fixed canvas, with undo, redo and high resolution PNG or PDF export.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if a.verbose {
				level = log.DebugLevel
			}
			a.logger = newLogger(a.stderr, level)
			a.loader = config.NewLoader(version, a.configPath)
			cfg, err := a.loader.Load()
			if err != nil {
				a.logger.Warn("failed to load config, using defaults", "err", err)
				cfg = config.New()
			}
			if cmd.Flags().Changed("notify-export") {
				cfg.Notify.Export = a.notifyExport
			}
			if cmd.Flags().Changed("notify-copy") {
				cfg.Notify.Copy = a.notifyCopy
			}
			a.cfg = cfg
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("sketchpad %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a config file (default: search $XDG_CONFIG_HOME/sketchpad)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	pf.BoolVar(&a.notifyExport, "notify-export", false, "show a desktop notification after saving a drawing")
	pf.BoolVar(&a.notifyCopy, "notify-copy", false, "show a desktop notification after copying to the clipboard")

	root.AddCommand(newDrawCmd(a))
	root.AddCommand(newReplayCmd(a))
	root.AddCommand(newInteractiveCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// newSession builds a session from the loaded configuration.
func (a *app) newSession() (*sketch.Session, error) {
	cfg := a.cfg
	opts := []sketch.Option{
		sketch.WithSize(cfg.Width, cfg.Height),
		sketch.WithExportScale(cfg.ExportScale),
		sketch.WithBackground(cfg.BackgroundColor()),
		sketch.WithThickness(cfg.Thickness),
		sketch.WithColor(cfg.DrawColor()),
		sketch.WithStickers(cfg.Stickers),
		sketch.WithStickerSize(cfg.StickerSize),
		sketch.WithLogger(a.logger),
	}
	if cfg.StickerFont != "" {
		fs, err := canvas.LoadFontFile(cfg.StickerFont)
		if err != nil {
			return nil, fmt.Errorf("sticker_font: %w", err)
		}
		opts = append(opts, sketch.WithFonts(fs))
	}
	return sketch.New(opts...), nil
}

func (a *app) newNotifier() *notify.Notifier {
	n := notify.New(notify.LoadPreferences(), a.logger)
	n.Enable(notify.EventExport, a.cfg.Notify.Export)
	n.Enable(notify.EventCopy, a.cfg.Notify.Copy)
	return n
}
