package main

import (
	"github.com/spf13/cobra"

	"github.com/example/sketchpad/internal/sketch"
	"github.com/example/sketchpad/internal/window"
)

// runWindow blocks until the window closes. Tests replace it.
var runWindow = func(w *window.Window) { w.Run() }

func (a *app) newWindow(s *sketch.Session, output string, scale float64, opts ...window.Option) *window.Window {
	if output == "" {
		output = a.cfg.OutputDir
	}
	opts = append([]window.Option{
		window.WithScale(scale),
		window.WithOutputDir(output),
		window.WithThicknessOptions(a.cfg.ThicknessOptions),
		window.WithNotifier(a.newNotifier()),
		window.WithLogger(a.logger),
		window.WithColors(a.cfg.CheckerLight(), a.cfg.CheckerDark(), a.cfg.BarBackground()),
	}, opts...)
	return window.New(s, opts...)
}

func newDrawCmd(a *app) *cobra.Command {
	var (
		output string
		scale  float64
	)
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Open the drawing window",
		Long: `Open a window showing the canvas.

Drag with the left button to draw. Keys:
  u, Ctrl+Z   undo          r, Ctrl+Y   redo
  c           clear         [ and ]     cycle brush width
  1-9         arm sticker   Esc         put the sticker away
  Ctrl+S      save PNG      Ctrl+P      save PDF
  Ctrl+C      copy PNG      q           quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}
			w := a.newWindow(s, output, scale)
			a.logger.Debug("opening window", "width", a.cfg.Width, "height", a.cfg.Height, "scale", scale)
			runWindow(w)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "directory for saved drawings (default: output_dir from config)")
	cmd.Flags().Float64Var(&scale, "scale", 1, "screen pixels per canvas unit")
	return cmd
}
