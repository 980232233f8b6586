package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/sketchpad/internal/script"
	"github.com/example/sketchpad/internal/sketch"
)

const scriptHelp = `Script lines (blank lines and lines starting with # are skipped):
  down X Y | move X Y | up | leave     pointer intents
  thickness N | color VALUE            tool settings
  sticker GLYPH | sticker #N           arm a sticker (N counts from 1)
  custom GLYPH | disarm                extend the set, put the sticker away
  undo | redo | clear
  export [PATH] | pdf [PATH] | copy    write or copy the drawing
  status | exit`

// copyExport places res on the clipboard. Tests replace it.
var copyExport = func(sink *script.FileSink, res sketch.ExportResult) error { return sink.Copy(res) }

func newReplayCmd(a *app) *cobra.Command {
	var (
		output      string
		pdf         bool
		toClipboard bool
	)
	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Run a drawing script and export the result",
		Long:  "Run a drawing script without opening a window, then export the committed drawing.\nUse - to read the script from stdin.\n\n" + scriptHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}
			var r io.Reader
			if args[0] == "-" {
				r = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open script: %w", err)
				}
				defer f.Close()
				r = f
			}

			sink := &script.FileSink{Dir: a.cfg.OutputDir, Notifier: a.newNotifier()}
			if err := script.Run(cmd.Context(), s, r, sink, script.WithOutput(cmd.OutOrStdout())); err != nil {
				return fmt.Errorf("replay %s: %w", args[0], err)
			}

			var res sketch.ExportResult
			if pdf {
				res, err = s.ExportPDF()
			} else {
				res, err = s.Export()
			}
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if toClipboard {
				if err := copyExport(sink, res); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				a.logger.Info("copied drawing to clipboard")
				if output == "" {
					return nil
				}
			}
			path := output
			if path == "" {
				path = res.Filename
			}
			saved, err := sink.WriteFile(path, res)
			if err != nil {
				return err
			}
			a.logger.Info("saved drawing", "path", saved, "items", s.History().Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default: sketchpad.png or sketchpad.pdf in output_dir)")
	cmd.Flags().BoolVar(&pdf, "pdf", false, "export a PDF instead of a PNG")
	cmd.Flags().BoolVar(&toClipboard, "to-clipboard", false, "copy the PNG to the clipboard instead of writing a file unless --output is set")
	return cmd
}
