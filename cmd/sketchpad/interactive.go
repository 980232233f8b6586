package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/sketchpad/internal/script"
	"github.com/example/sketchpad/internal/window"
)

func newInteractiveCmd(a *app) *cobra.Command {
	var (
		showWindow bool
		scale      float64
	)
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Read drawing commands from stdin",
		Long:  "Read script lines from stdin and apply them to one drawing. Failing lines are reported and skipped.\nWith --window the drawing is also shown and can be edited with the mouse.\n\n" + scriptHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}
			sink := &script.FileSink{Dir: a.cfg.OutputDir, Notifier: a.newNotifier()}
			out := cmd.OutOrStdout()
			run := func(ctx context.Context) error {
				fmt.Fprintln(out, "Enter commands (type 'exit' to quit)")
				return script.Run(ctx, s, cmd.InOrStdin(), sink,
					script.WithOutput(out),
					script.WithPrompt("> "),
					script.ContinueOnError(),
				)
			}
			if !showWindow {
				return run(cmd.Context())
			}

			// The window owns the main goroutine; commands run beside it and
			// stop when it closes.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			errCh := make(chan error, 1)
			go func() { errCh <- run(ctx) }()
			runWindow(a.newWindow(s, "", scale, window.WithOnClose(cancel)))
			cancel()
			select {
			case err := <-errCh:
				if err != nil && ctx.Err() == nil {
					return err
				}
			default:
				// Blocked reading stdin.
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showWindow, "window", false, "show the drawing in a window while reading commands")
	cmd.Flags().Float64Var(&scale, "scale", 1, "screen pixels per canvas unit")
	return cmd
}
