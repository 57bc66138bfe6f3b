package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sheetpack/internal/logging"
	"sheetpack/internal/pack"
	"sheetpack/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var padding bool

	cmd := &cobra.Command{
		Use:   "watch <root> <data.json> <sheet.png>",
		Short: "Pack once, then re-pack whenever sources change",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			packer, cfg, err := ctx.newPacker(cmd, out)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			req := pack.Request{
				Root:      args[0],
				DataPath:  args[1],
				SheetPath: args[2],
				Padding:   paddingEnabled(cmd, padding, cfg.Pack.Padding),
			}
			run := func(runCtx context.Context) error {
				result, err := packer.Pack(runCtx, req)
				if err != nil {
					return err
				}
				if result.Executed && result.Summary != nil {
					fmt.Fprintf(out, "Wrote %s (%s)\n", req.SheetPath, result.Summary.String())
				}
				return nil
			}

			if err := run(cmd.Context()); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logging.WarnWithContext(logger, "initial pack failed; waiting for changes", "watch_initial_failed",
					logging.Error(err),
				)
			}

			watcher, err := watch.New(watch.Config{
				Root:     req.Root,
				Patterns: watch.SourcePatterns(cfg.Pack.Extension),
				Ignore:   cfg.Pack.Ignore,
				Debounce: cfg.Watch.Debounce(),
				Logger:   logger,
				OnChange: func(runCtx context.Context, changed []string) error {
					fmt.Fprintf(out, "Changed: %s\n", strings.Join(changed, ", "))
					return run(runCtx)
				},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", req.Root)
			return watcher.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&padding, "padding", false, "Add border and shape padding around each frame")
	return cmd
}
