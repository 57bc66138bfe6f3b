package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetpack/internal/preflight"
	"sheetpack/internal/services"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [root]",
		Short: "Check the Aseprite install and directory access",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			targets := preflight.Targets{}
			if len(args) == 1 {
				targets.Root = args[0]
			}

			w := newStatusWriter(cmd.OutOrStdout())

			w.section("Configuration")
			configDetail := ctx.configPath
			if !ctx.configSeen {
				configDetail = "defaults (no config file found)"
			}
			w.line("Config", statusInfo, configDetail)
			w.line("Source extension", statusInfo, cfg.Pack.Extension)
			w.line("Filename format", statusInfo, cfg.Pack.FilenameFormat)

			w.section("Dependencies")
			w.lines(dependencyLines(preflight.CheckSystemDeps(cfg), w.colorize))

			results := preflight.RunAll(cmd.Context(), cfg, targets)
			w.section("Checks")
			w.lines(checkLines(results, w.colorize))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrValidation, "status", "checks",
					fmt.Sprintf("%d of %d checks failed", len(failed), len(results)), nil)
			}
			return nil
		},
	}
}
