package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sheetpack/internal/pack"
)

func newPackCommand(ctx *commandContext) *cobra.Command {
	var padding bool
	var dryRun bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "pack <root> <data.json> <sheet.png>",
		Short: "Pack every Aseprite source under root into one sheet",
		Long: "Scan root for directories holding .aseprite files and run Aseprite once\n" +
			"to write the sheet image and its JSON metadata.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Keep stdout clean for the JSON document.
			var progress io.Writer = cmd.OutOrStdout()
			if jsonOut {
				progress = cmd.ErrOrStderr()
			}
			packer, cfg, err := ctx.newPacker(cmd, progress)
			if err != nil {
				return err
			}

			req := pack.Request{
				Root:      args[0],
				DataPath:  args[1],
				SheetPath: args[2],
				Padding:   paddingEnabled(cmd, padding, cfg.Pack.Padding),
				DryRun:    dryRun,
			}
			result, err := packer.Pack(cmd.Context(), req)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, result)
			}
			if !result.Executed {
				return nil
			}
			out := cmd.OutOrStdout()
			if result.Summary != nil {
				fmt.Fprintf(out, "Wrote %s (%s)\n", req.SheetPath, result.Summary.String())
			} else {
				fmt.Fprintf(out, "Wrote %s\n", req.SheetPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&padding, "padding", false, "Add border and shape padding around each frame")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the Aseprite command without running it")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the run result as JSON")
	return cmd
}

// paddingEnabled lets an explicit --padding flag override pack.padding.
func paddingEnabled(cmd *cobra.Command, flag, configured bool) bool {
	if cmd.Flags().Changed("padding") {
		return flag
	}
	return configured
}
