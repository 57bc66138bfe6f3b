package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sheetpack/internal/scan"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "List directories that contain Aseprite sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			dirs, err := scan.Scan(cmd.Context(), args[0], scan.Options{
				Extension: cfg.Pack.Extension,
				Ignore:    cfg.Pack.Ignore,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				if dirs == nil {
					dirs = []scan.Directory{}
				}
				return writeJSON(cmd, dirs)
			}

			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprintf(out, "No directories with %s files under %s\n", cfg.Pack.Extension, args[0])
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Directory", "Sources", "Files"},
				scanRows(dirs),
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output matched directories as JSON")
	return cmd
}

const maxListedSources = 3

func scanRows(dirs []scan.Directory) [][]string {
	rows := make([][]string, 0, len(dirs))
	for _, dir := range dirs {
		listed := dir.Sources
		suffix := ""
		if len(listed) > maxListedSources {
			suffix = fmt.Sprintf(", +%d more", len(listed)-maxListedSources)
			listed = listed[:maxListedSources]
		}
		rows = append(rows, []string{
			dir.Path,
			strconv.Itoa(len(dir.Sources)),
			strings.Join(listed, ", ") + suffix,
		})
	}
	return rows
}
