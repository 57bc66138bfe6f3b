package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"sheetpack/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Targets names the paths a pack run reads from and writes to. Empty fields
// are not checked.
type Targets struct {
	Root      string
	DataPath  string
	SheetPath string
}

// RunAll executes the binary probe and every applicable directory check.
func RunAll(ctx context.Context, cfg *config.Config, targets Targets) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckAseprite(ctx, cfg.AsepriteBinary()))

	if root := strings.TrimSpace(targets.Root); root != "" {
		results = append(results, CheckDirectoryAccess("Source root", root, AccessRead))
	}

	results = append(results, CheckOutputs(targets.DataPath, targets.SheetPath)...)

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir, AccessWrite))
	}
	return results
}

// CheckOutputs verifies the directories receiving the metadata and image
// files accept writes. Both files sharing a directory yield one Result.
func CheckOutputs(dataPath, sheetPath string) []Result {
	dirs := outputDirs(dataPath, sheetPath)
	results := make([]Result, 0, len(dirs))
	for _, dir := range dirs {
		name := "Output directory"
		if len(dirs) > 1 {
			name = "Output directory (" + filepath.Base(dir) + ")"
		}
		results = append(results, CheckDirectoryAccess(name, dir, AccessWrite))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, result := range results {
		if !result.Passed {
			out = append(out, result)
		}
	}
	return out
}

// outputDirs returns the distinct parent directories of the output files.
func outputDirs(paths ...string) []string {
	var dirs []string
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}
