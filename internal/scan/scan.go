package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"sheetpack/internal/logging"
	"sheetpack/internal/services"
)

// Directory is a directory that directly contains source files.
type Directory struct {
	Path    string   `json:"path"`
	Sources []string `json:"sources"`
}

// Options tunes a scan.
type Options struct {
	// Extension is the source file suffix. Empty means ".aseprite".
	Extension string
	// Ignore holds doublestar patterns, relative to the root, for directories
	// that are neither recorded nor descended.
	Ignore []string
	// OnMatch is called for each directory as it is discovered.
	OnMatch func(Directory)
	Logger  *slog.Logger
}

const defaultExtension = ".aseprite"

// Scan walks root top-down in lexical order and returns every directory whose
// direct file list contains a name ending with the extension.
func Scan(ctx context.Context, root string, opts Options) ([]Directory, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "scan", "root", fmt.Sprintf("cannot read %q", root), err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "scan", "root", fmt.Sprintf("%q is not a directory", root), nil)
	}

	ext := opts.Extension
	if ext == "" {
		ext = defaultExtension
	}
	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, services.Wrap(services.ErrConfiguration, "scan", "ignore", fmt.Sprintf("invalid pattern %q", pattern), nil)
		}
	}
	logger := logging.NewComponentLogger(opts.Logger, "scan")

	var matched []Directory
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			logging.WarnWithContext(logger, "skipping unreadable path", "scan_unreadable",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "sources below this path are not packed"),
				logging.String(logging.FieldErrorHint, "check directory permissions"),
			)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignored(root, path, opts.Ignore) {
			logger.Debug("ignoring directory", logging.String("path", path))
			return filepath.SkipDir
		}

		sources, err := sourcesIn(path, ext)
		if err != nil {
			logging.WarnWithContext(logger, "skipping unreadable directory", "scan_unreadable",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "sources in this directory are not packed"),
				logging.String(logging.FieldErrorHint, "check directory permissions"),
			)
			return filepath.SkipDir
		}
		if len(sources) == 0 {
			return nil
		}

		dir := Directory{Path: path, Sources: sources}
		matched = append(matched, dir)
		logger.Debug("source directory matched", logging.String("path", path), logging.Int("sources", len(sources)))
		if opts.OnMatch != nil {
			opts.OnMatch(dir)
		}
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, services.Wrap(services.ErrValidation, "scan", "walk", root, walkErr)
	}
	return matched, nil
}

// Paths returns the directory paths in scan order.
func Paths(dirs []Directory) []string {
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		out = append(out, dir.Path)
	}
	return out
}

func sourcesIn(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var sources []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ext) {
			sources = append(sources, entry.Name())
		}
	}
	return sources, nil
}

func ignored(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	normalized := filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if matched, matchErr := doublestar.Match(pattern, normalized); matchErr == nil && matched {
			return true
		}
	}
	return false
}
