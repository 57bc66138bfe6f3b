// Package watch re-runs a callback when source files under a directory tree
// change.
//
// Events are filtered through doublestar patterns, coalesced for a debounce
// window, and delivered as one change set. A callback still running when the
// next window closes is not started twice; the pending set is retried after
// another window.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"sheetpack/internal/logging"
)

const defaultDebounce = 500 * time.Millisecond

// Editor and OS noise that never triggers a run.
var defaultIgnores = []string{
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// Config holds the parameters for a Watcher.
type Config struct {
	// Root is the directory to watch recursively.
	Root string
	// Patterns select which file paths (relative to Root) trigger a run.
	// Empty means every non-ignored file.
	Patterns []string
	// Ignore lists doublestar patterns for paths, or any of their parent
	// directories, that never trigger a run and are never watched.
	Ignore []string
	// Debounce is the quiet period before OnChange fires. Zero or negative
	// uses 500ms.
	Debounce time.Duration
	// OnChange receives the deduplicated, sorted relative paths that changed.
	OnChange func(ctx context.Context, changed []string) error
	Logger   *slog.Logger
}

// Watcher monitors a tree and fires a debounced callback. Run must be called
// exactly once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	ignores  []string
	debounce time.Duration
	root     string
	logger   *slog.Logger
	dirs     map[string]struct{}
	started  atomic.Bool
}

// SourcePatterns returns the watch patterns selecting files with ext at any
// depth.
func SourcePatterns(ext string) []string {
	if ext == "" {
		return nil
	}
	return []string{"**/*" + ext}
}

// New validates cfg and registers every non-ignored directory under Root.
func New(cfg Config) (*Watcher, error) {
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, errors.New("watch: root directory required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}
	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  ignores,
		debounce: debounce,
		root:     root,
		logger:   logging.NewComponentLogger(cfg.Logger, "watch"),
		dirs:     make(map[string]struct{}),
	}
	if err := w.addDirectories(); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Directories reports how many directories are registered.
func (w *Watcher) Directories() int {
	return len(w.dirs)
}

// Run processes events until ctx is cancelled. It returns nil on
// cancellation and an error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Info("previous run still in progress; deferring", logging.String(logging.FieldEventType, "watch_deferred"))
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Debug("change set ready", logging.Int("paths", len(changed)))
		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil && ctx.Err() == nil {
			logging.WarnWithContext(w.logger, "change handler failed", "watch_callback_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "the sheet may be stale until the next change"),
			)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Debug("close fsnotify failed", logging.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			rel, ok := w.relevant(evt)
			if !ok {
				continue
			}
			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			logging.WarnWithContext(w.logger, "fsnotify error", "watch_error", logging.Error(err))
		}
	}
}

// relevant filters an event and returns the path to record. Directory
// creation and removal count as changes because whole folders of sources can
// be moved in or out with a single event.
func (w *Watcher) relevant(evt fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil {
		rel = evt.Name
	}
	rel = filepath.ToSlash(rel)
	if w.isIgnored(rel) {
		return "", false
	}

	if evt.Has(fsnotify.Create) && w.maybeAddDir(evt.Name) {
		return rel, true
	}
	if evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename) {
		if _, ok := w.dirs[evt.Name]; ok {
			delete(w.dirs, evt.Name)
			return rel, true
		}
	}
	if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
		return "", false
	}
	return rel, w.matchesPatterns(rel)
}

func (w *Watcher) addDirectories() error {
	walkErr := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return err
			}
			logging.WarnWithContext(w.logger, "skipping inaccessible path", "watch_unreadable",
				logging.String("path", path),
				logging.Error(err),
			)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			rel, relErr := filepath.Rel(w.root, path)
			if relErr == nil && w.isIgnored(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		w.dirs[path] = struct{}{}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk directory tree: %w", walkErr)
	}
	return nil
}

// maybeAddDir registers path if it is a new, non-ignored directory, along
// with any directories already created beneath it.
func (w *Watcher) maybeAddDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	added := false
	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, p)
		if relErr == nil && w.isIgnored(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if _, ok := w.dirs[p]; ok {
			return nil
		}
		if addErr := w.fsw.Add(p); addErr != nil {
			logging.WarnWithContext(w.logger, "watch new directory failed", "watch_add_failed",
				logging.String("path", p),
				logging.Error(addErr),
			)
			return filepath.SkipDir
		}
		w.dirs[p] = struct{}{}
		added = true
		return nil
	})
	return added
}

// isIgnored reports whether rel, or any directory above it, matches an
// ignore pattern.
func (w *Watcher) isIgnored(rel string) bool {
	for candidate := rel; candidate != "." && candidate != ""; {
		for _, pat := range w.ignores {
			if matched, err := doublestar.Match(pat, candidate); err == nil && matched {
				return true
			}
		}
		idx := strings.LastIndexByte(candidate, '/')
		if idx < 0 {
			break
		}
		candidate = candidate[:idx]
	}
	return false
}

func (w *Watcher) matchesPatterns(rel string) bool {
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	for _, pat := range w.cfg.Patterns {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
