package pack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"sheetpack/internal/config"
	"sheetpack/internal/logging"
	"sheetpack/internal/scan"
	"sheetpack/internal/services"
	"sheetpack/internal/services/aseprite"
	"sheetpack/internal/sheet"
)

// LockSuffix is appended to the metadata path to form the output lock file.
const LockSuffix = ".lock"

// Request describes one pack run.
type Request struct {
	Root      string
	DataPath  string
	SheetPath string
	Padding   bool
	// DryRun prints the command instead of running it.
	DryRun bool
}

// Result reports what a pack run did.
type Result struct {
	RunID       string           `json:"run_id"`
	Root        string           `json:"root"`
	DataPath    string           `json:"data"`
	SheetPath   string           `json:"sheet"`
	Directories []scan.Directory `json:"directories"`
	Command     aseprite.Command `json:"command"`
	Executed    bool             `json:"executed"`
	Elapsed     time.Duration    `json:"elapsed_ns"`
	Summary     *sheet.Summary   `json:"summary,omitempty"`
}

// Option configures a Packer.
type Option func(*Packer)

// WithProgress sets the writer receiving the human-readable progress lines.
func WithProgress(w io.Writer) Option {
	return func(p *Packer) {
		if w != nil {
			p.progress = w
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Packer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Packer composes the scanner and the aseprite client.
type Packer struct {
	cfg      *config.Config
	client   *aseprite.Client
	logger   *slog.Logger
	progress io.Writer
}

// New constructs a Packer.
func New(cfg *config.Config, client *aseprite.Client, opts ...Option) (*Packer, error) {
	if cfg == nil || client == nil {
		return nil, errors.New("packer requires config and aseprite client")
	}
	p := &Packer{
		cfg:      cfg,
		client:   client,
		logger:   logging.NewNop(),
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "pack")
	return p, nil
}

// Pack scans req.Root and dispatches a single aseprite invocation covering
// every matched directory. An empty match set still invokes Aseprite unless
// pack.skip_empty is set, in which case the Result has Executed false.
func (p *Packer) Pack(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{
		RunID:     uuid.NewString(),
		Root:      req.Root,
		DataPath:  req.DataPath,
		SheetPath: req.SheetPath,
	}
	ctx = services.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, p.logger)

	fmt.Fprintf(p.progress, "Packing sprites into '%s' and '%s' from:\n", req.DataPath, req.SheetPath)

	scanCtx := services.WithPhase(ctx, "scan")
	dirs, err := scan.Scan(scanCtx, req.Root, scan.Options{
		Extension: p.cfg.Pack.Extension,
		Ignore:    p.cfg.Pack.Ignore,
		Logger:    logging.WithContext(scanCtx, p.logger),
		OnMatch: func(dir scan.Directory) {
			fmt.Fprintf(p.progress, "- '%s'\n", dir.Path)
		},
	})
	if err != nil {
		return nil, err
	}
	result.Directories = dirs

	inputs := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		inputs = append(inputs, aseprite.InputPattern(dir.Path, p.cfg.Pack.Extension))
	}
	result.Command = p.client.Command(aseprite.Request{
		Inputs:         inputs,
		DataPath:       req.DataPath,
		SheetPath:      req.SheetPath,
		FilenameFormat: p.cfg.Pack.FilenameFormat,
		Padding:        req.Padding,
		BorderPadding:  p.cfg.Pack.BorderPadding,
		ShapePadding:   p.cfg.Pack.ShapePadding,
	})
	logger.Debug("command built",
		logging.Int("directories", len(dirs)),
		logging.String("command", result.Command.String()),
	)

	if len(dirs) == 0 {
		if p.cfg.Pack.SkipEmpty {
			logging.WarnWithContext(logger, "no source directories found; skipping aseprite", "pack_empty",
				logging.String("root", req.Root),
				logging.String(logging.FieldImpact, "no sheet was written"),
				logging.String(logging.FieldErrorHint, "check the root path and pack.extension"),
			)
			result.Elapsed = time.Since(start)
			return result, nil
		}
		logger.Warn("no source directories found; invoking aseprite without inputs",
			logging.String(logging.FieldEventType, "pack_empty"),
			logging.String("root", req.Root),
		)
	}

	if req.DryRun {
		fmt.Fprintln(p.progress, result.Command.String())
		result.Elapsed = time.Since(start)
		return result, nil
	}

	release, err := acquireLock(req.DataPath, logger)
	if err != nil {
		return nil, err
	}
	defer release()

	dispatchCtx := services.WithPhase(ctx, "dispatch")
	if err := p.client.Run(dispatchCtx, result.Command); err != nil {
		if !errors.Is(err, context.Canceled) {
			logging.ErrorWithContext(logging.WithContext(dispatchCtx, p.logger), "aseprite failed", "pack_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run the printed command by hand to see aseprite's output"),
			)
		}
		return nil, err
	}
	result.Executed = true
	result.Elapsed = time.Since(start)

	summary, err := sheet.ReadSummary(req.DataPath, req.SheetPath)
	if err != nil {
		logging.WarnWithContext(logger, "sheet summary unavailable", "summary_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "pack succeeded but the output could not be inspected"),
		)
	} else {
		result.Summary = &summary
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "pack_complete"),
		logging.Int("directories", len(dirs)),
		logging.Duration("elapsed", result.Elapsed),
	}
	if result.Summary != nil {
		attrs = append(attrs,
			logging.Int("frames", result.Summary.Frames),
			logging.String("sheet_size", fmt.Sprintf("%dx%d", result.Summary.Size.W, result.Summary.Size.H)),
			logging.Int64("image_bytes", result.Summary.ImageBytes),
		)
	}
	logger.Info("pack completed", logging.Args(attrs...)...)
	return result, nil
}

// acquireLock takes the output lock next to dataPath. When the lock file
// cannot be created (the output directory does not exist yet) the run
// proceeds unlocked and Aseprite decides whether the outputs are writable.
func acquireLock(dataPath string, logger *slog.Logger) (func(), error) {
	lock := flock.New(dataPath + LockSuffix)
	locked, err := lock.TryLock()
	if err != nil {
		logger.Debug("output lock unavailable; dispatching unlocked",
			logging.String("lock", lock.Path()),
			logging.Error(err),
		)
		return func() {}, nil
	}
	if !locked {
		return nil, services.Wrap(services.ErrBusy, "pack", "lock",
			fmt.Sprintf("another pack is writing %q", dataPath), nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			logger.Debug("release output lock failed", logging.Error(err))
		}
	}, nil
}

func validateRequest(req Request) error {
	switch {
	case strings.TrimSpace(req.Root) == "":
		return services.Wrap(services.ErrValidation, "pack", "request", "root directory required", nil)
	case strings.TrimSpace(req.DataPath) == "":
		return services.Wrap(services.ErrValidation, "pack", "request", "data path required", nil)
	case strings.TrimSpace(req.SheetPath) == "":
		return services.Wrap(services.ErrValidation, "pack", "request", "sheet path required", nil)
	}
	return nil
}
