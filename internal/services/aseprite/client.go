package aseprite

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"sheetpack/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithOutput forwards every stdout/stderr line from Aseprite to fn.
func WithOutput(fn func(string)) Option {
	return func(c *Client) {
		c.onOutput = fn
	}
}

// Client wraps Aseprite CLI interactions.
type Client struct {
	binary   string
	timeout  time.Duration
	exec     Executor
	onOutput func(string)
}

// New constructs an Aseprite client. A zero timeout waits indefinitely.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("aseprite binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary reports the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

// Command builds the invocation for req using the client's binary.
func (c *Client) Command(req Request) Command {
	return BuildCommand(c.binary, req)
}

// Run executes cmd and blocks until Aseprite exits.
func (c *Client) Run(ctx context.Context, cmd Command) error {
	binary := cmd.Binary
	if binary == "" {
		binary = c.binary
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := expandInputs(cmd.Args, cmd.Inputs)
	if err := c.exec.Run(runCtx, binary, args, c.onOutput); err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			return services.Wrap(services.ErrNotFound, "aseprite", "run", fmt.Sprintf("binary %q not found", binary), err)
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			return services.Wrap(services.ErrTimeout, "aseprite", "run", fmt.Sprintf("exceeded %s", c.timeout), err)
		default:
			return services.Wrap(services.ErrExternalTool, "aseprite", "run", "", err)
		}
	}
	return nil
}

// expandInputs replaces each input glob in args with the files it matches.
// A pattern matching nothing is passed through so Aseprite reports it.
func expandInputs(args, inputs []string) []string {
	if len(inputs) == 0 {
		return slices.Clone(args)
	}
	globs := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		globs[in] = struct{}{}
	}
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if _, ok := globs[arg]; !ok {
			out = append(out, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			out = append(out, arg)
			continue
		}
		slices.Sort(matches)
		out = append(out, matches...)
	}
	return out
}

// maxOutputLine bounds a single line of Aseprite output.
const maxOutputLine = 4 << 20

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once
	var mu sync.Mutex

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxOutputLine)
		for scanner.Scan() {
			line := scanner.Text()
			mu.Lock()
			if onOutput != nil {
				onOutput(line)
			} else {
				fmt.Fprintln(os.Stderr, line)
			}
			mu.Unlock()
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
