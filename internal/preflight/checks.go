package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"sheetpack/internal/config"
	"sheetpack/internal/deps"
)

// Access selects the permissions CheckDirectoryAccess requires.
type Access int

const (
	// AccessRead requires the directory to be listable.
	AccessRead Access = iota
	// AccessWrite requires the directory to accept new files.
	AccessWrite
)

func (a Access) mask() uint32 {
	if a == AccessWrite {
		return unix.R_OK | unix.W_OK | unix.X_OK
	}
	return unix.R_OK | unix.X_OK
}

func (a Access) label() string {
	if a == AccessWrite {
		return "read/write ok"
	}
	return "read ok"
}

const versionProbeTimeout = 5 * time.Second

// CheckAseprite verifies the executable resolves and answers --version.
func CheckAseprite(ctx context.Context, binary string) Result {
	const name = "Aseprite"

	binary = strings.TrimSpace(binary)
	if binary == "" {
		return Result{Name: name, Detail: "binary not configured"}
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not found on PATH)", binary)}
	}

	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, path, "--version").Output()
	if err != nil {
		if errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: version probe timed out)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: version probe failed: %v)", path, err)}
	}
	version := firstLine(string(out))
	if version == "" {
		version = "version unknown"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, version)}
}

// CheckDirectoryAccess verifies that the directory exists and grants the
// requested access.
func CheckDirectoryAccess(name, path string, access Access) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, access.mask()); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, access.label())}
}

// CheckSystemDeps evaluates the external binaries the configuration needs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "Aseprite",
			Command:     cfg.AsepriteBinary(),
			Description: "Required for sheet packing",
		},
	}
	return deps.CheckBinaries(requirements)
}

func firstLine(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}
