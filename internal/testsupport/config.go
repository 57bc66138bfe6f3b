package testsupport

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"sheetpack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPadding enables the padding flags on the test config.
func WithPadding() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pack.Padding = true
	}
}

// WithStubAseprite writes a stub aseprite executable with the given shell body
// and points the config at it. An empty body exits 0.
func WithStubAseprite(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Aseprite.Binary = WriteStubBinary(b.t, filepath.Join(b.baseDir, "bin"), "aseprite", body)
	}
}

// WriteStubBinary writes an executable shell script named name into dir and
// returns its path. Tests using it are skipped on Windows.
func WriteStubBinary(t testing.TB, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub binaries require a POSIX shell")
	}
	if body == "" {
		body = "exit 0"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
