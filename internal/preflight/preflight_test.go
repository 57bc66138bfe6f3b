package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sheetpack/internal/config"
	"sheetpack/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir, AccessWrite)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "read/write ok") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_ReadOnlyMode(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir, AccessRead)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "read ok") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), AccessRead)
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f, AccessRead)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckAseprite_Version(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubAseprite(`echo "Aseprite 1.3.7-x64"`))
	result := CheckAseprite(context.Background(), cfg.AsepriteBinary())
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "Aseprite 1.3.7-x64") {
		t.Fatalf("expected version in detail, got: %s", result.Detail)
	}
}

func TestCheckAseprite_ProbeFails(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubAseprite("exit 3"))
	result := CheckAseprite(context.Background(), cfg.AsepriteBinary())
	if result.Passed {
		t.Fatal("expected failure when --version exits non-zero")
	}
	if !strings.Contains(result.Detail, "version probe failed") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckAseprite_Missing(t *testing.T) {
	result := CheckAseprite(context.Background(), "clearly-not-present-aseprite")
	if result.Passed {
		t.Fatal("expected failure for missing binary")
	}
	if !strings.Contains(result.Detail, "not found") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubAseprite(""))
	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 1 {
		t.Fatalf("expected one requirement, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("expected stub aseprite to be available: %#v", statuses[0])
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Targets{}); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_ChecksTargets(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubAseprite(`echo "Aseprite 1.3"`))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	root := t.TempDir()
	out := t.TempDir()

	results := RunAll(context.Background(), cfg, Targets{
		Root:      root,
		DataPath:  filepath.Join(out, "sheet.json"),
		SheetPath: filepath.Join(out, "sheet.png"),
	})

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
		if !r.Passed {
			t.Fatalf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	want := []string{"Aseprite", "Source root", "Output directory", "Log directory"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected checks: got %v want %v", names, want)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected no failures, got %v", failed)
	}
}

func TestRunAll_SeparateOutputDirs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubAseprite(""))
	cfg.Paths.LogDir = ""
	dataDir := t.TempDir()
	missing := filepath.Join(t.TempDir(), "missing")

	results := RunAll(context.Background(), cfg, Targets{
		DataPath:  filepath.Join(dataDir, "sheet.json"),
		SheetPath: filepath.Join(missing, "sheet.png"),
	})

	failed := Failed(results)
	if len(failed) != 1 {
		t.Fatalf("expected one failure, got %v", failed)
	}
	if !strings.HasPrefix(failed[0].Name, "Output directory (") {
		t.Fatalf("expected per-directory output check name, got %q", failed[0].Name)
	}
	if !strings.Contains(failed[0].Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", failed[0].Detail)
	}
}

func TestRunAll_DefaultBinaryWhenUnset(t *testing.T) {
	cfg := config.Default()
	cfg.Aseprite.Binary = ""
	cfg.Paths.LogDir = ""
	t.Setenv("PATH", t.TempDir())
	results := RunAll(context.Background(), &cfg, Targets{})
	if len(results) != 1 || results[0].Passed {
		t.Fatalf("expected single failing binary check, got %v", results)
	}
}
