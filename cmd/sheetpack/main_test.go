package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sheetpack/internal/services"
	"sheetpack/internal/testsupport"
)

func TestCLIPackWritesSheet(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.baseDir, "art")
	testsupport.WriteTree(t, root, "hero/idle.aseprite", "hero/walk.aseprite", "ui/readme.txt")
	data := filepath.Join(env.baseDir, "sheet.json")
	sheetPath := filepath.Join(env.baseDir, "sheet.png")

	out, stderr, err := runCLI(t, []string{"pack", root, data, sheetPath}, env.configPath)
	if err != nil {
		t.Fatalf("pack: %v (stderr %q)", err, stderr)
	}
	wantHeader := "Packing sprites into '" + data + "' and '" + sheetPath + "' from:\n"
	if !strings.HasPrefix(out, wantHeader) {
		t.Fatalf("unexpected header in %q", out)
	}
	if !strings.Contains(out, "- '"+filepath.Join(root, "hero")+"'\n") {
		t.Fatalf("expected matched directory line in %q", out)
	}
	if strings.Contains(out, filepath.Join(root, "ui")) {
		t.Fatalf("directory without sources listed: %q", out)
	}
	if !strings.Contains(out, "Wrote "+sheetPath+" (2 frames, 16x8") {
		t.Fatalf("expected summary line in %q", out)
	}
	if !strings.Contains(stderr, "aseprite: packed") {
		t.Fatalf("expected forwarded aseprite output, got %q", stderr)
	}
	if _, err := os.Stat(data); err != nil {
		t.Fatalf("expected metadata file: %v", err)
	}
}

func TestCLIPackDryRun(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.baseDir, "art")
	testsupport.WriteTree(t, root, "a/x.aseprite", "b/y.aseprite")
	data := filepath.Join(env.baseDir, "out", "sheet.json")
	sheetPath := filepath.Join(env.baseDir, "out", "sheet.png")

	out, _, err := runCLI(t, []string{"pack", "--dry-run", "--padding", root, data, sheetPath}, env.configPath)
	if err != nil {
		t.Fatalf("pack --dry-run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	command := lines[len(lines)-1]
	if !strings.HasPrefix(command, env.binary+" -b ") {
		t.Fatalf("expected command line last, got %q", command)
	}
	for _, token := range []string{"--data " + data, "--sheet " + sheetPath, "--sheet-pack", "--border-padding 1", "--shape-padding 1", "--filename-format {title}_{frame}"} {
		if !strings.Contains(command, token) {
			t.Fatalf("expected %q in %q", token, command)
		}
	}
	if _, err := os.Stat(data); !os.IsNotExist(err) {
		t.Fatalf("dry run must not write outputs: %v", err)
	}
}

func TestCLIPackJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.baseDir, "art")
	testsupport.WriteTree(t, root, "hero/idle.aseprite")
	data := filepath.Join(env.baseDir, "sheet.json")
	sheetPath := filepath.Join(env.baseDir, "sheet.png")

	out, stderr, err := runCLI(t, []string{"pack", "--json", root, data, sheetPath}, env.configPath)
	if err != nil {
		t.Fatalf("pack --json: %v", err)
	}
	var payload struct {
		RunID       string `json:"run_id"`
		Executed    bool   `json:"executed"`
		Directories []struct {
			Path    string   `json:"path"`
			Sources []string `json:"sources"`
		} `json:"directories"`
		Summary *struct {
			Frames int `json:"frames"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode json: %v (%q)", err, out)
	}
	if !payload.Executed || payload.RunID == "" || len(payload.Directories) != 1 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Summary == nil || payload.Summary.Frames != 2 {
		t.Fatalf("unexpected summary %+v", payload.Summary)
	}
	if !strings.Contains(stderr, "Packing sprites into") {
		t.Fatalf("expected progress on stderr, got %q", stderr)
	}
}

func TestCLIPackLeavesOutputPathsToAseprite(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.baseDir, "art")
	testsupport.WriteTree(t, root, "hero/idle.aseprite")
	missing := filepath.Join(env.baseDir, "missing")

	data := filepath.Join(missing, "s.json")
	sheetPath := filepath.Join(missing, "s.png")

	out, stderr, err := runCLI(t, []string{"pack", root, data, sheetPath}, env.configPath)
	if err != nil {
		t.Fatalf("pack into a new directory: %v (stderr %q)", err, stderr)
	}
	if !strings.Contains(out, "Wrote "+sheetPath) {
		t.Fatalf("expected aseprite to be dispatched, got %q", out)
	}
	if _, err := os.Stat(data); err != nil {
		t.Fatalf("expected metadata written by aseprite: %v", err)
	}
}

func TestCLIPackPaddingFlagOverridesConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	payload, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	payload = append(payload, []byte("\n[pack]\npadding = true\n")...)
	if err := os.WriteFile(env.configPath, payload, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	root := filepath.Join(env.baseDir, "art")
	testsupport.WriteTree(t, root, "a/x.aseprite")
	data := filepath.Join(env.baseDir, "sheet.json")
	sheetPath := filepath.Join(env.baseDir, "sheet.png")

	tests := []struct {
		args []string
		want bool
	}{
		{args: []string{"pack", "--dry-run", root, data, sheetPath}, want: true},
		{args: []string{"pack", "--dry-run", "--padding=false", root, data, sheetPath}, want: false},
	}
	for _, tc := range tests {
		out, _, err := runCLI(t, tc.args, env.configPath)
		if err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if got := strings.Contains(out, "--border-padding"); got != tc.want {
			t.Fatalf("%v: padding=%v, want %v in %q", tc.args, got, tc.want, out)
		}
	}
}

func TestCLIPackRequiresThreeArgs(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"pack", env.baseDir}, env.configPath); err == nil {
		t.Fatal("expected argument error")
	}
}

func TestCLIScan(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.baseDir, "art")
	testsupport.WriteTree(t, root, "a/x.aseprite", "a/y.aseprite", "b/y.png", "node_modules/pkg/z.aseprite")

	out, _, err := runCLI(t, []string{"scan", root}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out, filepath.Join(root, "a")) || !strings.Contains(out, "x.aseprite, y.aseprite") {
		t.Fatalf("expected directory a in table: %q", out)
	}
	if strings.Contains(out, filepath.Join(root, "b")) || strings.Contains(out, "node_modules") {
		t.Fatalf("unexpected directory in table: %q", out)
	}

	out, _, err = runCLI(t, []string{"scan", "--json", root}, env.configPath)
	if err != nil {
		t.Fatalf("scan --json: %v", err)
	}
	var dirs []struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(out), &dirs); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(dirs) != 1 || dirs[0].Path != filepath.Join(root, "a") {
		t.Fatalf("unexpected scan result %+v", dirs)
	}
}

func TestCLIScanEmptyTree(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"scan", "--json", t.TempDir()}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected empty JSON array, got %q", out)
	}
}

func TestCLIScanMissingRoot(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"scan", filepath.Join(env.baseDir, "nope")}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCLIStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.baseDir, "art")
	testsupport.WriteTree(t, root, "hero/")

	out, _, err := runCLI(t, []string{"status", root}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	for _, want := range []string{"== Dependencies ==", "[OK] Ready (" + env.binary + ")", "Aseprite 1.3.7-x64", "Source root:", "Log directory:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in status output:\n%s", want, out)
		}
	}
}

func TestCLIStatusReportsMissingBinary(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("SHEETPACK_ASEPRITE", filepath.Join(env.baseDir, "bin", "missing"))

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected failing status, got %v", err)
	}
	if !strings.Contains(out, "[ERROR]") || !strings.Contains(out, "Missing dependencies") {
		t.Fatalf("expected error lines in status output:\n%s", out)
	}
}

func TestCLIConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "generated", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration to "+target) {
		t.Fatalf("unexpected init output %q", out)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Config path: "+target) || !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output %q", out)
	}
}

func TestCLIConfigValidateRejectsBadConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	bad := filepath.Join(env.baseDir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[pack]\nextension = \"a/b\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, bad); err == nil {
		t.Fatal("expected validation failure")
	}
	if _, _, err := runCLI(t, []string{"scan", env.baseDir}, bad); err == nil {
		t.Fatal("expected config error to abort commands")
	}
}
