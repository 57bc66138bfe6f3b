package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"sheetpack/internal/testsupport"
)

// stubAseprite answers --version and writes minimal outputs for --data and
// --sheet, creating their directories, so pack runs complete without a real
// install.
const stubAseprite = `if [ "$1" = "--version" ]; then
  echo "Aseprite 1.3.7-x64"
  exit 0
fi
data=""
sheet=""
while [ $# -gt 0 ]; do
  case "$1" in
    --data) data="$2"; shift ;;
    --sheet) sheet="$2"; shift ;;
  esac
  shift
done
mkdir -p "$(dirname "$data")" "$(dirname "$sheet")"
printf '{"frames": {"hero 0": {}, "hero 1": {}}, "meta": {"size": {"w": 16, "h": 8}}}' > "$data"
printf 'png' > "$sheet"
echo "packed"`

type cliTestEnv struct {
	baseDir    string
	configPath string
	binary     string
}

func setupCLITestEnv(t *testing.T) cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("SHEETPACK_ASEPRITE", "")
	t.Chdir(base)

	binary := testsupport.WriteStubBinary(t, filepath.Join(base, "bin"), "aseprite", stubAseprite)
	configPath := filepath.Join(base, "sheetpack.toml")
	payload := fmt.Sprintf("[paths]\nlog_dir = %q\n\n[aseprite]\nbinary = %q\n\n[logging]\nlevel = \"error\"\n",
		filepath.Join(base, "logs"), binary)
	if err := os.WriteFile(configPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cliTestEnv{baseDir: base, configPath: configPath, binary: binary}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
