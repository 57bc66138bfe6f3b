package aseprite_test

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"sheetpack/internal/services/aseprite"
)

func countToken(args []string, token string) int {
	n := 0
	for _, arg := range args {
		if arg == token {
			n++
		}
	}
	return n
}

func TestBuildCommandLayout(t *testing.T) {
	cmd := aseprite.BuildCommand("aseprite", aseprite.Request{
		Inputs:    []string{"art/a/*.aseprite"},
		DataPath:  "out/sheet.json",
		SheetPath: "out/sheet.png",
	})

	want := []string{
		"-b", "art/a/*.aseprite",
		"--data", "out/sheet.json",
		"--sheet-pack",
		"--sheet", "out/sheet.png",
		"--filename-format", "{title}_{frame}",
	}
	if !slices.Equal(cmd.Args, want) {
		t.Fatalf("unexpected args:\n got %q\nwant %q", cmd.Args, want)
	}
	if cmd.Binary != "aseprite" {
		t.Fatalf("unexpected binary %q", cmd.Binary)
	}
}

func TestBuildCommandDefaultsBinary(t *testing.T) {
	cmd := aseprite.BuildCommand("  ", aseprite.Request{DataPath: "d.json", SheetPath: "s.png"})
	if cmd.Binary != aseprite.DefaultBinary {
		t.Fatalf("expected default binary, got %q", cmd.Binary)
	}
}

func TestBuildCommandPaddingToggle(t *testing.T) {
	base := aseprite.Request{DataPath: "d.json", SheetPath: "s.png"}

	off := aseprite.BuildCommand("aseprite", base)
	for _, flag := range []string{"--border-padding", "--shape-padding"} {
		if countToken(off.Args, flag) != 0 {
			t.Fatalf("expected %s absent without padding: %q", flag, off.Args)
		}
	}

	base.Padding = true
	on := aseprite.BuildCommand("aseprite", base)
	rendered := on.String()
	for _, fragment := range []string{"--border-padding 1", "--shape-padding 1"} {
		if !strings.Contains(rendered, fragment) {
			t.Fatalf("expected %q in %q", fragment, rendered)
		}
	}

	base.BorderPadding = 2
	base.ShapePadding = 4
	custom := aseprite.BuildCommand("aseprite", base).String()
	if !strings.Contains(custom, "--border-padding 2 --shape-padding 4") {
		t.Fatalf("expected custom padding values in %q", custom)
	}
}

func TestBuildCommandOutputsAppearOnce(t *testing.T) {
	cmd := aseprite.BuildCommand("aseprite", aseprite.Request{
		Inputs:    []string{"a/*.aseprite", "b/*.aseprite"},
		DataPath:  "my data.json",
		SheetPath: "my sheet.png",
		Padding:   true,
	})
	if countToken(cmd.Args, "--data") != 1 || countToken(cmd.Args, "--sheet") != 1 {
		t.Fatalf("expected exactly one --data and --sheet: %q", cmd.Args)
	}
	dataIdx := slices.Index(cmd.Args, "--data")
	if cmd.Args[dataIdx+1] != "my data.json" {
		t.Fatalf("data path not preserved: %q", cmd.Args[dataIdx+1])
	}
	sheetIdx := slices.Index(cmd.Args, "--sheet")
	if cmd.Args[sheetIdx+1] != "my sheet.png" {
		t.Fatalf("sheet path not preserved: %q", cmd.Args[sheetIdx+1])
	}
}

func TestCommandStringSeparatesInputsWithSingleSpace(t *testing.T) {
	cmd := aseprite.BuildCommand("aseprite", aseprite.Request{
		Inputs:    []string{"a/*.aseprite", "b/*.aseprite"},
		DataPath:  "d.json",
		SheetPath: "s.png",
	})
	if !strings.Contains(cmd.String(), "-b a/*.aseprite b/*.aseprite --data") {
		t.Fatalf("unexpected rendering %q", cmd.String())
	}
	if strings.Contains(cmd.String(), "  ") {
		t.Fatalf("unexpected double space in %q", cmd.String())
	}
}

func TestBuildCommandWithoutInputs(t *testing.T) {
	cmd := aseprite.BuildCommand("aseprite", aseprite.Request{DataPath: "d.json", SheetPath: "s.png"})
	if cmd.Args[0] != "-b" || cmd.Args[1] != "--data" {
		t.Fatalf("expected no input token, got %q", cmd.Args)
	}
	if strings.Contains(cmd.String(), "*") {
		t.Fatalf("expected no glob in %q", cmd.String())
	}
}

func TestInputPatternEscapesMetacharacters(t *testing.T) {
	plain := aseprite.InputPattern(filepath.Join("art", "hero"), "")
	if plain != filepath.Join("art", "hero", "*.aseprite") {
		t.Fatalf("unexpected pattern %q", plain)
	}

	dir := filepath.Join(t.TempDir(), "boss[1]")
	pattern := aseprite.InputPattern(dir, ".aseprite")
	matched, err := filepath.Match(pattern, filepath.Join(dir, "idle.aseprite"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !matched {
		t.Fatalf("expected escaped pattern %q to match file inside %q", pattern, dir)
	}
	if ok, _ := filepath.Match(pattern, filepath.Join(filepath.Dir(dir), "boss1", "idle.aseprite")); ok {
		t.Fatalf("escaped pattern %q should not treat brackets as a class", pattern)
	}
}
