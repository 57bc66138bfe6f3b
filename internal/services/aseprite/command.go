package aseprite

import (
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// DefaultBinary is the executable name resolved from PATH.
	DefaultBinary = "aseprite"
	// SourceExtension identifies Aseprite project files.
	SourceExtension = ".aseprite"
	// DefaultFilenameFormat names each frame entry in the metadata file.
	DefaultFilenameFormat = "{title}_{frame}"
	// DefaultPadding is the pixel value used for both padding flags.
	DefaultPadding = 1
)

// Request describes a single sheet packing invocation.
type Request struct {
	// Inputs are file paths or glob patterns, one per source directory.
	Inputs         []string
	DataPath       string
	SheetPath      string
	FilenameFormat string
	Padding        bool
	BorderPadding  int
	ShapePadding   int
}

// Command is a fully built invocation: the binary plus explicit argument
// tokens. No shell is involved when it runs.
type Command struct {
	Binary string   `json:"binary"`
	Args   []string `json:"args"`
	// Inputs mirrors Request.Inputs so the runner can expand globs.
	Inputs []string `json:"inputs"`
}

// BuildCommand lays out the batch-mode arguments for req.
func BuildCommand(binary string, req Request) Command {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	format := strings.TrimSpace(req.FilenameFormat)
	if format == "" {
		format = DefaultFilenameFormat
	}

	args := make([]string, 0, len(req.Inputs)+12)
	args = append(args, "-b")
	args = append(args, req.Inputs...)
	args = append(args,
		"--data", req.DataPath,
		"--sheet-pack",
		"--sheet", req.SheetPath,
		"--filename-format", format,
	)
	if req.Padding {
		args = append(args,
			"--border-padding", strconv.Itoa(paddingValue(req.BorderPadding)),
			"--shape-padding", strconv.Itoa(paddingValue(req.ShapePadding)),
		)
	}

	return Command{
		Binary: binary,
		Args:   args,
		Inputs: append([]string(nil), req.Inputs...),
	}
}

// String renders the command tokens separated by single spaces. It is meant
// for display and dry runs; the runner never passes it to a shell.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Binary)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// InputPattern returns the glob matching every source file directly inside
// dir. Glob metacharacters in dir are escaped so only the trailing wildcard
// is live.
func InputPattern(dir, ext string) string {
	if ext == "" {
		ext = SourceExtension
	}
	return filepath.Join(escapeGlob(dir), "*"+escapeGlob(ext))
}

// escapeGlob wraps metacharacters in single-character classes, which works
// with filepath.Match on every platform (backslash escaping does not on
// Windows).
func escapeGlob(value string) string {
	if !strings.ContainsAny(value, "*?[") {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + 8)
	for _, r := range value {
		switch r {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func paddingValue(v int) int {
	if v <= 0 {
		return DefaultPadding
	}
	return v
}
