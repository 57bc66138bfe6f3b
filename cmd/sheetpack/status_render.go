package main

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"sheetpack/internal/deps"
	"sheetpack/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 24
	statusIndent     = "  "
)

func (k statusKind) label() string {
	return [...]string{"INFO", "OK", "WARN", "ERROR"}[k]
}

func (k statusKind) color() string {
	return [...]string{ansiBlue, ansiGreen, ansiYellow, ansiRed}[k]
}

func kindFor(passed bool) statusKind {
	if passed {
		return statusOK
	}
	return statusError
}

// statusWriter prints aligned "label: [KIND] message" lines grouped under
// section headers, colorized only when writing to a terminal.
type statusWriter struct {
	out      io.Writer
	colorize bool
	started  bool
}

func newStatusWriter(out io.Writer) *statusWriter {
	return &statusWriter{out: out, colorize: shouldColorize(out)}
}

func (w *statusWriter) section(title string) {
	if w.started {
		fmt.Fprintln(w.out)
	}
	w.started = true
	for _, line := range renderSectionHeader(title, w.colorize) {
		fmt.Fprintln(w.out, line)
	}
}

func (w *statusWriter) lines(lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w.out, line)
	}
}

func (w *statusWriter) line(label string, kind statusKind, message string) {
	fmt.Fprintln(w.out, renderStatusLine(label, kind, message, w.colorize))
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	badge := "[" + kind.label() + "]"
	if message != "" {
		badge += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", badge)
	if colorize {
		return kind.color() + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(heading))
	if colorize {
		return []string{ansiBlue + heading + ansiReset, ansiBlue + rule + ansiReset}
	}
	return []string{heading, rule}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	var missing []string
	for _, dep := range statuses {
		switch {
		case dep.Available:
			message := "Ready"
			if where := cmp.Or(dep.Path, dep.Command); where != "" {
				message = fmt.Sprintf("Ready (%s)", where)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
		default:
			kind := statusError
			if dep.Optional {
				kind = statusWarn
			}
			lines = append(lines, renderStatusLine(dep.Name, kind, cmp.Or(strings.TrimSpace(dep.Detail), "not available"), colorize))
			missing = append(missing, dep.Name)
		}
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn,
			strings.Join(missing, ", ")+" (install Aseprite or set aseprite.binary)", colorize))
	}
	return lines
}

func checkLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, result := range results {
		lines = append(lines, renderStatusLine(result.Name, kindFor(result.Passed), result.Detail, colorize))
	}
	return lines
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
