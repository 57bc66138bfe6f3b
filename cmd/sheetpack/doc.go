// Package main hosts the sheetpack CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into pack runs,
// source tree scans, watch sessions, readiness checks, and configuration
// scaffolding. It centralizes configuration resolution and logger setup so
// subcommands only translate flags into calls on the internal packages.
//
// Progress lines and results go to stdout; structured logs go to stderr and
// the log file.
package main
