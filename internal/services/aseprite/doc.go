// Package aseprite mediates access to the Aseprite CLI used to pack sprite
// sheets.
//
// It builds the batch-mode argument list (inputs, --data, --sheet-pack,
// --sheet, --filename-format and optional padding), spawns the executable
// directly without a shell, expands input globs itself, and exposes a
// testable Executor seam.
//
// Prefer this package over ad-hoc exec.Command usage when interacting with
// Aseprite so argument layout and timeout handling remain consistent.
package aseprite
