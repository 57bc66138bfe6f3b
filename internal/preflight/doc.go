// Package preflight provides readiness checks for the aseprite executable
// and the filesystem paths a pack run touches.
//
// The CLI "sheetpack status" command renders every Result as a status line.
// Pack runs do not consult these checks; output paths are handed to Aseprite
// as given.
//
// Paths that were not supplied are skipped rather than reported as failures.
package preflight
