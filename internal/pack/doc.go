// Package pack runs the scan-and-dispatch routine: it walks a source tree for
// directories holding Aseprite projects, announces each one, builds a single
// batch-mode invocation covering all of them, and hands it to the aseprite
// client.
//
// A Packer is safe to reuse across runs but runs one pack at a time per
// output path; concurrent runs against the same metadata file are rejected
// through an advisory lock next to it.
package pack
