// Package services defines shared utilities consumed by the pack pipeline and
// the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and pipeline phases for
//     logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (bad input vs. external tool vs. timeout) without string
//     matching.
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform.
package services
