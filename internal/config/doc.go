// Package config loads, normalizes, and validates sheetpack configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SHEETPACK_ASEPRITE. The Config type centralizes every knob the CLI needs:
// the Aseprite executable, source suffix, naming template, padding, and
// ignore patterns.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
