// Package scan walks a sprite source tree and reports which directories hold
// at least one source file.
//
// The walk descends into every directory; only the recording step is
// filtered. Each matched directory becomes one input glob for the packer, so
// nested matches are reported independently rather than merged.
package scan
