// Package ir provides the typed records of a microkinetic reaction network and
// of the compiled symbolic model.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Species are tagged by Phase; gas-only properties live behind Species.Gas
//   - Reaction participants are fixed at load time (four slots, "none" allowed)
//   - Compiled expressions are opaque Maple-syntax text, never evaluated here
//   - Model identity is a content hash over expression text, never over floats
package ir
