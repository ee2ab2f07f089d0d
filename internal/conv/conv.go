// Package conv provides checked integer conversions for the packetizer.
//
// These helpers narrow integers that are bounded by construction (region
// lengths, table row counts). They panic on overflow since that indicates a
// programming error or a target description far beyond the encoding limits.
package conv

import "math"

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
//
//go:inline
func IntToUint32(n int) uint32 {
	// Use uint for comparison to avoid overflow on 32-bit platforms
	// where int cannot represent math.MaxUint32
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// Int64ToUint32 reports n as a uint32 and whether it was in range.
// Table loaders use it to reject out-of-range state numbers with an error.
func Int64ToUint32(n int64) (uint32, bool) {
	if n < 0 || n > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}
