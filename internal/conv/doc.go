// Package conv provides safe integer type conversion utilities.
//
// Point identities and counts travel as 32-bit values; these helpers reject
// values that would silently wrap. For conversions that are provably safe by
// an earlier check, use direct type casts instead.
package conv
