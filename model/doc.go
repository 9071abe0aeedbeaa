// Package model defines the plain data carried through kdknn.
//
// # Types
//
//   - Point: three float64 coordinates and a globally unique int32 identity
//   - Neighbor: (distance, identity); Sentinel() is (+Inf, -1)
//   - Result: the neighbors found for one query point at one k
//
// Identities are assigned once by the generator and preserved verbatim through
// every exchange between ranks.
package model
