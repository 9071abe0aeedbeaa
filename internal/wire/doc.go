// Package wire encodes the records exchanged between ranks.
//
// A point travels as a flat 28-byte little-endian record:
//
//	[X float64][Y float64][Z float64][ID int32]
//
// Counts and neighbor identities travel as packed int32 arrays. Every frame
// handed to the transport may additionally be block compressed; the frame
// header names the algorithm so the receiver needs no configuration.
package wire
