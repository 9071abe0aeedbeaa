// Package searcher provides the bounded k-best buffer used by every search path.
//
// The buffer is an insertion-sorted array of exactly k slots. Accepting a
// candidate overwrites the worst slot and bubbles it into place, which keeps
// the last slot usable as the pruning bound of a KD-tree descent.
package searcher
