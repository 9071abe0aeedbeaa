// Package partition splits n items across w ranks in contiguous, balanced ranges.
//
// Every rank receives floor(n/w) items and the first n mod w ranks one extra.
// The same rule serves the initial generation split and the repartition of the
// gathered dataset; each caller applies it fresh to its own n.
package partition

import (
	"errors"
	"fmt"
)

// ErrInvalidWorkers is returned when the number of ranks is not positive.
var ErrInvalidWorkers = errors.New("partition: workers must be positive")

// Counts returns the per-rank item counts for n items over w ranks.
// Negative n is treated as zero.
func Counts(n, w int) ([]int, error) {
	if w < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, w)
	}
	if n < 0 {
		n = 0
	}

	base, extra := n/w, n%w
	counts := make([]int, w)
	for i := range counts {
		counts[i] = base
		if i < extra {
			counts[i]++
		}
	}
	return counts, nil
}

// Offsets returns the exclusive prefix sums of counts (the displacement of
// each rank's block in the concatenated dataset).
func Offsets(counts []int) []int {
	offsets := make([]int, len(counts))
	for i := 1; i < len(counts); i++ {
		offsets[i] = offsets[i-1] + counts[i-1]
	}
	return offsets
}

// Range returns the start offset and count of rank's block.
func Range(n, w, rank int) (start, count int, err error) {
	if w < 1 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidWorkers, w)
	}
	if rank < 0 || rank >= w {
		return 0, 0, fmt.Errorf("partition: rank %d out of range [0, %d)", rank, w)
	}
	if n < 0 {
		n = 0
	}

	base, extra := n/w, n%w
	start = rank*base + min(rank, extra)
	count = base
	if rank < extra {
		count++
	}
	return start, count, nil
}

// Split slices items into len(counts) consecutive blocks. The counts must sum
// to len(items).
func Split[T any](items []T, counts []int) ([][]T, error) {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != len(items) {
		return nil, fmt.Errorf("partition: counts sum to %d, have %d items", total, len(items))
	}

	parts := make([][]T, len(counts))
	off := 0
	for i, c := range counts {
		parts[i] = items[off : off+c : off+c]
		off += c
	}
	return parts, nil
}
