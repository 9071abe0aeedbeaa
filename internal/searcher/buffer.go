package searcher

import (
	"math"

	"github.com/hupe1980/kdknn/model"
)

// Buffer is a fixed-capacity k-best buffer.
//
// It always holds exactly k slots sorted ascending by distance. Unused slots
// carry the sentinel (+Inf, -1), so the last slot is the current pruning bound
// from the very first candidate on.
type Buffer struct {
	items []model.Neighbor
}

// NewBuffer creates a buffer with k sentinel slots. k <= 0 yields an empty
// buffer that accepts nothing.
func NewBuffer(k int) *Buffer {
	if k < 0 {
		k = 0
	}
	items := make([]model.Neighbor, k)
	for i := range items {
		items[i] = model.Sentinel()
	}
	return &Buffer{items: items}
}

// Worst returns the distance in the last slot.
// An empty buffer reports -Inf so no candidate ever passes the bound.
func (b *Buffer) Worst() float64 {
	if len(b.items) == 0 {
		return math.Inf(-1)
	}
	return b.items[len(b.items)-1].Distance
}

// Offer overwrites the last slot with (dist, id) if dist is strictly smaller
// than the current bound and restores ascending order. Returns true if the
// candidate was accepted.
func (b *Buffer) Offer(dist float64, id int32) bool {
	last := len(b.items) - 1
	if last < 0 || !(dist < b.items[last].Distance) {
		return false
	}

	b.items[last] = model.Neighbor{Distance: dist, ID: id}

	// O(k) re-sort on every accepted candidate.
	for i := last; i > 0 && b.items[i-1].Distance > b.items[i].Distance; i-- {
		b.items[i-1], b.items[i] = b.items[i], b.items[i-1]
	}
	return true
}

// Results returns a copy of the k slots in ascending order.
func (b *Buffer) Results() []model.Neighbor {
	out := make([]model.Neighbor, len(b.items))
	copy(out, b.items)
	return out
}
