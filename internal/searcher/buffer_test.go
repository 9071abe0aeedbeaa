package searcher

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdknn/model"
)

func TestBuffer(t *testing.T) {
	t.Run("SentinelFilled", func(t *testing.T) {
		b := NewBuffer(3)
		assert.True(t, math.IsInf(b.Worst(), 1))
		res := b.Results()
		require.Len(t, res, 3)
		for _, n := range res {
			assert.True(t, n.IsSentinel())
		}
	})

	t.Run("KeepsAscendingOrder", func(t *testing.T) {
		b := NewBuffer(3)
		assert.True(t, b.Offer(5, 1))
		assert.True(t, b.Offer(2, 2))
		assert.True(t, b.Offer(9, 3))
		assert.Equal(t, 9.0, b.Worst())

		// worse than bound
		assert.False(t, b.Offer(10, 4))
		// equal to bound is rejected
		assert.False(t, b.Offer(9, 5))

		assert.True(t, b.Offer(1, 6))
		assert.Equal(t, []int32{6, 2, 1}, model.IDs(b.Results()))
		assert.Equal(t, 5.0, b.Worst())
	})

	t.Run("PartiallyFilled", func(t *testing.T) {
		b := NewBuffer(4)
		b.Offer(3, 7)
		res := b.Results()
		require.Len(t, res, 4)
		assert.Equal(t, int32(7), res[0].ID)
		for _, n := range res[1:] {
			assert.Equal(t, model.SentinelID, n.ID)
			assert.True(t, math.IsInf(n.Distance, 1))
		}
	})

	t.Run("ZeroK", func(t *testing.T) {
		b := NewBuffer(0)
		assert.False(t, b.Offer(0, 1))
		assert.Empty(t, b.Results())
		assert.True(t, math.IsInf(b.Worst(), -1))
	})

	t.Run("NegativeK", func(t *testing.T) {
		b := NewBuffer(-3)
		assert.False(t, b.Offer(0, 1))
		assert.Empty(t, b.Results())
	})

	t.Run("ResultsAreCopies", func(t *testing.T) {
		b := NewBuffer(2)
		b.Offer(1, 1)
		res := b.Results()
		res[0].ID = 99
		assert.Equal(t, int32(1), b.Results()[0].ID)
	})
}

func TestBufferMatchesSort(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const k = 8

	b := NewBuffer(k)
	all := make([]float64, 0, 200)
	for i := 0; i < 200; i++ {
		d := rng.Float64() * 100
		all = append(all, d)
		b.Offer(d, int32(i))
	}
	sort.Float64s(all)

	res := b.Results()
	for i := 0; i < k; i++ {
		assert.Equal(t, all[i], res[i].Distance)
	}
}
