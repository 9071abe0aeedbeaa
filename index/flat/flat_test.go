package flat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdknn/index/kdtree"
	"github.com/hupe1980/kdknn/model"
	"github.com/hupe1980/kdknn/testutil"
)

func TestSearch(t *testing.T) {
	points := []model.Point{
		{X: 0, Y: 0, Z: 0, ID: 0},
		{X: 1, Y: 0, Z: 0, ID: 1},
		{X: 0, Y: 2, Z: 0, ID: 2},
		{X: 0, Y: 0, Z: 3, ID: 3},
		{X: 0, Y: -1, Z: 0, ID: 4},
	}

	t.Run("IncludeSelf", func(t *testing.T) {
		res := Search(points[0], points, 3, IncludeSelf)
		require.Len(t, res, 3)
		// ties (1 and 4 at distance 1) broken by smaller identity
		assert.Equal(t, []int32{0, 1, 4}, model.IDs(res))
		assert.Equal(t, 0.0, res[0].Distance)
	})

	t.Run("ExcludeSelf", func(t *testing.T) {
		res := Search(points[0], points, 3, ExcludeSelf)
		assert.Equal(t, []int32{1, 4, 2}, model.IDs(res))
	})

	t.Run("ExcludeSelfSortsLast", func(t *testing.T) {
		res := Search(points[0], points, 5, ExcludeSelf)
		assert.Equal(t, int32(0), res[4].ID)
		assert.True(t, math.IsInf(res[4].Distance, 1))
	})

	t.Run("ZeroK", func(t *testing.T) {
		assert.Empty(t, Search(points[0], points, 0, IncludeSelf))
	})

	t.Run("KExceedsCandidates", func(t *testing.T) {
		res := Search(points[0], points, 7, IncludeSelf)
		require.Len(t, res, 7)
		assert.Equal(t, model.SentinelID, res[5].ID)
		assert.Equal(t, model.SentinelID, res[6].ID)
	})

	t.Run("DoesNotReorderInput", func(t *testing.T) {
		before := model.Clone(points)
		Search(model.Point{X: 9}, points, 5, IncludeSelf)
		assert.Equal(t, before, points)
	})
}

func TestSinglePoint(t *testing.T) {
	p := model.Point{X: 1, Y: 2, Z: 3, ID: 0}

	res := Search(p, []model.Point{p}, 5, IncludeSelf)
	assert.Equal(t, []int32{0, -1, -1, -1, -1}, model.IDs(res))
	assert.Equal(t, 0.0, res[0].Distance)

	res = Search(p, []model.Point{p}, 5, ExcludeSelf)
	assert.Equal(t, []int32{0, -1, -1, -1, -1}, model.IDs(res))
	assert.True(t, math.IsInf(res[0].Distance, 1))
}

func TestFlat(t *testing.T) {
	rng := testutil.NewRNG(4711)
	points := rng.UniformPoints(200, 0)

	f := New(points, IncludeSelf)
	assert.Equal(t, 200, f.Len())

	ex := New(points, ExcludeSelf)

	for _, q := range points[:20] {
		assert.Equal(t, q.ID, f.Search(q, 1)[0].ID)
		assert.NotEqual(t, q.ID, ex.Search(q, 1)[0].ID)
		assert.Equal(t, model.IDs(f.Search(q, 5)), f.SearchIDs(q, 5))
	}
	assert.Equal(t, []int32{-1, -1}, New(nil, IncludeSelf).SearchIDs(points[0], 2))
}

func TestMatchesKDTree(t *testing.T) {
	rng := testutil.NewRNG(99)
	points := rng.UniformPoints(500, 0)
	tree := kdtree.BuildCopy(points)

	for _, q := range rng.UniformPoints(40, 0) {
		for _, k := range []int{1, 10, 600} {
			want := Search(q, points, k, IncludeSelf)
			got := tree.Search(q, k)
			assert.True(t, testutil.SameDistances(want, got, 1e-9))
		}
	}
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "include-self", IncludeSelf.String())
	assert.Equal(t, "exclude-self", ExcludeSelf.String())
	assert.Equal(t, "Unknown(9)", SelfPolicy(9).String())
}

func BenchmarkSearch(b *testing.B) {
	rng := testutil.NewRNG(4711)
	points := rng.UniformPoints(10000, 0)
	queries := rng.UniformPoints(64, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Search(queries[i%len(queries)], points, 10, IncludeSelf)
	}
}
