package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniform(t *testing.T) {
	points := Uniform(42, 10, 100)
	require.Len(t, points, 100)

	for i, p := range points {
		assert.Equal(t, int32(10+i), p.ID)
		for _, c := range []float64{p.X, p.Y, p.Z} {
			assert.GreaterOrEqual(t, c, 0.0)
			assert.Less(t, c, Extent)
		}
	}
}

func TestUniform_Deterministic(t *testing.T) {
	assert.Equal(t, Uniform(7, 0, 50), Uniform(7, 0, 50))
	assert.NotEqual(t, Uniform(7, 0, 50), Uniform(8, 0, 50))
}

func TestUniform_Empty(t *testing.T) {
	assert.Empty(t, Uniform(1, 0, 0))
	assert.Empty(t, Uniform(1, 0, -3))
}

func TestForRank(t *testing.T) {
	a := ForRank(100, 5, 5, 1)
	b := Uniform(101, 5, 5)
	assert.Equal(t, b, a)
	assert.Equal(t, int32(5), a[0].ID)
	assert.Equal(t, int32(9), a[4].ID)
}
