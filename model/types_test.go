package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisForDepth(t *testing.T) {
	for depth, want := range []Axis{AxisX, AxisY, AxisZ, AxisX, AxisY, AxisZ, AxisX} {
		assert.Equal(t, want, AxisForDepth(depth), "depth %d", depth)
	}
	assert.Equal(t, "y", AxisY.String())
	assert.Equal(t, "Axis(7)", Axis(7).String())
}

func TestPoint_Coord(t *testing.T) {
	p := Point{X: 1, Y: 2, Z: 3, ID: 9}

	assert.Equal(t, 1.0, p.Coord(AxisX))
	assert.Equal(t, 2.0, p.Coord(AxisY))
	assert.Equal(t, 3.0, p.Coord(AxisZ))
	assert.Equal(t, "Point(9: 1.00, 2.00, 3.00)", p.String())
}

func TestSentinel(t *testing.T) {
	s := Sentinel()
	assert.True(t, s.IsSentinel())
	assert.True(t, math.IsInf(s.Distance, 1))
	assert.False(t, Neighbor{ID: 0}.IsSentinel())
}

func TestFromIDs(t *testing.T) {
	ns := FromIDs([]int32{4, SentinelID})
	require.Len(t, ns, 2)

	assert.Equal(t, int32(4), ns[0].ID)
	assert.True(t, math.IsNaN(ns[0].Distance))
	assert.True(t, ns[1].IsSentinel())
	assert.Equal(t, []int32{4, -1}, IDs(ns))
}

func TestClone(t *testing.T) {
	assert.Nil(t, Clone(nil))

	in := []Point{{ID: 1}, {ID: 2}}
	out := Clone(in)
	out[0].ID = 7
	assert.Equal(t, int32(1), in[0].ID)
}
