package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})
	ctx := context.Background()

	require.NoError(t, c.AcquireMemory(ctx, Frames, 50))
	require.NoError(t, c.AcquireMemory(ctx, Trees, 40))

	u := c.Usage()
	assert.Equal(t, int64(50), u.Frames)
	assert.Equal(t, int64(40), u.Trees)

	// The limit is shared by all kinds.
	tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireMemory(tctx, Trees, 20), context.DeadlineExceeded)

	c.ReleaseMemory(Frames, 50)
	require.NoError(t, c.AcquireMemory(ctx, Trees, 20))

	u = c.Usage()
	assert.Zero(t, u.Frames)
	assert.Equal(t, int64(60), u.Trees)
	assert.Equal(t, int64(90), u.Peak)
	assert.Equal(t, int64(50), u.PeakFrames)
	assert.Equal(t, int64(60), u.PeakTrees)
}

func TestController_ExceedsLimit(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 10})

	err := c.AcquireMemory(context.Background(), Trees, 11)
	require.ErrorIs(t, err, ErrExceedsLimit)
	assert.Contains(t, err.Error(), "trees")
	assert.Zero(t, c.Usage().Trees)
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(context.Background(), Frames, 1000))
	c.ReleaseMemory(Frames, 500)

	u := c.Usage()
	assert.Equal(t, int64(500), u.Frames)
	assert.Equal(t, int64(1000), u.Peak)
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	// larger than the burst, paid in installments
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.AcquireIO(ctx, 1<<20+10))
	assert.Equal(t, int64(1<<20+10), c.Usage().IOBytes)
}

func TestController_IOCanceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 10})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.AcquireIO(ctx, 1000))
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	require.NoError(t, c.AcquireMemory(context.Background(), Trees, 10))
	c.ReleaseMemory(Trees, 10)
	require.NoError(t, c.AcquireIO(context.Background(), 10))
	assert.Equal(t, Usage{}, c.Usage())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "frames", Frames.String())
	assert.Equal(t, "trees", Trees.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
