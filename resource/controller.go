// Package resource bounds the memory and bandwidth a run may use.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrExceedsLimit is returned when a single reservation is larger than the
// configured memory limit and could never be satisfied.
var ErrExceedsLimit = errors.New("resource: reservation exceeds memory limit")

// Kind labels what a memory reservation holds.
type Kind uint8

const (
	// Frames is memory held by frames in flight between ranks.
	Frames Kind = iota
	// Trees is memory held by KD-tree nodes.
	Trees

	numKinds
)

func (k Kind) String() string {
	switch k {
	case Frames:
		return "frames"
	case Trees:
		return "trees"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit shared by frames and KD-tree nodes.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// IOLimitBytesPerSec is the maximum frame throughput across all ranks.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Usage is a snapshot of what a Controller has accounted.
type Usage struct {
	// Frames and Trees are the bytes currently reserved per kind.
	Frames int64
	Trees  int64
	// Peak is the highest combined reservation seen.
	Peak int64
	// PeakFrames and PeakTrees are the highest reservation seen per kind.
	PeakFrames int64
	PeakTrees  int64
	// IOBytes is the number of bytes paid through AcquireIO.
	IOBytes int64
}

// Controller is shared by all ranks of a world.
// A nil *Controller is valid and enforces nothing.
type Controller struct {
	limit int64

	memSem  *semaphore.Weighted // nil if unlimited
	total   gauge
	perKind [numKinds]gauge

	ioLimiter *rate.Limiter
	ioBytes   atomic.Int64
}

// gauge tracks a current value and its high-water mark.
type gauge struct {
	cur  atomic.Int64
	peak atomic.Int64
}

func (g *gauge) add(n int64) {
	v := g.cur.Add(n)
	for {
		p := g.peak.Load()
		if v <= p || g.peak.CompareAndSwap(p, v) {
			return
		}
	}
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{limit: cfg.MemoryLimitBytes}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMemory reserves bytes of the given kind. With a hard limit it
// blocks until the bytes are available or ctx is done; a request larger
// than the limit fails at once with ErrExceedsLimit.
func (c *Controller) AcquireMemory(ctx context.Context, kind Kind, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if bytes > c.limit {
			return fmt.Errorf("%w: %s %d > %d", ErrExceedsLimit, kind, bytes, c.limit)
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.total.add(bytes)
	c.perKind[kind].add(bytes)
	return nil
}

// ReleaseMemory returns bytes previously reserved with AcquireMemory.
func (c *Controller) ReleaseMemory(kind Kind, bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.total.add(-bytes)
	c.perKind[kind].add(-bytes)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the burst are paid in burst-sized installments.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	c.ioBytes.Add(int64(bytes))
	if c.ioLimiter == nil {
		return nil
	}

	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// Usage returns the current accounting.
func (c *Controller) Usage() Usage {
	if c == nil {
		return Usage{}
	}
	return Usage{
		Frames:     c.perKind[Frames].cur.Load(),
		Trees:      c.perKind[Trees].cur.Load(),
		Peak:       c.total.peak.Load(),
		PeakFrames: c.perKind[Frames].peak.Load(),
		PeakTrees:  c.perKind[Trees].peak.Load(),
		IOBytes:    c.ioBytes.Load(),
	}
}
