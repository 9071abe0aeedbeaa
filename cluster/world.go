package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kdknn/internal/wire"
	"github.com/hupe1980/kdknn/resource"
)

// linkKey addresses one directed, tagged channel between two ranks.
type linkKey struct {
	src, dst, tag int
}

// World is a fixed-size group of ranks.
type World struct {
	size        int
	compression wire.Compression
	rc          *resource.Controller
	logger      *slog.Logger

	mu    sync.Mutex
	links map[linkKey]chan []byte

	barrier *barrier
	stats   []rankStats
}

type rankStats struct {
	framesSent     atomic.Int64
	framesReceived atomic.Int64
	bytesSent      atomic.Int64
	payloadBytes   atomic.Int64
}

// Stats summarizes the traffic of one rank (or of the whole world).
type Stats struct {
	FramesSent     int64
	FramesReceived int64
	// BytesSent counts frame bytes after compression.
	BytesSent int64
	// PayloadBytes counts bytes before compression.
	PayloadBytes int64
}

// NewWorld creates a world of size ranks.
func NewWorld(size int, optFns ...Option) (*World, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorldSize, size)
	}

	w := &World{
		size:        size,
		compression: wire.CompressionNone,
		logger:      slog.New(slog.DiscardHandler),
		links:       make(map[linkKey]chan []byte),
		barrier:     newBarrier(size),
		stats:       make([]rankStats, size),
	}

	for _, fn := range optFns {
		fn(w)
	}

	return w, nil
}

// Size returns the number of ranks.
func (w *World) Size() int {
	return w.size
}

// Comm returns the communicator of rank. Most callers use Run instead.
func (w *World) Comm(rank int) (*Comm, error) {
	if rank < 0 || rank >= w.size {
		return nil, &ErrInvalidRank{Rank: rank, Size: w.size}
	}
	return newComm(w, rank), nil
}

// Run executes fn once per rank, each in its own goroutine, and waits for all
// of them. The first error cancels the context handed to the other ranks and
// is returned. A World whose Run failed must not be run again: ranks that
// were cancelled inside a collective leave the barrier mid-generation.
func (w *World) Run(ctx context.Context, fn func(ctx context.Context, comm *Comm) error) error {
	g, gctx := errgroup.WithContext(ctx)

	for rank := 0; rank < w.size; rank++ {
		comm := newComm(w, rank)
		g.Go(func() error {
			if err := fn(gctx, comm); err != nil {
				return &RankError{Rank: rank, Err: err}
			}
			return nil
		})
	}

	return g.Wait()
}

// Stats returns the aggregated traffic of all ranks.
func (w *World) Stats() Stats {
	var total Stats
	for rank := range w.stats {
		s := w.rankStats(rank)
		total.FramesSent += s.FramesSent
		total.FramesReceived += s.FramesReceived
		total.BytesSent += s.BytesSent
		total.PayloadBytes += s.PayloadBytes
	}
	return total
}

func (w *World) rankStats(rank int) Stats {
	s := &w.stats[rank]
	return Stats{
		FramesSent:     s.framesSent.Load(),
		FramesReceived: s.framesReceived.Load(),
		BytesSent:      s.bytesSent.Load(),
		PayloadBytes:   s.payloadBytes.Load(),
	}
}

// link returns the unbuffered channel for (src, dst, tag), creating it on first use.
func (w *World) link(src, dst, tag int) chan []byte {
	key := linkKey{src: src, dst: dst, tag: tag}

	w.mu.Lock()
	defer w.mu.Unlock()

	ch, ok := w.links[key]
	if !ok {
		ch = make(chan []byte)
		w.links[key] = ch
	}
	return ch
}
