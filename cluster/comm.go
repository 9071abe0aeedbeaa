package cluster

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hupe1980/kdknn/internal/wire"
	"github.com/hupe1980/kdknn/resource"
)

// Reserved tags for collectives. User tags are non-negative.
const (
	tagBcast   = -1
	tagGather  = -2
	tagScatter = -3
)

// Comm is the handle one rank uses to talk to the rest of its world.
// A Comm must only be used by the goroutine running that rank.
type Comm struct {
	world  *World
	rank   int
	logger *slog.Logger
}

func newComm(w *World, rank int) *Comm {
	return &Comm{world: w, rank: rank, logger: w.logger.With("rank", rank)}
}

// Rank returns the rank of the caller.
func (c *Comm) Rank() int {
	return c.rank
}

// Size returns the number of ranks in the world.
func (c *Comm) Size() int {
	return c.world.size
}

// Stats returns the traffic of this rank so far.
func (c *Comm) Stats() Stats {
	return c.world.rankStats(c.rank)
}

func (c *Comm) checkPeer(peer int) error {
	if peer < 0 || peer >= c.world.size {
		return &ErrInvalidRank{Rank: peer, Size: c.world.size}
	}
	if peer == c.rank {
		return ErrSelfMessage
	}
	return nil
}

func (c *Comm) checkRoot(root int) error {
	if root < 0 || root >= c.world.size {
		return &ErrInvalidRank{Rank: root, Size: c.world.size}
	}
	return nil
}

// Send delivers payload to dst under tag. It blocks until dst receives it.
func (c *Comm) Send(ctx context.Context, dst, tag int, payload []byte) error {
	if tag < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTag, tag)
	}
	if err := c.checkPeer(dst); err != nil {
		return err
	}
	return c.send(ctx, dst, tag, payload)
}

// Recv blocks until src sends a payload under tag.
func (c *Comm) Recv(ctx context.Context, src, tag int) ([]byte, error) {
	if tag < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTag, tag)
	}
	if err := c.checkPeer(src); err != nil {
		return nil, err
	}
	return c.recv(ctx, src, tag)
}

func (c *Comm) send(ctx context.Context, dst, tag int, payload []byte) error {
	w := c.world

	frame, err := wire.Compress(payload, w.compression)
	if err != nil {
		return err
	}

	if err := w.rc.AcquireIO(ctx, len(frame)); err != nil {
		return err
	}

	select {
	case w.link(c.rank, dst, tag) <- frame:
		s := &w.stats[c.rank]
		s.framesSent.Add(1)
		s.bytesSent.Add(int64(len(frame)))
		s.payloadBytes.Add(int64(len(payload)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// recv charges a frame against the memory limit once it has been handed over,
// until it is decompressed. Blocked senders hold no memory.
func (c *Comm) recv(ctx context.Context, src, tag int) ([]byte, error) {
	w := c.world

	var frame []byte
	select {
	case frame = <-w.link(src, c.rank, tag):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	w.stats[c.rank].framesReceived.Add(1)

	size := int64(len(frame))
	if err := w.rc.AcquireMemory(ctx, resource.Frames, size); err != nil {
		return nil, err
	}
	defer w.rc.ReleaseMemory(resource.Frames, size)

	return wire.Decompress(frame)
}

// Barrier blocks until every rank has entered it.
func (c *Comm) Barrier(ctx context.Context) error {
	return c.world.barrier.wait(ctx)
}

// Bcast copies root's data to every rank. Non-root ranks pass nil and get the
// root's data back.
func (c *Comm) Bcast(ctx context.Context, root int, data []byte) ([]byte, error) {
	if err := c.checkRoot(root); err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "collective", "op", "bcast", "root", root)

	out := data
	if c.rank == root {
		for r := 0; r < c.world.size; r++ {
			if r == root {
				continue
			}
			if err := c.send(ctx, r, tagBcast, data); err != nil {
				return nil, err
			}
		}
	} else {
		var err error
		if out, err = c.recv(ctx, root, tagBcast); err != nil {
			return nil, err
		}
	}

	if err := c.Barrier(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// Gather collects one variable-length buffer per rank at root. Root receives
// them indexed by rank; every other rank receives nil.
func (c *Comm) Gather(ctx context.Context, root int, data []byte) ([][]byte, error) {
	if err := c.checkRoot(root); err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "collective", "op", "gather", "root", root, "bytes", len(data))

	var parts [][]byte
	if c.rank == root {
		parts = make([][]byte, c.world.size)
		parts[root] = data
		for r := 0; r < c.world.size; r++ {
			if r == root {
				continue
			}
			part, err := c.recv(ctx, r, tagGather)
			if err != nil {
				return nil, err
			}
			parts[r] = part
		}
	} else if err := c.send(ctx, root, tagGather, data); err != nil {
		return nil, err
	}

	if err := c.Barrier(ctx); err != nil {
		return nil, err
	}
	return parts, nil
}

// Scatter hands parts[r] from root to rank r. Only root's parts are read;
// it must hold exactly Size entries.
func (c *Comm) Scatter(ctx context.Context, root int, parts [][]byte) ([]byte, error) {
	if err := c.checkRoot(root); err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "collective", "op", "scatter", "root", root)

	var out []byte
	if c.rank == root {
		if len(parts) != c.world.size {
			return nil, fmt.Errorf("%w: %d parts, %d ranks", ErrSizeMismatch, len(parts), c.world.size)
		}
		for r := 0; r < c.world.size; r++ {
			if r == root {
				continue
			}
			if err := c.send(ctx, r, tagScatter, parts[r]); err != nil {
				return nil, err
			}
		}
		out = parts[root]
	} else {
		var err error
		if out, err = c.recv(ctx, root, tagScatter); err != nil {
			return nil, err
		}
	}

	if err := c.Barrier(ctx); err != nil {
		return nil, err
	}
	return out, nil
}
