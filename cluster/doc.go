// Package cluster provides a fixed-size process group for in-process ranks.
//
// A World owns size ranks. Run starts one goroutine per rank and hands each a
// Comm, which offers rank discovery, blocking point-to-point messages and the
// collectives used by the coordinator:
//
//   - Send/Recv: synchronous rendezvous; Send returns once the receiver took the frame
//   - Bcast: one-to-all copy of a root buffer
//   - Gather: all-to-one, variable length per rank, delivered in rank order
//   - Scatter: one-to-all, variable length per rank
//   - Barrier: returns once every rank has entered it
//
// Every collective ends in a barrier, so no rank leaves a collective before
// all ranks have entered it. There are no timeouts: a rank that never reaches
// a matching call stalls its peers until the context passed to Run is
// canceled. The first rank to return an error cancels that context, so a run
// either completes on every rank or fails as a whole.
//
// Frames travel through internal/wire compression and are charged against an
// optional resource.Controller: senders pay the byte-rate limit, receivers
// reserve frame memory while they decode.
package cluster
