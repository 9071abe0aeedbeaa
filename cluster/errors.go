package cluster

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWorldSize is returned when a world would have no ranks.
	ErrInvalidWorldSize = errors.New("cluster: world size must be positive")

	// ErrSizeMismatch is returned when a scatter root provides a part count
	// different from the world size.
	ErrSizeMismatch = errors.New("cluster: part count does not match world size")

	// ErrSelfMessage is returned by a point-to-point call addressed to the caller.
	// A synchronous send to oneself could never complete.
	ErrSelfMessage = errors.New("cluster: point-to-point message to self")

	// ErrInvalidTag is returned for negative user tags, which are reserved for collectives.
	ErrInvalidTag = errors.New("cluster: tag must not be negative")
)

// ErrInvalidRank indicates a rank outside [0, Size).
type ErrInvalidRank struct {
	Rank int
	Size int
}

func (e *ErrInvalidRank) Error() string {
	return fmt.Sprintf("cluster: rank %d out of range [0, %d)", e.Rank, e.Size)
}

// RankError wraps the error a rank returned from its Run function.
type RankError struct {
	Rank int
	Err  error
}

func (e *RankError) Error() string {
	return fmt.Sprintf("rank %d: %v", e.Rank, e.Err)
}

func (e *RankError) Unwrap() error { return e.Err }
