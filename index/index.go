package index

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kdknn/model"
)

// ErrInvalidK is returned when k is negative.
var ErrInvalidK = errors.New("k must not be negative")

// Searcher answers k-nearest-neighbor queries over a fixed set of points.
type Searcher interface {
	// Search returns exactly k neighbors of target in ascending distance order.
	Search(target model.Point, k int) []model.Neighbor

	// Len returns the number of candidate points.
	Len() int
}

// Type identifies an index implementation.
type Type int

const (
	TypeKDTree Type = iota
	TypeFlat
)

// String returns a string representation of the Type.
func (t Type) String() string {
	switch t {
	case TypeKDTree:
		return "kdtree"
	case TypeFlat:
		return "flat"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// ValidateK checks a requested neighbor count.
func ValidateK(k int) error {
	if k < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	return nil
}
