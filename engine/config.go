package engine

import (
	"fmt"
	"strings"

	"github.com/hupe1980/kdknn/index"
	"github.com/hupe1980/kdknn/internal/conv"
)

// Variant selects the distribution strategy.
type Variant int

const (
	// VariantReplicate replicates the full dataset to every worker (exact).
	VariantReplicate Variant = iota
	// VariantPartition searches partition-local KD-trees (approximate).
	VariantPartition
	// VariantSequential is the single-process reference.
	VariantSequential
)

// String returns a string representation of the Variant.
func (v Variant) String() string {
	switch v {
	case VariantReplicate:
		return "replicate"
	case VariantPartition:
		return "partition"
	case VariantSequential:
		return "sequential"
	default:
		return fmt.Sprintf("Unknown(%d)", int(v))
	}
}

// ParseVariant converts a name into a Variant. "standard" and "kdtree" are
// accepted as aliases of replicate and partition.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "replicate", "standard":
		return VariantReplicate, nil
	case "partition", "kdtree":
		return VariantPartition, nil
	case "sequential":
		return VariantSequential, nil
	default:
		return 0, fmt.Errorf("%w: unknown variant %q", ErrInvalidConfig, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Default sweep.
const (
	DefaultPoints = 1000
	DefaultKMin   = 5
	DefaultKMax   = 20
	DefaultKStep  = 5
)

// Config describes one run.
type Config struct {
	// Points is the total number of generated points across all ranks.
	Points int
	// KMin, KMax and KStep define the sweep k = KMin, KMin+KStep, ... <= KMax.
	KMin  int
	KMax  int
	KStep int
	// Seed is the base seed. Rank r generates its points with Seed + r.
	Seed int64
	// Variant selects the distribution strategy.
	Variant Variant
}

// DefaultConfig returns the default sweep over 1000 points with k = 5, 10, 15, 20.
func DefaultConfig() Config {
	return Config{
		Points:  DefaultPoints,
		KMin:    DefaultKMin,
		KMax:    DefaultKMax,
		KStep:   DefaultKStep,
		Variant: VariantReplicate,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Points < 0 {
		return fmt.Errorf("%w: points must not be negative, got %d", ErrInvalidConfig, c.Points)
	}
	if _, err := conv.IntToInt32(c.Points); err != nil {
		return fmt.Errorf("%w: points exceed the identity range: %w", ErrInvalidConfig, err)
	}
	if c.KStep <= 0 {
		return fmt.Errorf("%w: kstep must be positive, got %d", ErrInvalidConfig, c.KStep)
	}
	if err := index.ValidateK(c.KMin); err != nil {
		return fmt.Errorf("%w: kmin: %w", ErrInvalidConfig, err)
	}
	if c.KMax < c.KMin {
		return fmt.Errorf("%w: kmax %d is below kmin %d", ErrInvalidConfig, c.KMax, c.KMin)
	}
	switch c.Variant {
	case VariantReplicate, VariantPartition, VariantSequential:
	default:
		return fmt.Errorf("%w: unknown variant %d", ErrInvalidConfig, int(c.Variant))
	}
	return nil
}

// KValues returns the k values of the sweep in order.
func (c Config) KValues() []int {
	if c.KStep <= 0 || c.KMax < c.KMin {
		return nil
	}
	ks := make([]int, 0, (c.KMax-c.KMin)/c.KStep+1)
	for k := c.KMin; k <= c.KMax; k += c.KStep {
		ks = append(ks, k)
	}
	return ks
}
