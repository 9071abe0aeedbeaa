package engine

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdknn/index"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero points", func(c *Config) { c.Points = 0 }, false},
		{"negative points", func(c *Config) { c.Points = -1 }, true},
		{"zero step", func(c *Config) { c.KStep = 0 }, true},
		{"negative kmin", func(c *Config) { c.KMin = -1 }, true},
		{"kmax below kmin", func(c *Config) { c.KMin, c.KMax = 10, 5 }, true},
		{"single k", func(c *Config) { c.KMin, c.KMax = 3, 3 }, false},
		{"k zero", func(c *Config) { c.KMin, c.KMax = 0, 0 }, false},
		{"unknown variant", func(c *Config) { c.Variant = Variant(9) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateNegativeK(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KMin = -2

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, index.ErrInvalidK)
}

func TestConfig_KValues(t *testing.T) {
	assert.Equal(t, []int{5, 10, 15, 20}, DefaultConfig().KValues())
	assert.Equal(t, []int{3}, Config{KMin: 3, KMax: 3, KStep: 1}.KValues())
	assert.Equal(t, []int{1, 4}, Config{KMin: 1, KMax: 6, KStep: 3}.KValues())
	assert.Empty(t, Config{KMin: 5, KMax: 1, KStep: 1}.KValues())
	assert.Empty(t, Config{KMin: 1, KMax: 5}.KValues())
}

func TestParseVariant(t *testing.T) {
	tests := map[string]Variant{
		"replicate":   VariantReplicate,
		"standard":    VariantReplicate,
		"Partition":   VariantPartition,
		"kdtree":      VariantPartition,
		" sequential": VariantSequential,
	}
	for in, want := range tests {
		got, err := ParseVariant(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseVariant("gpu")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestVariant_Text(t *testing.T) {
	b, err := VariantPartition.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "partition", string(b))

	var v Variant
	require.NoError(t, v.UnmarshalText([]byte("sequential")))
	assert.Equal(t, VariantSequential, v)
	assert.Error(t, v.UnmarshalText([]byte("nope")))

	assert.Equal(t, "Unknown(7)", Variant(7).String())
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{Points: 10, KMin: 1, KMax: 2})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_ValidatePointsFitIdentityRange(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("int is 32 bits")
	}
	cfg := DefaultConfig()
	cfg.Points = math.MaxInt32
	cfg.Points++
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
