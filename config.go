package kdknn

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/kdknn/engine"
	"github.com/hupe1980/kdknn/resource"
)

// FileConfig is the YAML run configuration. Absent fields keep the values of
// the base configuration they are applied to.
//
//	points: 5000
//	workers: 4
//	variant: partition
//	seed: 42
//	k:
//	  min: 5
//	  max: 20
//	  step: 5
//	format: json
//	compression: zstd
//	log-level: debug
//	metrics-addr: ":2112"
//	repeat: 3
//	limits:
//	  memory-bytes: 268435456
//	  io-bytes-per-sec: 0
type FileConfig struct {
	Points  *int            `yaml:"points"`
	Workers *int            `yaml:"workers"`
	Variant *engine.Variant `yaml:"variant"`
	Seed    *int64          `yaml:"seed"`
	K       struct {
		Min  *int `yaml:"min"`
		Max  *int `yaml:"max"`
		Step *int `yaml:"step"`
	} `yaml:"k"`
	Format      string `yaml:"format"`
	Compression string `yaml:"compression"`
	LogLevel    string `yaml:"log-level"`
	MetricsAddr string `yaml:"metrics-addr"`
	// Repeat is the number of timed runs per worker count in scaling mode.
	Repeat *int `yaml:"repeat"`
	Limits struct {
		MemoryBytes   int64 `yaml:"memory-bytes"`
		IOBytesPerSec int64 `yaml:"io-bytes-per-sec"`
	} `yaml:"limits"`
}

// ReadConfig reads a YAML configuration file.
func ReadConfig(file string) (*FileConfig, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML configuration.
func ParseConfig(data []byte) (*FileConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &fc, nil
}

// Apply overlays the fields present in fc onto base.
func (fc *FileConfig) Apply(base Config) Config {
	if fc.Points != nil {
		base.Points = *fc.Points
	}
	if fc.Variant != nil {
		base.Variant = *fc.Variant
	}
	if fc.Seed != nil {
		base.Seed = *fc.Seed
	}
	if fc.K.Min != nil {
		base.KMin = *fc.K.Min
	}
	if fc.K.Max != nil {
		base.KMax = *fc.K.Max
	}
	if fc.K.Step != nil {
		base.KStep = *fc.K.Step
	}
	return base
}

// Options returns the run options described by fc.
func (fc *FileConfig) Options() ([]Option, error) {
	var opts []Option

	if fc.Workers != nil {
		opts = append(opts, WithWorkers(*fc.Workers))
	}
	if fc.Compression != "" {
		c, err := ParseCompression(fc.Compression)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithCompression(c))
	}
	if fc.Repeat != nil {
		opts = append(opts, WithRepeats(*fc.Repeat))
	}
	if fc.Limits.MemoryBytes != 0 || fc.Limits.IOBytesPerSec != 0 {
		opts = append(opts, WithResourceLimits(resource.Config{
			MemoryLimitBytes:   fc.Limits.MemoryBytes,
			IOLimitBytesPerSec: fc.Limits.IOBytesPerSec,
		}))
	}

	return opts, nil
}

// Level returns the configured log level, or def if none is set.
func (fc *FileConfig) Level(def slog.Level) (slog.Level, error) {
	if fc.LogLevel == "" {
		return def, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(fc.LogLevel)); err != nil {
		return def, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return l, nil
}
