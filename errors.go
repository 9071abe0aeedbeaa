package kdknn

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kdknn/cluster"
	"github.com/hupe1980/kdknn/engine"
	"github.com/hupe1980/kdknn/internal/wire"
	"github.com/hupe1980/kdknn/partition"
	"github.com/hupe1980/kdknn/resource"
)

var (
	// ErrInvalidConfig is returned when a run configuration is rejected.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("workers must be positive")

	// ErrSequentialWorkers is returned when the sequential variant is asked
	// to run with more than one worker.
	ErrSequentialWorkers = errors.New("sequential variant requires exactly one worker")

	// ErrProtocol is returned when ranks exchanged malformed data.
	ErrProtocol = errors.New("protocol violation")

	// ErrResourceExhausted is returned when a reservation can never fit the
	// configured memory limit.
	ErrResourceExhausted = errors.New("resource limit exhausted")
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, engine.ErrInvalidConfig) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if errors.Is(err, cluster.ErrInvalidWorldSize) || errors.Is(err, partition.ErrInvalidWorkers) {
		return fmt.Errorf("%w: %w", ErrInvalidWorkers, err)
	}
	if errors.Is(err, engine.ErrSequentialWorld) {
		return fmt.Errorf("%w: %w", ErrSequentialWorkers, err)
	}
	if errors.Is(err, engine.ErrProtocol) ||
		errors.Is(err, wire.ErrCorruptFrame) ||
		errors.Is(err, wire.ErrShortRecord) {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if errors.Is(err, resource.ErrExceedsLimit) {
		return fmt.Errorf("%w: %w", ErrResourceExhausted, err)
	}

	return err
}
