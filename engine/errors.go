package engine

import "errors"

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("engine: invalid config")

	// ErrSequentialWorld is returned when the sequential variant runs in a
	// world with more than one rank.
	ErrSequentialWorld = errors.New("engine: sequential variant requires a single rank")

	// ErrProtocol is returned when a peer sends a payload of unexpected shape.
	//
	// This is an engine-layer sentinel; the kdknn package may translate it into
	// its public error contract.
	ErrProtocol = errors.New("engine: protocol violation")
)
