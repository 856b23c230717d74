package network

import "errors"

var (
	// ErrUnknownChannel indicates an id that is not in the arena.
	ErrUnknownChannel = errors.New("network: unknown channel id")

	// ErrInvalidConfig indicates an unusable stepper configuration.
	ErrInvalidConfig = errors.New("network: invalid stepper configuration")
)
