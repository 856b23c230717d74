package channel

import "errors"

// Domain errors for channel operations.
var (
	// ErrInvalidConfig indicates a non-physical channel parameter.
	ErrInvalidConfig = errors.New("channel: invalid configuration")

	// ErrTooShort indicates the centerline has too few points for the operation.
	ErrTooShort = errors.New("channel: centerline too short")

	// ErrInactive indicates an operation that requires an active channel.
	ErrInactive = errors.New("channel: channel is not active")
)
