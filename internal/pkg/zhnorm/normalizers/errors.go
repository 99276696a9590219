package normalizers

import "errors"

var (
	// ErrInvalidConfiguration is returned when a normalizer cannot be built
	// from the options or the serialized definition it was given.
	ErrInvalidConfiguration = errors.New("normalizers: invalid configuration")

	// ErrUnknownKind is returned when a definition names a kind that was never
	// registered.
	ErrUnknownKind = errors.New("normalizers: unknown kind")
)
