package pipeline

import "errors"

var (
	ErrNilNormalizer  = errors.New("pipeline: normalizer is nil")
	ErrInvalidOptions = errors.New("pipeline: invalid options")
)
