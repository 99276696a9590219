package pipeline

import (
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Option configures a Pipeline.
type Option func(*config)

type config struct {
	Workers int `validate:"min=1,max=1024"`
	logger  zerolog.Logger
}

func defaultConfig() config {
	return config{
		Workers: runtime.NumCPU(),
		logger:  zerolog.Nop(),
	}
}

var validate = validator.New()

// WithWorkers sets how many texts NormalizeBatch processes at once
// (default: runtime.NumCPU()).
func WithWorkers(n int) Option {
	return func(c *config) {
		c.Workers = n
	}
}

// WithLogger sets the logger (default: disabled).
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
