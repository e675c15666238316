package dataprep

import (
	"log/slog"

	"segkit/internal/logging"
)

type options struct {
	logger *slog.Logger
}

// Option configures a Tracker or FeatureEngineer.
type Option func(*options)

// WithLogger sets the logger used for registration and replay events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.L()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
