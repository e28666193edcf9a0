package readonly

import "log/slog"

type config struct {
	concurrency int
	logger      *slog.Logger
}

func newConfig(opts []Option) *config {
	cfg := &config{
		concurrency: 1,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option can be passed to [Check] to configure its behaviour.
type Option func(*config)

// WithConcurrency sets the maximum number of function and method declarations which are checked at the same time.
// Values less than 1 are treated as 1. The default is 1.
func WithConcurrency(n int) Option {
	return func(cfg *config) {
		cfg.concurrency = max(n, 1)
	}
}

// WithLogger sets the logger which progress is logged to at debug level. Nothing is logged by default.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}
