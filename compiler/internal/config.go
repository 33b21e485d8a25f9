package internal

import "github.com/rs/zerolog"

// Option describes a function used to configure a compilation.
type Option func(*Options)

type Options struct {
	// OutputDir receives the .vm files. When empty every file is written next to its
	// source.
	OutputDir string
	// ContinueOnError keeps compiling the remaining files of a directory after a failure.
	// All failures are returned together.
	ContinueOnError bool
	Logger          zerolog.Logger
}

func newOptions(opts []Option) *Options {
	cfg := &Options{Logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func WithOutputDir(dir string) Option {
	return func(cfg *Options) {
		cfg.OutputDir = dir
	}
}

func WithContinueOnError(enabled bool) Option {
	return func(cfg *Options) {
		cfg.ContinueOnError = enabled
	}
}

// WithLogger sets the logger for compile events. Nothing is logged by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *Options) {
		cfg.Logger = logger
	}
}
