package loader

import "go.uber.org/zap"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets the maximum number of images decoded concurrently.
//
// Parameters:
//   - n: the worker count, values below 1 are treated as 1
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithLogger is an option builder that sets the logger used for decode diagnostics.
//
// Parameters:
//   - log: the logger, nil for none
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger to a loader
func WithLogger(log *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if log != nil {
			l.log = log
		}
	}
}
