package asset

import "go.uber.org/zap"

// ResolveOption configures a Resolve call.
type ResolveOption func(*resolveOptions)

type resolveOptions struct {
	loadTextures bool
	log          *zap.Logger
}

func defaultResolveOptions() resolveOptions {
	return resolveOptions{
		loadTextures: true,
		log:          zap.NewNop(),
	}
}

// WithTextures controls whether document textures are resolved.
// When false the graph has no textures and every material uses the fallback textures.
//
// Parameters:
//   - load: true to resolve textures
//
// Returns:
//   - ResolveOption: a function that applies the setting
func WithTextures(load bool) ResolveOption {
	return func(o *resolveOptions) {
		o.loadTextures = load
	}
}

// WithResolveLogger sets the logger used for resolution diagnostics.
//
// Parameters:
//   - log: the logger, nil for none
//
// Returns:
//   - ResolveOption: a function that applies the logger
func WithResolveLogger(log *zap.Logger) ResolveOption {
	return func(o *resolveOptions) {
		if log == nil {
			log = zap.NewNop()
		}
		o.log = log
	}
}
