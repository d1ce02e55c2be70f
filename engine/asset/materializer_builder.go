package asset

import "go.uber.org/zap"

// MaterializerBuilderOption is a functional option for configuring a Materializer via NewMaterializer.
type MaterializerBuilderOption func(*materializer)

// WithMaterializerLogger sets the logger used for upload diagnostics.
//
// Parameters:
//   - log: the logger, nil for none
//
// Returns:
//   - MaterializerBuilderOption: a function that applies the logger to a materializer
func WithMaterializerLogger(log *zap.Logger) MaterializerBuilderOption {
	return func(m *materializer) {
		if log != nil {
			m.log = log
		}
	}
}
