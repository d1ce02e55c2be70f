package scene

import "go.uber.org/zap"

// EvaluatorBuilderOption is a functional option for configuring an Evaluator.
// Use the With* functions to create options.
type EvaluatorBuilderOption func(e *evaluator)

// WithSkeletons makes Evaluate append a debug skeleton record after every skinned node.
//
// Parameters:
//   - enabled: true to emit skeleton records
//
// Returns:
//   - EvaluatorBuilderOption: option function to apply
func WithSkeletons(enabled bool) EvaluatorBuilderOption {
	return func(e *evaluator) {
		e.skeletons = enabled
	}
}

// WithLogger sets the logger used for evaluation diagnostics.
//
// Parameters:
//   - log: the logger, nil for none
//
// Returns:
//   - EvaluatorBuilderOption: option function to apply
func WithLogger(log *zap.Logger) EvaluatorBuilderOption {
	return func(e *evaluator) {
		if log != nil {
			e.log = log
		}
	}
}
