package asset

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of these; test with errors.Is.
var (
	// ErrIO is returned when an asset source cannot be read.
	ErrIO = errors.New("asset io error")

	// ErrParse is returned when an asset source is not a well-formed document.
	ErrParse = errors.New("asset parse error")

	// ErrResourceResolution is returned when a document index is out of range or a structural
	// invariant does not hold.
	ErrResourceResolution = errors.New("resource resolution error")

	// ErrUnsupportedFeature is returned for sparse accessors, morph targets and extensions.
	ErrUnsupportedFeature = errors.New("unsupported feature")

	// ErrOutOfRange is returned by accessor reads beyond the element count or arity.
	ErrOutOfRange = errors.New("accessor access out of range")

	// ErrMissingAttribute is returned when a primitive lacks POSITION for a non-indexed draw.
	ErrMissingAttribute = errors.New("missing attribute")

	// ErrMalformedHierarchy is returned when node traversal detects a cycle.
	ErrMalformedHierarchy = errors.New("malformed node hierarchy")

	// ErrGpuResource is returned when the device fails to allocate or upload a resource.
	ErrGpuResource = errors.New("gpu resource error")

	// ErrUnknownAsset is returned by Manager operations given an unregistered asset id.
	ErrUnknownAsset = errors.New("unknown asset")
)

func resolutionError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrResourceResolution, fmt.Sprintf(format, args...))
}

func unsupportedError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFeature, fmt.Sprintf(format, args...))
}

func gpuError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrGpuResource, op, err)
}
