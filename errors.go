package sedeval

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrInvalidTimeRange indicates an event whose offset precedes its onset,
	// or whose onset is negative.
	ErrInvalidTimeRange = errors.New("sedeval: invalid event time range")

	// ErrInvalidConfiguration indicates an out-of-range engine parameter.
	ErrInvalidConfiguration = errors.New("sedeval: invalid configuration")

	// ErrLabelMismatch indicates a label outside the configured vocabulary.
	ErrLabelMismatch = errors.New("sedeval: label not in vocabulary")

	// ErrShapeMismatch indicates two rolls that cannot be compared frame by frame.
	ErrShapeMismatch = errors.New("sedeval: event roll shape mismatch")

	// ErrMultipleFiles indicates an event list spanning more than one file
	// where a single file was expected.
	ErrMultipleFiles = errors.New("sedeval: event list spans multiple files")

	// ErrMissingReference indicates an estimated item with no reference item.
	ErrMissingReference = errors.New("sedeval: no reference for estimated item")

	// ErrMissingEstimate indicates a reference item the system produced no
	// output for, where every reference item must be estimated.
	ErrMissingEstimate = errors.New("sedeval: no estimate for reference item")

	// ErrLengthMismatch indicates paired vectors of different lengths.
	ErrLengthMismatch = errors.New("sedeval: input lengths differ")
)
