package corrframe

import "errors"

// Conversion errors. Convert wraps these with context; match with errors.Is.
var (
	// ErrShapeMismatch means the real and imaginary block arrays disagree on
	// shape, or a block array is not 2-D.
	ErrShapeMismatch = errors.New("real/imaginary shape mismatch")

	// ErrInvalidShape means the flat payload length is not an exact multiple
	// of the time extent, so the per-channel reshape is malformed.
	ErrInvalidShape = errors.New("flat length not divisible by time extent")

	// ErrSchema means the group is missing required datasets or its
	// level/label key pairs are inconsistent.
	ErrSchema = errors.New("malformed group schema")

	// ErrLabelRange means a label indexes outside its level array.
	ErrLabelRange = errors.New("label out of range for level set")
)
