package packstream

import "errors"

var (
	// ErrMalformedEncoding reports a marker or length that does not match
	// what the decoder expected, or a fixed-size value of the wrong size.
	ErrMalformedEncoding = errors.New("packstream: malformed encoding")

	// ErrTruncatedStream reports a declared length or count that runs past
	// the end of the buffer.
	ErrTruncatedStream = errors.New("packstream: truncated stream")

	// ErrInvalidKeyType reports a map key that is not a string.
	ErrInvalidKeyType = errors.New("packstream: map key is not a string")

	// ErrUnsupportedType reports a value with no encoding.
	ErrUnsupportedType = errors.New("packstream: unsupported type")

	// ErrUnknownStructureTag is only returned when Options.StrictStructures
	// is set; otherwise unknown tags decode to UnknownStructure.
	ErrUnknownStructureTag = errors.New("packstream: unknown structure tag")

	ErrDepthExceeded = errors.New("packstream: nesting depth exceeded")
	ErrOverflow      = errors.New("packstream: length or integer overflow")
)
