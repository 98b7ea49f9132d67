package packstream

import "github.com/rs/zerolog"

// DefaultMaxDepth bounds the nesting of lists, maps and structures.
const DefaultMaxDepth = 64

// Options configures a Decoder.
type Options struct {
	// MaxDepth bounds container nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	// Overflow selects how 8-byte integers are decoded.
	Overflow OverflowMode

	// StrictStructures makes unknown structure tags fail with
	// ErrUnknownStructureTag instead of decoding to UnknownStructure.
	StrictStructures bool

	// LenientMarkers decodes reserved markers as Null instead of failing
	// with ErrMalformedEncoding.
	LenientMarkers bool

	// Logger receives soft-fail diagnostics. The zero Logger discards.
	Logger zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		MaxDepth: DefaultMaxDepth,
		Overflow: OverflowNative,
		Logger:   zerolog.Nop(),
	}
}
