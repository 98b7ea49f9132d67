package packstream

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Decoder decodes PackStream values. A Decoder holds no mutable state and
// is safe for concurrent use.
type Decoder struct {
	opts Options
}

func NewDecoder(opts Options) *Decoder {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Decoder{opts: opts}
}

var defaultDecoder = NewDecoder(DefaultOptions())

// Decode decodes the value at the start of b with the default options.
// Bytes after the value are ignored.
func Decode(b []byte) (Value, error) {
	return defaultDecoder.Decode(b)
}

func DecodeList(b []byte) (List, error) {
	return defaultDecoder.DecodeList(b)
}

func DecodeMap(b []byte) (Map, error) {
	return defaultDecoder.DecodeMap(b)
}

func DecodeStructure(b []byte) (Structure, error) {
	return defaultDecoder.DecodeStructure(b)
}

// Decode decodes the value at the start of b. Bytes after the value are
// ignored.
func (d *Decoder) Decode(b []byte) (Value, error) {
	v, _, err := d.decodeValue(b, 0)
	return v, err
}

// DecodeNext decodes the value at the start of b and returns the bytes
// that follow it.
func (d *Decoder) DecodeNext(b []byte) (Value, []byte, error) {
	v, n, err := d.decodeValue(b, 0)
	if err != nil {
		return nil, b, err
	}
	return v, b[n:], nil
}

func (d *Decoder) DecodeList(b []byte) (List, error) {
	if err := expectClass(b, ClassList); err != nil {
		return nil, err
	}
	v, _, err := d.decodeValue(b, 0)
	if err != nil {
		return nil, err
	}
	return v.(List), nil
}

func (d *Decoder) DecodeMap(b []byte) (Map, error) {
	if err := expectClass(b, ClassMap); err != nil {
		return nil, err
	}
	v, _, err := d.decodeValue(b, 0)
	if err != nil {
		return nil, err
	}
	return v.(Map), nil
}

func (d *Decoder) DecodeStructure(b []byte) (Structure, error) {
	if err := expectClass(b, ClassStruct); err != nil {
		return nil, err
	}
	v, _, err := d.decodeValue(b, 0)
	if err != nil {
		return nil, err
	}
	return v.(Structure), nil
}

// DecodeInteger decodes a tiny or sized integer. In OverflowText mode an
// 8-byte integer is returned as IntText; everything else is an Int.
func (d *Decoder) DecodeInteger(b []byte) (Value, error) {
	return DecodeInteger(b, d.opts.Overflow)
}

func DecodeNull(b []byte) (Null, error) {
	if len(b) == 0 {
		return Null{}, fmt.Errorf("%w: no marker byte", ErrTruncatedStream)
	}
	if b[0] != MarkerNull {
		return Null{}, fmt.Errorf("%w: marker 0x%02X is not null", ErrMalformedEncoding, b[0])
	}
	return Null{}, nil
}

// DecodeBoolean requires b to be exactly one byte long.
func DecodeBoolean(b []byte) (bool, error) {
	if len(b) != 1 {
		return false, fmt.Errorf("%w: boolean is %d bytes, want 1", ErrMalformedEncoding, len(b))
	}
	switch b[0] {
	case MarkerTrue:
		return true, nil
	case MarkerFalse:
		return false, nil
	}
	return false, fmt.Errorf("%w: marker 0x%02X is not a boolean", ErrMalformedEncoding, b[0])
}

func DecodeInteger(b []byte, mode OverflowMode) (Value, error) {
	h, err := readHeader(b)
	if err != nil {
		return nil, err
	}
	if h.class != ClassTinyInt && h.class != ClassInt {
		return nil, fmt.Errorf("%w: marker 0x%02X is not an integer", ErrMalformedEncoding, h.marker)
	}
	return decodeInt(b, h, mode)
}

func DecodeFloat(b []byte) (float64, error) {
	if err := expectClass(b, ClassFloat); err != nil {
		return 0, err
	}
	if len(b) < 9 {
		return 0, fmt.Errorf("%w: float needs 9 bytes, have %d", ErrTruncatedStream, len(b))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b[1:9])), nil
}

// DecodeString decodes exactly the declared span; trailing bytes are
// ignored.
func DecodeString(b []byte) (string, error) {
	h, err := readHeader(b)
	if err != nil {
		return "", err
	}
	if h.class != ClassString {
		return "", fmt.Errorf("%w: marker 0x%02X is not a string", ErrMalformedEncoding, h.marker)
	}
	return decodeText(b, h)
}

func DecodeBytes(b []byte) ([]byte, error) {
	h, err := readHeader(b)
	if err != nil {
		return nil, err
	}
	if h.class != ClassBytes {
		return nil, fmt.Errorf("%w: marker 0x%02X is not a byte buffer", ErrMalformedEncoding, h.marker)
	}
	payload, err := span(b, h)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func expectClass(b []byte, want Class) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: no marker byte", ErrTruncatedStream)
	}
	if c := ClassOf(b[0]); c != want {
		return fmt.Errorf("%w: marker 0x%02X is %s, want %s", ErrMalformedEncoding, b[0], c, want)
	}
	return nil
}

// span returns the payload of a non-container value.
func span(b []byte, h header) ([]byte, error) {
	end := h.lead + h.size
	if end > len(b) {
		return nil, fmt.Errorf("%w: %s needs %d bytes, have %d", ErrTruncatedStream, h.class, end, len(b))
	}
	return b[h.lead:end], nil
}

func decodeText(b []byte, h header) (string, error) {
	payload, err := span(b, h)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(payload) {
		return "", fmt.Errorf("%w: string is not valid UTF-8", ErrMalformedEncoding)
	}
	return string(payload), nil
}

func decodeInt(b []byte, h header, mode OverflowMode) (Value, error) {
	if h.class == ClassTinyInt {
		return Int(int8(h.marker)), nil
	}
	p, err := span(b, h)
	if err != nil {
		return nil, err
	}
	switch h.marker {
	case MarkerInt8:
		return Int(int8(p[0])), nil
	case MarkerInt16:
		return Int(int16(binary.BigEndian.Uint16(p))), nil
	case MarkerInt32:
		return Int(int32(binary.BigEndian.Uint32(p))), nil
	}
	v := int64(binary.BigEndian.Uint64(p))
	if mode == OverflowText {
		return IntText(strconv.FormatInt(v, 10)), nil
	}
	return Int(v), nil
}

// decodeValue decodes the value at b[0] and reports how many bytes it
// spans.
func (d *Decoder) decodeValue(b []byte, depth int) (Value, int, error) {
	h, err := readHeader(b)
	if err != nil {
		return nil, 0, err
	}

	switch h.class {
	case ClassNull:
		return Null{}, 1, nil
	case ClassBool:
		return Bool(h.marker == MarkerTrue), 1, nil
	case ClassTinyInt, ClassInt:
		v, err := decodeInt(b, h, d.opts.Overflow)
		return v, h.lead + h.size, err
	case ClassFloat:
		f, err := DecodeFloat(b)
		return Float(f), 9, err
	case ClassString:
		s, err := decodeText(b, h)
		return String(s), h.lead + h.size, err
	case ClassBytes:
		p, err := span(b, h)
		if err != nil {
			return nil, 0, err
		}
		out := make(Bytes, len(p))
		copy(out, p)
		return out, h.lead + h.size, nil
	case ClassList:
		return d.decodeList(b, h, depth)
	case ClassMap:
		return d.decodeMap(b, h, depth)
	case ClassStruct:
		return d.decodeStructure(b, h, depth)
	}

	if d.opts.LenientMarkers {
		d.softFail("unknown_marker", h.marker).Msg("decoding reserved marker as null")
		return Null{}, 1, nil
	}
	return nil, 0, fmt.Errorf("%w: reserved marker 0x%02X", ErrMalformedEncoding, h.marker)
}

// capacity bounds a preallocation by the bytes left, since every element
// takes at least one byte.
func capacity(count, remaining int) int {
	if count > remaining {
		return remaining
	}
	return count
}

func (d *Decoder) decodeList(b []byte, h header, depth int) (Value, int, error) {
	if err := checkDepth(depth, d.opts.MaxDepth); err != nil {
		return nil, 0, err
	}
	off := h.lead
	out := make(List, 0, capacity(h.size, len(b)-off))
	for len(out) < h.size {
		if off >= len(b) {
			return nil, 0, fmt.Errorf("%w: list declares %d elements, found %d", ErrTruncatedStream, h.size, len(out))
		}
		v, n, err := d.decodeValue(b[off:], depth+1)
		if err != nil {
			return nil, 0, fmt.Errorf("list element %d: %w", len(out), err)
		}
		out = append(out, v)
		off += n
	}
	return out, off, nil
}

func (d *Decoder) decodeMap(b []byte, h header, depth int) (Value, int, error) {
	if err := checkDepth(depth, d.opts.MaxDepth); err != nil {
		return nil, 0, err
	}
	off := h.lead
	out := make(Map, 0, capacity(h.size, (len(b)-off)/2))
	for len(out) < h.size {
		if off >= len(b) {
			return nil, 0, fmt.Errorf("%w: map declares %d entries, found %d", ErrTruncatedStream, h.size, len(out))
		}
		k, n, err := d.decodeValue(b[off:], depth+1)
		if err != nil {
			return nil, 0, fmt.Errorf("map key %d: %w", len(out), err)
		}
		key, ok := k.(String)
		if !ok {
			return nil, 0, fmt.Errorf("%w: key %d is %T", ErrInvalidKeyType, len(out), k)
		}
		off += n
		if off >= len(b) {
			return nil, 0, fmt.Errorf("%w: map key %q has no value", ErrTruncatedStream, string(key))
		}
		v, n, err := d.decodeValue(b[off:], depth+1)
		if err != nil {
			return nil, 0, fmt.Errorf("map value %q: %w", string(key), err)
		}
		out = append(out, MapEntry{Key: string(key), Value: v})
		off += n
	}
	return out, off, nil
}

// softFail starts a warning for one of the two documented soft-fail paths,
// so they can be told apart from corruption, which is returned as an error.
func (d *Decoder) softFail(event string, b byte) *zerolog.Event {
	return d.opts.Logger.Warn().
		Bool("soft_fail", true).
		Str("event", event).
		Str("byte", fmt.Sprintf("0x%02X", b))
}
