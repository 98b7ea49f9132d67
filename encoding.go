package packstream

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// Encode returns the PackStream encoding of v. A nil v encodes as null.
func Encode(v Value) ([]byte, error) {
	if v == nil {
		return EncodeNull(), nil
	}
	return v.appendTo(nil, 0)
}

// AppendEncode appends the encoding of v to dst.
func AppendEncode(dst []byte, v Value) ([]byte, error) {
	if v == nil {
		return append(dst, MarkerNull), nil
	}
	return v.appendTo(dst, 0)
}

func EncodeNull() []byte {
	return []byte{MarkerNull}
}

func EncodeBoolean(b bool) []byte {
	if b {
		return []byte{MarkerTrue}
	}
	return []byte{MarkerFalse}
}

// EncodeInteger encodes v. With WidthAuto the narrowest class is used;
// any other width forces that class, keeping only the low bytes of v when
// it does not fit. WidthTiny fails with ErrOverflow outside -16..127 since
// no tiny marker can hold such a value.
func EncodeInteger(v int64, width IntWidth) ([]byte, error) {
	return appendInt(nil, v, width)
}

func EncodeFloat(f float64) []byte {
	return appendFloat(nil, f)
}

func EncodeString(s string) ([]byte, error) {
	return String(s).appendTo(nil, 0)
}

func EncodeBytes(b []byte) ([]byte, error) {
	return Bytes(b).appendTo(nil, 0)
}

func EncodeList(items List) ([]byte, error) {
	return items.appendTo(nil, 0)
}

func EncodeMap(m Map) ([]byte, error) {
	return m.appendTo(nil, 0)
}

// EncodeStructure encodes s as a tiny-struct marker carrying the field
// count, the structure tag, and the fields as a map keyed by field name.
func EncodeStructure(s Structure) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil structure", ErrUnsupportedType)
	}
	return s.appendTo(nil, 0)
}

// intWidthFor picks the narrowest width class for v. Each sized class
// covers the half-open interval [-2^(n-1), 2^(n-1)).
func intWidthFor(v int64) IntWidth {
	switch {
	case v >= minTinyInt && v <= maxTinyInt:
		return WidthTiny
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return Width8
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return Width16
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return Width32
	}
	return Width64
}

func appendInt(dst []byte, v int64, width IntWidth) ([]byte, error) {
	if width == WidthAuto {
		width = intWidthFor(v)
	}
	switch width {
	case WidthTiny:
		if v < minTinyInt || v > maxTinyInt {
			return nil, fmt.Errorf("%w: %d does not fit a tiny int", ErrOverflow, v)
		}
		// Two's complement low byte: -16..-1 land on 0xF0..0xFF.
		return append(dst, byte(int8(v))), nil
	case Width8:
		return append(dst, MarkerInt8, byte(int8(v))), nil
	case Width16:
		dst = append(dst, MarkerInt16)
		return binary.BigEndian.AppendUint16(dst, uint16(int16(v))), nil
	case Width32:
		dst = append(dst, MarkerInt32)
		return binary.BigEndian.AppendUint32(dst, uint32(int32(v))), nil
	case Width64:
		dst = append(dst, MarkerInt64)
		return binary.BigEndian.AppendUint64(dst, uint64(v)), nil
	}
	return nil, fmt.Errorf("%w: integer width %d", ErrUnsupportedType, width)
}

func appendFloat(dst []byte, f float64) []byte {
	dst = append(dst, MarkerFloat)
	return binary.BigEndian.AppendUint64(dst, math.Float64bits(f))
}

// appendHeader writes the marker and length prefix for a sized value.
// tiny is zero for classes without a tiny form.
func appendHeader(dst []byte, n int, tiny, m8, m16, m32 byte) ([]byte, error) {
	switch {
	case n < 0 || n > MaxLength:
		return nil, fmt.Errorf("%w: length %d exceeds %d", ErrOverflow, n, MaxLength)
	case tiny != 0 && n <= maxTinySize:
		return append(dst, tiny|byte(n)), nil
	case n <= math.MaxUint8:
		return append(dst, m8, byte(n)), nil
	case n <= math.MaxUint16:
		dst = append(dst, m16)
		return binary.BigEndian.AppendUint16(dst, uint16(n)), nil
	}
	dst = append(dst, m32)
	return binary.BigEndian.AppendUint32(dst, uint32(n)), nil
}

func checkDepth(depth, max int) error {
	if depth > max {
		return fmt.Errorf("%w: deeper than %d", ErrDepthExceeded, max)
	}
	return nil
}

func (Null) appendTo(dst []byte, _ int) ([]byte, error) {
	return append(dst, MarkerNull), nil
}

func (b Bool) appendTo(dst []byte, _ int) ([]byte, error) {
	if b {
		return append(dst, MarkerTrue), nil
	}
	return append(dst, MarkerFalse), nil
}

func (i Int) appendTo(dst []byte, _ int) ([]byte, error) {
	return appendInt(dst, int64(i), WidthAuto)
}

func (t IntText) appendTo(dst []byte, _ int) ([]byte, error) {
	v, err := strconv.ParseInt(string(t), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: integer text %q: %s", ErrUnsupportedType, string(t), err)
	}
	return appendInt(dst, v, Width64)
}

func (f Float) appendTo(dst []byte, _ int) ([]byte, error) {
	return appendFloat(dst, float64(f)), nil
}

func (s String) appendTo(dst []byte, _ int) ([]byte, error) {
	if !utf8.ValidString(string(s)) {
		return nil, fmt.Errorf("%w: string is not valid UTF-8", ErrUnsupportedType)
	}
	dst, err := appendHeader(dst, len(s), MarkerTinyString, MarkerString8, MarkerString16, MarkerString32)
	if err != nil {
		return nil, err
	}
	return append(dst, s...), nil
}

func (b Bytes) appendTo(dst []byte, _ int) ([]byte, error) {
	dst, err := appendHeader(dst, len(b), 0, MarkerBytes8, MarkerBytes16, MarkerBytes32)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}

func (l List) appendTo(dst []byte, depth int) ([]byte, error) {
	if err := checkDepth(depth, DefaultMaxDepth); err != nil {
		return nil, err
	}
	dst, err := appendHeader(dst, len(l), MarkerTinyList, MarkerList8, MarkerList16, MarkerList32)
	if err != nil {
		return nil, err
	}
	for i, item := range l {
		if item == nil {
			item = Null{}
		}
		dst, err = item.appendTo(dst, depth+1)
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
	}
	return dst, nil
}

func (m Map) appendTo(dst []byte, depth int) ([]byte, error) {
	if err := checkDepth(depth, DefaultMaxDepth); err != nil {
		return nil, err
	}
	dst, err := appendHeader(dst, len(m), MarkerTinyMap, MarkerMap8, MarkerMap16, MarkerMap32)
	if err != nil {
		return nil, err
	}
	for _, e := range m {
		dst, err = String(e.Key).appendTo(dst, depth+1)
		if err != nil {
			return nil, fmt.Errorf("map key %q: %w", e.Key, err)
		}
		v := e.Value
		if v == nil {
			v = Null{}
		}
		dst, err = v.appendTo(dst, depth+1)
		if err != nil {
			return nil, fmt.Errorf("map value %q: %w", e.Key, err)
		}
	}
	return dst, nil
}

// appendStructure writes the structure header followed by the field map.
func appendStructure(dst []byte, s Structure, depth int) ([]byte, error) {
	if err := checkDepth(depth, DefaultMaxDepth); err != nil {
		return nil, err
	}
	fields := s.Fields()
	if len(fields) > maxTinySize {
		return nil, fmt.Errorf("%w: structure %s has %d fields", ErrOverflow, s.Tag(), len(fields))
	}
	dst = append(dst, MarkerTinyStruct|byte(len(fields)), byte(s.Tag()))
	return fields.appendTo(dst, depth+1)
}
