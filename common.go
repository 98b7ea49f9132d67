package packstream

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// tagKey is the struct tag consulted by Marshal and Unmarshal, e.g.
// `packstream:"name,omitempty"`. A tag of "-" skips the field.
const tagKey = "packstream"

var (
	valueType = reflect.TypeOf((*Value)(nil)).Elem()
	timeType  = reflect.TypeOf(time.Time{})
)

// structField is one encodable field of a Go struct.
type structField struct {
	index     int
	name      string
	omitEmpty bool
}

// parseStructTag returns the wire name of f and whether it is skipped.
func parseStructTag(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag, ok := f.Tag.Lookup(tagKey)
	if !ok {
		return f.Name, false, false
	}
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, opts == "omitempty", false
}

// structFields returns the exported fields of t in declaration order, which
// is also their order on the wire. t.Kind() must be reflect.Struct.
func structFields(t reflect.Type) ([]structField, error) {
	fields := make([]structField, 0, t.NumField())
	seen := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, omitEmpty, skip := parseStructTag(f)
		if skip {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s has duplicate key %q", ErrUnsupportedType, t, name)
		}
		seen[name] = true
		fields = append(fields, structField{index: i, name: name, omitEmpty: omitEmpty})
	}
	return fields, nil
}

// Marshal encodes a native Go value. See FromNative for the accepted
// shapes.
func Marshal(v any) ([]byte, error) {
	val, err := FromNative(v)
	if err != nil {
		return nil, err
	}
	return Encode(val)
}

// FromNative converts a Go value to a Value. It accepts nil, Values, bools,
// integers, floats, strings, byte slices and arrays, slices, arrays,
// string-keyed maps (encoded in sorted key order), time.Time (as a
// DateTime), structs and pointers to any of these. Maps with other key
// types fail with ErrInvalidKeyType; anything else fails with
// ErrUnsupportedType.
func FromNative(v any) (Value, error) {
	if val, ok := v.(Value); ok && val != nil {
		return val, nil
	}
	return toValue(reflect.ValueOf(v), 0)
}

func toValue(rv reflect.Value, depth int) (Value, error) {
	if err := checkDepth(depth, DefaultMaxDepth); err != nil {
		return nil, err
	}
	if !rv.IsValid() {
		return Null{}, nil
	}
	t := rv.Type()
	if t.Implements(valueType) && t.Kind() != reflect.Interface && t.Kind() != reflect.Ptr {
		return rv.Interface().(Value), nil
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return toValue(rv.Elem(), depth+1)
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d does not fit a signed 64-bit integer", ErrOverflow, u)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Null{}, nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return Bytes(rv.Bytes()), nil
		}
		return toList(rv, depth)
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			// The array may not be addressable, so copy it out by index.
			out := make(Bytes, rv.Len())
			for i := range out {
				out[i] = byte(rv.Index(i).Uint())
			}
			return out, nil
		}
		return toList(rv, depth)
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: %s", ErrInvalidKeyType, t)
		}
		if rv.IsNil() {
			return Null{}, nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		out := make(Map, 0, len(keys))
		for _, k := range keys {
			v, err := toValue(rv.MapIndex(k), depth+1)
			if err != nil {
				return nil, fmt.Errorf("map value %q: %w", k.String(), err)
			}
			out = append(out, MapEntry{Key: k.String(), Value: v})
		}
		return out, nil
	case reflect.Struct:
		if t == timeType {
			return NewDateTime(rv.Interface().(time.Time)), nil
		}
		fields, err := structFields(t)
		if err != nil {
			return nil, err
		}
		out := make(Map, 0, len(fields))
		for _, f := range fields {
			fv := rv.Field(f.index)
			if f.omitEmpty && fv.IsZero() {
				continue
			}
			v, err := toValue(fv, depth+1)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.name, err)
			}
			out = append(out, MapEntry{Key: f.name, Value: v})
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

func toList(rv reflect.Value, depth int) (Value, error) {
	out := make(List, rv.Len())
	for i := range out {
		v, err := toValue(rv.Index(i), depth+1)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// ToNative renders v with plain Go types: nil, bool, int64, float64,
// string, []byte, []any and map[string]any. IntText becomes a string and
// structures are returned unchanged.
func ToNative(v Value) any {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(x)
	case Int:
		return int64(x)
	case IntText:
		return string(x)
	case Float:
		return float64(x)
	case String:
		return string(x)
	case Bytes:
		return []byte(x)
	case List:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToNative(e)
		}
		return out
	case Map:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = ToNative(e.Value)
		}
		return out
	}
	return v
}

// Unmarshal decodes b with the default options and stores the result in
// the value pointed to by out.
func Unmarshal(b []byte, out any) error {
	return defaultDecoder.Unmarshal(b, out)
}

func (d *Decoder) Unmarshal(b []byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: Unmarshal needs a non-nil pointer, not %T", ErrUnsupportedType, out)
	}
	v, err := d.Decode(b)
	if err != nil {
		return err
	}
	return Assign(v, out)
}

// Assign stores v in the value pointed to by out, converting between
// Values and the Go shapes FromNative accepts.
func Assign(v Value, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: Assign needs a non-nil pointer, not %T", ErrUnsupportedType, out)
	}
	return assign(v, rv.Elem())
}

func mismatch(v Value, rv reflect.Value) error {
	return fmt.Errorf("%w: cannot store %T in %s", ErrUnsupportedType, v, rv.Type())
}

func assign(v Value, rv reflect.Value) error {
	t := rv.Type()
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		if n := ToNative(v); n != nil {
			rv.Set(reflect.ValueOf(n))
		} else {
			rv.Set(reflect.Zero(t))
		}
		return nil
	}
	if v != nil {
		if vv := reflect.ValueOf(v); vv.Type().AssignableTo(t) {
			rv.Set(vv)
			return nil
		}
	}
	if _, ok := v.(Null); ok || v == nil {
		rv.Set(reflect.Zero(t))
		return nil
	}

	switch t.Kind() {
	case reflect.Ptr:
		p := reflect.New(t.Elem())
		if err := assign(v, p.Elem()); err != nil {
			return err
		}
		rv.Set(p)
		return nil
	case reflect.Bool:
		b, ok := v.(Bool)
		if !ok {
			return mismatch(v, rv)
		}
		rv.SetBool(bool(b))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := intOf(v)
		if err != nil {
			return mismatch(v, rv)
		}
		if rv.OverflowInt(n) {
			return fmt.Errorf("%w: %d does not fit %s", ErrOverflow, n, t)
		}
		rv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := intOf(v)
		if err != nil {
			return mismatch(v, rv)
		}
		if n < 0 || rv.OverflowUint(uint64(n)) {
			return fmt.Errorf("%w: %d does not fit %s", ErrOverflow, n, t)
		}
		rv.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		switch x := v.(type) {
		case Float:
			rv.SetFloat(float64(x))
		case Int:
			rv.SetFloat(float64(x))
		default:
			return mismatch(v, rv)
		}
		return nil
	case reflect.String:
		s, ok := v.(String)
		if !ok {
			return mismatch(v, rv)
		}
		rv.SetString(string(s))
		return nil
	case reflect.Slice:
		if b, ok := v.(Bytes); ok && t.Elem().Kind() == reflect.Uint8 {
			rv.SetBytes(append([]byte(nil), b...))
			return nil
		}
		l, ok := v.(List)
		if !ok {
			return mismatch(v, rv)
		}
		s := reflect.MakeSlice(t, len(l), len(l))
		for i, e := range l {
			if err := assign(e, s.Index(i)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		rv.Set(s)
		return nil
	case reflect.Array:
		return assignArray(v, rv)
	case reflect.Map:
		m, ok := v.(Map)
		if !ok {
			return mismatch(v, rv)
		}
		if t.Key().Kind() != reflect.String {
			return fmt.Errorf("%w: %s", ErrInvalidKeyType, t)
		}
		out := reflect.MakeMapWithSize(t, len(m))
		for _, e := range m {
			ev := reflect.New(t.Elem()).Elem()
			if err := assign(e.Value, ev); err != nil {
				return fmt.Errorf("map value %q: %w", e.Key, err)
			}
			out.SetMapIndex(reflect.ValueOf(e.Key).Convert(t.Key()), ev)
		}
		rv.Set(out)
		return nil
	case reflect.Struct:
		if t == timeType {
			return assignTime(v, rv)
		}
		return assignStruct(v, rv)
	}
	return mismatch(v, rv)
}

func intOf(v Value) (int64, error) {
	switch x := v.(type) {
	case Int:
		return int64(x), nil
	case IntText:
		return strconv.ParseInt(string(x), 10, 64)
	}
	return 0, ErrUnsupportedType
}

// assignArray requires the decoded length to match the array exactly.
func assignArray(v Value, rv reflect.Value) error {
	n := rv.Len()
	switch x := v.(type) {
	case Bytes:
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			return mismatch(v, rv)
		}
		if len(x) != n {
			return fmt.Errorf("%w: %d bytes for %s", ErrMalformedEncoding, len(x), rv.Type())
		}
		for i, b := range x {
			rv.Index(i).SetUint(uint64(b))
		}
		return nil
	case List:
		if len(x) != n {
			return fmt.Errorf("%w: %d elements for %s", ErrMalformedEncoding, len(x), rv.Type())
		}
		for i, e := range x {
			if err := assign(e, rv.Index(i)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	}
	return mismatch(v, rv)
}

func assignTime(v Value, rv reflect.Value) error {
	var t time.Time
	switch x := v.(type) {
	case DateTime:
		t = x.Time()
	case LocalDateTime:
		t = x.Time()
	case Date:
		t = x.Time()
	case DateTimeZoneID:
		var err error
		if t, err = x.Time(); err != nil {
			return fmt.Errorf("%w: %s", ErrMalformedEncoding, err)
		}
	default:
		return mismatch(v, rv)
	}
	rv.Set(reflect.ValueOf(t))
	return nil
}

// assignStruct fills the fields of rv from a map. Missing keys leave
// fields untouched and unknown keys are ignored.
func assignStruct(v Value, rv reflect.Value) error {
	m, ok := v.(Map)
	if !ok {
		return mismatch(v, rv)
	}
	fields, err := structFields(rv.Type())
	if err != nil {
		return err
	}
	for _, f := range fields {
		fv, ok := m.Get(f.name)
		if !ok {
			continue
		}
		if err := assign(fv, rv.Field(f.index)); err != nil {
			return fmt.Errorf("field %s: %w", f.name, err)
		}
	}
	return nil
}
