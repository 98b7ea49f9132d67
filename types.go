package packstream

// Value is a PackStream value. The set of implementations is closed:
// Null, Bool, Int, IntText, Float, String, Bytes, List, Map and the
// Structure kinds.
type Value interface {
	// appendTo appends the encoding of the value to dst.
	appendTo(dst []byte, depth int) ([]byte, error)
}

var (
	_ Value = Null{}
	_ Value = Bool(false)
	_ Value = Int(0)
	_ Value = IntText("")
	_ Value = Float(0)
	_ Value = String("")
	_ Value = Bytes(nil)
	_ Value = List(nil)
	_ Value = Map(nil)
	_ Value = Structure(nil)
)

// Null is the PackStream null.
type Null struct{}

type Bool bool

// Int is a signed 64-bit integer. It is encoded in the narrowest width
// class that holds it.
type Int int64

// IntText is the decimal rendering of an 8-byte integer, produced when
// decoding with OverflowText. It encodes back to an 8-byte integer.
type IntText string

// Float is always encoded as a full 8-byte IEEE-754 double.
type Float float64

// String holds UTF-8 text.
type String string

// Bytes is a raw byte buffer. It never uses a tiny class.
type Bytes []byte

type List []Value

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   string
	Value Value
}

// Map is an ordered map. Entries are encoded in slice order and decoded in
// wire order.
type Map []MapEntry

// Get returns the value of the last entry with the given key.
func (m Map) Get(key string) (Value, bool) {
	for i := len(m) - 1; i >= 0; i-- {
		if m[i].Key == key {
			return m[i].Value, true
		}
	}
	return nil, false
}

// Keys returns the keys of m in order.
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// IntWidth forces the width class of an encoded integer.
type IntWidth int

const (
	// WidthAuto selects the narrowest class that holds the value.
	WidthAuto IntWidth = iota
	WidthTiny
	Width8
	Width16
	Width32
	Width64
)

// OverflowMode controls how 8-byte integers are decoded.
type OverflowMode int

const (
	// OverflowNative decodes 8-byte integers as Int.
	OverflowNative OverflowMode = iota
	// OverflowText decodes 8-byte integers as IntText, for hosts without
	// native 64-bit integers.
	OverflowText
)

func (m OverflowMode) String() string {
	if m == OverflowText {
		return "text"
	}
	return "native"
}

// ParseOverflowMode parses "native" or "text".
func ParseOverflowMode(s string) (OverflowMode, bool) {
	switch s {
	case "", "native":
		return OverflowNative, true
	case "text":
		return OverflowText, true
	}
	return OverflowNative, false
}
