package packstream

// Marker bytes. A marker is the first byte of every encoded value and
// identifies its type and size class. Tiny classes carry a 0..15 size in
// the low nibble of the marker itself.
const (
	MarkerNull  = 0xC0
	MarkerFloat = 0xC1
	MarkerFalse = 0xC2
	MarkerTrue  = 0xC3

	MarkerInt8  = 0xC8
	MarkerInt16 = 0xC9
	MarkerInt32 = 0xCA
	MarkerInt64 = 0xCB

	MarkerBytes8  = 0xCC
	MarkerBytes16 = 0xCD
	MarkerBytes32 = 0xCE

	MarkerTinyString = 0x80
	MarkerString8    = 0xD0
	MarkerString16   = 0xD1
	MarkerString32   = 0xD2

	MarkerTinyList = 0x90
	MarkerList8    = 0xD4
	MarkerList16   = 0xD5
	MarkerList32   = 0xD6

	MarkerTinyMap = 0xA0
	MarkerMap8    = 0xD8
	MarkerMap16   = 0xD9
	MarkerMap32   = 0xDA

	MarkerTinyStruct = 0xB0
)

// Tiny int ranges. Positive tiny ints are the marker byte itself, negative
// ones live in 0xF0..0xFF and map to -16..-1.
const (
	minTinyInt = -16
	maxTinyInt = 127

	tinyNegativeBase = 0xF0
)

const (
	// maxTinySize is the largest size or count that fits in a marker nibble.
	maxTinySize = 15

	// MaxLength is the practical ceiling of the 4-byte length class.
	MaxLength = 1<<31 - 1
)

// Class is the type-and-size family a marker belongs to.
type Class int

const (
	ClassReserved Class = iota
	ClassNull
	ClassBool
	ClassTinyInt
	ClassInt
	ClassFloat
	ClassString
	ClassBytes
	ClassList
	ClassMap
	ClassStruct
)

var classNames = [...]string{
	ClassReserved: "reserved",
	ClassNull:     "null",
	ClassBool:     "bool",
	ClassTinyInt:  "tiny-int",
	ClassInt:      "int",
	ClassFloat:    "float",
	ClassString:   "string",
	ClassBytes:    "bytes",
	ClassList:     "list",
	ClassMap:      "map",
	ClassStruct:   "struct",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// ClassOf reports the class of marker m.
func ClassOf(m byte) Class {
	switch {
	case m <= maxTinyInt || m >= tinyNegativeBase:
		return ClassTinyInt
	case m&0xF0 == MarkerTinyString:
		return ClassString
	case m&0xF0 == MarkerTinyList:
		return ClassList
	case m&0xF0 == MarkerTinyMap:
		return ClassMap
	case m&0xF0 == MarkerTinyStruct:
		return ClassStruct
	}
	switch m {
	case MarkerNull:
		return ClassNull
	case MarkerFalse, MarkerTrue:
		return ClassBool
	case MarkerFloat:
		return ClassFloat
	case MarkerInt8, MarkerInt16, MarkerInt32, MarkerInt64:
		return ClassInt
	case MarkerString8, MarkerString16, MarkerString32:
		return ClassString
	case MarkerBytes8, MarkerBytes16, MarkerBytes32:
		return ClassBytes
	case MarkerList8, MarkerList16, MarkerList32:
		return ClassList
	case MarkerMap8, MarkerMap16, MarkerMap32:
		return ClassMap
	}
	return ClassReserved
}

// StructTag is the byte following a structure marker that names the
// structure kind.
type StructTag byte

const (
	TagNode                StructTag = 0x4E
	TagRelationship        StructTag = 0x52
	TagUnboundRelationship StructTag = 0x72
	TagPath                StructTag = 0x50
	TagDate                StructTag = 0x44
	TagTime                StructTag = 0x54
	TagLocalTime           StructTag = 0x74
	TagDateTime            StructTag = 0x49
	TagDateTimeZoneID      StructTag = 0x69
	TagLocalDateTime       StructTag = 0x64
	TagDuration            StructTag = 0x45
	TagPoint2D             StructTag = 0x58
	TagPoint3D             StructTag = 0x59
)

var tagNames = map[StructTag]string{
	TagNode:                "Node",
	TagRelationship:        "Relationship",
	TagUnboundRelationship: "UnboundRelationship",
	TagPath:                "Path",
	TagDate:                "Date",
	TagTime:                "Time",
	TagLocalTime:           "LocalTime",
	TagDateTime:            "DateTime",
	TagDateTimeZoneID:      "DateTimeZoneId",
	TagLocalDateTime:       "LocalDateTime",
	TagDuration:            "Duration",
	TagPoint2D:             "Point2D",
	TagPoint3D:             "Point3D",
}

// Known reports whether t is one of the structure tags this package decodes
// into a typed record.
func (t StructTag) Known() bool {
	_, ok := tagNames[t]
	return ok
}

func (t StructTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "Unknown"
}
