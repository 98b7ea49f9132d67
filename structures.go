package packstream

import (
	"fmt"
	"strconv"
)

// Structure is a tagged record with a fixed field order. The set of
// implementations is closed: the thirteen known kinds and
// UnknownStructure.
type Structure interface {
	Value
	Tag() StructTag
	// Fields returns the named fields in declared order.
	Fields() Map
}

var (
	_ Structure = Node{}
	_ Structure = Relationship{}
	_ Structure = UnboundRelationship{}
	_ Structure = Path{}
	_ Structure = Date{}
	_ Structure = Time{}
	_ Structure = LocalTime{}
	_ Structure = DateTime{}
	_ Structure = DateTimeZoneID{}
	_ Structure = LocalDateTime{}
	_ Structure = Duration{}
	_ Structure = Point2D{}
	_ Structure = Point3D{}
	_ Structure = UnknownStructure{}
)

// StructureTag returns the tag of v, or 0 when v is not a structure.
func StructureTag(v Value) StructTag {
	if s, ok := v.(Structure); ok && s != nil {
		return s.Tag()
	}
	return 0
}

type Node struct {
	ID         int64
	Properties Map
	Labels     []string
	ElementID  string
}

type Relationship struct {
	ID                 int64
	StartNodeID        int64
	EndNodeID          int64
	Type               string
	Properties         Map
	ElementID          string
	StartNodeElementID string
	EndNodeElementID   string
}

// UnboundRelationship is a relationship without its end points, as it
// appears inside a Path.
type UnboundRelationship struct {
	ID         int64
	Type       string
	Properties Map
	ElementID  string
}

// Path is an alternating walk over Nodes and Rels described by Indices.
type Path struct {
	Nodes   []Node
	Rels    []UnboundRelationship
	Indices []int64
}

// Date counts days since the Unix epoch.
type Date struct {
	Days int64
}

// Time is a time of day in nanoseconds since midnight with a fixed UTC
// offset.
type Time struct {
	Nanoseconds     int64
	TZOffsetSeconds int64
}

type LocalTime struct {
	Nanoseconds int64
}

// DateTime is an instant given as seconds and nanoseconds since the Unix
// epoch together with a fixed UTC offset.
type DateTime struct {
	Seconds         int64
	Nanoseconds     int64
	TZOffsetSeconds int64
}

// DateTimeZoneID is an instant in a named time zone.
type DateTimeZoneID struct {
	Seconds     int64
	Nanoseconds int64
	TZID        string
}

type LocalDateTime struct {
	Seconds     int64
	Nanoseconds int64
}

type Duration struct {
	Months      int64
	Days        int64
	Seconds     int64
	Nanoseconds int64
}

type Point2D struct {
	SRID int64
	X    float64
	Y    float64
}

type Point3D struct {
	SRID int64
	X    float64
	Y    float64
	Z    float64
}

// UnknownStructure carries a structure whose tag this package does not
// know. Its fields are kept as decoded and re-encode unchanged.
type UnknownStructure struct {
	RawTag  StructTag
	Entries Map
}

func (Node) Tag() StructTag { return TagNode }
func (Relationship) Tag() StructTag { return TagRelationship }
func (UnboundRelationship) Tag() StructTag { return TagUnboundRelationship }
func (Path) Tag() StructTag { return TagPath }
func (Date) Tag() StructTag { return TagDate }
func (Time) Tag() StructTag { return TagTime }
func (LocalTime) Tag() StructTag { return TagLocalTime }
func (DateTime) Tag() StructTag { return TagDateTime }
func (DateTimeZoneID) Tag() StructTag { return TagDateTimeZoneID }
func (LocalDateTime) Tag() StructTag { return TagLocalDateTime }
func (Duration) Tag() StructTag { return TagDuration }
func (Point2D) Tag() StructTag { return TagPoint2D }
func (Point3D) Tag() StructTag { return TagPoint3D }
func (u UnknownStructure) Tag() StructTag { return u.RawTag }

func (n Node) Fields() Map {
	return Map{
		{"id", Int(n.ID)},
		{"properties", n.Properties},
		{"labels", stringList(n.Labels)},
		{"element_id", String(n.ElementID)},
	}
}

func (r Relationship) Fields() Map {
	return Map{
		{"id", Int(r.ID)},
		{"startNodeId", Int(r.StartNodeID)},
		{"endNodeId", Int(r.EndNodeID)},
		{"type", String(r.Type)},
		{"properties", r.Properties},
		{"element_id", String(r.ElementID)},
		{"start_node_element_id", String(r.StartNodeElementID)},
		{"end_node_element_id", String(r.EndNodeElementID)},
	}
}

func (r UnboundRelationship) Fields() Map {
	return Map{
		{"id", Int(r.ID)},
		{"type", String(r.Type)},
		{"properties", r.Properties},
		{"element_id", String(r.ElementID)},
	}
}

func (p Path) Fields() Map {
	nodes := make(List, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = n
	}
	rels := make(List, len(p.Rels))
	for i, r := range p.Rels {
		rels[i] = r
	}
	indices := make(List, len(p.Indices))
	for i, x := range p.Indices {
		indices[i] = Int(x)
	}
	return Map{
		{"nodes", nodes},
		{"rels", rels},
		{"indices", indices},
	}
}

func (d Date) Fields() Map {
	return Map{{"days", Int(d.Days)}}
}

func (t Time) Fields() Map {
	return Map{
		{"nanoseconds", Int(t.Nanoseconds)},
		{"tz_offset_seconds", Int(t.TZOffsetSeconds)},
	}
}

func (t LocalTime) Fields() Map {
	return Map{{"nanoseconds", Int(t.Nanoseconds)}}
}

func (t DateTime) Fields() Map {
	return Map{
		{"seconds", Int(t.Seconds)},
		{"nanoseconds", Int(t.Nanoseconds)},
		{"tz_offset_seconds", Int(t.TZOffsetSeconds)},
	}
}

func (t DateTimeZoneID) Fields() Map {
	return Map{
		{"seconds", Int(t.Seconds)},
		{"nanoseconds", Int(t.Nanoseconds)},
		{"tz_id", String(t.TZID)},
	}
}

func (t LocalDateTime) Fields() Map {
	return Map{
		{"seconds", Int(t.Seconds)},
		{"nanoseconds", Int(t.Nanoseconds)},
	}
}

func (d Duration) Fields() Map {
	return Map{
		{"months", Int(d.Months)},
		{"days", Int(d.Days)},
		{"seconds", Int(d.Seconds)},
		{"nanoseconds", Int(d.Nanoseconds)},
	}
}

func (p Point2D) Fields() Map {
	return Map{
		{"srid", Int(p.SRID)},
		{"x", Float(p.X)},
		{"y", Float(p.Y)},
	}
}

func (p Point3D) Fields() Map {
	return Map{
		{"srid", Int(p.SRID)},
		{"x", Float(p.X)},
		{"y", Float(p.Y)},
		{"z", Float(p.Z)},
	}
}

func (u UnknownStructure) Fields() Map { return u.Entries }

func (n Node) appendTo(dst []byte, depth int) ([]byte, error) { return appendStructure(dst, n, depth) }
func (r Relationship) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendStructure(dst, r, depth)
}
func (r UnboundRelationship) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendStructure(dst, r, depth)
}
func (p Path) appendTo(dst []byte, depth int) ([]byte, error) { return appendStructure(dst, p, depth) }
func (d Date) appendTo(dst []byte, depth int) ([]byte, error) { return appendStructure(dst, d, depth) }
func (t Time) appendTo(dst []byte, depth int) ([]byte, error) { return appendStructure(dst, t, depth) }
func (t LocalTime) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendStructure(dst, t, depth)
}
func (t DateTime) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendStructure(dst, t, depth)
}
func (t DateTimeZoneID) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendStructure(dst, t, depth)
}
func (t LocalDateTime) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendStructure(dst, t, depth)
}
func (d Duration) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendStructure(dst, d, depth)
}
func (p Point2D) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendStructure(dst, p, depth)
}
func (p Point3D) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendStructure(dst, p, depth)
}
func (u UnknownStructure) appendTo(dst []byte, depth int) ([]byte, error) {
	return appendStructure(dst, u, depth)
}

func stringList(ss []string) List {
	out := make(List, len(ss))
	for i, s := range ss {
		out[i] = String(s)
	}
	return out
}

// structureBuilders rebuilds a typed record from its decoded field map.
var structureBuilders = map[StructTag]func(*fieldReader) Structure{
	TagNode: func(r *fieldReader) Structure {
		return Node{
			ID:         r.int("id"),
			Properties: r.mapValue("properties"),
			Labels:     r.strings("labels"),
			ElementID:  r.string("element_id"),
		}
	},
	TagRelationship: func(r *fieldReader) Structure {
		return Relationship{
			ID:                 r.int("id"),
			StartNodeID:        r.int("startNodeId"),
			EndNodeID:          r.int("endNodeId"),
			Type:               r.string("type"),
			Properties:         r.mapValue("properties"),
			ElementID:          r.string("element_id"),
			StartNodeElementID: r.string("start_node_element_id"),
			EndNodeElementID:   r.string("end_node_element_id"),
		}
	},
	TagUnboundRelationship: func(r *fieldReader) Structure {
		return unboundRelationship(r)
	},
	TagPath: func(r *fieldReader) Structure {
		return Path{
			Nodes:   r.nodes("nodes"),
			Rels:    r.rels("rels"),
			Indices: r.ints("indices"),
		}
	},
	TagDate: func(r *fieldReader) Structure {
		return Date{Days: r.int("days")}
	},
	TagTime: func(r *fieldReader) Structure {
		return Time{
			Nanoseconds:     r.int("nanoseconds"),
			TZOffsetSeconds: r.int("tz_offset_seconds"),
		}
	},
	TagLocalTime: func(r *fieldReader) Structure {
		return LocalTime{Nanoseconds: r.int("nanoseconds")}
	},
	TagDateTime: func(r *fieldReader) Structure {
		return DateTime{
			Seconds:         r.int("seconds"),
			Nanoseconds:     r.int("nanoseconds"),
			TZOffsetSeconds: r.int("tz_offset_seconds"),
		}
	},
	TagDateTimeZoneID: func(r *fieldReader) Structure {
		return DateTimeZoneID{
			Seconds:     r.int("seconds"),
			Nanoseconds: r.int("nanoseconds"),
			TZID:        r.string("tz_id"),
		}
	},
	TagLocalDateTime: func(r *fieldReader) Structure {
		return LocalDateTime{
			Seconds:     r.int("seconds"),
			Nanoseconds: r.int("nanoseconds"),
		}
	},
	TagDuration: func(r *fieldReader) Structure {
		return Duration{
			Months:      r.int("months"),
			Days:        r.int("days"),
			Seconds:     r.int("seconds"),
			Nanoseconds: r.int("nanoseconds"),
		}
	},
	TagPoint2D: func(r *fieldReader) Structure {
		return Point2D{
			SRID: r.int("srid"),
			X:    r.float("x"),
			Y:    r.float("y"),
		}
	},
	TagPoint3D: func(r *fieldReader) Structure {
		return Point3D{
			SRID: r.int("srid"),
			X:    r.float("x"),
			Y:    r.float("y"),
			Z:    r.float("z"),
		}
	},
}

func unboundRelationship(r *fieldReader) UnboundRelationship {
	return UnboundRelationship{
		ID:         r.int("id"),
		Type:       r.string("type"),
		Properties: r.mapValue("properties"),
		ElementID:  r.string("element_id"),
	}
}

func (d *Decoder) decodeStructure(b []byte, h header, depth int) (Value, int, error) {
	if err := checkDepth(depth, d.opts.MaxDepth); err != nil {
		return nil, 0, err
	}
	tag := StructTag(b[1])
	if h.lead >= len(b) {
		return nil, 0, fmt.Errorf("%w: structure 0x%02X has no fields", ErrTruncatedStream, byte(tag))
	}
	if c := ClassOf(b[h.lead]); c != ClassMap {
		return nil, 0, fmt.Errorf("%w: structure 0x%02X fields are a %s, want map", ErrMalformedEncoding, byte(tag), c)
	}
	v, n, err := d.decodeValue(b[h.lead:], depth+1)
	if err != nil {
		return nil, 0, fmt.Errorf("structure 0x%02X: %w", byte(tag), err)
	}
	fields := v.(Map)
	if len(fields) != h.size {
		return nil, 0, fmt.Errorf("%w: structure 0x%02X declares %d fields, has %d", ErrMalformedEncoding, byte(tag), h.size, len(fields))
	}
	total := h.lead + n

	build, ok := structureBuilders[tag]
	if !ok {
		if d.opts.StrictStructures {
			return nil, 0, fmt.Errorf("%w: 0x%02X", ErrUnknownStructureTag, byte(tag))
		}
		d.softFail("unknown_structure_tag", byte(tag)).
			Int("fields", len(fields)).
			Msg("passing through unknown structure")
		return UnknownStructure{RawTag: tag, Entries: fields}, total, nil
	}

	r := &fieldReader{tag: tag, fields: fields}
	s := build(r)
	if r.err != nil {
		return nil, 0, r.err
	}
	return s, total, nil
}

// fieldReader pulls typed fields out of a decoded structure map. The first
// failure is kept in err and later reads return zero values.
type fieldReader struct {
	tag    StructTag
	fields Map
	err    error
}

func (r *fieldReader) fail(name, format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s.%s: %s", ErrMalformedEncoding, r.tag, name, fmt.Sprintf(format, args...))
	}
}

func (r *fieldReader) value(name string) Value {
	v, ok := r.fields.Get(name)
	if !ok {
		r.fail(name, "missing")
		return nil
	}
	return v
}

func (r *fieldReader) int(name string) int64 {
	return r.toInt(name, r.value(name))
}

func (r *fieldReader) toInt(name string, v Value) int64 {
	switch x := v.(type) {
	case Int:
		return int64(x)
	case IntText:
		n, err := strconv.ParseInt(string(x), 10, 64)
		if err != nil {
			r.fail(name, "%s", err)
		}
		return n
	case nil:
		return 0
	}
	r.fail(name, "got %T, want integer", v)
	return 0
}

func (r *fieldReader) float(name string) float64 {
	switch x := r.value(name).(type) {
	case Float:
		return float64(x)
	case nil:
		return 0
	default:
		r.fail(name, "got %T, want float", x)
	}
	return 0
}

func (r *fieldReader) string(name string) string {
	switch x := r.value(name).(type) {
	case String:
		return string(x)
	case nil:
		return ""
	default:
		r.fail(name, "got %T, want string", x)
	}
	return ""
}

func (r *fieldReader) mapValue(name string) Map {
	switch x := r.value(name).(type) {
	case Map:
		return x
	case nil:
		return nil
	default:
		r.fail(name, "got %T, want map", x)
	}
	return nil
}

func (r *fieldReader) list(name string) List {
	switch x := r.value(name).(type) {
	case List:
		return x
	case nil:
		return nil
	default:
		r.fail(name, "got %T, want list", x)
	}
	return nil
}

func (r *fieldReader) strings(name string) []string {
	l := r.list(name)
	out := make([]string, 0, len(l))
	for i, v := range l {
		s, ok := v.(String)
		if !ok {
			r.fail(name, "element %d is %T, want string", i, v)
			return nil
		}
		out = append(out, string(s))
	}
	return out
}

func (r *fieldReader) ints(name string) []int64 {
	l := r.list(name)
	out := make([]int64, 0, len(l))
	for _, v := range l {
		out = append(out, r.toInt(name, v))
	}
	return out
}

func (r *fieldReader) nodes(name string) []Node {
	l := r.list(name)
	out := make([]Node, 0, len(l))
	for i, v := range l {
		n, ok := v.(Node)
		if !ok {
			r.fail(name, "element %d is %T, want Node", i, v)
			return nil
		}
		out = append(out, n)
	}
	return out
}

func (r *fieldReader) rels(name string) []UnboundRelationship {
	l := r.list(name)
	out := make([]UnboundRelationship, 0, len(l))
	for i, v := range l {
		rel, ok := v.(UnboundRelationship)
		if !ok {
			r.fail(name, "element %d is %T, want UnboundRelationship", i, v)
			return nil
		}
		out = append(out, rel)
	}
	return out
}
