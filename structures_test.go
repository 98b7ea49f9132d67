package packstream

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructureRoundTrip(t *testing.T) {
	alice := Node{
		ID:         1,
		Properties: Map{{"name", String("Alice")}, {"age", Int(33)}},
		Labels:     []string{"Person", "Admin"},
		ElementID:  "4:db:1",
	}
	bob := Node{ID: 2, Properties: Map{}, Labels: []string{}, ElementID: "4:db:2"}
	knows := UnboundRelationship{ID: 9, Type: "KNOWS", Properties: Map{{"since", Int(2001)}}, ElementID: "5:db:9"}

	cases := []Structure{
		alice,
		Relationship{
			ID:                 9,
			StartNodeID:        1,
			EndNodeID:          2,
			Type:               "KNOWS",
			Properties:         Map{},
			ElementID:          "5:db:9",
			StartNodeElementID: "4:db:1",
			EndNodeElementID:   "4:db:2",
		},
		knows,
		Path{Nodes: []Node{alice, bob}, Rels: []UnboundRelationship{knows}, Indices: []int64{1, 1}},
		Date{Days: -719162},
		Time{Nanoseconds: 3_600_000_000_000, TZOffsetSeconds: -18000},
		LocalTime{Nanoseconds: 1},
		DateTime{Seconds: 1_700_000_000, Nanoseconds: 999, TZOffsetSeconds: 3600},
		DateTimeZoneID{Seconds: 1_700_000_000, TZID: "Europe/Stockholm"},
		LocalDateTime{Seconds: -1, Nanoseconds: 5},
		Duration{Months: 14, Days: -3, Seconds: 59, Nanoseconds: 1},
		Point2D{SRID: 7203, X: 1.5, Y: -2.25},
		Point3D{SRID: 9157, X: 0, Y: 1e10, Z: -0.5},
	}
	for _, s := range cases {
		t.Run(s.Tag().String(), func(t *testing.T) {
			b := mustEncode(t, s)
			require.Equal(t, byte(MarkerTinyStruct|len(s.Fields())), b[0])
			require.Equal(t, byte(s.Tag()), b[1])

			got, err := DecodeStructure(b)
			require.NoError(t, err)
			require.Equal(t, s, got)
		})
	}
}

func TestEncodeDateBytes(t *testing.T) {
	want := []byte{0xB1, 0x44, 0xA1, 0x84, 'd', 'a', 'y', 's', 0xC9, 0x48, 0xA2}
	require.Equal(t, want, mustEncode(t, Date{Days: 18594}))
}

func TestStructureFieldOrder(t *testing.T) {
	keys := Node{}.Fields().Keys()
	require.Equal(t, []string{"id", "properties", "labels", "element_id"}, keys)

	keys = Relationship{}.Fields().Keys()
	require.Equal(t, []string{
		"id", "startNodeId", "endNodeId", "type", "properties",
		"element_id", "start_node_element_id", "end_node_element_id",
	}, keys)

	keys = Point3D{}.Fields().Keys()
	require.Equal(t, []string{"srid", "x", "y", "z"}, keys)
}

func TestDecodeUnknownStructure(t *testing.T) {
	b := []byte{0xB1, 0x7A, 0xA1, 0x81, 'x', 0x2A}

	var logs bytes.Buffer
	dec := NewDecoder(Options{Logger: zerolog.New(&logs)})
	v, err := dec.Decode(b)
	require.NoError(t, err)

	want := UnknownStructure{RawTag: 0x7A, Entries: Map{{"x", Int(42)}}}
	require.Equal(t, want, v)
	assert.Equal(t, StructTag(0x7A), StructureTag(v))
	assert.Equal(t, "Unknown", StructureTag(v).String())
	assert.Contains(t, logs.String(), `"soft_fail":true`)
	assert.Contains(t, logs.String(), `"event":"unknown_structure_tag"`)
	assert.Contains(t, logs.String(), `"byte":"0x7A"`)

	// Pass-through values re-encode to the same bytes.
	require.Equal(t, b, mustEncode(t, v))

	_, err = NewDecoder(Options{StrictStructures: true}).Decode(b)
	require.ErrorIs(t, err, ErrUnknownStructureTag)
}

func TestDecodeStructureMalformed(t *testing.T) {
	cases := map[string]struct {
		in   []byte
		want error
	}{
		"missing field": {
			in:   []byte{0xB1, 0x44, 0xA1, 0x83, 'd', 'a', 'y', 0x05},
			want: ErrMalformedEncoding,
		},
		"wrong field type": {
			in:   []byte{0xB1, 0x44, 0xA1, 0x84, 'd', 'a', 'y', 's', 0x81, 'x'},
			want: ErrMalformedEncoding,
		},
		"count mismatch": {
			in:   []byte{0xB2, 0x44, 0xA1, 0x84, 'd', 'a', 'y', 's', 0x05},
			want: ErrMalformedEncoding,
		},
		"fields not a map": {
			in:   []byte{0xB1, 0x44, 0x91, 0x05},
			want: ErrMalformedEncoding,
		},
		"no fields": {
			in:   []byte{0xB1, 0x44},
			want: ErrTruncatedStream,
		},
		"label not a string": {
			in: mustEncode(t, UnknownStructure{RawTag: TagNode, Entries: Map{
				{"id", Int(1)},
				{"properties", Map{}},
				{"labels", List{Int(1)}},
				{"element_id", String("1")},
			}}),
			want: ErrMalformedEncoding,
		},
		"path with relationship instead of node": {
			in: mustEncode(t, UnknownStructure{RawTag: TagPath, Entries: Map{
				{"nodes", List{UnboundRelationship{Properties: Map{}}}},
				{"rels", List{}},
				{"indices", List{}},
			}}),
			want: ErrMalformedEncoding,
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(c.in)
			require.ErrorIs(t, err, c.want)
		})
	}
}

func TestDecodeStructureAsGeneric(t *testing.T) {
	b := mustEncode(t, Point2D{SRID: 4326, X: 1, Y: 2})

	// The field map after the tag byte is an ordinary map.
	fields, err := DecodeMap(b[2:])
	require.NoError(t, err)
	require.Equal(t, Map{{"srid", Int(4326)}, {"x", Float(1)}, {"y", Float(2)}}, fields)
}

func TestDecodeStructureOverflowText(t *testing.T) {
	b := mustEncode(t, Node{ID: 1 << 40, Properties: Map{}, Labels: []string{}, ElementID: "big"})

	dec := NewDecoder(Options{Overflow: OverflowText})
	v, err := dec.Decode(b)
	require.NoError(t, err)
	require.Equal(t, int64(1<<40), v.(Node).ID)
}

func TestStructureTag(t *testing.T) {
	assert.Equal(t, TagDuration, StructureTag(Duration{}))
	assert.Equal(t, StructTag(0), StructureTag(Int(1)))
	assert.Equal(t, StructTag(0), StructureTag(nil))
	assert.True(t, TagPoint3D.Known())
	assert.False(t, StructTag(0x01).Known())
	assert.Equal(t, "DateTimeZoneId", TagDateTimeZoneID.String())
}

func TestDecodeStructureRejectsOtherClasses(t *testing.T) {
	_, err := DecodeStructure([]byte{0x90})
	require.ErrorIs(t, err, ErrMalformedEncoding)
}
