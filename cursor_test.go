package packstream

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadByteLength(t *testing.T) {
	cases := []struct {
		in   []byte
		want int
	}{
		{[]byte{0x01}, 1},
		{[]byte{0xF0}, 1},
		{[]byte{0xC0}, 1},
		{[]byte{0xC3}, 1},
		{[]byte{0xC1}, 1},
		{[]byte{0xC8}, 1},
		{[]byte{0xCB}, 1},
		{[]byte{0x85}, 1},
		{[]byte{0xD0, 0x10}, 2},
		{[]byte{0xD1, 0x01, 0x00}, 3},
		{[]byte{0xD2, 0, 1, 0, 0}, 5},
		{[]byte{0xCC, 0x00}, 2},
		{[]byte{0xCD, 0x01, 0x00}, 3},
		{[]byte{0xCE, 0, 1, 0, 0}, 5},
		{[]byte{0x90}, 1},
		{[]byte{0xD4, 0x10}, 2},
		{[]byte{0xD6, 0, 1, 0, 0}, 5},
		{[]byte{0xA3}, 1},
		{[]byte{0xD9, 0x01, 0x00}, 3},
		{[]byte{0xB1, 0x44}, 2},
	}
	for _, c := range cases {
		got, err := LeadByteLength(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "% X", c.in)
	}

	_, err := LeadByteLength(nil)
	require.ErrorIs(t, err, ErrTruncatedStream)

	_, err = LeadByteLength([]byte{0xD2, 0x00})
	require.ErrorIs(t, err, ErrTruncatedStream)

	_, err = LeadByteLength([]byte{0xB1})
	require.ErrorIs(t, err, ErrTruncatedStream)
}

func TestByteLength(t *testing.T) {
	cases := []struct {
		in   Value
		want int
	}{
		{Int(1), 0},
		{Int(-100), 1},
		{Int(1000), 2},
		{Int(100000), 4},
		{Int(1 << 40), 8},
		{Float(1), 8},
		{Null{}, 0},
		{String("hello"), 5},
		{String(strings.Repeat("a", 256)), 256},
		{String(strings.Repeat("a", 65536)), 65536},
		{Bytes(make([]byte, 256)), 256},
		{List{Int(1), Int(2), Int(3)}, 3},
		{Map{{"a", Int(1)}, {"b", Int(2)}}, 2},
		{Duration{}, 4},
	}
	for _, c := range cases {
		got, err := ByteLength(mustEncode(t, c.in))
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%#v", c.in)
	}
}

func sizedList(n int) List {
	l := make(List, n)
	for i := range l {
		l[i] = String("x")
	}
	return l
}

func sizedMap(n int) Map {
	m := make(Map, n)
	for i := range m {
		m[i] = MapEntry{Key: fmt.Sprintf("k%d", i), Value: List{Int(i)}}
	}
	return m
}

func TestTotalBytesMatchesEncodedLength(t *testing.T) {
	for _, n := range []int{0, 1, 15, 16, 255, 256, 65535, 65536} {
		for _, v := range []Value{sizedList(n), sizedMap(n)} {
			b := mustEncode(t, v)
			got, err := TotalBytes(b)
			require.NoError(t, err)
			require.Equal(t, len(b), got, "%T of %d", v, n)
		}
	}

	structures := []Value{
		Node{ID: 1, Properties: Map{{"name", String("Alice")}}, Labels: []string{"Person"}, ElementID: "4:x:1"},
		Path{Nodes: []Node{{ID: 1}, {ID: 2}}, Rels: []UnboundRelationship{{ID: 3, Type: "KNOWS"}}, Indices: []int64{1, 1}},
		Point3D{SRID: 4979, X: 1, Y: 2, Z: 3},
		List{Duration{Months: 1}, Map{{"d", Date{Days: 3}}}},
	}
	for _, v := range structures {
		b := mustEncode(t, v)
		got, err := TotalBytes(b)
		require.NoError(t, err)
		require.Equal(t, len(b), got)
	}
}

func TestTotalBytesIgnoresTrailingValues(t *testing.T) {
	first := mustEncode(t, List{Int(1), String("two"), Map{{"three", Float(3)}}})
	b := append(append([]byte{}, first...), mustEncode(t, String("trailing"))...)

	got, err := TotalBytes(b)
	require.NoError(t, err)
	require.Equal(t, len(first), got)
}

func TestTotalBytesTruncated(t *testing.T) {
	cases := [][]byte{
		nil,
		{0x93, 0x01, 0x02},
		{0xA1, 0x81, 0x41},
		{0xD4, 0x05, 0x01},
		{0x85, 'a', 'b'},
		{0xCC, 0x04, 1},
		{0xC9, 0x01},
		{0xC1, 0, 0, 0},
		{0xB1, 0x44},
	}
	for _, c := range cases {
		_, err := TotalBytes(c)
		require.ErrorIs(t, err, ErrTruncatedStream, "% X", c)
	}
}

func TestTotalBytesDepthLimit(t *testing.T) {
	_, err := TotalBytes(mustEncode(t, nestedList(DefaultMaxDepth)))
	require.NoError(t, err)

	b := make([]byte, DefaultMaxDepth+2)
	for i := range b {
		b[i] = 0x91
	}
	b[len(b)-1] = 0x90
	_, err = TotalBytes(b)
	require.ErrorIs(t, err, ErrDepthExceeded)
}

func TestCursorAgreesWithDecoder(t *testing.T) {
	b := mustEncode(t, List{
		Node{ID: 7, Properties: Map{}, Labels: []string{}, ElementID: "7"},
		Bytes{1, 2},
		Map{{"k", List{Bool(true), Null{}}}},
	})
	b = append(b, 0x01)

	_, rest, err := NewDecoder(DefaultOptions()).DecodeNext(b)
	require.NoError(t, err)

	total, err := TotalBytes(b)
	require.NoError(t, err)
	require.Equal(t, len(b)-len(rest), total)
}

func TestClassOf(t *testing.T) {
	cases := map[byte]Class{
		0x00: ClassTinyInt,
		0x7F: ClassTinyInt,
		0xF0: ClassTinyInt,
		0xFF: ClassTinyInt,
		0x80: ClassString,
		0xD2: ClassString,
		0x9F: ClassList,
		0xD6: ClassList,
		0xA0: ClassMap,
		0xDA: ClassMap,
		0xB3: ClassStruct,
		0xC0: ClassNull,
		0xC2: ClassBool,
		0xC1: ClassFloat,
		0xCA: ClassInt,
		0xCE: ClassBytes,
		0xC4: ClassReserved,
		0xCF: ClassReserved,
		0xDF: ClassReserved,
		0xE5: ClassReserved,
	}
	for m, want := range cases {
		assert.Equal(t, want, ClassOf(m), "0x%02X", m)
	}
	assert.Equal(t, "struct", ClassStruct.String())
	assert.Equal(t, "unknown", Class(99).String())
}
