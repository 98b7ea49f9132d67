package packstream

import (
	"encoding/binary"
	"fmt"
)

// header is the decoded lead of one encoded value.
type header struct {
	marker byte
	class  Class
	// lead is the marker plus any length prefix, and the tag byte for
	// structures.
	lead int
	// size is the payload length in bytes for scalars, strings and byte
	// buffers, and the element, pair or field count for containers.
	size int
}

// prefixWidth returns the size of the explicit length prefix following
// marker m, or 0 when the size is implied by the marker.
func prefixWidth(m byte) int {
	switch m {
	case MarkerString8, MarkerBytes8, MarkerList8, MarkerMap8:
		return 1
	case MarkerString16, MarkerBytes16, MarkerList16, MarkerMap16:
		return 2
	case MarkerString32, MarkerBytes32, MarkerList32, MarkerMap32:
		return 4
	}
	return 0
}

func intPayloadWidth(m byte) int {
	switch m {
	case MarkerInt8:
		return 1
	case MarkerInt16:
		return 2
	case MarkerInt32:
		return 4
	case MarkerInt64:
		return 8
	}
	return 0
}

func readHeader(b []byte) (header, error) {
	if len(b) == 0 {
		return header{}, fmt.Errorf("%w: no marker byte", ErrTruncatedStream)
	}
	m := b[0]
	h := header{marker: m, class: ClassOf(m), lead: 1}

	switch h.class {
	case ClassNull, ClassBool, ClassTinyInt, ClassReserved:
		return h, nil
	case ClassFloat:
		h.size = 8
		return h, nil
	case ClassInt:
		h.size = intPayloadWidth(m)
		return h, nil
	case ClassStruct:
		if len(b) < 2 {
			return header{}, fmt.Errorf("%w: structure marker without tag", ErrTruncatedStream)
		}
		h.lead = 2
		h.size = int(m & 0x0F)
		return h, nil
	}

	w := prefixWidth(m)
	if w == 0 {
		h.size = int(m & 0x0F)
		return h, nil
	}
	if len(b) < 1+w {
		return header{}, fmt.Errorf("%w: marker 0x%02X needs a %d-byte length", ErrTruncatedStream, m, w)
	}
	var n uint64
	switch w {
	case 1:
		n = uint64(b[1])
	case 2:
		n = uint64(binary.BigEndian.Uint16(b[1:3]))
	case 4:
		n = uint64(binary.BigEndian.Uint32(b[1:5]))
	}
	if n > MaxLength {
		return header{}, fmt.Errorf("%w: declared length %d exceeds %d", ErrMalformedEncoding, n, MaxLength)
	}
	h.lead = 1 + w
	h.size = int(n)
	return h, nil
}

// LeadByteLength returns the number of bytes taken by the marker and any
// length or count prefix of the value at b[0]. For structures the tag byte
// is included.
func LeadByteLength(b []byte) (int, error) {
	h, err := readHeader(b)
	if err != nil {
		return 0, err
	}
	return h.lead, nil
}

// ByteLength returns what follows the lead bytes of the value at b[0]: the
// payload size in bytes for scalars, strings and byte buffers, or the
// element, pair or field count for lists, maps and structures.
func ByteLength(b []byte) (int, error) {
	h, err := readHeader(b)
	if err != nil {
		return 0, err
	}
	return h.size, nil
}

// TotalBytes returns the full span of the encoded value at b[0], walking
// nested containers. It fails with ErrTruncatedStream when the declared
// span runs past the end of b.
func TotalBytes(b []byte) (int, error) {
	return totalBytes(b, 0, DefaultMaxDepth)
}

func totalBytes(b []byte, depth, maxDepth int) (int, error) {
	h, err := readHeader(b)
	if err != nil {
		return 0, err
	}

	var count int
	switch h.class {
	case ClassList, ClassMap:
		count = h.size
	case ClassStruct:
		// One embedded map follows the tag.
		count = 1
	default:
		total := h.lead + h.size
		if total > len(b) {
			return 0, fmt.Errorf("%w: %s needs %d bytes, have %d", ErrTruncatedStream, h.class, total, len(b))
		}
		return total, nil
	}

	if err := checkDepth(depth, maxDepth); err != nil {
		return 0, err
	}
	off := h.lead
	walk := func() error {
		if off >= len(b) {
			return fmt.Errorf("%w: %s declares %d entries", ErrTruncatedStream, h.class, h.size)
		}
		n, err := totalBytes(b[off:], depth+1, maxDepth)
		if err != nil {
			return err
		}
		off += n
		return nil
	}
	for i := 0; i < count; i++ {
		if err := walk(); err != nil {
			return 0, err
		}
		if h.class == ClassMap {
			if err := walk(); err != nil {
				return 0, err
			}
		}
	}
	return off, nil
}
