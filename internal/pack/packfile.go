// Package pack decodes git pack-files: the binary format a smart-HTTP
// upload-pack response streams as its payload, containing whole objects and
// ref-delta entries compressed one-at-a-time with zlib.
package pack

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/fenilsonani/nanogit/internal/delta"
	"github.com/fenilsonani/nanogit/internal/objects"
)

const (
	maskObjType = 0b0111_0000
	maskLast4   = 0b0000_1111
	maskLast7   = 0b0111_1111
)

// entryType is the 3-bit type tag in a pack entry's header byte.
type entryType int

const (
	typeCommit   entryType = 1
	typeTree     entryType = 2
	typeBlob     entryType = 3
	typeTag      entryType = 4
	typeOfsDelta entryType = 6
	typeRefDelta entryType = 7
)

func (t entryType) object() (objects.ObjectType, bool) {
	switch t {
	case typeCommit:
		return objects.TypeCommit, true
	case typeTree:
		return objects.TypeTree, true
	case typeBlob:
		return objects.TypeBlob, true
	default:
		return "", false
	}
}

// Entry is one decoded pack-file record: either a whole object or a
// ref-delta awaiting its base.
type Entry struct {
	// Whole-object entries:
	Type    objects.ObjectType
	Payload []byte

	// Ref-delta entries (Type is empty for these):
	BaseHash objects.ObjectID
	Delta    *delta.Delta
}

// IsDelta reports whether this entry is a ref-delta awaiting resolution.
func (e Entry) IsDelta() bool {
	return e.Delta != nil
}

// Decode parses the binary pack-file bytes (as received over side-band
// channel 1) into its constituent entries, in the order they appear. The
// 12-byte pack header ("PACK" + version + object count) is consumed: the
// magic is checked, the version is ignored, and the object count is used;
// the trailing 20-byte pack checksum is not verified.
func Decode(data []byte) ([]Entry, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("%w: pack too short for header (%d bytes)", ErrPackDecode, len(data))
	}
	if string(data[:4]) != "PACK" {
		return nil, fmt.Errorf("%w: missing PACK magic", ErrPackDecode)
	}

	numObjects := binary.BigEndian.Uint32(data[8:12])

	d := &decoder{data: data, pos: 12}

	entries := make([]Entry, 0, numObjects)
	for i := uint32(0); i < numObjects; i++ {
		entry, err := d.readEntry()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d of %d: %v", ErrPackDecode, i, numObjects, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readEntry() (Entry, error) {
	first, err := d.readByte()
	if err != nil {
		return Entry{}, fmt.Errorf("entry header: %w", err)
	}

	typ := entryType((first & maskObjType) >> 4)
	size := int(first & maskLast4)
	shift := 4

	for msbIsSet(first) {
		b, err := d.readByte()
		if err != nil {
			return Entry{}, fmt.Errorf("entry size continuation: %w", err)
		}
		size += int(b&maskLast7) << shift
		shift += 7
		first = b
	}

	switch typ {
	case typeCommit, typeTree, typeBlob:
		objType, _ := typ.object()
		payload, err := d.readZlib(size)
		if err != nil {
			return Entry{}, fmt.Errorf("%s payload: %w", objType, err)
		}
		return Entry{Type: objType, Payload: payload}, nil

	case typeRefDelta:
		if d.pos+20 > len(d.data) {
			return Entry{}, fmt.Errorf("ref-delta base hash: %w", io.ErrUnexpectedEOF)
		}
		baseHash, err := objects.ObjectIDFromBytes(d.data[d.pos : d.pos+20])
		if err != nil {
			return Entry{}, fmt.Errorf("ref-delta base hash: %w", err)
		}
		d.pos += 20

		raw, err := d.readZlib(size)
		if err != nil {
			return Entry{}, fmt.Errorf("ref-delta payload: %w", err)
		}

		parsed, err := delta.Parse(bytes.NewReader(raw))
		if err != nil {
			return Entry{}, fmt.Errorf("ref-delta instructions: %w", err)
		}

		return Entry{BaseHash: baseHash, Delta: parsed}, nil

	default:
		return Entry{}, fmt.Errorf("unsupported pack entry type %d", typ)
	}
}

// readZlib inflates exactly size bytes starting at the decoder's current
// position, then advances the position by exactly the number of compressed
// bytes the zlib stream consumed — not by size, and not by the whole
// remainder of the buffer. Go's compress/zlib (and klauspost's drop-in
// replacement) don't expose a total-bytes-consumed counter the way Rust's
// flate2 does, so this wraps the source in a byte-counting reader sitting
// behind a small bufio.Reader, and after inflating, subtracts whatever the
// bufio.Reader still has buffered (i.e. never handed to the inflater) from
// what the counting reader reports as read.
func (d *decoder) readZlib(size int) ([]byte, error) {
	cr := &countingReader{r: bytes.NewReader(d.data[d.pos:])}
	br := bufio.NewReaderSize(cr, 512)

	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("open zlib stream: %w", err)
	}
	defer zr.Close()

	buf := make([]byte, size)
	if size > 0 {
		if _, err := io.ReadFull(zr, buf); err != nil {
			return nil, fmt.Errorf("inflate %d bytes: %w", size, err)
		}
	}

	// Drive the stream to EOF explicitly: zlib.Reader only reads and
	// validates the trailing checksum once a Read is attempted past the
	// last decompressed byte, and io.ReadFull above never issues that call
	// when size == 0 (an empty blob), leaving the decoder's position stuck
	// mid-stream.
	var probe [1]byte
	if n, err := zr.Read(probe[:]); err != nil && err != io.EOF {
		return nil, fmt.Errorf("inflate %d bytes: draining trailer: %w", size, err)
	} else if n > 0 {
		return nil, fmt.Errorf("inflate %d bytes: more data than declared size", size)
	}

	consumed := cr.n - br.Buffered()
	d.pos += consumed

	return buf, nil
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func msbIsSet(b byte) bool {
	return b&0x80 != 0
}
