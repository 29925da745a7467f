package pack

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilsonani/nanogit/internal/objects"
)

// buildPack assembles a minimal, valid pack byte stream with the given
// whole-object entries, for testing the decoder without a real git remote.
func buildPack(t *testing.T, objs []struct {
	typ  entryType
	data []byte
}) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("PACK")
	binary.Write(&buf, binary.BigEndian, uint32(2))
	binary.Write(&buf, binary.BigEndian, uint32(len(objs)))

	for _, o := range objs {
		writeEntryHeader(&buf, o.typ, len(o.data))
		w := zlib.NewWriter(&buf)
		_, err := w.Write(o.data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	return buf.Bytes()
}

func writeEntryHeader(buf *bytes.Buffer, typ entryType, size int) {
	first := byte(typ) << 4
	first |= byte(size & maskLast4)
	size >>= 4

	if size > 0 {
		first |= 0x80
	}
	buf.WriteByte(first)

	for size > 0 {
		b := byte(size & maskLast7)
		size >>= 7
		if size > 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
	}
}

func TestDecodeWholeObjects(t *testing.T) {
	blobData := []byte("blob content")
	pack := buildPack(t, []struct {
		typ  entryType
		data []byte
	}{
		{typeBlob, blobData},
	})

	entries, err := Decode(pack)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, objects.TypeBlob, entries[0].Type)
	assert.Equal(t, blobData, entries[0].Payload)
	assert.False(t, entries[0].IsDelta())
}

func TestDecodeMultipleObjectsAdvancesCursorExactly(t *testing.T) {
	big := bytes.Repeat([]byte("x"), 5000)
	pack := buildPack(t, []struct {
		typ  entryType
		data []byte
	}{
		{typeBlob, big},
		{typeTree, []byte("second entry")},
	})

	entries, err := Decode(pack)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, big, entries[0].Payload)
	assert.Equal(t, []byte("second entry"), entries[1].Payload)
}

func TestDecodeEmptyBlobAdvancesCursor(t *testing.T) {
	pack := buildPack(t, []struct {
		typ  entryType
		data []byte
	}{
		{typeBlob, []byte{}},
		{typeTree, []byte("after the empty blob")},
	})

	entries, err := Decode(pack)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].Payload)
	assert.Equal(t, []byte("after the empty blob"), entries[1].Payload)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode([]byte("NOTAPACK0000"))
	assert.Error(t, err)
}

func TestDecodeRejectsTooShort(t *testing.T) {
	_, err := Decode([]byte("PACK"))
	assert.Error(t, err)
}
