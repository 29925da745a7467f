package vcs

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zlib"

	"github.com/fenilsonani/nanogit/internal/objects"
)

// buildPack assembles a minimal git pack byte stream containing the given
// whole objects (no deltas), in the exact binary shape internal/pack.Decode
// expects: "PACK" + version + count, then one zlib-compressed entry per
// object, then a 20-byte trailer that is never verified.
func buildPack(t *testing.T, objs []objects.Object) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("PACK")
	binary.Write(&buf, binary.BigEndian, uint32(2))
	binary.Write(&buf, binary.BigEndian, uint32(len(objs)))

	for _, obj := range objs {
		var typeCode byte
		switch obj.Type() {
		case objects.TypeCommit:
			typeCode = 1
		case objects.TypeTree:
			typeCode = 2
		case objects.TypeBlob:
			typeCode = 3
		default:
			t.Fatalf("unsupported object type %s", obj.Type())
		}

		data, err := obj.Serialize()
		if err != nil {
			t.Fatalf("serialize %s: %v", obj.Type(), err)
		}

		size := len(data)
		first := typeCode<<4 | byte(size&0x0f)
		size >>= 4
		for size > 0 {
			buf.WriteByte(first | 0x80)
			first = byte(size & 0x7f)
			size >>= 7
		}
		buf.WriteByte(first)

		var zbuf bytes.Buffer
		zw := zlib.NewWriter(&zbuf)
		zw.Write(data)
		zw.Close()
		buf.Write(zbuf.Bytes())
	}

	buf.Write(make([]byte, 20))
	return buf.Bytes()
}

func sideBandFrame(channel byte, payload []byte) []byte {
	data := append([]byte{channel}, payload...)
	return pktLineBytes(data)
}

func pktLineBytes(data []byte) []byte {
	n := len(data) + 4
	return append([]byte(fmt.Sprintf("%04x", n)), data...)
}

// newUploadPackServer serves a fixed single-branch discovery response and
// negotiation reply built from the given commit/tree/blob set.
func newUploadPackServer(t *testing.T, master objects.ObjectID, pack []byte) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/info/refs", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		buf.Write(pktLineBytes([]byte("# service=git-upload-pack\n")))
		buf.WriteString("0000")
		buf.Write(pktLineBytes([]byte(fmt.Sprintf("%s refs/heads/master\x00multi_ack_detailed side-band-64k\n", master))))
		buf.WriteString("0000")
		w.Write(buf.Bytes())
	})
	mux.HandleFunc("/git-upload-pack", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		buf.Write(pktLineBytes([]byte("NAK\n")))
		buf.Write(sideBandFrame(1, pack))
		buf.WriteString("0000")
		w.Write(buf.Bytes())
	})

	return httptest.NewServer(mux)
}

func TestClone(t *testing.T) {
	fileBlob := objects.NewBlob([]byte("hello from clone\n"))
	tree := objects.NewTree()
	if err := tree.AddEntry(objects.ModeBlob, "README.md", fileBlob.ID()); err != nil {
		t.Fatalf("AddEntry() error = %v", err)
	}

	sig := objects.Signature{Name: "Clone Test", Email: "test@example.com", When: time.Unix(1704110400, 0).UTC()}
	commit := objects.NewCommit(tree.ID(), nil, sig, sig, "initial import\n")

	pack := buildPack(t, []objects.Object{fileBlob, tree, commit})

	server := newUploadPackServer(t, commit.ID(), pack)
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "clone-dest")

	repo, err := Clone(context.Background(), server.URL, dest)
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	if !repo.HasObject(commit.ID()) {
		t.Error("cloned repository is missing the commit object")
	}
	if !repo.HasObject(tree.ID()) {
		t.Error("cloned repository is missing the tree object")
	}
	if !repo.HasObject(fileBlob.ID()) {
		t.Error("cloned repository is missing the blob object")
	}

	data, err := os.ReadFile(filepath.Join(dest, "README.md"))
	if err != nil {
		t.Fatalf("reading checked-out README.md: %v", err)
	}
	if string(data) != "hello from clone\n" {
		t.Errorf("README.md content = %q, want %q", data, "hello from clone\n")
	}

	master, err := os.ReadFile(filepath.Join(dest, ".git", "refs", "heads", "master"))
	if err != nil {
		t.Fatalf("reading refs/heads/master: %v", err)
	}
	if got := string(bytes.TrimSpace(master)); got != commit.ID().String() {
		t.Errorf("refs/heads/master = %q, want %q", got, commit.ID().String())
	}
}

func TestClone_MissingRef(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/info/refs", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		buf.Write(pktLineBytes([]byte("# service=git-upload-pack\n")))
		buf.WriteString("0000")
		buf.WriteString("0000")
		w.Write(buf.Bytes())
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := Clone(context.Background(), server.URL, filepath.Join(t.TempDir(), "dest"))
	if err == nil {
		t.Error("Clone() error = nil, want error for missing refs/heads/master")
	}
}
