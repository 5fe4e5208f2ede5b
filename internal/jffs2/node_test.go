package jffs2

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/unix"
)

func TestDecodeInodeFields(t *testing.T) {
	img := assembleImage(buildInodeNode(inodeSpec{
		ino: 7, version: 3, mode: unix.S_IFREG | 0644,
		uid: 1000, gid: 100, isize: 5,
		atime: 111, mtime: 222, ctime: 333,
		offset: 0, dsize: 5, compr: ComprNone,
		payload: []byte("world"),
	}))

	var got InodeNode
	err := scanNodes(img, func(n rawNode) (bool, error) {
		var err error
		got, err = decodeInode(img, n)
		return false, err
	})
	if err != nil {
		t.Fatal(err)
	}

	want := InodeNode{
		Ino: 7, Version: 3, Mode: unix.S_IFREG | 0644,
		UID: 1000, GID: 100, ISize: 5,
		ATime: 111, MTime: 222, CTime: 333,
		Offset: 0, CSize: 5, DSize: 5, Compr: ComprNone,
	}
	opts := cmp.Comparer(func(a, b InodeNode) bool {
		return a.Ino == b.Ino && a.Version == b.Version && a.Mode == b.Mode &&
			a.UID == b.UID && a.GID == b.GID && a.ISize == b.ISize &&
			a.ATime == b.ATime && a.MTime == b.MTime && a.CTime == b.CTime &&
			a.Offset == b.Offset && a.CSize == b.CSize && a.DSize == b.DSize &&
			a.Compr == b.Compr
	})
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("decodeInode mismatch (-want +got):\n%s", diff)
	}
	if string(got.Payload(img)) != "world" {
		t.Errorf("Payload() = %q, want %q", got.Payload(img), "world")
	}
}

func TestDecodeDirentFields(t *testing.T) {
	img := assembleImage(buildDirentNode(direntSpec{
		pino: 1, version: 2, ino: 9, mtime: 42, typ: unix.DT_DIR, name: "subdir",
	}))

	var got DirentNode
	err := scanNodes(img, func(n rawNode) (bool, error) {
		var err error
		got, err = decodeDirent(img, n)
		return false, err
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Pino != 1 || got.Ino != 9 || got.Version != 2 || got.Type != unix.DT_DIR {
		t.Errorf("got %+v", got)
	}
	if string(got.Name(img)) != "subdir" {
		t.Errorf("Name() = %q, want %q", got.Name(img), "subdir")
	}
}

func TestDecodeInodeRejectsTruncatedPayload(t *testing.T) {
	n := buildInodeNode(inodeSpec{ino: 1, version: 1, mode: unix.S_IFREG, isize: 100, dsize: 100, compr: ComprNone, payload: []byte("short")})
	// Truncate the image so the declared csize runs past the buffer.
	img := NewImage(n[:inodeHeaderSize+2])
	raw, ok := img.peekNode(0)
	if !ok {
		t.Fatal("peekNode failed on a node this test constructed itself")
	}
	if _, err := decodeInode(img, raw); err == nil {
		t.Fatal("expected an error when csize runs past the end of the image")
	}
}
