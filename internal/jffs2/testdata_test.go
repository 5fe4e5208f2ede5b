package jffs2

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// Shared node builders for the test files in this package: they assemble raw
// node bytes the same way an image on flash would hold them, so scanNodes
// and the decoders are exercised exactly as they are on a real image.

func putLE16(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }
func putLE32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }

type inodeSpec struct {
	ino, version       uint32
	mode               uint32
	uid, gid           uint16
	isize              uint32
	atime, mtime, ctime uint32
	offset             uint32
	compr              uint8
	dsize              uint32
	payload            []byte
}

func buildInodeNode(s inodeSpec) []byte {
	totlen := uint32(inodeHeaderSize) + uint32(len(s.payload))
	b := make([]byte, (totlen+3)&^3)
	putLE16(b, 0, nodeMagic)
	putLE16(b, 2, nodeTypeInode)
	putLE32(b, 4, totlen)
	putLE32(b, 12, s.ino)
	putLE32(b, 16, s.version)
	putLE32(b, 20, s.mode)
	putLE16(b, 24, s.uid)
	putLE16(b, 26, s.gid)
	putLE32(b, 28, s.isize)
	putLE32(b, 32, s.atime)
	putLE32(b, 36, s.mtime)
	putLE32(b, 40, s.ctime)
	putLE32(b, 44, s.offset)
	putLE32(b, 48, uint32(len(s.payload)))
	putLE32(b, 52, s.dsize)
	b[56] = s.compr
	copy(b[inodeHeaderSize:], s.payload)
	return b
}

type direntSpec struct {
	pino, version, ino uint32
	mtime              uint32
	typ                uint8
	name               string
}

func buildDirentNode(s direntSpec) []byte {
	totlen := uint32(direntHeaderSize) + uint32(len(s.name))
	b := make([]byte, (totlen+3)&^3)
	putLE16(b, 0, nodeMagic)
	putLE16(b, 2, nodeTypeDirent)
	putLE32(b, 4, totlen)
	putLE32(b, 12, s.pino)
	putLE32(b, 16, s.version)
	putLE32(b, 20, s.ino)
	putLE32(b, 24, s.mtime)
	b[28] = byte(len(s.name))
	b[29] = s.typ
	copy(b[direntHeaderSize:], s.name)
	return b
}

func assembleImage(nodes ...[]byte) *Image {
	var buf []byte
	for _, n := range nodes {
		buf = append(buf, n...)
	}
	return NewImage(buf)
}

// regFile is a convenience for the common case of a single-revision regular
// file whose entire content fits in one inode node.
func regFile(ino, version uint32, content string) []byte {
	return buildInodeNode(inodeSpec{
		ino: ino, version: version,
		mode:  unix.S_IFREG | 0644,
		isize: uint32(len(content)),
		dsize: uint32(len(content)), compr: ComprNone,
		payload: []byte(content),
	})
}

func dirInode(ino, version uint32, mode uint32) []byte {
	return buildInodeNode(inodeSpec{ino: ino, version: version, mode: mode | unix.S_IFDIR})
}
