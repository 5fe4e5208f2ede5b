package jffs2

import "golang.org/x/xerrors"

// Node magic and type tags (spec.md §6).
const (
	nodeMagic      = 0x1985
	nodeTypeInode  = 0xe001
	nodeTypeDirent = 0xe002
)

// Compression tags (spec.md §6).
const (
	ComprNone  = 0x00
	ComprZero  = 0x01
	ComprRtime = 0x02
	ComprZlib  = 0x06
)

// commonHeaderSize is the size of the header shared by every node: magic
// (u16), nodetype (u16), totlen (u32), hdr_crc (u32, never validated here).
const commonHeaderSize = 12

// inodeHeaderSize is commonHeaderSize plus the fixed inode-revision fields,
// i.e. the byte offset at which a revision's payload begins.
const inodeHeaderSize = commonHeaderSize + 56

// direntHeaderSize is commonHeaderSize plus the fixed dirent-revision fields,
// i.e. the byte offset at which the name begins.
const direntHeaderSize = commonHeaderSize + 28

// rawNode is a decoded common header plus its position in the image.
type rawNode struct {
	offset   int
	nodeType uint16
	totlen   uint32
}

// end returns the 4-byte-aligned offset of the node following this one.
func (n rawNode) end() int {
	return n.offset + int((n.totlen+3)&^3)
}

// peekNode decodes the common header at off. ok is false if off does not
// hold a valid node magic or the header would run past the image.
func (img *Image) peekNode(off int) (n rawNode, ok bool) {
	if off < 0 || off+commonHeaderSize > len(img.buf) {
		return rawNode{}, false
	}
	if le16(img.buf[off:]) != nodeMagic {
		return rawNode{}, false
	}
	return rawNode{
		offset:   off,
		nodeType: le16(img.buf[off+2:]),
		totlen:   le32(img.buf[off+4:]),
	}, true
}

// InodeNode is a single inode revision: a read-only view into the image.
type InodeNode struct {
	Ino       uint32
	Version   uint32
	Mode      uint32
	UID       uint16
	GID       uint16
	ISize     uint32
	ATime     uint32
	MTime     uint32
	CTime     uint32
	Offset    uint32
	CSize     uint32
	DSize     uint32
	Compr     uint8
	UserCompr uint8
	Flags     uint16

	node       rawNode
	payloadOff int
}

func decodeInode(img *Image, n rawNode) (InodeNode, error) {
	if n.offset+inodeHeaderSize > len(img.buf) {
		return InodeNode{}, xerrors.Errorf("inode node at offset %d: header runs past end of image", n.offset)
	}
	b := img.buf[n.offset:]
	in := InodeNode{
		Ino:        le32(b[12:]),
		Version:    le32(b[16:]),
		Mode:       le32(b[20:]),
		UID:        le16(b[24:]),
		GID:        le16(b[26:]),
		ISize:      le32(b[28:]),
		ATime:      le32(b[32:]),
		MTime:      le32(b[36:]),
		CTime:      le32(b[40:]),
		Offset:     le32(b[44:]),
		CSize:      le32(b[48:]),
		DSize:      le32(b[52:]),
		Compr:      b[56],
		UserCompr:  b[57],
		Flags:      le16(b[58:]),
		node:       n,
		payloadOff: n.offset + inodeHeaderSize,
	}
	if in.payloadOff+int(in.CSize) > len(img.buf) {
		return InodeNode{}, xerrors.Errorf("inode %d version %d: payload of %d bytes runs past end of image", in.Ino, in.Version, in.CSize)
	}
	return in, nil
}

// Payload returns the node's compressed on-disk payload (csize bytes).
func (in InodeNode) Payload(img *Image) []byte {
	return img.buf[in.payloadOff : in.payloadOff+int(in.CSize)]
}

// DirentNode is a single dirent revision: a read-only view into the image.
type DirentNode struct {
	Pino    uint32
	Ino     uint32
	Version uint32
	MTime   uint32
	NSize   uint8
	Type    uint8

	nameOff int
}

func decodeDirent(img *Image, n rawNode) (DirentNode, error) {
	if n.offset+direntHeaderSize > len(img.buf) {
		return DirentNode{}, xerrors.Errorf("dirent node at offset %d: header runs past end of image", n.offset)
	}
	b := img.buf[n.offset:]
	d := DirentNode{
		Pino:    le32(b[12:]),
		Version: le32(b[16:]),
		Ino:     le32(b[20:]),
		MTime:   le32(b[24:]),
		NSize:   b[28],
		Type:    b[29],
		nameOff: n.offset + direntHeaderSize,
	}
	if d.nameOff+int(d.NSize) > len(img.buf) {
		return DirentNode{}, xerrors.Errorf("dirent at offset %d: name of %d bytes runs past end of image", n.offset, d.NSize)
	}
	return d, nil
}

// Name returns the dirent's name bytes.
func (d DirentNode) Name(img *Image) []byte {
	return img.buf[d.nameOff : d.nameOff+int(d.NSize)]
}
