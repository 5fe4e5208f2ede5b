package jffs2

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/xerrors"
)

// Decompress expands src (the node's csize-byte compressed payload) into
// exactly dsize bytes according to tag. Any tag other than the four JFFS2
// schemes is a fatal error (spec.md §4.3).
func Decompress(tag uint8, src []byte, dsize int) ([]byte, error) {
	switch tag {
	case ComprNone:
		if len(src) < dsize {
			return nil, xerrors.Errorf("none: source has %d bytes, need %d", len(src), dsize)
		}
		out := make([]byte, dsize)
		copy(out, src[:dsize])
		return out, nil

	case ComprZero:
		return make([]byte, dsize), nil

	case ComprZlib:
		zr, err := zlib.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, xerrors.Errorf("zlib: %w", err)
		}
		defer zr.Close()
		out := make([]byte, dsize)
		if _, err := io.ReadFull(zr, out); err != nil {
			return nil, xerrors.Errorf("zlib: %w", err)
		}
		return out, nil

	case ComprRtime:
		return rtimeDecompress(src, dsize)

	default:
		return nil, xerrors.Errorf("unsupported compression method %#x", tag)
	}
}

// rtimeDecompress implements the JFFS2 "rtime" scheme (spec.md §4.3): a
// byte-indexed back-reference dictionary. pos[v] holds the output offset just
// past the most recent emission of byte value v (0 before the first one),
// read before it is updated for the current pair; a (value, repeat) pair
// either copies repeat bytes from that offset (contiguously, if the source
// range doesn't overlap the destination) or replays them one at a time
// (allowing a back-reference to overlap itself, the way run-length data
// does).
func rtimeDecompress(src []byte, dsize int) ([]byte, error) {
	var pos [256]int
	out := make([]byte, dsize)
	p, outpos := 0, 0
	for outpos < dsize {
		if p+1 >= len(src) {
			return nil, xerrors.Errorf("rtime: source exhausted at output offset %d of %d", outpos, dsize)
		}
		value := src[p]
		out[outpos] = value
		outpos++
		repeat := int(src[p+1])
		p += 2

		backoffs := pos[value]
		pos[value] = outpos

		if repeat == 0 {
			continue
		}
		if backoffs+repeat >= outpos {
			for ; repeat > 0; repeat-- {
				out[outpos] = out[backoffs]
				outpos++
				backoffs++
			}
		} else {
			copy(out[outpos:outpos+repeat], out[backoffs:backoffs+repeat])
			outpos += repeat
		}
	}
	return out, nil
}
