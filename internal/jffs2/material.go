package jffs2

import "golang.org/x/xerrors"

// Materialize reconstructs the current contents of ino by applying every
// inode revision in ascending version order: each revision writes dsize
// (decompressed) bytes at offset into a buffer zero-filled up to isize, and
// the last revision's isize is authoritative for the final length
// (spec.md §3, §4.5). For symlinks the result is the raw target path bytes;
// for device nodes, the raw device number in platform layout.
func Materialize(img *Image, ino uint32) ([]byte, error) {
	revs, err := collectInodeRevisions(img, ino)
	if err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, xerrors.Errorf("inode %d: no revisions found", ino)
	}

	var buf []byte
	for _, rev := range revs {
		if int(rev.ISize) > len(buf) {
			grown := make([]byte, rev.ISize)
			copy(grown, buf)
			buf = grown
		}
		payload, err := Decompress(rev.Compr, rev.Payload(img), int(rev.DSize))
		if err != nil {
			return nil, xerrors.Errorf("inode %d version %d: %w", ino, rev.Version, err)
		}
		end := int(rev.Offset) + len(payload)
		if end > len(buf) {
			return nil, xerrors.Errorf("inode %d version %d: write of %d bytes at offset %d exceeds isize %d", ino, rev.Version, len(payload), rev.Offset, rev.ISize)
		}
		copy(buf[rev.Offset:end], payload)
	}

	// The final revision's isize is authoritative even if an earlier
	// revision claimed a larger size.
	final := int(revs[len(revs)-1].ISize)
	if final != len(buf) {
		if final > len(buf) {
			grown := make([]byte, final)
			copy(grown, buf)
			buf = grown
		} else {
			buf = buf[:final]
		}
	}
	return buf, nil
}

// cumulativeLength returns the length the walker displays for an entry: the
// effective length after applying every inode revision in ascending version
// order (spec.md §4.7), without decompressing payloads.
func cumulativeLength(revs []InodeNode) uint64 {
	var length uint64
	for _, r := range revs {
		length = uint64(r.Offset) + uint64(r.DSize)
	}
	return length
}
