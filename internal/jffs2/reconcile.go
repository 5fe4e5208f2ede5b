package jffs2

import "sort"

// collectInodeRevisions gathers every inode revision for ino, in ascending
// version order (ties broken by physical scan order, i.e. the first one
// encountered wins — spec.md §4.2 leaves duplicate-version behavior
// unspecified beyond determinism).
func collectInodeRevisions(img *Image, ino uint32) ([]InodeNode, error) {
	var revs []InodeNode
	err := scanNodes(img, func(n rawNode) (bool, error) {
		if n.nodeType != nodeTypeInode {
			return true, nil
		}
		in, err := decodeInode(img, n)
		if err != nil {
			return false, err
		}
		if in.Ino == ino {
			revs = append(revs, in)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(revs, func(i, j int) bool { return revs[i].Version < revs[j].Version })
	uniq := revs[:0]
	for _, rev := range revs {
		if len(uniq) > 0 && uniq[len(uniq)-1].Version == rev.Version {
			continue
		}
		uniq = append(uniq, rev)
	}
	return uniq, nil
}

// LatestInode returns ino's current (highest-version) inode revision, for
// callers outside this package that only need current metadata rather than
// the full replay history (e.g. the FUSE mount adapter's GetInodeAttributes).
func LatestInode(img *Image, ino uint32) (in InodeNode, ok bool, err error) {
	revs, err := collectInodeRevisions(img, ino)
	if err != nil {
		return InodeNode{}, false, err
	}
	if len(revs) == 0 {
		return InodeNode{}, false, nil
	}
	return revs[len(revs)-1], true, nil
}

// FindLatestInode returns the inode revision for ino with the smallest
// version strictly greater than afterVersion. Calling it repeatedly, each
// time passing the version just returned, walks every revision of ino in
// ascending order — the contract spec.md §4.2 calls find_latest_inode.
// ok is false if no such revision exists.
func FindLatestInode(img *Image, ino, afterVersion uint32) (in InodeNode, ok bool, err error) {
	revs, err := collectInodeRevisions(img, ino)
	if err != nil {
		return InodeNode{}, false, err
	}
	for _, rev := range revs {
		if rev.Version > afterVersion {
			return rev, true, nil
		}
	}
	return InodeNode{}, false, nil
}

// CollectDirectory replays every dirent revision whose parent inode equals
// parentIno, in ascending version order, into a Directory (spec.md §4.2,
// §4.4).
func CollectDirectory(img *Image, parentIno uint32) (*Directory, error) {
	var recs []DirentNode
	err := scanNodes(img, func(n rawNode) (bool, error) {
		if n.nodeType != nodeTypeDirent {
			return true, nil
		}
		d, err := decodeDirent(img, n)
		if err != nil {
			return false, err
		}
		if d.Pino == parentIno {
			recs = append(recs, d)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Version < recs[j].Version })

	dir := NewDirectory()
	for i, d := range recs {
		// Of several dirents sharing a version, only the first encountered applies.
		if i > 0 && recs[i-1].Version == d.Version {
			continue
		}
		dir.Apply(string(d.Name(img)), d.Type, d.Ino)
	}
	return dir, nil
}

// resolveDirent finds the highest-version dirent matching the given
// criteria: wantIno (if nonzero) constrains the dirent's target inode;
// wantPino plus name (if wantPino is nonzero) constrain parent inode and
// name. This mirrors the original resolvedirent/resolvename/resolveinode
// trio used by the path resolver — a point lookup, distinct from
// CollectDirectory's full replay, since the resolver only ever needs the one
// most current binding for a (parent, name) or (inode) pair.
func resolveDirent(img *Image, wantIno, wantPino uint32, name []byte) (*DirentNode, error) {
	if wantPino == 0 && wantIno <= 1 {
		return nil, nil
	}
	var (
		best    DirentNode
		bestSet bool
	)
	err := scanNodes(img, func(n rawNode) (bool, error) {
		if n.nodeType != nodeTypeDirent {
			return true, nil
		}
		d, err := decodeDirent(img, n)
		if err != nil {
			return false, err
		}
		if wantIno != 0 && d.Ino != wantIno {
			return true, nil
		}
		if wantPino != 0 {
			if d.Pino != wantPino {
				return true, nil
			}
			dn := d.Name(img)
			if int(d.NSize) != len(name) || string(dn) != string(name) {
				return true, nil
			}
		}
		if !bestSet || d.Version > best.Version {
			best, bestSet = d, true
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if !bestSet {
		return nil, nil
	}
	return &best, nil
}

func resolveName(img *Image, pino uint32, name []byte) (*DirentNode, error) {
	return resolveDirent(img, 0, pino, name)
}

func resolveInode(img *Image, ino uint32) (*DirentNode, error) {
	return resolveDirent(img, ino, 0, nil)
}
