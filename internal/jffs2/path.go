package jffs2

import (
	"strings"

	"golang.org/x/sys/unix"
)

// maxSymlinkDepth caps symlink recursion (spec.md §4.6): a chain of depth 16
// resolves, depth 17 fails.
const maxSymlinkDepth = 16

// Resolve resolves path (absolute or relative to startIno) to its dirent and
// inode. The root directory has no dirent of its own, so resolving "/"
// returns a nil dirent and inode 1. A failed resolution returns inode 0.
func Resolve(img *Image, startIno uint32, path string) (*DirentNode, uint32, error) {
	return resolve(img, startIno, path, 0)
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func resolve(img *Image, startIno uint32, path string, depth int) (*DirentNode, uint32, error) {
	if depth > maxSymlinkDepth {
		return nil, 0, nil
	}

	ino := startIno
	var dir *DirentNode
	if strings.HasPrefix(path, "/") {
		ino = 1
	}
	if ino > 1 {
		d, err := resolveInode(img, ino)
		if err != nil {
			return nil, 0, err
		}
		dir = d
		if dir != nil {
			ino = dir.Ino
		} else {
			ino = 0
		}
	}

	comps := splitPath(path)
	for i, comp := range comps {
		if ino == 0 {
			return nil, 0, nil
		}
		last := i == len(comps)-1

		switch comp {
		case ".":
			continue

		case "..":
			if dir == nil || dir.Pino == 1 {
				ino = 1
				dir = nil
				continue
			}
			d, err := resolveInode(img, dir.Pino)
			if err != nil {
				return nil, 0, err
			}
			dir = d
			if dir != nil {
				ino = dir.Ino
			} else {
				ino = 0
			}

		default:
			next, err := resolveName(img, ino, []byte(comp))
			if err != nil {
				return nil, 0, err
			}
			if next == nil || next.Ino == 0 {
				return nil, 0, nil
			}
			if !last && next.Type != unix.DT_DIR && next.Type != unix.DT_LNK {
				return nil, 0, nil
			}

			if next.Type == unix.DT_LNK {
				target, err := Materialize(img, next.Ino)
				if err != nil {
					return nil, 0, err
				}
				rd, rino, err := resolve(img, ino, string(target), depth+1)
				if err != nil {
					return nil, 0, err
				}
				if rd != nil && !last && rd.Type != unix.DT_DIR && rd.Type != unix.DT_LNK {
					return nil, 0, nil
				}
				dir, ino = rd, rino
			} else {
				dir, ino = next, next.Ino
			}
		}
	}

	return dir, ino, nil
}
