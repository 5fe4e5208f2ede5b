package jffs2

import (
	"log"
	"strings"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// Visitor is invoked once per directory entry during a Walk, in the order
// the replayed directory state produced it (spec.md §4.7, §4.8).
type Visitor interface {
	Visit(img *Image, entry *DirEntry, marker byte, inode InodeNode, length uint64, dirPath string, verbose bool) error
}

// typeMarker maps a dirent's file-type tag to the single character passed to
// every visitor; the list visitor prints it after each name (spec.md §4.7).
func typeMarker(t uint8) byte {
	switch t {
	case unix.DT_REG, unix.DT_CHR, unix.DT_BLK, unix.DT_LNK:
		return ' '
	case unix.DT_FIFO:
		return '|'
	case unix.DT_DIR:
		return '/'
	case unix.DT_SOCK:
		return '='
	default:
		return '?'
	}
}

// Walk resolves startPath and visits every entry beneath it, depth-first,
// children visited only after their parent directory's own entry has been
// emitted.
func Walk(img *Image, startPath string, verbose bool, visitor Visitor) error {
	if startPath == "" {
		startPath = "/"
	}
	dirent, ino, err := Resolve(img, 1, startPath)
	if err != nil {
		return err
	}
	if ino == 0 || (dirent != nil && dirent.Type != unix.DT_DIR) {
		return xerrors.Errorf("%s: no such file or directory", startPath)
	}

	prefix := strings.TrimPrefix(startPath, "/")
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "." {
		prefix = ""
	}
	return walkDir(img, ino, prefix, verbose, visitor)
}

func joinDisplay(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func walkDir(img *Image, dirIno uint32, prefix string, verbose bool, visitor Visitor) error {
	dir, err := CollectDirectory(img, dirIno)
	if err != nil {
		return err
	}

	for _, entry := range dir.Entries() {
		revs, err := collectInodeRevisions(img, entry.Ino)
		if err != nil {
			return err
		}
		if len(revs) == 0 {
			log.Printf("bug: dirent %q (inode %d) has no inode revisions, skipping", entry.Name, entry.Ino)
			continue
		}

		latest := revs[len(revs)-1]
		length := cumulativeLength(revs)

		if err := visitor.Visit(img, entry, typeMarker(entry.Type), latest, length, prefix, verbose); err != nil {
			return err
		}

		if entry.Type == unix.DT_DIR {
			if err := walkDir(img, entry.Ino, joinDisplay(prefix, entry.Name), verbose, visitor); err != nil {
				return err
			}
		}
	}
	return nil
}
