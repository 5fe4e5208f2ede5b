package jffs2

import (
	"io"
	"time"

	cpio "github.com/cavaliercoder/go-cpio"
	"golang.org/x/sys/unix"
)

// ArchiveVisitor packs every visited entry into a newc-format cpio archive
// instead of placing it on the host filesystem, for "-cpio" output
// (SPEC_FULL.md domain stack: an alternate target for the same walk that
// populates ExtractVisitor). Directories, regular files and symlinks are
// archived; devices, fifos and sockets are skipped with a warning, since
// go-cpio's newc writer has no portable way to carry a rdev.
type ArchiveVisitor struct {
	wr   *cpio.Writer
	warn func(format string, args ...interface{})
}

// NewArchiveVisitor returns a visitor that writes a cpio archive to w. Close
// must be called once the walk completes to flush the trailer record.
func NewArchiveVisitor(w io.Writer, warn func(format string, args ...interface{})) *ArchiveVisitor {
	return &ArchiveVisitor{wr: cpio.NewWriter(w), warn: warn}
}

func (v *ArchiveVisitor) Close() error {
	return v.wr.Close()
}

func (v *ArchiveVisitor) Visit(img *Image, entry *DirEntry, marker byte, inode InodeNode, length uint64, dirPath string, verbose bool) error {
	name := joinDisplay(dirPath, entry.Name)
	mtime := time.Unix(int64(inode.MTime), 0)

	switch entry.Type {
	case unix.DT_DIR:
		return v.wr.WriteHeader(&cpio.Header{
			Name:    name,
			Mode:    cpio.FileMode(inode.Mode&0777) | cpio.TypeDir,
			ModTime: mtime,
		})

	case unix.DT_REG:
		content, err := Materialize(img, entry.Ino)
		if err != nil {
			return err
		}
		if err := v.wr.WriteHeader(&cpio.Header{
			Name:    name,
			Mode:    cpio.FileMode(inode.Mode & 0777),
			Size:    int64(len(content)),
			ModTime: mtime,
		}); err != nil {
			return err
		}
		_, err = v.wr.Write(content)
		return err

	case unix.DT_LNK:
		target, err := Materialize(img, entry.Ino)
		if err != nil {
			return err
		}
		if err := v.wr.WriteHeader(&cpio.Header{
			Name:    name,
			Mode:    cpio.FileMode(inode.Mode&0777) | cpio.TypeSymlink,
			Size:    int64(len(target)),
			ModTime: mtime,
		}); err != nil {
			return err
		}
		_, err = v.wr.Write(target)
		return err

	default:
		if v.warn != nil {
			v.warn("not archiving special file %s", name)
		}
		return nil
	}
}
