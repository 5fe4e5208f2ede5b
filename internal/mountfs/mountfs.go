// Package mountfs exposes a JFFS2 image as a read-only FUSE file system, so
// the reconciled tree (package jffs2) can be browsed with ordinary file
// tools instead of the list/extract visitors (SPEC_FULL.md domain stack).
package mountfs

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"golang.org/x/net/context"
	"golang.org/x/sys/unix"

	"github.com/distr1/jffs2extract/internal/jffs2"
)

// jffs2Fs adapts a reconciled image to fuseutil.FileSystem. It implements
// only the read-only subset of operations roloopbackfs does: lookups,
// attributes, directory listing and whole-file reads. Every other op
// inherits ENOSYS from NotImplementedFileSystem.
type jffs2Fs struct {
	fuseutil.NotImplementedFileSystem
	img    *jffs2.Image
	logger *log.Logger

	mu       sync.Mutex
	parentOf map[fuseops.InodeID]fuseops.InodeID
}

var _ fuseutil.FileSystem = &jffs2Fs{}

// NewServer returns a fuse.Server presenting img as a read-only tree. JFFS2's
// own root inode number is 1, the same value fuseops.RootInodeID uses, so
// JFFS2 inode numbers are used directly as FUSE inode IDs.
func NewServer(img *jffs2.Image, logger *log.Logger) (fuse.Server, error) {
	fs := &jffs2Fs{
		img:      img,
		logger:   logger,
		parentOf: map[fuseops.InodeID]fuseops.InodeID{fuseops.RootInodeID: fuseops.RootInodeID},
	}
	return fuseutil.NewFileSystemServer(fs), nil
}

func (fs *jffs2Fs) StatFS(ctx context.Context, op *fuseops.StatFSOp) error {
	return nil
}

func (fs *jffs2Fs) LookUpInode(ctx context.Context, op *fuseops.LookUpInodeOp) error {
	dir, err := jffs2.CollectDirectory(fs.img, uint32(op.Parent))
	if err != nil {
		fs.logger.Printf("LookUpInode(%d, %q): %v", op.Parent, op.Name, err)
		return fuse.EIO
	}
	entry, found := dir.Lookup(op.Name)
	if !found {
		return fuse.ENOENT
	}

	attrs, err := fs.attributesFor(entry.Ino)
	if err != nil {
		fs.logger.Printf("LookUpInode(%d, %q): %v", op.Parent, op.Name, err)
		return fuse.EIO
	}

	fs.mu.Lock()
	fs.parentOf[fuseops.InodeID(entry.Ino)] = op.Parent
	fs.mu.Unlock()

	op.Entry.Child = fuseops.InodeID(entry.Ino)
	op.Entry.Attributes = attrs
	return nil
}

func (fs *jffs2Fs) GetInodeAttributes(ctx context.Context, op *fuseops.GetInodeAttributesOp) error {
	attrs, err := fs.attributesFor(uint32(op.Inode))
	if err != nil {
		fs.logger.Printf("GetInodeAttributes(%d): %v", op.Inode, err)
		return fuse.EIO
	}
	op.Attributes = attrs
	return nil
}

func (fs *jffs2Fs) attributesFor(ino uint32) (fuseops.InodeAttributes, error) {
	rev, ok, err := jffs2.LatestInode(fs.img, ino)
	if err != nil {
		return fuseops.InodeAttributes{}, err
	}
	if !ok {
		return fuseops.InodeAttributes{}, fuse.ENOENT
	}

	size := uint64(rev.ISize)
	mode := os.FileMode(rev.Mode & 0777)
	switch rev.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		mode |= os.ModeDir
	case unix.S_IFLNK:
		mode |= os.ModeSymlink
	case unix.S_IFCHR:
		mode |= os.ModeDevice | os.ModeCharDevice
	case unix.S_IFBLK:
		mode |= os.ModeDevice
	case unix.S_IFIFO:
		mode |= os.ModeNamedPipe
	case unix.S_IFSOCK:
		mode |= os.ModeSocket
	}

	return fuseops.InodeAttributes{
		Size:  size,
		Nlink: 1,
		Mode:  mode,
		Mtime: time.Unix(int64(rev.MTime), 0),
		Ctime: time.Unix(int64(rev.CTime), 0),
		Atime: time.Unix(int64(rev.ATime), 0),
		Uid:   uint32(rev.UID),
		Gid:   uint32(rev.GID),
	}, nil
}

func (fs *jffs2Fs) OpenDir(ctx context.Context, op *fuseops.OpenDirOp) error {
	return nil
}

func (fs *jffs2Fs) ReadDir(ctx context.Context, op *fuseops.ReadDirOp) error {
	dir, err := jffs2.CollectDirectory(fs.img, uint32(op.Inode))
	if err != nil {
		fs.logger.Printf("ReadDir(%d): %v", op.Inode, err)
		return fuse.EIO
	}

	entries := dir.Entries()
	if op.Offset > fuseops.DirOffset(len(entries)) {
		return nil
	}
	entries = entries[op.Offset:]

	for i, entry := range entries {
		dirent := fuseutil.Dirent{
			Offset: op.Offset + fuseops.DirOffset(i) + 1,
			Inode:  fuseops.InodeID(entry.Ino),
			Name:   entry.Name,
			Type:   direntType(entry.Type),
		}
		n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], dirent)
		if n == 0 {
			break
		}
		op.BytesRead += n
	}
	return nil
}

func direntType(t uint8) fuseutil.DirentType {
	switch t {
	case unix.DT_DIR:
		return fuseutil.DT_Directory
	case unix.DT_LNK:
		return fuseutil.DT_Link
	default:
		return fuseutil.DT_File
	}
}

func (fs *jffs2Fs) OpenFile(ctx context.Context, op *fuseops.OpenFileOp) error {
	return nil
}

func (fs *jffs2Fs) ReadFile(ctx context.Context, op *fuseops.ReadFileOp) error {
	content, err := jffs2.Materialize(fs.img, uint32(op.Inode))
	if err != nil {
		fs.logger.Printf("ReadFile(%d): %v", op.Inode, err)
		return fuse.EIO
	}
	if op.Offset > int64(len(content)) {
		return nil
	}
	op.BytesRead = copy(op.Dst, content[op.Offset:])
	return nil
}

func (fs *jffs2Fs) ReadSymlink(ctx context.Context, op *fuseops.ReadSymlinkOp) error {
	target, err := jffs2.Materialize(fs.img, uint32(op.Inode))
	if err != nil {
		fs.logger.Printf("ReadSymlink(%d): %v", op.Inode, err)
		return fuse.EIO
	}
	op.Target = string(target)
	return nil
}

func (fs *jffs2Fs) ReleaseDirHandle(ctx context.Context, op *fuseops.ReleaseDirHandleOp) error {
	return nil
}

func (fs *jffs2Fs) ReleaseFileHandle(ctx context.Context, op *fuseops.ReleaseFileHandleOp) error {
	return nil
}

func (fs *jffs2Fs) ForgetInode(ctx context.Context, op *fuseops.ForgetInodeOp) error {
	return nil
}
