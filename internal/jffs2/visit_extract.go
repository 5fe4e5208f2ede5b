package jffs2

import (
	"fmt"
	"log"
	"os"
	"sync"

	fallocate "github.com/detailyang/go-fallocate"
	"golang.org/x/sys/unix"

	"github.com/distr1/jffs2extract/internal/oninterrupt"
)

var (
	partialMu   sync.Mutex
	partialPath string
)

func init() {
	oninterrupt.Register(func() {
		partialMu.Lock()
		p := partialPath
		partialMu.Unlock()
		if p != "" {
			os.Remove(p)
		}
	})
}

func setPartial(p string) {
	partialMu.Lock()
	partialPath = p
	partialMu.Unlock()
}

// ExtractVisitor writes each visited entry out to the host filesystem
// relative to the current working directory (spec.md §4.8, §6). Directories
// are created with mode 0777 (already-exists is not an error); regular
// files are created with mode 0666 and their fully materialized content is
// written; every other type (symlink, device, fifo, socket) is skipped with
// a warning, matching the original's behavior of only handling the two
// types it knows how to place on disk.
type ExtractVisitor struct {
	Verbose bool
}

func (v *ExtractVisitor) Visit(img *Image, entry *DirEntry, marker byte, inode InodeNode, length uint64, dirPath string, verbose bool) error {
	name := joinDisplay(dirPath, entry.Name)
	switch entry.Type {
	case unix.DT_DIR:
		if err := os.Mkdir(name, 0777); err != nil && !os.IsExist(err) {
			log.Printf("failed to create %s: %v", name, err)
		}

	case unix.DT_REG:
		if v.Verbose || verbose {
			fmt.Println(name)
		}
		if err := extractFile(img, entry.Ino, name); err != nil {
			log.Printf("failed to create %s: %v", name, err)
		}

	default:
		log.Printf("not extracting special file %s", name)
	}
	return nil
}

func extractFile(img *Image, ino uint32, name string) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	setPartial(name)
	defer setPartial("")
	defer f.Close()

	content, err := Materialize(img, ino)
	if err != nil {
		return err
	}

	if len(content) > 0 {
		// Best-effort: not every host filesystem supports preallocation.
		if err := fallocate.Fallocate(f, 0, int64(len(content))); err != nil {
			log.Printf("fallocate %s: %v (continuing without preallocation)", name, err)
		}
	}

	_, err = f.Write(content)
	return err
}
