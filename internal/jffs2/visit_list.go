package jffs2

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/jacobsa/timeutil"
	"golang.org/x/sys/unix"
)

const modeTypeChars = "0pcCd?bB-?l?s???"

var permBits = [9]uint32{
	unix.S_IRUSR, unix.S_IWUSR, unix.S_IXUSR,
	unix.S_IRGRP, unix.S_IWGRP, unix.S_IXGRP,
	unix.S_IROTH, unix.S_IWOTH, unix.S_IXOTH,
}

var specialBits = [9]uint32{
	0, 0, unix.S_ISUID,
	0, 0, unix.S_ISGID,
	0, 0, unix.S_ISVTX,
}

const (
	permLetters   = "rwxrwxrwx"
	specialLower  = "..s..s..t"
	specialUpper  = "..S..S..T"
)

// modeString renders mode as a ten-character ls(1)-style string, honoring
// setuid/setgid/sticky (spec.md §4.8).
func modeString(mode uint32) string {
	var b [10]byte
	b[0] = modeTypeChars[(mode>>12)&0x0f]
	for i := 0; i < 9; i++ {
		set := mode&permBits[i] != 0
		if special := specialBits[i]; special != 0 && mode&special != 0 {
			if set {
				b[i+1] = specialLower[i]
			} else {
				b[i+1] = specialUpper[i]
			}
		} else if set {
			b[i+1] = permLetters[i]
		} else {
			b[i+1] = '-'
		}
	}
	return string(b[:])
}

// ListVisitor formats one line per entry: the path and type marker, preceded
// by `ls -l` style columns when verbose is set (spec.md §4.8).
type ListVisitor struct {
	Out   io.Writer
	Clock timeutil.Clock // nil uses the real wall clock
}

func (v *ListVisitor) now() time.Time {
	if v.Clock == nil {
		return timeutil.RealClock().Now()
	}
	return v.Clock.Now()
}

const sixMonths = 6 * 30 * 24 * time.Hour

func (v *ListVisitor) Visit(img *Image, entry *DirEntry, marker byte, inode InodeNode, length uint64, dirPath string, verbose bool) error {
	var line string
	if verbose {
		ctime := time.Unix(int64(inode.CTime), 0)
		age := v.now().Sub(ctime)

		var sizeField string
		if entry.Type == unix.DT_BLK || entry.Type == unix.DT_CHR {
			var rdev uint64
			dev, err := Materialize(img, entry.Ino)
			if err == nil && len(dev) >= 8 {
				rdev = binary.LittleEndian.Uint64(dev)
			} else if err == nil && len(dev) >= 4 {
				rdev = uint64(binary.LittleEndian.Uint32(dev))
			}
			sizeField = fmt.Sprintf("%4d, %3d", unix.Major(rdev), unix.Minor(rdev))
		} else {
			sizeField = fmt.Sprintf("%9d", length)
		}

		var dateField string
		if age < sixMonths && age > -15*time.Minute {
			dateField = ctime.Format("Jan _2 15:04")
		} else {
			dateField = ctime.Format("Jan _2  2006")
		}

		line = fmt.Sprintf("%s %-4d %-8d %-8d %s %s ",
			modeString(inode.Mode), 1, inode.UID, inode.GID, sizeField, dateField)
	}

	line += joinDisplay(dirPath, entry.Name) + string(marker)

	if entry.Type == unix.DT_LNK {
		target, err := Materialize(img, entry.Ino)
		if err != nil {
			return err
		}
		line += " -> " + string(target)
	}

	_, err := fmt.Fprintln(v.Out, line)
	return err
}
