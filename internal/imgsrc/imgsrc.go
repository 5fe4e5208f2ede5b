// Package imgsrc loads a JFFS2 image from whatever source the command line
// names: a path given with -f, or standard input when none is given or the
// path is "-" (spec.md §5, following the original jffs2extract's -f/stdin
// contract).
package imgsrc

import (
	"io"
	"io/ioutil"
	"os"

	"golang.org/x/xerrors"
)

// Load reads the full image into memory. path == "" or "-" reads stdin.
func Load(path string) ([]byte, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, xerrors.Errorf("opening image: %w", err)
		}
		defer f.Close()
		r = f
	}

	buf, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, xerrors.Errorf("reading image: %w", err)
	}
	if len(buf) == 0 {
		return nil, xerrors.New("image is empty")
	}
	return buf, nil
}
