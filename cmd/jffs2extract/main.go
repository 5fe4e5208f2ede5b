// Command jffs2extract lists or extracts the contents of a JFFS2 flash
// filesystem image.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/mattn/go-isatty"
	"github.com/orcaman/writerseeker"
	"golang.org/x/xerrors"

	"github.com/distr1/jffs2extract/internal/imgsrc"
	"github.com/distr1/jffs2extract/internal/jffs2"
)

var (
	debug      = flag.Bool("debug", false, "enable debug mode: format error messages with additional detail")
	cpuprofile = flag.String("cpuprofile", "", "path to store a CPU profile at")
	memprofile = flag.String("memprofile", "", "path to store a memory profile at")
	tracefile  = flag.String("tracefile", "", "path to store a trace at")

	image = flag.String("f", "", "path to the JFFS2 image to read (default: standard input)")
	chdir = flag.String("C", "", "change to dir before extracting or listing")

	listFlag    = flag.Bool("t", false, "list the contents of the image")
	extractFlag = flag.Bool("x", false, "extract the contents of the image")
	cpioFlag    = flag.Bool("cpio", false, "with -x, write a cpio archive instead of extracting to the filesystem")
	cpioOut     = flag.String("o", "", "with -cpio, path to write the archive to (default: standard output)")
	verbose     = flag.Bool("v", false, "verbose: long-listing format, or print extracted file names")
)

var verboseSet bool

func funcmain() error {
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "v" {
			verboseSet = true
		}
	})

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if *tracefile != "" {
		f, err := os.Create(*tracefile)
		if err != nil {
			return err
		}
		trace.Start(f)
		defer trace.Stop()
	}

	if *listFlag == *extractFlag {
		return xerrors.New("specify exactly one of -t (list) or -x (extract)")
	}

	buf, err := imgsrc.Load(*image)
	if err != nil {
		return xerrors.Errorf("loading image: %w", err)
	}
	img := jffs2.NewImage(buf)

	if *chdir != "" {
		if err := os.Chdir(*chdir); err != nil {
			return xerrors.Errorf("-C: %w", err)
		}
	}

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"/"}
	}

	if *listFlag {
		// Default to the long-listing format for an interactive terminal,
		// the way ls(1) defaults its behavior on whether stdout is a tty;
		// a pipe or redirect still requires -v explicitly.
		v := &jffs2.ListVisitor{Out: os.Stdout}
		longListing := *verbose || (!verboseSet && isatty.IsTerminal(os.Stdout.Fd()))
		for _, p := range paths {
			if err := jffs2.Walk(img, p, longListing, v); err != nil {
				return xerrors.Errorf("listing %s: %w", p, err)
			}
		}
		return nil
	}

	if *cpioFlag {
		return writeCPIOArchive(img, paths)
	}

	ev := &jffs2.ExtractVisitor{Verbose: *verbose}
	for _, p := range paths {
		if err := jffs2.Walk(img, p, *verbose, ev); err != nil {
			return xerrors.Errorf("extracting %s: %w", p, err)
		}
	}
	return nil
}

// writeCPIOArchive packs paths into a newc cpio archive. With no -o, the
// archive streams straight to standard output. With -o, the archive is
// assembled in memory first in a writerseeker buffer (no real temp file)
// and only then copied to the destination, so a run interrupted partway through never
// leaves a truncated file at the requested path.
func writeCPIOArchive(img *jffs2.Image, paths []string) error {
	warn := func(format string, args ...interface{}) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}

	if *cpioOut == "" {
		av := jffs2.NewArchiveVisitor(os.Stdout, warn)
		for _, p := range paths {
			if err := jffs2.Walk(img, p, *verbose, av); err != nil {
				return xerrors.Errorf("archiving %s: %w", p, err)
			}
		}
		return av.Close()
	}

	ws := &writerseeker.WriterSeeker{}
	av := jffs2.NewArchiveVisitor(ws, warn)
	for _, p := range paths {
		if err := jffs2.Walk(img, p, *verbose, av); err != nil {
			return xerrors.Errorf("archiving %s: %w", p, err)
		}
	}
	if err := av.Close(); err != nil {
		return xerrors.Errorf("closing archive: %w", err)
	}

	out, err := os.OpenFile(*cpioOut, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return xerrors.Errorf("-o: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, ws.Reader()); err != nil {
		return xerrors.Errorf("writing %s: %w", *cpioOut, err)
	}
	return nil
}

func main() {
	err := funcmain()
	if err != nil {
		if *debug {
			fmt.Fprintf(os.Stderr, "jffs2extract: %+v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "jffs2extract: %v\n", err)
		}
	}
	if *memprofile != "" {
		f, ferr := os.Create(*memprofile)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "could not create memory profile: %v\n", ferr)
			os.Exit(255)
		}
		runtime.GC()
		pprof.WriteHeapProfile(f)
		f.Close()
	}
	if err != nil {
		os.Exit(255)
	}
}
