// Command jffs2mount mounts a JFFS2 image as a read-only FUSE file system.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jacobsa/fuse"
	"golang.org/x/net/context"
	"golang.org/x/xerrors"

	"github.com/distr1/jffs2extract/internal/ctxutil"
	"github.com/distr1/jffs2extract/internal/imgsrc"
	"github.com/distr1/jffs2extract/internal/jffs2"
	"github.com/distr1/jffs2extract/internal/mountfs"
)

var (
	debug = flag.Bool("debug", false, "enable debug mode: format error messages with additional detail")
	image = flag.String("f", "", "path to the JFFS2 image to mount (default: standard input)")
)

func funcmain() error {
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		return xerrors.New("syntax: jffs2mount -f image.jffs2 <mountpoint>")
	}
	mountpoint := args[0]

	buf, err := imgsrc.Load(*image)
	if err != nil {
		return xerrors.Errorf("loading image: %w", err)
	}
	img := jffs2.NewImage(buf)

	server, err := mountfs.NewServer(img, log.New(os.Stderr, "jffs2mount: ", log.LstdFlags))
	if err != nil {
		return xerrors.Errorf("mountfs.NewServer: %w", err)
	}

	mfs, err := fuse.Mount(mountpoint, server, &fuse.MountConfig{})
	if err != nil {
		return xerrors.Errorf("Mount: %w", err)
	}

	if err := mfs.WaitForReady(context.Background()); err != nil {
		return xerrors.Errorf("WaitForReady: %w", err)
	}

	// A SIGINT/SIGTERM cancels ctx so Join returns instead of blocking
	// forever, giving us a chance to unmount cleanly on the way out.
	ctx, canc := ctxutil.Interruptible()
	defer canc()

	joinErr := mfs.Join(ctx)
	if joinErr == ctx.Err() {
		// We were interrupted rather than naturally unmounted; unmount
		// ourselves so the mountpoint doesn't linger busy.
		if unmountErr := fuse.Unmount(mountpoint); unmountErr != nil {
			return xerrors.Errorf("Unmount: %w", unmountErr)
		}
		return nil
	}
	if joinErr != nil {
		return xerrors.Errorf("Join: %w", joinErr)
	}
	return nil
}

func main() {
	if err := funcmain(); err != nil {
		if *debug {
			fmt.Fprintf(os.Stderr, "jffs2mount: %+v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "jffs2mount: %v\n", err)
		}
		os.Exit(255)
	}
}
