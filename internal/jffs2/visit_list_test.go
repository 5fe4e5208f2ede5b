package jffs2

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func TestListVisitorShortFormat(t *testing.T) {
	img := assembleImage(
		dirInode(1, 1, 0755),
		regFile(2, 1, "hello"),
		buildDirentNode(direntSpec{pino: 1, version: 1, ino: 2, typ: unix.DT_REG, name: "a"}),
	)
	var buf bytes.Buffer
	v := &ListVisitor{Out: &buf}
	if err := Walk(img, "/", false, v); err != nil {
		t.Fatal(err)
	}
	got := strings.TrimSpace(buf.String())
	if got != "a" {
		t.Errorf("got %q, want %q", got, "a")
	}
}

func TestListVisitorMarksDirectories(t *testing.T) {
	img := assembleImage(
		dirInode(1, 1, 0755),
		dirInode(2, 1, 0755),
		buildDirentNode(direntSpec{pino: 1, version: 1, ino: 2, typ: unix.DT_DIR, name: "sub"}),
	)
	var buf bytes.Buffer
	v := &ListVisitor{Out: &buf}
	if err := Walk(img, "/", false, v); err != nil {
		t.Fatal(err)
	}
	got := strings.TrimSpace(buf.String())
	if got != "sub/" {
		t.Errorf("got %q, want %q", got, "sub/")
	}
}
