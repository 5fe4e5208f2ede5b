package jffs2

import (
	"testing"

	"golang.org/x/sys/unix"
)

type recordingVisitor struct {
	names []string
}

func (v *recordingVisitor) Visit(img *Image, entry *DirEntry, marker byte, inode InodeNode, length uint64, dirPath string, verbose bool) error {
	v.names = append(v.names, joinDisplay(dirPath, entry.Name))
	return nil
}

func TestWalkSeedCase1(t *testing.T) {
	img := assembleImage(
		dirInode(1, 1, 0755),
		regFile(2, 1, "hello"),
		buildDirentNode(direntSpec{pino: 1, version: 1, ino: 2, typ: unix.DT_REG, name: "a"}),
	)
	v := &recordingVisitor{}
	if err := Walk(img, "/", false, v); err != nil {
		t.Fatal(err)
	}
	if len(v.names) != 1 || v.names[0] != "a" {
		t.Fatalf("got %v, want [a]", v.names)
	}
}

func TestWalkDepthFirstOrdering(t *testing.T) {
	// A subdirectory's own entry line is emitted before the walker descends
	// into it (spec.md §8: walker ordering).
	img := assembleImage(
		dirInode(1, 1, 0755),
		dirInode(2, 1, 0755),
		regFile(3, 1, "x"),
		buildDirentNode(direntSpec{pino: 1, version: 1, ino: 2, typ: unix.DT_DIR, name: "sub"}),
		buildDirentNode(direntSpec{pino: 2, version: 1, ino: 3, typ: unix.DT_REG, name: "inner"}),
	)
	v := &recordingVisitor{}
	if err := Walk(img, "/", false, v); err != nil {
		t.Fatal(err)
	}
	want := []string{"sub", "sub/inner"}
	if len(v.names) != len(want) || v.names[0] != want[0] || v.names[1] != want[1] {
		t.Fatalf("got %v, want %v", v.names, want)
	}
}

func TestWalkInsertionOrderSurvivesDeletion(t *testing.T) {
	img := assembleImage(
		dirInode(1, 1, 0755),
		regFile(2, 1, "a"),
		regFile(3, 1, "b"),
		regFile(4, 1, "c"),
		buildDirentNode(direntSpec{pino: 1, version: 1, ino: 2, typ: unix.DT_REG, name: "a"}),
		buildDirentNode(direntSpec{pino: 1, version: 2, ino: 3, typ: unix.DT_REG, name: "b"}),
		buildDirentNode(direntSpec{pino: 1, version: 3, ino: 0, typ: unix.DT_REG, name: "a"}),
		buildDirentNode(direntSpec{pino: 1, version: 4, ino: 4, typ: unix.DT_REG, name: "c"}),
	)
	v := &recordingVisitor{}
	if err := Walk(img, "/", false, v); err != nil {
		t.Fatal(err)
	}
	want := []string{"b", "c"}
	if len(v.names) != len(want) || v.names[0] != want[0] || v.names[1] != want[1] {
		t.Fatalf("got %v, want %v", v.names, want)
	}
}

func TestWalkUnknownPathFails(t *testing.T) {
	img := assembleImage(dirInode(1, 1, 0755))
	v := &recordingVisitor{}
	if err := Walk(img, "/nope", false, v); err == nil {
		t.Fatal("expected an error resolving an unknown start path")
	}
}
