package jffs2

import (
	"bytes"
	"testing"
)

func TestArchiveVisitorWritesNonEmptyArchive(t *testing.T) {
	img := basicTreeImage()
	var buf bytes.Buffer
	var warnings []string
	av := NewArchiveVisitor(&buf, func(format string, args ...interface{}) {
		warnings = append(warnings, format)
	})
	if err := Walk(img, "/", false, av); err != nil {
		t.Fatal(err)
	}
	if err := av.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a non-empty cpio archive")
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings for a tree of only regular files and symlinks: %v", warnings)
	}
}
