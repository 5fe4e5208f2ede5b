package jffs2

// DirEntry is one surviving name binding in a replayed directory: a name,
// its JFFS2 file-type tag (spec.md §6, matching the d_type/DT_* constants),
// and the inode it currently points to.
type DirEntry struct {
	Name string
	Type uint8
	Ino  uint32
}

// Directory is the replayed state of one parent inode's dirents: the set of
// currently-live name bindings, in the order they were first inserted
// (spec.md §3, §4.4).
type Directory struct {
	entries []*DirEntry
	index   map[string]int
}

// NewDirectory returns an empty directory state.
func NewDirectory() *Directory {
	return &Directory{index: make(map[string]int)}
}

// Apply folds one dirent revision into the directory state. A nonzero
// target inode inserts the name (or overwrites an existing entry's type and
// inode in place); a zero target inode removes the name, and is a no-op if
// the name isn't currently present.
func (d *Directory) Apply(name string, typ uint8, ino uint32) {
	if ino != 0 {
		if idx, ok := d.index[name]; ok {
			d.entries[idx].Type = typ
			d.entries[idx].Ino = ino
			return
		}
		d.entries = append(d.entries, &DirEntry{Name: name, Type: typ, Ino: ino})
		d.index[name] = len(d.entries) - 1
		return
	}

	idx, ok := d.index[name]
	if !ok {
		return
	}
	d.entries = append(d.entries[:idx], d.entries[idx+1:]...)
	delete(d.index, name)
	for i := idx; i < len(d.entries); i++ {
		d.index[d.entries[i].Name] = i
	}
}

// Entries returns the surviving entries in insertion order.
func (d *Directory) Entries() []*DirEntry {
	return d.entries
}

// Lookup returns the entry for name, if any.
func (d *Directory) Lookup(name string) (*DirEntry, bool) {
	idx, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.entries[idx], true
}
