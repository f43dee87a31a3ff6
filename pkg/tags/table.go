// Package tags provides the immutable GDSII tag table: tag id to symbolic
// name and expected data type, and back.
package tags

import (
	"fmt"
	"strings"

	"github.com/google/btree"
	"github.com/ssargent/gdstxt/pkg/gds"
)

// Entry is one row of the tag table
type Entry struct {
	Tag      gds.Tag
	Name     string
	DataType gds.DataType
}

// Table resolves tags in both directions. It is never mutated after New
// returns, so a single Table can be shared by any number of goroutines.
type Table struct {
	byTag  [256]*Entry
	byName *btree.BTreeG[Entry]
}

var _ gds.TagTable = (*Table)(nil)

func lessByName(a, b Entry) bool {
	return a.Name < b.Name
}

// New builds a table. Names are upper-cased; duplicate tags or names and
// empty names are rejected.
func New(entries []Entry) (*Table, error) {
	t := &Table{byName: btree.NewG[Entry](8, lessByName)}
	for _, e := range entries {
		e.Name = strings.ToUpper(strings.TrimSpace(e.Name))
		if e.Name == "" {
			return nil, fmt.Errorf("tag 0x%02x has an empty name", uint8(e.Tag))
		}
		if strings.ContainsAny(e.Name, ": \t") {
			return nil, fmt.Errorf("tag name %q must not contain colons or whitespace", e.Name)
		}
		if prev := t.byTag[e.Tag]; prev != nil {
			return nil, fmt.Errorf("tag 0x%02x defined twice (%s, %s)", uint8(e.Tag), prev.Name, e.Name)
		}
		if prev, ok := t.byName.Get(e); ok {
			return nil, fmt.Errorf("tag name %s defined twice (0x%02x, 0x%02x)", e.Name, uint8(prev.Tag), uint8(e.Tag))
		}
		entry := e
		t.byTag[e.Tag] = &entry
		t.byName.ReplaceOrInsert(entry)
	}
	return t, nil
}

// Default returns the standard GDSII table
func Default() *Table {
	t, err := New(builtin)
	if err != nil {
		panic(err)
	}
	return t
}

// Builtin returns a copy of the standard GDSII entries in tag order
func Builtin() []Entry {
	out := make([]Entry, len(builtin))
	copy(out, builtin)
	return out
}

// Lookup returns the name and data type registered for tag
func (t *Table) Lookup(tag gds.Tag) (string, gds.DataType, bool) {
	e := t.byTag[tag]
	if e == nil {
		return "", gds.Bad, false
	}
	return e.Name, e.DataType, true
}

// LookupName returns the tag and data type registered for an upper-case name
func (t *Table) LookupName(name string) (gds.Tag, gds.DataType, bool) {
	e, ok := t.byName.Get(Entry{Name: name})
	if !ok {
		return 0, gds.Bad, false
	}
	return e.Tag, e.DataType, true
}

// Len returns the number of entries
func (t *Table) Len() int {
	return t.byName.Len()
}

// Entries returns all entries ordered by tag
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, t.Len())
	for _, e := range t.byTag {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// EntriesByName returns all entries ordered by name
func (t *Table) EntriesByName() []Entry {
	out := make([]Entry, 0, t.Len())
	t.byName.Ascend(func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}
