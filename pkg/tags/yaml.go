package tags

import (
	"fmt"
	"io"
	"os"

	"github.com/ssargent/gdstxt/pkg/gds"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a custom tag table
type File struct {
	// ExtendDefault starts from the built-in table; entries in Tags then
	// replace built-in entries with the same tag.
	ExtendDefault bool        `yaml:"extend_default"`
	Tags          []FileEntry `yaml:"tags"`
}

// FileEntry is one row of a tag table file
type FileEntry struct {
	Tag  uint8  `yaml:"tag"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Load parses a YAML tag table
func Load(r io.Reader) (*Table, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse tag table: %w", err)
	}

	var entries []Entry
	index := map[gds.Tag]int{}
	if f.ExtendDefault {
		entries = Builtin()
		for i, e := range entries {
			index[e.Tag] = i
		}
	}

	for _, fe := range f.Tags {
		dt, err := gds.ParseDataType(fe.Type)
		if err != nil {
			return nil, fmt.Errorf("tag 0x%02x: %w", fe.Tag, err)
		}
		e := Entry{Tag: gds.Tag(fe.Tag), Name: fe.Name, DataType: dt}
		if i, ok := index[e.Tag]; ok && f.ExtendDefault {
			entries[i] = e
			delete(index, e.Tag)
			continue
		}
		entries = append(entries, e)
	}

	return New(entries)
}

// LoadFile reads a YAML tag table from path
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tag table: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// WriteYAML writes the table in the format Load accepts
func (t *Table) WriteYAML(w io.Writer) error {
	f := File{}
	for _, e := range t.Entries() {
		f.Tags = append(f.Tags, FileEntry{Tag: uint8(e.Tag), Name: e.Name, Type: e.DataType.String()})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("failed to encode tag table: %w", err)
	}
	return enc.Close()
}
