package gds

type tableEntry struct {
	name string
	dt   DataType
}

// testTable is a small stand-in for the full GDSII table in pkg/tags
type testTable map[Tag]tableEntry

func (t testTable) Lookup(tag Tag) (string, DataType, bool) {
	e, ok := t[tag]
	return e.name, e.dt, ok
}

func (t testTable) LookupName(name string) (Tag, DataType, bool) {
	for tag, e := range t {
		if e.name == name {
			return tag, e.dt, true
		}
	}
	return 0, Bad, false
}

var table = testTable{
	0x00: {"HEADER", Int16},
	0x02: {"LIBNAME", ASCII},
	0x03: {"UNITS", Real64},
	0x04: {"ENDLIB", NoData},
	0x10: {"XY", Int32},
	0x17: {"PRESENTATION", BitArray},
	0x1B: {"MAG", Real64},
	0x60: {"LEGACYREAL", Real32},
	0x61: {"BROKEN", Bad},
}
