package gds

import (
	"fmt"
	"strings"
)

// Tag identifies the semantic role of a record (HEADER, UNITS, XY, ...).
type Tag uint8

// DataType selects how a record payload is interpreted
type DataType uint8

// Data type codes as they appear in byte 3 of every record
const (
	NoData   DataType = 0x00
	BitArray DataType = 0x01
	Int16    DataType = 0x02
	Int32    DataType = 0x03
	Real32   DataType = 0x04
	Real64   DataType = 0x05
	ASCII    DataType = 0x06
	Bad      DataType = 0x07
)

const (
	// HeaderSize is the length prefix plus the tag and data type bytes.
	HeaderSize = 4
	// MaxRecordSize is the largest value the 16-bit length prefix can carry.
	MaxRecordSize = 0xFFFF
	// MaxPayloadSize is the largest payload that fits in one record.
	MaxPayloadSize = MaxRecordSize - HeaderSize
)

var dataTypeNames = [...]string{
	NoData:   "nodata",
	BitArray: "bitarray",
	Int16:    "int2",
	Int32:    "int4",
	Real32:   "real4",
	Real64:   "real8",
	ASCII:    "ascii",
	Bad:      "bad",
}

// String returns the short lower-case name used in tag table files
func (d DataType) String() string {
	if int(d) < len(dataTypeNames) {
		return dataTypeNames[d]
	}
	return fmt.Sprintf("datatype(0x%02x)", uint8(d))
}

// Width returns the element width in bytes. ASCII and NoData report 1 and 0.
func (d DataType) Width() int {
	switch d {
	case BitArray, Int16:
		return 2
	case Int32, Real32:
		return 4
	case Real64:
		return 8
	case ASCII:
		return 1
	default:
		return 0
	}
}

// ParseDataType resolves a data type name. Both the GDSII manual spelling
// (int2, real8) and the bit-width spelling (int16, real64) are accepted.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nodata", "none":
		return NoData, nil
	case "bitarray", "bits":
		return BitArray, nil
	case "int2", "int16":
		return Int16, nil
	case "int4", "int32":
		return Int32, nil
	case "real4", "real32":
		return Real32, nil
	case "real8", "real64":
		return Real64, nil
	case "ascii", "string":
		return ASCII, nil
	case "bad":
		return Bad, nil
	}
	return Bad, fmt.Errorf("unknown data type %q", s)
}

// TagTable resolves tags to their symbolic names and expected data types.
// Implementations must be safe for concurrent reads.
type TagTable interface {
	Lookup(tag Tag) (name string, dt DataType, ok bool)
	LookupName(name string) (tag Tag, dt DataType, ok bool)
}

// Record is the capability shared by binary-origin and text-origin records
type Record interface {
	// ToText renders the record as one text line without a line terminator.
	ToText() (string, error)
	// ToStream returns the record block: tag, data type, payload.
	// The length prefix is added by WriteBlock.
	ToStream() ([]byte, error)
}
