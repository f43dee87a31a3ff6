// Package gds converts GDSII stream records between their binary form and a
// line-oriented text form.
//
// # Record Format
//
// A stream file is a sequence of self-describing records, all big-endian:
//
//	[Length(2)][Tag(1)][DataType(1)][Payload(Length-4)]
//
// Fields:
//   - Length: total record size including these four header bytes
//   - Tag: semantic role of the record, resolved through a TagTable
//   - DataType: payload interpretation (see below)
//   - Payload: zero or more elements of the data type's width
//
// Data types:
//   - NoData (0x00): empty payload
//   - BitArray (0x01): 16-bit flag words
//   - Int16 (0x02): signed 16-bit integers
//   - Int32 (0x03): signed 32-bit integers
//   - Real32 (0x04): never used by writers, rejected with ErrUnsupportedDataType
//   - Real64 (0x05): 8-byte excess-64 reals, see FloatToReal8
//   - ASCII (0x06): characters, NUL-padded to even length
//
// # Text Form
//
// Every record becomes one line, either the bare tag name or the tag name
// followed by a colon and space-separated values:
//
//	HEADER:600
//	UNITS:0.001 1e-09
//	ENDLIB
//
// Real values are printed with the shortest decimal representation that
// parses back to the same float64.
//
// # Usage
//
//	r := gds.NewReader(in)
//	for {
//	    block, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    rec, _ := gds.NewStreamRecord(block, table)
//	    line, err := rec.ToText()
//	    ...
//	}
//
// # Error Handling
//
// Every failure wraps one of the package sentinels (ErrTruncatedRecord,
// ErrMisalignedPayload, ErrUnknownTagName, ...) and can be tested with
// errors.Is. Failures are final for the record being processed; whether a
// run stops or skips the record is left to the caller. Framing errors
// (IsFramingError) leave the stream unsynchronised.
//
// # Thread Safety
//
// The codec functions are pure. Records are immutable after construction and
// a TagTable is only read, so records may be transcoded concurrently.
package gds
