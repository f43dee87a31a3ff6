package gds

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	_ Record = (*StreamRecord)(nil)
	_ Record = (*TextRecord)(nil)
)

// StreamRecord is a record read from the binary stream form
type StreamRecord struct {
	block []byte
	table TagTable
}

// NewStreamRecord wraps a block as returned by ReadRecord. The record takes
// ownership of block; callers must not modify it afterwards.
func NewStreamRecord(block []byte, table TagTable) (*StreamRecord, error) {
	if len(block) < 2 {
		return nil, errors.Wrapf(ErrTruncatedRecord, "block of %d bytes has no tag and data type", len(block))
	}
	return &StreamRecord{block: block, table: table}, nil
}

// Tag returns the record tag
func (r *StreamRecord) Tag() Tag {
	return Tag(r.block[0])
}

// DataType returns the data type code carried by the record itself
func (r *StreamRecord) DataType() DataType {
	return DataType(r.block[1])
}

// Payload returns the raw payload bytes
func (r *StreamRecord) Payload() []byte {
	return r.block[2:]
}

// Values decodes the payload according to the record's data type
func (r *StreamRecord) Values() (Values, error) {
	return Decode(r.DataType(), r.Payload())
}

// ToText renders the record as "NAME" or "NAME:v1 v2 ... vn". A string that
// would span more than one line fails with ErrMultiLineInput.
func (r *StreamRecord) ToText() (string, error) {
	name, _, ok := r.table.Lookup(r.Tag())
	if !ok {
		return "", errors.Wrapf(ErrUnknownTag, "0x%02x", uint8(r.Tag()))
	}
	values, err := r.Values()
	if err != nil {
		return "", errors.Wrapf(err, "%s", name)
	}
	if s, ok := values.(ASCIIValue); ok && strings.ContainsAny(string(s), "\r\n") {
		return "", errors.Wrapf(ErrMultiLineInput, "%s: string contains a line break", name)
	}
	return FormatLine(name, values.Tokens()), nil
}

// ToStream returns a copy of the record block
func (r *StreamRecord) ToStream() ([]byte, error) {
	out := make([]byte, len(r.block))
	copy(out, r.block)
	return out, nil
}

// FormatLine joins a tag name and its value tokens into one text line.
func FormatLine(name string, tokens []string) string {
	if len(tokens) == 0 {
		return name
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte(':')
	for i, tok := range tokens {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok)
	}
	return sb.String()
}

// TextRecord is a record read from the line-oriented text form
type TextRecord struct {
	line  string
	table TagTable
}

// NewTextRecord accepts exactly one line. A single trailing line terminator
// is tolerated; any other line break fails with ErrMultiLineInput.
func NewTextRecord(line string, table TagTable) (*TextRecord, error) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if strings.ContainsAny(line, "\r\n") {
		return nil, errors.Wrapf(ErrMultiLineInput, "%d lines", strings.Count(line, "\n")+1)
	}
	return &TextRecord{line: line, table: table}, nil
}

// ToText returns the line unchanged
func (r *TextRecord) ToText() (string, error) {
	return r.line, nil
}

// Split separates the line into its normalised tag name and the raw value
// body. The colon is optional; without it the body is empty.
func (r *TextRecord) Split() (name, body string) {
	name, body, _ = strings.Cut(r.line, ":")
	return strings.ToUpper(strings.TrimSpace(name)), body
}

// ToStream encodes the line into a record block using the data type the tag
// table assigns to the tag name.
func (r *TextRecord) ToStream() ([]byte, error) {
	name, body := r.Split()
	tag, dt, ok := r.table.LookupName(name)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTagName, "%q", name)
	}

	payload, err := Encode(dt, body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	if len(payload) > MaxPayloadSize {
		return nil, errors.Wrapf(ErrRecordTooLarge, "%s payload of %d bytes exceeds %d", name, len(payload), MaxPayloadSize)
	}

	block := make([]byte, 2, 2+len(payload))
	block[0] = byte(tag)
	block[1] = byte(dt)
	return append(block, payload...), nil
}
