package gds

import (
	"bufio"
	"io"

	"github.com/cockroachdb/errors"
)

// ReadRecord reads one length-prefixed record from r and returns its block:
// [tag, data type, payload...]. The length prefix is dropped; WriteBlock
// derives it again.
//
// io.EOF is returned untouched when r is exhausted before the first header
// byte. A partial header or payload yields ErrTruncatedRecord.
func ReadRecord(r io.Reader) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, errors.Wrap(ErrTruncatedRecord, "short header")
		}
		return nil, err
	}

	size := int(header[0])<<8 | int(header[1])
	if size < HeaderSize {
		return nil, errors.Wrapf(ErrCorruptFraming, "record length %d is below the %d byte header", size, HeaderSize)
	}

	block := make([]byte, size-2)
	block[0] = header[2]
	block[1] = header[3]
	if _, err := io.ReadFull(r, block[2:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(ErrTruncatedRecord, "payload shorter than %d bytes", size-HeaderSize)
		}
		return nil, err
	}
	return block, nil
}

// WriteRecord emits the length prefix, tag, data type and payload verbatim.
// ASCII payloads must already be padded to even length.
func WriteRecord(w io.Writer, tag Tag, dt DataType, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return errors.Wrapf(ErrRecordTooLarge, "payload of %d bytes exceeds %d", len(payload), MaxPayloadSize)
	}
	size := len(payload) + HeaderSize
	header := [HeaderSize]byte{byte(size >> 8), byte(size), byte(tag), byte(dt)}
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// WriteBlock frames a block as produced by ReadRecord or Record.ToStream.
func WriteBlock(w io.Writer, block []byte) error {
	if len(block) < 2 {
		return errors.Wrapf(ErrCorruptFraming, "block of %d bytes has no tag and data type", len(block))
	}
	return WriteRecord(w, Tag(block[0]), DataType(block[1]), block[2:])
}

// Reader provides sequential access to the records of a stream file
type Reader struct {
	reader *bufio.Reader
	offset int64
	count  int
}

// NewReader wraps r in a buffered record reader
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(r)}
}

// Next returns the next record block, or io.EOF at a clean end of stream.
// Errors carry the byte offset of the offending record.
func (r *Reader) Next() ([]byte, error) {
	block, err := ReadRecord(r.reader)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrapf(err, "record %d at offset %d", r.count, r.offset)
	}
	r.offset += int64(len(block) + 2)
	r.count++
	return block, nil
}

// Offset returns the byte offset of the next record
func (r *Reader) Offset() int64 {
	return r.offset
}

// Count returns the number of records read so far
func (r *Reader) Count() int {
	return r.count
}

// Writer appends framed records to a buffered sink
type Writer struct {
	writer *bufio.Writer
	offset int64
}

// NewWriter wraps w in a buffered record writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{writer: bufio.NewWriter(w)}
}

// WriteBlock frames and writes one record block
func (w *Writer) WriteBlock(block []byte) error {
	if err := WriteBlock(w.writer, block); err != nil {
		return err
	}
	w.offset += int64(len(block) + 2)
	return nil
}

// Flush writes any buffered data to the underlying writer
func (w *Writer) Flush() error {
	return w.writer.Flush()
}

// Offset returns the number of bytes written so far
func (w *Writer) Offset() int64 {
	return w.offset
}
