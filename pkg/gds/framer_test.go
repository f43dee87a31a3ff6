package gds

import (
	"bytes"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramer_RoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		tag     Tag
		dt      DataType
		payload []byte
	}{
		{"empty payload", 0x04, NoData, []byte{}},
		{"two bytes", 0x00, Int16, []byte{0x02, 0x58}},
		{"four bytes", 0x10, Int32, []byte{0x00, 0x00, 0x00, 0x02}},
		{"padded ascii", 0x02, ASCII, EncodeASCII("LIB")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteRecord(&buf, tc.tag, tc.dt, tc.payload))
			assert.Equal(t, len(tc.payload)+HeaderSize, buf.Len())
			assert.Zero(t, buf.Len()%2, "records stay even sized")

			block, err := ReadRecord(&buf)
			require.NoError(t, err)
			assert.Equal(t, byte(tc.tag), block[0])
			assert.Equal(t, byte(tc.dt), block[1])
			assert.Equal(t, tc.payload, block[2:])

			_, err = ReadRecord(&buf)
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestFramer_LengthPrefix(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecord(&buf, 0x03, Real64, make([]byte, 16)))
	assert.Equal(t, []byte{0x00, 0x14, 0x03, 0x05}, buf.Bytes()[:4])

	buf.Reset()
	require.NoError(t, WriteRecord(&buf, 0x04, NoData, nil))
	assert.Equal(t, []byte{0x00, 0x04, 0x04, 0x00}, buf.Bytes())
}

func TestReadRecord_Errors(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty source", []byte{}, io.EOF},
		{"short header", []byte{0x00, 0x06, 0x00}, ErrTruncatedRecord},
		{"short payload", []byte{0x00, 0x08, 0x10, 0x03, 0x00, 0x00}, ErrTruncatedRecord},
		{"length below header", []byte{0x00, 0x02, 0x00, 0x02}, ErrCorruptFraming},
		{"zero length", []byte{0x00, 0x00, 0x00, 0x00}, ErrCorruptFraming},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadRecord(bytes.NewReader(tc.data))
			assert.True(t, errors.Is(err, tc.want), "got %v, want %v", err, tc.want)
		})
	}
}

func TestWriteRecord_TooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRecord(&buf, 0x10, Int32, make([]byte, MaxPayloadSize+1))
	assert.True(t, errors.Is(err, ErrRecordTooLarge))
	assert.Zero(t, buf.Len())

	require.NoError(t, WriteRecord(&buf, 0x10, Int32, make([]byte, MaxPayloadSize-3)))
	assert.Equal(t, []byte{0xFF, 0xFC}, buf.Bytes()[:2])
}

func TestReaderWriter_Stream(t *testing.T) {
	blocks := [][]byte{
		{0x00, 0x02, 0x02, 0x58},
		{0x02, 0x06, 'L', 'I', 'B', 0x00},
		{0x04, 0x00},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, b := range blocks {
		require.NoError(t, w.WriteBlock(b))
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, int64(buf.Len()), w.Offset())

	r := NewReader(&buf)
	for i, want := range blocks {
		got, err := r.Next()
		require.NoError(t, err, "record %d", i)
		assert.Equal(t, want, got)
	}
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 3, r.Count())
	assert.Equal(t, int64(6+8+4), r.Offset())
}

func TestReader_ErrorCarriesOffset(t *testing.T) {
	data := []byte{0x00, 0x06, 0x00, 0x02, 0x02, 0x58, 0x00, 0x09, 0x10}
	r := NewReader(bytes.NewReader(data))

	_, err := r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncatedRecord))
	assert.Contains(t, err.Error(), "offset 6")
	assert.True(t, IsFramingError(err))
}
