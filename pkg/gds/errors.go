package gds

import (
	"github.com/cockroachdb/errors"
)

// Errors
var (
	ErrTruncatedRecord       = errors.New("truncated record")
	ErrCorruptFraming        = errors.New("corrupt record framing")
	ErrMisalignedPayload     = errors.New("misaligned payload")
	ErrUnsupportedDataType   = errors.New("unsupported data type")
	ErrInvalidDataType       = errors.New("invalid data type")
	ErrUnknownTag            = errors.New("unknown tag")
	ErrUnknownTagName        = errors.New("unknown tag name")
	ErrMultiLineInput        = errors.New("multi-line input")
	ErrInvalidNumericLiteral = errors.New("invalid numeric literal")
	ErrRecordTooLarge        = errors.New("record too large")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrTruncatedRecord, "truncated_record"},
	{ErrCorruptFraming, "corrupt_framing"},
	{ErrMisalignedPayload, "misaligned_payload"},
	{ErrUnsupportedDataType, "unsupported_data_type"},
	{ErrInvalidDataType, "invalid_data_type"},
	{ErrUnknownTag, "unknown_tag"},
	{ErrUnknownTagName, "unknown_tag_name"},
	{ErrMultiLineInput, "multi_line_input"},
	{ErrInvalidNumericLiteral, "invalid_numeric_literal"},
	{ErrRecordTooLarge, "record_too_large"},
}

// ErrorKind returns a stable label for a codec error, suitable for metrics.
// Errors that did not originate in this package are reported as "other".
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "other"
}

// IsCodecError reports whether err carries one of the codec sentinels.
func IsCodecError(err error) bool {
	k := ErrorKind(err)
	return k != "" && k != "other"
}

// IsFramingError reports whether err leaves the byte stream unsynchronised,
// in which case no further records can be read from it.
func IsFramingError(err error) bool {
	return errors.Is(err, ErrTruncatedRecord) || errors.Is(err, ErrCorruptFraming)
}
