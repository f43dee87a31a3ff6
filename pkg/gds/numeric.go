package gds

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Values is the decoded content of one record payload. Exactly one variant
// exists per supported DataType.
type Values interface {
	DataType() DataType
	// Tokens renders the values in their canonical text form.
	Tokens() []string
	isValues()
}

type (
	NoValues       struct{}
	BitArrayValues []uint16
	Int16Values    []int16
	Int32Values    []int32
	Real64Values   []float64
	ASCIIValue     string
)

func (NoValues) DataType() DataType       { return NoData }
func (BitArrayValues) DataType() DataType { return BitArray }
func (Int16Values) DataType() DataType    { return Int16 }
func (Int32Values) DataType() DataType    { return Int32 }
func (Real64Values) DataType() DataType   { return Real64 }
func (ASCIIValue) DataType() DataType     { return ASCII }

func (NoValues) isValues()       {}
func (BitArrayValues) isValues() {}
func (Int16Values) isValues()    {}
func (Int32Values) isValues()    {}
func (Real64Values) isValues()   {}
func (ASCIIValue) isValues()     {}

func (NoValues) Tokens() []string { return nil }

func (v BitArrayValues) Tokens() []string {
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = strconv.FormatUint(uint64(x), 10)
	}
	return out
}

func (v Int16Values) Tokens() []string {
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = strconv.FormatInt(int64(x), 10)
	}
	return out
}

func (v Int32Values) Tokens() []string {
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = strconv.FormatInt(int64(x), 10)
	}
	return out
}

// Tokens uses the shortest representation that parses back to the same float64.
func (v Real64Values) Tokens() []string {
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return out
}

// Tokens returns the string as a single token, or none when it is empty.
func (v ASCIIValue) Tokens() []string {
	if v == "" {
		return nil
	}
	return []string{string(v)}
}

// Decode interprets payload according to dt.
func Decode(dt DataType, payload []byte) (Values, error) {
	switch dt {
	case NoData:
		if len(payload) != 0 {
			return nil, errors.Wrapf(ErrMisalignedPayload, "nodata record carries %d bytes", len(payload))
		}
		return NoValues{}, nil
	case BitArray:
		v, err := DecodeBitArray(payload)
		return BitArrayValues(v), err
	case Int16:
		v, err := DecodeInt16(payload)
		return Int16Values(v), err
	case Int32:
		v, err := DecodeInt32(payload)
		return Int32Values(v), err
	case Real64:
		v, err := DecodeReal64(payload)
		return Real64Values(v), err
	case ASCII:
		return ASCIIValue(DecodeASCII(payload)), nil
	case Real32:
		return nil, errors.Wrap(ErrUnsupportedDataType, "real4")
	default:
		return nil, errors.Wrapf(ErrInvalidDataType, "code 0x%02x", uint8(dt))
	}
}

// Encode builds the payload for dt from the text following the colon of a
// record line. Numeric bodies are split on whitespace; ASCII bodies are
// taken verbatim.
func Encode(dt DataType, body string) ([]byte, error) {
	switch dt {
	case NoData:
		return []byte{}, nil
	case BitArray:
		return EncodeBitArray(strings.Fields(body))
	case Int16:
		return EncodeInt16(strings.Fields(body))
	case Int32:
		return EncodeInt32(strings.Fields(body))
	case Real64:
		return EncodeReal64(strings.Fields(body))
	case ASCII:
		return EncodeASCII(body), nil
	case Real32:
		return nil, errors.Wrap(ErrUnsupportedDataType, "real4")
	default:
		return nil, errors.Wrapf(ErrInvalidDataType, "code 0x%02x", uint8(dt))
	}
}

func checkAlignment(payload []byte, width int, dt DataType) error {
	if len(payload)%width != 0 {
		return errors.Wrapf(ErrMisalignedPayload, "%s payload of %d bytes is not a multiple of %d",
			dt, len(payload), width)
	}
	return nil
}

// DecodeBitArray reads big-endian 16-bit flag words.
func DecodeBitArray(payload []byte) ([]uint16, error) {
	if err := checkAlignment(payload, 2, BitArray); err != nil {
		return nil, err
	}
	out := make([]uint16, 0, len(payload)/2)
	for i := 0; i < len(payload); i += 2 {
		out = append(out, uint16(payload[i])<<8|uint16(payload[i+1]))
	}
	return out, nil
}

// DecodeInt16 reads big-endian two's complement 16-bit integers.
func DecodeInt16(payload []byte) ([]int16, error) {
	if err := checkAlignment(payload, 2, Int16); err != nil {
		return nil, err
	}
	out := make([]int16, 0, len(payload)/2)
	for i := 0; i < len(payload); i += 2 {
		out = append(out, int16(uint16(payload[i])<<8|uint16(payload[i+1])))
	}
	return out, nil
}

// DecodeInt32 reads big-endian two's complement 32-bit integers.
func DecodeInt32(payload []byte) ([]int32, error) {
	if err := checkAlignment(payload, 4, Int32); err != nil {
		return nil, err
	}
	out := make([]int32, 0, len(payload)/4)
	for i := 0; i < len(payload); i += 4 {
		u := uint32(payload[i])<<24 | uint32(payload[i+1])<<16 |
			uint32(payload[i+2])<<8 | uint32(payload[i+3])
		out = append(out, int32(u))
	}
	return out, nil
}

// DecodeReal64 reads 8-byte excess-64 reals.
func DecodeReal64(payload []byte) ([]float64, error) {
	if err := checkAlignment(payload, 8, Real64); err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(payload)/8)
	for i := 0; i < len(payload); i += 8 {
		out = append(out, Real8ToFloat([8]byte(payload[i:i+8])))
	}
	return out, nil
}

// DecodeASCII strips the NUL padding from a string payload.
func DecodeASCII(payload []byte) string {
	end := len(payload)
	for end > 0 && payload[end-1] == 0 {
		end--
	}
	return string(payload[:end])
}

// EncodeBitArray packs unsigned decimal tokens as big-endian 16-bit words.
func EncodeBitArray(tokens []string) ([]byte, error) {
	out := make([]byte, 0, len(tokens)*2)
	for _, tok := range tokens {
		u, err := strconv.ParseUint(tok, 10, 16)
		if err != nil {
			return nil, literalError(tok, BitArray, err)
		}
		out = append(out, byte(u>>8), byte(u))
	}
	return out, nil
}

// EncodeInt16 packs signed decimal tokens as big-endian 16-bit integers.
func EncodeInt16(tokens []string) ([]byte, error) {
	out := make([]byte, 0, len(tokens)*2)
	for _, tok := range tokens {
		n, err := strconv.ParseInt(tok, 10, 16)
		if err != nil {
			return nil, literalError(tok, Int16, err)
		}
		u := uint16(n)
		out = append(out, byte(u>>8), byte(u))
	}
	return out, nil
}

// EncodeInt32 packs signed decimal tokens as big-endian 32-bit integers.
func EncodeInt32(tokens []string) ([]byte, error) {
	out := make([]byte, 0, len(tokens)*4)
	for _, tok := range tokens {
		n, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return nil, literalError(tok, Int32, err)
		}
		u := uint32(n)
		out = append(out, byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
	}
	return out, nil
}

// EncodeReal64 packs decimal tokens as 8-byte excess-64 reals.
func EncodeReal64(tokens []string) ([]byte, error) {
	out := make([]byte, 0, len(tokens)*8)
	for _, tok := range tokens {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, literalError(tok, Real64, err)
		}
		b, err := FloatToReal8(f)
		if err != nil {
			return nil, err
		}
		out = append(out, b[:]...)
	}
	return out, nil
}

// EncodeASCII copies s and pads it with one NUL when its length is odd.
func EncodeASCII(s string) []byte {
	out := make([]byte, len(s), len(s)+1)
	copy(out, s)
	if len(out)%2 != 0 {
		out = append(out, 0)
	}
	return out
}

func literalError(tok string, dt DataType, err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		err = numErr.Err
	}
	return errors.Wrapf(ErrInvalidNumericLiteral, "%s token %q: %v", dt, tok, err)
}
