package gds

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Real8 layout: bit 63 is the sign, bits 62-56 the base-16 exponent in
// excess-64 notation, bits 55-0 the mantissa as a binary fraction.
//
//	value = mantissa * 16^(exponent-64) / 2^56
const (
	real8Bias         = 64
	real8MantissaBits = 56
	real8MaxExponent  = 0x7F
	real8SignBit      = 0x80
)

// UnderflowLimit is the magnitude below which values are written as exact zero.
const UnderflowLimit = 1e-77

// Real8ToFloat decodes one 8-byte excess-64 value. There are no infinities or
// NaNs in the format; an all-zero group decodes to 0.
func Real8ToFloat(b [8]byte) float64 {
	exp := int(b[0] & real8MaxExponent)
	mant := uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])

	v := math.Ldexp(float64(mant), 4*(exp-real8Bias)-real8MantissaBits)
	if b[0]&real8SignBit != 0 {
		v = -v
	}
	return v
}

// FloatToReal8 encodes v as an excess-64 value with a normalised mantissa,
// meaning the leading hex digit of the mantissa is non-zero.
//
// The exponent e is chosen so that 16^(e-1) <= |v| < 16^e. It is derived from
// the binary exponent of v instead of a floating-point logarithm, so exact
// powers of 16 and every other boundary land on the correct exponent.
// The mantissa is |v| / 16^(e-14) rounded half up.
func FloatToReal8(v float64) ([8]byte, error) {
	var out [8]byte
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return out, errors.Wrapf(ErrInvalidNumericLiteral, "%v has no real8 representation", v)
	}

	a := math.Abs(v)
	if a < UnderflowLimit {
		return out, nil
	}

	_, binExp := math.Frexp(a)
	e := floorDiv(binExp-1, 4) + 1
	if e+real8Bias > real8MaxExponent {
		return out, errors.Wrapf(ErrInvalidNumericLiteral, "%v overflows real8 exponent", v)
	}

	mant := uint64(math.Round(math.Ldexp(a, real8MantissaBits-4*e)))

	out[0] = byte(e+real8Bias) & real8MaxExponent
	if v < 0 {
		out[0] |= real8SignBit
	}
	for i := 7; i > 0; i-- {
		out[i] = byte(mant)
		mant >>= 8
	}
	return out, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
