package gds

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
)

func mustHex8(t *testing.T, s string) [8]byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 8 {
		t.Fatalf("bad test vector %q", s)
	}
	return [8]byte(b)
}

func TestReal8_KnownVectors(t *testing.T) {
	testCases := []struct {
		name  string
		bytes string
		value float64
	}{
		{"one", "4110000000000000", 1.0},
		{"minus two", "c120000000000000", -2.0},
		{"zero", "0000000000000000", 0.0},
		{"half", "4080000000000000", 0.5},
		{"sixteen", "4210000000000000", 16.0},
		{"one sixteenth", "4010000000000000", 0.0625},
		{"hundred", "4264000000000000", 100.0},
		{"user unit", "3e4189374bc6a7f0", 0.001},
		{"meter unit", "3944b82fa09b5a54", 1e-9},
		{"negative tenth", "c01999999999999a", -0.1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := mustHex8(t, tc.bytes)

			if got := Real8ToFloat(b); got != tc.value {
				t.Errorf("Real8ToFloat(%s) = %v, want %v", tc.bytes, got, tc.value)
			}

			enc, err := FloatToReal8(tc.value)
			if err != nil {
				t.Fatalf("FloatToReal8(%v) failed: %v", tc.value, err)
			}
			if enc != b {
				t.Errorf("FloatToReal8(%v) = %x, want %s", tc.value, enc, tc.bytes)
			}
		})
	}
}

func TestReal8_DecodeRoundsWideMantissa(t *testing.T) {
	// 56 significant mantissa bits do not fit a float64; the nearest value wins.
	got := Real8ToFloat(mustHex8(t, "3e4189374bc6a7ef"))
	if got != 0.001 {
		t.Errorf("got %v, want 0.001", got)
	}
}

func TestFloatToReal8_PowerOf16Boundaries(t *testing.T) {
	// Every exact power of 16 must normalise to a leading mantissa digit of 1.
	for e := -60; e <= 62; e++ {
		v := math.Pow(16, float64(e))
		b, err := FloatToReal8(v)
		if err != nil {
			t.Fatalf("16^%d: %v", e, err)
		}
		if b[1] != 0x10 {
			t.Errorf("16^%d: mantissa %x not normalised", e, b[1:])
		}
		if int(b[0]) != e+1+64 {
			t.Errorf("16^%d: exponent byte 0x%02x, want 0x%02x", e, b[0], e+1+64)
		}
		if got := Real8ToFloat(b); got != v {
			t.Errorf("16^%d: round trip gave %v", e, got)
		}
	}
}

func TestFloatToReal8_JustBelowBoundary(t *testing.T) {
	// The largest float64 below 16 must use exponent 1, not 2.
	v := math.Nextafter(16, 0)
	b, err := FloatToReal8(v)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 0x41 {
		t.Errorf("exponent byte 0x%02x, want 0x41", b[0])
	}
	if b[1] < 0xF0 {
		t.Errorf("mantissa %x should start with hex digit f", b[1:])
	}
}

func TestFloatToReal8_Underflow(t *testing.T) {
	testCases := []float64{1e-78, -1e-78, 5e-324, math.Copysign(0, -1)}
	for _, v := range testCases {
		b, err := FloatToReal8(v)
		if err != nil {
			t.Fatalf("FloatToReal8(%v) failed: %v", v, err)
		}
		if b != [8]byte{} {
			t.Errorf("FloatToReal8(%v) = %x, want all zero", v, b)
		}
	}

	// The clamp threshold itself is representable.
	b, err := FloatToReal8(UnderflowLimit)
	if err != nil {
		t.Fatal(err)
	}
	if b == [8]byte{} {
		t.Error("1e-77 should not be clamped to zero")
	}
}

func TestFloatToReal8_OutOfRange(t *testing.T) {
	testCases := []float64{1e76, -1e76, math.MaxFloat64, math.Inf(1), math.Inf(-1), math.NaN()}
	for _, v := range testCases {
		if _, err := FloatToReal8(v); !errors.Is(err, ErrInvalidNumericLiteral) {
			t.Errorf("FloatToReal8(%v) error = %v, want ErrInvalidNumericLiteral", v, err)
		}
	}

	// Largest representable magnitude range still encodes.
	b, err := FloatToReal8(1e75)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 0x7F {
		t.Errorf("exponent byte 0x%02x, want 0x7f", b[0])
	}
}

func TestFloatToReal8_RoundTrip(t *testing.T) {
	values := []float64{3.14159, 12345.678, -0.25, 1e-30, 2.5e40, 7, 0.2, 1e75, UnderflowLimit}
	for _, v := range values {
		b, err := FloatToReal8(v)
		if err != nil {
			t.Fatalf("FloatToReal8(%v): %v", v, err)
		}
		if got := Real8ToFloat(b); got != v {
			t.Errorf("round trip of %v gave %v (%x)", v, got, b)
		}
	}
}
