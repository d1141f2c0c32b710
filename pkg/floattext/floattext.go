// Package floattext renders floating point numbers in the text form the
// policy server and the collector parse: plain decimal with at least one
// fractional digit for magnitudes in [1e-3, 1e7), scientific notation
// ("1.0E7", "5.0E-4") outside it.
package floattext

import (
	"math"
	"strconv"
	"strings"
)

// Format renders v using the shortest digits that round-trip at bitSize
// (32 or 64) precision.
func Format(v float64, bitSize int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	abs := math.Abs(v)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		if v == 0 && math.Signbit(v) {
			return "-0.0"
		}
		return withFraction(strconv.FormatFloat(v, 'f', -1, bitSize))
	}

	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(v, 'E', -1, bitSize), "E")
	n, _ := strconv.Atoi(exp)
	return withFraction(mantissa) + "E" + strconv.Itoa(n)
}

// Float32 is Format for single precision values.
func Float32(f float32) string {
	return Format(float64(f), 32)
}

func withFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s + ".0"
	}
	return s
}
