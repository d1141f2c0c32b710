package floattext

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat_Float64(t *testing.T) {
	tests := map[float64]string{
		0:            "0.0",
		1:            "1.0",
		-33:          "-33.0",
		51.5:         "51.5",
		0.001:        "0.001",
		0.0001:       "1.0E-4",
		-0.00012:     "-1.2E-4",
		12345678.9:   "1.23456789E7",
		1e7:          "1.0E7",
		9999999.5:    "9999999.5",
		math.Inf(1):  "Infinity",
		math.Inf(-1): "-Infinity",
	}
	for in, want := range tests {
		assert.Equal(t, want, Format(in, 64), "input %v", in)
	}
	assert.Equal(t, "NaN", Format(math.NaN(), 64))
	assert.Equal(t, "-0.0", Format(math.Copysign(0, -1), 64))
}

func TestFloat32(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{0, "0.0"},
		{10, "10.0"},
		{2.5, "2.5"},
		{0.1, "0.1"},
		{0.001, "0.001"},
		{0.0005, "5.0E-4"},
		{1e7, "1.0E7"},
		{12345678, "1.2345678E7"},
		{1.5e-10, "1.5E-10"},
		{3.4e38, "3.4E38"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Float32(tt.in), "input %v", tt.in)
	}
}
