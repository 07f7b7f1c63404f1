package utils

import (
	"math/big"
	"testing"
)

func TestFormatUnits(t *testing.T) {
	wei := func(s string) *big.Int {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			t.Fatalf("bad test amount %q", s)
		}
		return v
	}

	tests := []struct {
		name     string
		amount   *big.Int
		decimals int32
		expected string
	}{
		{"nil amount", nil, 18, "0.0000"},
		{"zero", big.NewInt(0), 18, "0.0000"},
		{"one ether", wei("1000000000000000000"), 18, "1.0000"},
		{"fractional", wei("1234500000000000000"), 18, "1.2345"},
		{"rounds beyond display precision", wei("1234560000000000000"), 18, "1.2346"},
		{"small remainder", wei("1"), 18, "0.0000"},
		{"zero decimals", big.NewInt(42), 0, "42"},
		{"six decimals", big.NewInt(1500000), 6, "1.5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatUnits(tt.amount, tt.decimals); got != tt.expected {
				t.Errorf("FormatUnits(%v, %d) = %q; want %q", tt.amount, tt.decimals, got, tt.expected)
			}
		})
	}
}
