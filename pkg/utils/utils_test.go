package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		length   int
		expected string
	}{
		{"hello world", 5, "he..."},
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"", 5, ""},
		{"abc", 2, "ab"},
		{"abc", 3, "abc"},
	}

	for _, tt := range tests {
		result := TruncateString(tt.input, tt.length)
		if result != tt.expected {
			t.Errorf("TruncateString(%q, %d) = %q; want %q", tt.input, tt.length, result, tt.expected)
		}
	}
}

func TestAddCommas(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
		{"1234.56", "1,234.56"},
		{"-1234", "-1,234"},
		{"", ""},
	}

	for _, tt := range tests {
		result := AddCommas(tt.input)
		if result != tt.expected {
			t.Errorf("AddCommas(%q) = %q; want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		input    string
		places   int32
		expected string
	}{
		{"1234.5678", 2, "1,234.57"},
		{"1234.5", 2, "1,234.50"},
		{"0", 2, "0.00"},
		{"0.123456", 4, "0.1235"},
		{"-9876543.2", 1, "-9,876,543.2"},
	}

	for _, tt := range tests {
		result := FormatDecimal(decimal.RequireFromString(tt.input), tt.places)
		if result != tt.expected {
			t.Errorf("FormatDecimal(%s, %d) = %q; want %q", tt.input, tt.places, result, tt.expected)
		}
	}
}

func TestFormatUSD(t *testing.T) {
	total := decimal.RequireFromString("350")
	neg := decimal.RequireFromString("-1500.5")

	tests := []struct {
		input    *decimal.Decimal
		expected string
	}{
		{&total, "$350.00"},
		{&neg, "-$1,500.50"},
		{nil, "n/a"},
	}

	for _, tt := range tests {
		result := FormatUSD(tt.input, 2)
		if result != tt.expected {
			t.Errorf("FormatUSD(%v) = %q; want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.25", "+1.25%"},
		{"-0.5", "-0.50%"},
		{"0", "0.00%"},
	}

	for _, tt := range tests {
		result := FormatPercent(decimal.RequireFromString(tt.input))
		if result != tt.expected {
			t.Errorf("FormatPercent(%s) = %q; want %q", tt.input, result, tt.expected)
		}
	}
}

func TestMask(t *testing.T) {
	if got := Mask("$350.00", true); got != Masked {
		t.Errorf("Mask hidden = %q; want %q", got, Masked)
	}
	if got := Mask("$350.00", false); got != "$350.00" {
		t.Errorf("Mask visible = %q", got)
	}
}

func TestFloats(t *testing.T) {
	got := Floats([]decimal.Decimal{decimal.NewFromInt(1), decimal.RequireFromString("2.5")})
	if len(got) != 2 || got[0] != 1 || got[1] != 2.5 {
		t.Errorf("Floats = %v", got)
	}
}
