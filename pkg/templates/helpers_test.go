package templates

import (
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"number", FormatNumber(ptr(2850.456)), "2850.46"},
		{"number nil", FormatNumber(nil), "N/A"},
		{"count", FormatCount(ptr(int64(1234567))), "1,234,567"},
		{"count nil", FormatCount(nil), "N/A"},
		{"percent", FormatPercent(ptr(-1.234)), "-1.23%"},
		{"percent nil", FormatPercent(nil), "N/A"},
		{"compact trillions", FormatCompact(ptr(19.5e12)), "19.5T"},
		{"compact millions", FormatCompact(ptr(450e6)), "450M"},
		{"compact thousands", FormatCompact(ptr(1500.0)), "1.5K"},
		{"compact nil", FormatCompact(nil), "N/A"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
