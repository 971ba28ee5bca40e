package sequence

import "testing"

func TestSeriesFormat(t *testing.T) {
	tests := []struct {
		name   string
		series Series
		n      int64
		want   string
	}{
		{"prefixless pad 6", Series{Padding: 6}, 1, "000001"},
		{"ticket prefix", Series{Prefix: "T-", Padding: 6}, 123, "T-000123"},
		{"yearly entry prefix", Series{Prefix: "2026/", Padding: 6}, 42, "2026/000042"},
		{"zero padding defaults to 6", Series{Prefix: "F-"}, 7, "F-000007"},
		{"number wider than padding", Series{Padding: 3}, 12345, "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.series.Format(tt.n); got != tt.want {
				t.Errorf("Format(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestParseTrailing(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"T-000123", 123},
		{"AST-2025-000042", 42},
		{"000001", 1},
		{"F-2026/000900", 900},
		{"no-digits-", -1},
		{"", -1},
	}

	for _, tt := range tests {
		if got := ParseTrailing(tt.in); got != tt.want {
			t.Errorf("ParseTrailing(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
