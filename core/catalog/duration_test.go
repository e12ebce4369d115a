package catalog

import (
	"testing"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0:05:30", 330, false},
		{"1:02:03", 3723, false},
		{"5:30", 330, false},
		{"0:00:00", 0, false},
		{"12:00:00", 43200, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1:2:3:4", 0, true},
		{"-1:00", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatCanonical(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{330, "0:05:30"},
		{3723, "1:02:03"},
		{0, "0:00:00"},
		{59, "0:00:59"},
		{-5, "0:00:00"},
	}
	for _, tt := range tests {
		if got := FormatCanonical(tt.seconds); got != tt.want {
			t.Errorf("FormatCanonical(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatDisplay(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{330, "5:30"},
		{3723, "1:02:03"},
		{0, "0:00"},
		{59, "0:59"},
		{600, "10:00"},
	}
	for _, tt := range tests {
		if got := FormatDisplay(tt.seconds); got != tt.want {
			t.Errorf("FormatDisplay(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestDisplayDuration(t *testing.T) {
	if got := DisplayDuration("0:05:30"); got != "5:30" {
		t.Errorf("DisplayDuration(0:05:30) = %q, want 5:30", got)
	}
	// Unparseable input passes through untouched.
	if got := DisplayDuration("live set"); got != "live set" {
		t.Errorf("DisplayDuration(live set) = %q, want passthrough", got)
	}
}
