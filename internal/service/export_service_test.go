package service

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Snow Removal 2026", "Snow-Removal-2026"},
		{"simple", "simple"},
		{"a/b\\c:d", "a-b-c-d"},
		{"---", "contract"},
		{"", "contract"},
		{"договор", "contract"},
	}
	for _, tt := range tests {
		if got := sanitizeFileName(tt.input); got != tt.want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
