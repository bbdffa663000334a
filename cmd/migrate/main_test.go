package main

import "testing"

func TestDescriptionFromFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2026-09-01-003-create-kbju-calculations.sql", "create kbju calculations"},
		{"2026-09-01-001-create-migrations-and-users.sql", "create migrations and users"},
		{"no-prefix.sql", "no prefix"},
	}
	for _, tt := range tests {
		if got := descriptionFromFilename(tt.in); got != tt.want {
			t.Errorf("descriptionFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
