package core

import "testing"

func TestNormalizeTypeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"food", "Food"},
		{"Food", "Food"},
		// Only the first rune is normalized, so an all-caps name stays a
		// distinct category from its capitalized form.
		{"FOOD", "FOOD"},
		{"  salary  ", "Salary"},
		{"éclair", "Éclair"},
		{"", ""},
		{"x", "X"},
	}
	for _, tt := range tests {
		if got := NormalizeTypeName(tt.in); got != tt.want {
			t.Errorf("NormalizeTypeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizedCollisions(t *testing.T) {
	if NormalizeTypeName("food") != NormalizeTypeName("Food") {
		t.Error("expected 'food' and 'Food' to normalize to the same name")
	}
	if NormalizeTypeName("FOOD") == NormalizeTypeName("Food") {
		t.Error("expected 'FOOD' and 'Food' to stay distinct")
	}
}
