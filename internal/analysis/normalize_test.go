package analysis

import (
	"fmt"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"trimmed string", "  cold \n", "cold"},
		{"blank string", "   ", ""},
		{"integer float", float64(70), "70"},
		{"fractional float", 12.5, "12.5"},
		{"large float has no exponent", float64(1000000), "1000000"},
		{"int", 3, "3"},
		{"bool", true, "true"},
		{"other", []int{1}, "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%#v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDedupeNonEmpty(t *testing.T) {
	got := DedupeNonEmpty([]string{" cold", "", "cool", "cold ", "Cold", "  "})
	want := []string{"cold", "cool", "Cold"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("DedupeNonEmpty = %q, want %q", got, want)
	}
}

func TestDedupeNonEmptyNil(t *testing.T) {
	got := DedupeNonEmpty(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestPercentageZeroDenominator(t *testing.T) {
	for _, part := range []float64{0, 1, 42, -3} {
		got := Percentage(part, 0)
		if got != 0 {
			t.Errorf("Percentage(%v, 0) = %v, want 0", part, got)
		}
		if math.IsNaN(got) {
			t.Errorf("Percentage(%v, 0) is NaN", part)
		}
	}
	if got := Percentage(1, 4); got != 25 {
		t.Errorf("Percentage(1, 4) = %v, want 25", got)
	}
}
