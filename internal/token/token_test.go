package token

import (
	"strings"
	"testing"

	"github.com/specpress/specpress/internal/errors"
)

func TestCountEmpty(t *testing.T) {
	n, err := Count("")
	if err != nil {
		t.Fatalf("Count(\"\") error: %v", err)
	}
	if n != 0 {
		t.Errorf("Count(\"\") = %d, want 0", n)
	}
}

func TestCountPositive(t *testing.T) {
	n, err := Count("The quick brown fox jumps over the lazy dog.")
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if n <= 0 {
		t.Errorf("Count = %d, want > 0", n)
	}
}

func TestCountMonotonic(t *testing.T) {
	short, err := Count("one line")
	if err != nil {
		t.Fatal(err)
	}
	long, err := Count(strings.Repeat("one line of filler text ", 50))
	if err != nil {
		t.Fatal(err)
	}
	if long <= short {
		t.Errorf("longer text should count more tokens: %d <= %d", long, short)
	}
}

func TestEstimate(t *testing.T) {
	if got := Estimate(""); got != 0 {
		t.Errorf("Estimate(\"\") = %d, want 0", got)
	}
	if got := Estimate("ab"); got != 1 {
		t.Errorf("Estimate(short) = %d, want 1", got)
	}
	if got := Estimate(strings.Repeat("x", 400)); got != 100 {
		t.Errorf("Estimate(400 chars) = %d, want 100", got)
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name       string
		original   int
		compressed int
		want       float64
		wantErr    bool
	}{
		{"forty percent", 100, 60, 0.40, false},
		{"no reduction", 100, 100, 0.0, false},
		{"full reduction", 100, 0, 1.0, false},
		{"zero original", 0, 0, 0, true},
		{"negative original", -5, 0, 0, true},
		{"negative compressed", 100, -1, 0, true},
		{"compressed exceeds original", 50, 60, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Ratio(tt.original, tt.compressed)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, errors.ErrValidation) {
					t.Errorf("error code = %v, want VALIDATION", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Ratio(%d, %d) = %v, want %v", tt.original, tt.compressed, got, tt.want)
			}
		})
	}
}
