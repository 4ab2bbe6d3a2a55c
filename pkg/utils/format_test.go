package utils

import (
	"math"
	"testing"
)

func TestFormatFixed(t *testing.T) {
	tests := []struct {
		value  float64
		places int32
		want   string
	}{
		{10.450583572185565, 5, "10.45058"},
		{5.573526022256971, 4, "5.5735"},
		{2, 3, "2.000"},
		{-0.125, 2, "-0.13"},
		{math.NaN(), 2, "NaN"},
		{math.Inf(1), 2, "+Inf"},
	}

	for _, tt := range tests {
		if got := FormatFixed(tt.value, tt.places); got != tt.want {
			t.Fatalf("FormatFixed(%v, %d): expected %s, got %s", tt.value, tt.places, tt.want, got)
		}
	}
}

func TestFormatThroughput(t *testing.T) {
	if got := FormatThroughput(1234567.89); got != "1234567" {
		t.Fatalf("expected 1234567, got %s", got)
	}
	if got := FormatThroughput(math.Inf(-1)); got != "-Inf" {
		t.Fatalf("expected -Inf, got %s", got)
	}
}
