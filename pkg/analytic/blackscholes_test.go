package analytic

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestReferenceCase(t *testing.T) {
	call, err := Call(100, 100, 0.05, 0.2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	put, err := Put(100, 100, 0.05, 0.2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(call.Price, 10.450583572185565, 1e-8) {
		t.Fatalf("expected call 10.45058, got %v", call.Price)
	}
	if !almostEqual(put.Price, 5.573526022256971, 1e-8) {
		t.Fatalf("expected put 5.57353, got %v", put.Price)
	}
	if !almostEqual(call.Delta, 0.6368306511756191, 1e-8) {
		t.Fatalf("expected call delta 0.63683, got %v", call.Delta)
	}
	if !almostEqual(call.Gamma, 0.018762017345846895, 1e-8) {
		t.Fatalf("expected gamma 0.018762, got %v", call.Gamma)
	}
	if call.Gamma != put.Gamma {
		t.Fatalf("expected equal call and put gamma, got %v and %v", call.Gamma, put.Gamma)
	}
}

func TestPutCallParity(t *testing.T) {
	cases := []struct{ s, k, r, v, T float64 }{
		{100, 100, 0.05, 0.2, 1},
		{90, 110, 0.01, 0.35, 0.5},
		{120, 80, -0.01, 0.1, 2},
	}
	for _, c := range cases {
		call, _ := Call(c.s, c.k, c.r, c.v, c.T)
		put, _ := Put(c.s, c.k, c.r, c.v, c.T)
		want := c.s - c.k*math.Exp(-c.r*c.T)
		if !almostEqual(call.Price-put.Price, want, 1e-9) {
			t.Fatalf("parity broken for %+v: C-P=%v, want %v", c, call.Price-put.Price, want)
		}
		if !almostEqual(call.Delta-put.Delta, 1, 1e-12) {
			t.Fatalf("expected delta difference 1, got %v", call.Delta-put.Delta)
		}
	}
}

func TestZeroVolatility(t *testing.T) {
	q, err := Call(100, 100, 0.05, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 100 - 100*math.Exp(-0.05)
	if !almostEqual(q.Price, want, 1e-12) {
		t.Fatalf("expected %v, got %v", want, q.Price)
	}
	if q.Delta != 1 {
		t.Fatalf("expected delta 1, got %v", q.Delta)
	}
}

func TestInvalidInputs(t *testing.T) {
	if _, err := Call(-1, 100, 0.05, 0.2, 1); !errors.Is(err, ErrInvalidInputs) {
		t.Fatalf("expected ErrInvalidInputs, got %v", err)
	}
	if _, err := Put(100, 100, 0.05, -0.2, 1); !errors.Is(err, ErrInvalidInputs) {
		t.Fatalf("expected ErrInvalidInputs, got %v", err)
	}
	if _, err := Price("straddle", 100, 100, 0.05, 0.2, 1); !errors.Is(err, ErrInvalidInputs) {
		t.Fatalf("expected ErrInvalidInputs, got %v", err)
	}
}
