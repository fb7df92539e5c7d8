package feature

import (
	"errors"
	"testing"
)

// constStream builds a rows x dim matrix filled with val.
func constStream(rows, dim int, val float64) [][]float64 {
	s := make([][]float64, rows)
	for t := range s {
		s[t] = make([]float64, dim)
		for d := range s[t] {
			s[t][d] = val
		}
	}
	return s
}

func TestFuse_ToleranceExceeded(t *testing.T) {
	a := constStream(100, 13, 1.0)
	b := constStream(102, 3, 2.0)

	_, spread, err := Fuse([][][]float64{a, b}, 0)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if spread != 2 {
		t.Errorf("spread = %d, want 2", spread)
	}
}

func TestFuse_WithinTolerance(t *testing.T) {
	a := constStream(100, 13, 1.0)
	b := constStream(102, 3, 2.0)

	out, spread, err := Fuse([][][]float64{a, b}, 5)
	if err != nil {
		t.Fatalf("Fuse error: %v", err)
	}
	if spread != 2 {
		t.Errorf("spread = %d, want 2", spread)
	}
	// Output trimmed to the shortest stream, columns summed.
	if len(out) != 100 {
		t.Fatalf("rows = %d, want 100", len(out))
	}
	if len(out[0]) != 16 {
		t.Fatalf("cols = %d, want 16", len(out[0]))
	}
	// Stream order is preserved left to right.
	if out[50][0] != 1.0 || out[50][12] != 1.0 {
		t.Errorf("first block = %f,%f, want 1.0", out[50][0], out[50][12])
	}
	if out[50][13] != 2.0 || out[50][15] != 2.0 {
		t.Errorf("second block = %f,%f, want 2.0", out[50][13], out[50][15])
	}
}

func TestFuse_ExactMatch(t *testing.T) {
	a := constStream(10, 2, 1.0)
	b := constStream(10, 2, 2.0)

	out, spread, err := Fuse([][][]float64{a, b}, 0)
	if err != nil {
		t.Fatalf("Fuse error: %v", err)
	}
	if spread != 0 {
		t.Errorf("spread = %d, want 0", spread)
	}
	if len(out) != 10 || len(out[0]) != 4 {
		t.Errorf("shape = %dx%d, want 10x4", len(out), len(out[0]))
	}
}

func TestFuse_EmptyStream(t *testing.T) {
	a := constStream(10, 2, 1.0)
	var b [][]float64

	// An empty stream fails regardless of tolerance.
	_, _, err := Fuse([][][]float64{a, b}, 100)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch for empty stream, got %v", err)
	}
}

func TestFuse_SingleStream(t *testing.T) {
	a := constStream(10, 3, 1.5)
	out, spread, err := Fuse([][][]float64{a}, 0)
	if err != nil {
		t.Fatalf("Fuse error: %v", err)
	}
	if spread != 0 {
		t.Errorf("spread = %d, want 0", spread)
	}
	if len(out) != 10 || len(out[0]) != 3 {
		t.Errorf("shape = %dx%d, want 10x3", len(out), len(out[0]))
	}
}

func TestFuse_NoStreams(t *testing.T) {
	if _, _, err := Fuse(nil, 0); err == nil {
		t.Error("expected error for zero streams")
	}
}
