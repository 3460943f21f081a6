//go:build unix

package terminal

import (
	"testing"
)

func TestEnvSize(t *testing.T) {
	t.Setenv("MATRIX_ROWS", "40")
	t.Setenv("MATRIX_COLS", "120")

	rows, cols, ok := envSize("MATRIX_ROWS", "MATRIX_COLS")
	if !ok || rows != 40 || cols != 120 {
		t.Errorf("Expected 40x120, got %dx%d ok=%v", rows, cols, ok)
	}
}

func TestEnvSizeRejectsInvalid(t *testing.T) {
	cases := []struct{ rows, cols string }{
		{"", ""},
		{"40", ""},
		{"abc", "120"},
		{"0", "120"},
		{"-5", "120"},
	}
	for _, tc := range cases {
		t.Setenv("MATRIX_ROWS", tc.rows)
		t.Setenv("MATRIX_COLS", tc.cols)
		if _, _, ok := envSize("MATRIX_ROWS", "MATRIX_COLS"); ok {
			t.Errorf("Expected rejection for rows=%q cols=%q", tc.rows, tc.cols)
		}
	}
}

func TestSizeDetectorCachesUntilInvalidated(t *testing.T) {
	t.Setenv("MATRIX_ROWS", "30")
	t.Setenv("MATRIX_COLS", "100")

	d := newSizeDetector(-1)
	if rows, cols := d.size(); rows != 30 || cols != 100 {
		t.Fatalf("Expected 30x100, got %dx%d", rows, cols)
	}

	// A changed environment is invisible until the cache drops.
	t.Setenv("MATRIX_ROWS", "50")
	if rows, _ := d.size(); rows != 30 {
		t.Errorf("Expected cached 30 rows, got %d", rows)
	}

	d.invalidate()
	if rows, _ := d.size(); rows != 50 {
		t.Errorf("Expected re-detected 50 rows, got %d", rows)
	}
}
