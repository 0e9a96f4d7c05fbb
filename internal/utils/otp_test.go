package utils

import (
	"strconv"
	"testing"
)

func TestNewOtpCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := NewOtpCode()
		if err != nil {
			t.Fatalf("NewOtpCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 digits", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %q has a leading zero or is out of range", code)
		}
		seen[code] = true
	}
	// 200 draws from 900k values colliding every time would mean the
	// generator is broken.
	if len(seen) < 100 {
		t.Errorf("only %d distinct codes out of 200 draws", len(seen))
	}
}
