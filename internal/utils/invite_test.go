package utils

import (
	"strings"
	"testing"
)

func TestNewInviteCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := NewInviteCode()
		if err != nil {
			t.Fatalf("NewInviteCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 characters", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(inviteAlphabet, r) {
				t.Fatalf("code %q contains %q, outside the alphabet", code, r)
			}
		}
		// The alphabet drops lookalikes on purpose.
		if strings.ContainsAny(code, "01OI") {
			t.Fatalf("code %q contains an ambiguous character", code)
		}
	}
}
