package model

import (
	"testing"
	"time"
)

func TestOtpExpired(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	o := Otp{ExpiresAt: issued.Add(OtpTTL)}

	if o.Expired(issued) {
		t.Error("fresh code reported expired")
	}
	if o.Expired(issued.Add(OtpTTL)) {
		t.Error("code expired exactly at the boundary; boundary should still verify")
	}
	if !o.Expired(issued.Add(OtpTTL + time.Second)) {
		t.Error("code not expired one second past its TTL")
	}
}

func TestOtpExhausted(t *testing.T) {
	for attempts := 0; attempts < OtpMaxAttempts; attempts++ {
		if (Otp{Attempts: attempts}).Exhausted() {
			t.Errorf("Exhausted() = true at %d attempts", attempts)
		}
	}
	if !(Otp{Attempts: OtpMaxAttempts}).Exhausted() {
		t.Errorf("Exhausted() = false at the cap of %d", OtpMaxAttempts)
	}
	if !(Otp{Attempts: OtpMaxAttempts + 3}).Exhausted() {
		t.Error("Exhausted() = false past the cap")
	}
}
