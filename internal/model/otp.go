package model

import "time"

// OtpMaxAttempts caps wrong-code guesses against a single OTP. Once
// reached the code is burned and the user must request a new one.
const OtpMaxAttempts = 5

// OtpTTL is how long an issued code stays verifiable.
const OtpTTL = 10 * time.Minute

// Otp is one issued magic-link code as stored in the `otps` table.
// Codes are bcrypt-hashed before storage; the plain digits only ever
// travel in the outbound email. At most one live (unused, unexpired)
// OTP exists per email because issuing a new one marks all prior
// unused rows used.
//
// Fields:
//  ID        – primary key identifier.
//  Email     – address the code was sent to (lowercased).
//  CodeHash  – bcrypt hash of the 6-digit code.
//  ExpiresAt – issuance time + OtpTTL.
//  Used      – set on verification, exhaustion or reissue.
//  Attempts  – wrong-code verifications so far.
//  UserID    – linked user when one existed at issuance (0 = none).
//  CreatedAt – timestamp of creation.
type Otp struct {
	ID        uint64    // otps.id
	Email     string    // otps.email
	CodeHash  string    // otps.code_hash
	ExpiresAt time.Time // otps.expires_at
	Used      bool      // otps.used
	Attempts  int       // otps.attempts
	UserID    uint64    // otps.user_id (0 = none)
	CreatedAt time.Time // otps.created_at
}

// Expired reports whether the code is past its expiry at the given
// instant.
func (o Otp) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// Exhausted reports whether the attempts cap has been reached. An
// exhausted OTP fails verification even when the correct code is
// presented.
func (o Otp) Exhausted() bool {
	return o.Attempts >= OtpMaxAttempts
}
