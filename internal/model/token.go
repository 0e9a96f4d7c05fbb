package model

import "time"

// RefreshTokenTTL is the lifetime of a refresh token from issuance.
const RefreshTokenTTL = 30 * 24 * time.Hour

// RefreshToken models an entry in the `refresh_tokens` table. Each
// row is one session. The plain token is never stored; only its
// SHA-256 hash. Tokens are revoked rather than deleted so old
// sessions stay auditable, and rotation records which token replaced
// the revoked one.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – owner of the token.
//  TokenHash      – SHA-256 hex digest of the token value (unique).
//  ExpiresAt      – expiration timestamp of the token.
//  RevokedAt      – when the token was revoked (nil if still active).
//  ReplacedByHash – hash of the successor token after rotation.
//  CreatedAt      – timestamp of creation.
type RefreshToken struct {
	ID             uint64     // refresh_tokens.id
	UserID         uint64     // refresh_tokens.user_id
	TokenHash      string     // refresh_tokens.token_hash
	ExpiresAt      time.Time  // refresh_tokens.expires_at
	RevokedAt      *time.Time // refresh_tokens.revoked_at (nullable)
	ReplacedByHash string     // refresh_tokens.replaced_by_hash
	CreatedAt      time.Time  // refresh_tokens.created_at
}

// PasswordResetTTL is how long a reset link stays valid.
const PasswordResetTTL = time.Hour

// PasswordReset models an entry in the `password_resets` table: a
// single-use random token mailed to the account address.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – account being reset.
//  Token     – random 32-byte hex value (unique).
//  ExpiresAt – issuance time + PasswordResetTTL.
//  Used      – set once the password has been changed.
//  CreatedAt – timestamp of creation.
type PasswordReset struct {
	ID        uint64    // password_resets.id
	UserID    uint64    // password_resets.user_id
	Token     string    // password_resets.token
	ExpiresAt time.Time // password_resets.expires_at
	Used      bool      // password_resets.used
	CreatedAt time.Time // password_resets.created_at
}
