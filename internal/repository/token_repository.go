package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists and validates refresh tokens (hash-only storage,
// revocation instead of deletion so sessions stay auditable). The
// clock is a field so expiry checks are testable.
type TokenRepo struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// ValidateRefresh returns the owning user if a non-revoked,
// non-expired token with this hash exists; otherwise ErrUnauthorized.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrUnauthorized
		}
		return 0, err
	}
	if revokedAt.Valid {
		return 0, ErrUnauthorized
	}
	if r.Now().After(expiresAt) {
		return 0, ErrUnauthorized
	}
	return userID, nil
}

// RevokeByHash marks a token revoked. replacedBy records the hash of
// the successor token when the revocation is part of a rotation; pass
// "" for a plain logout.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash, replacedBy string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=?, replaced_by_hash=? WHERE token_hash=? AND revoked_at IS NULL",
		r.Now(), replacedBy, tokenHash)
	return err
}

// RevokeAllForUser revokes every active token of a user (global
// logout, or after a password reset).
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE user_id=? AND revoked_at IS NULL",
		r.Now(), userID)
	return err
}
