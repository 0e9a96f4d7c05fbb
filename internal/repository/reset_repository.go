package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rayyan-app/rayyan-server/internal/model"
)

// ResetRepo stores single-use password-reset tokens.
type ResetRepo struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewResetRepo(db *sql.DB) *ResetRepo {
	return &ResetRepo{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a reset token for a user with the standard TTL.
func (r *ResetRepo) Create(ctx context.Context, userID uint64, token string) (model.PasswordReset, error) {
	exp := r.Now().Add(model.PasswordResetTTL)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_resets (user_id, token, expires_at, used) VALUES (?,?,?,0)",
		userID, token, exp)
	if err != nil {
		return model.PasswordReset{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.PasswordReset{}, err
	}
	return model.PasswordReset{ID: uint64(id), UserID: userID, Token: token, ExpiresAt: exp}, nil
}

// Validate returns the reset row when the token is unused and
// unexpired; otherwise ErrInvalidCredentials. The uniform error keeps
// the endpoint from confirming which tokens ever existed.
func (r *ResetRepo) Validate(ctx context.Context, token string) (model.PasswordReset, error) {
	var p model.PasswordReset
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,token,expires_at,used,created_at FROM password_resets WHERE token=? AND used=0 AND expires_at > ? LIMIT 1",
		token, r.Now()).
		Scan(&p.ID, &p.UserID, &p.Token, &p.ExpiresAt, &p.Used, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PasswordReset{}, ErrInvalidCredentials
		}
		return model.PasswordReset{}, err
	}
	return p, nil
}

// Consume marks a reset token used so it cannot be replayed.
func (r *ResetRepo) Consume(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE password_resets SET used=1 WHERE id=?", id)
	return err
}
