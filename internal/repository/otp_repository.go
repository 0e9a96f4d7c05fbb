package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rayyan-app/rayyan-server/internal/model"
	"github.com/rayyan-app/rayyan-server/internal/utils"
)

// OtpRepo implements the magic-link code lineage: at most one live
// code per email, bcrypt-hashed storage, a hard attempts cap, and
// single-use consumption. Lookups go by "newest unused, unexpired row
// for the email" rather than by id, which is what makes re-requesting
// a code invalidate the outstanding one.
type OtpRepo struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewOtpRepo(db *sql.DB) *OtpRepo {
	return &OtpRepo{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

const otpColumns = "id,email,code_hash,expires_at,used,attempts,COALESCE(user_id,0),created_at"

// Issue burns every prior unused code for the email and stores a new
// one. The caller supplies the bcrypt hash; the plain code never
// reaches the database. userID may be 0 when the email has no account
// yet.
func (r *OtpRepo) Issue(ctx context.Context, email, codeHash string, userID uint64) (model.Otp, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	exp := r.Now().Add(model.OtpTTL)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Otp{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx,
		"UPDATE otps SET used=1 WHERE email=? AND used=0", email); err != nil {
		return model.Otp{}, err
	}

	var uid interface{}
	if userID != 0 {
		uid = userID
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO otps (email, code_hash, expires_at, used, attempts, user_id) VALUES (?,?,?,0,0,?)",
		email, codeHash, exp, uid)
	if err != nil {
		return model.Otp{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Otp{}, err
	}
	if err = tx.Commit(); err != nil {
		return model.Otp{}, err
	}
	return model.Otp{ID: uint64(id), Email: email, CodeHash: codeHash, ExpiresAt: exp, UserID: userID}, nil
}

// newestLive returns the most recent unused, unexpired OTP for the
// email, or sql.ErrNoRows.
func (r *OtpRepo) newestLive(ctx context.Context, email string) (model.Otp, error) {
	var o model.Otp
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+otpColumns+" FROM otps WHERE email=? AND used=0 AND expires_at > ? ORDER BY id DESC LIMIT 1",
		email, r.Now()).
		Scan(&o.ID, &o.Email, &o.CodeHash, &o.ExpiresAt, &o.Used, &o.Attempts, &o.UserID, &o.CreatedAt)
	return o, err
}

// Verify runs the full check against the live code for an email.
// Outcomes:
//   - no live code          → ErrInvalidCredentials
//   - attempts cap reached  → code burned, ErrAttemptsExhausted
//   - hash mismatch         → attempts incremented, ErrInvalidCredentials
//   - match                 → code burned, OTP returned
func (r *OtpRepo) Verify(ctx context.Context, email, code string) (model.Otp, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	o, err := r.newestLive(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Otp{}, ErrInvalidCredentials
		}
		return model.Otp{}, err
	}

	if o.Exhausted() {
		if err := r.markUsed(ctx, o.ID); err != nil {
			return model.Otp{}, err
		}
		return model.Otp{}, ErrAttemptsExhausted
	}

	if !utils.VerifyPassword(o.CodeHash, code) {
		// Atomic counter bump; concurrent wrong guesses must not
		// undercount toward the cap.
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE otps SET attempts=attempts+1 WHERE id=?", o.ID); err != nil {
			return model.Otp{}, err
		}
		return model.Otp{}, ErrInvalidCredentials
	}

	if err := r.markUsed(ctx, o.ID); err != nil {
		return model.Otp{}, err
	}
	return o, nil
}

func (r *OtpRepo) markUsed(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE otps SET used=1 WHERE id=?", id)
	return err
}

// DeleteExpired purges rows past their expiry. Expired codes are
// already unmatchable; this just keeps the table from growing.
func (r *OtpRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM otps WHERE expires_at < ?", r.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
