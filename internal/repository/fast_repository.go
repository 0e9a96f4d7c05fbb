// This file holds fast-log persistence. Creating or deleting a
// qada fast that references a year bucket moves the bucket's counter
// inside the same transaction, so the log and the ledger cannot
// drift apart when one write fails.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rayyan-app/rayyan-server/internal/model"
)

// ErrFastNotFound is returned when a fast does not exist or belongs
// to someone else.
var ErrFastNotFound = errors.New("fast not found")

// FastRepo encapsulates all database queries against the fasts table.
type FastRepo struct{ DB *sql.DB }

func NewFastRepo(db *sql.DB) *FastRepo { return &FastRepo{DB: db} }

const fastColumns = "id,user_id,fast_date,description,type,sunnah_type,COALESCE(year_bucket_id,0),status,created_at,updated_at"

func scanFast(scan func(dest ...any) error) (*model.Fast, error) {
	var f model.Fast
	if err := scan(&f.ID, &f.UserID, &f.FastDate, &f.Description, &f.Type,
		&f.SunnahType, &f.YearBucketID, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a fast and, when it is a qada fast paying down a
// bucket, increments that bucket in the same transaction. A second
// fast on the same date yields ErrConflict; a bucket reference the
// user does not own yields ErrBucketNotFound.
func (r *FastRepo) Create(ctx context.Context, f *model.Fast) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertFastTx(ctx, tx, f); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	fresh, err := r.GetByID(ctx, f.ID, f.UserID)
	if err != nil {
		return err
	}
	*f = *fresh
	return nil
}

// insertFastTx does one fast insert plus the bucket side effect
// inside an open transaction. Shared by Create and CreateBulk.
func insertFastTx(ctx context.Context, tx *sql.Tx, f *model.Fast) error {
	var bucketID interface{}
	if f.YearBucketID != 0 {
		bucketID = f.YearBucketID
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO fasts (user_id, fast_date, description, type, sunnah_type, year_bucket_id, status)
		 VALUES (?,?,?,?,?,?,?)`,
		f.UserID, f.FastDate, f.Description, f.Type, f.SunnahType, bucketID, f.Status)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)

	if f.Type == model.FastQada && f.YearBucketID != 0 {
		return bumpBucketTx(ctx, tx, f.YearBucketID, f.UserID, +1)
	}
	return nil
}

// bumpBucketTx moves a bucket counter by one in either direction,
// clamped in SQL, after confirming the bucket belongs to the user.
// The existence check is separate because a clamped no-op update also
// reports zero affected rows.
func bumpBucketTx(ctx context.Context, tx *sql.Tx, bucketID, userID uint64, dir int) error {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM year_buckets WHERE id=? AND user_id=?", bucketID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBucketNotFound
		}
		return err
	}
	expr := "completed_days = LEAST(completed_days + 1, total_days_owed)"
	if dir < 0 {
		expr = "completed_days = GREATEST(completed_days - 1, 0)"
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE year_buckets
		 SET `+expr+`,
		     is_completed = completed_days >= total_days_owed,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id=? AND user_id=?`,
		bucketID, userID)
	return err
}

// CreateBulk inserts many fasts in one transaction. Rows whose date
// is already logged are skipped and reported back by date instead of
// failing the batch.
func (r *FastRepo) CreateBulk(ctx context.Context, fasts []*model.Fast) (skipped []string, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range fasts {
		if err := insertFastTx(ctx, tx, f); err != nil {
			if errors.Is(err, ErrConflict) {
				skipped = append(skipped, f.FastDate)
				continue
			}
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return skipped, nil
}

// GetByID fetches a fast only if it belongs to the user.
func (r *FastRepo) GetByID(ctx context.Context, id, userID uint64) (*model.Fast, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+fastColumns+" FROM fasts WHERE id=? AND user_id=?", id, userID)
	f, err := scanFast(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFastNotFound
	}
	return f, err
}

// GetByDate fetches the fast logged for a specific day, if any.
func (r *FastRepo) GetByDate(ctx context.Context, userID uint64, date string) (*model.Fast, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+fastColumns+" FROM fasts WHERE user_id=? AND fast_date=?", userID, date)
	f, err := scanFast(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFastNotFound
	}
	return f, err
}

func (r *FastRepo) list(ctx context.Context, query string, args ...any) ([]*model.Fast, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Fast
	for rows.Next() {
		f, err := scanFast(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListByUser returns all of a user's fasts, newest entry first.
func (r *FastRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Fast, error) {
	return r.list(ctx,
		"SELECT "+fastColumns+" FROM fasts WHERE user_id=? ORDER BY created_at DESC, id DESC", userID)
}

// ListByType filters the history by fast type.
func (r *FastRepo) ListByType(ctx context.Context, userID uint64, t model.FastType) ([]*model.Fast, error) {
	return r.list(ctx,
		"SELECT "+fastColumns+" FROM fasts WHERE user_id=? AND type=? ORDER BY created_at DESC, id DESC",
		userID, t)
}

// ListMissed returns fasts marked missed, in calendar order. The date
// column is DD-MM-YYYY, so ordering goes through STR_TO_DATE.
func (r *FastRepo) ListMissed(ctx context.Context, userID uint64) ([]*model.Fast, error) {
	return r.list(ctx,
		"SELECT "+fastColumns+" FROM fasts WHERE user_id=? AND status=0 ORDER BY STR_TO_DATE(fast_date, '%d-%m-%Y')",
		userID)
}

// UpdateStatus flips a fast between observed and missed.
func (r *FastRepo) UpdateStatus(ctx context.Context, id, userID uint64, status bool) (*model.Fast, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE fasts SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=? AND user_id=?",
		status, id, userID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Could also be an unchanged value; resolve via read.
		return r.GetByID(ctx, id, userID)
	}
	return r.GetByID(ctx, id, userID)
}

// Delete removes a fast and, when it was a qada fast linked to a
// bucket, gives the day back to that bucket in the same transaction.
// A bucket that was deleted in the meantime is simply skipped.
func (r *FastRepo) Delete(ctx context.Context, id, userID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		"SELECT "+fastColumns+" FROM fasts WHERE id=? AND user_id=?", id, userID)
	f, err := scanFast(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFastNotFound
		}
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM fasts WHERE id=? AND user_id=?", id, userID); err != nil {
		return err
	}

	if f.Type == model.FastQada && f.YearBucketID != 0 {
		if err := bumpBucketTx(ctx, tx, f.YearBucketID, userID, -1); err != nil &&
			!errors.Is(err, ErrBucketNotFound) {
			return err
		}
	}
	return tx.Commit()
}

// Stats loads the full history and derives the profile statistics.
func (r *FastRepo) Stats(ctx context.Context, userID uint64) (model.FastStats, error) {
	fasts, err := r.ListByUser(ctx, userID)
	if err != nil {
		return model.FastStats{}, err
	}
	flat := make([]model.Fast, len(fasts))
	for i, f := range fasts {
		flat[i] = *f
	}
	return model.ComputeFastStats(flat), nil
}
