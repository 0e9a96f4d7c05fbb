// This file implements the Qada ledger: per-user year buckets of owed
// fast-days, clamped completion counters, and the aggregate balance
// the dashboards read. Counter moves are single UPDATE expressions so
// concurrent logging cannot lose increments to read-modify-write
// races.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rayyan-app/rayyan-server/internal/model"
)

// ErrBucketNotFound is returned when a bucket does not exist or does
// not belong to the requesting user. The two cases are not
// distinguished.
var ErrBucketNotFound = errors.New("year bucket not found")

// BucketRepo encapsulates all database queries against year_buckets.
type BucketRepo struct{ DB *sql.DB }

func NewBucketRepo(db *sql.DB) *BucketRepo { return &BucketRepo{DB: db} }

const bucketColumns = "id,user_id,name,hijri_year,total_days_owed,completed_days,reason_breakdown,notes,is_completed,created_at,updated_at"

func scanBucket(scan func(dest ...any) error) (*model.YearBucket, error) {
	var (
		b        model.YearBucket
		rawBreak []byte
	)
	if err := scan(&b.ID, &b.UserID, &b.Name, &b.HijriYear, &b.TotalDaysOwed,
		&b.CompletedDays, &rawBreak, &b.Notes, &b.IsCompleted, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if len(rawBreak) > 0 {
		if err := json.Unmarshal(rawBreak, &b.ReasonBreakdown); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

// Create inserts a new bucket starting at zero completed days. A
// bucket already covering that (user, hijriYear) pair yields
// ErrConflict. A follow-up SELECT populates timestamps and the
// derived flag.
func (r *BucketRepo) Create(ctx context.Context, b *model.YearBucket) error {
	breakdown, err := json.Marshal(b.ReasonBreakdown)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO year_buckets
		   (user_id, name, hijri_year, total_days_owed, completed_days, reason_breakdown, notes, is_completed)
		 VALUES (?,?,?,?,0,?,?,0)`,
		b.UserID, b.Name, b.HijriYear, b.TotalDaysOwed, breakdown, b.Notes)
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
	fresh, err := r.GetByIDAndUser(ctx, uint64(id), b.UserID)
	if err != nil {
		return err
	}
	*b = *fresh
	return nil
}

// GetByIDAndUser fetches a bucket only if it belongs to the user.
func (r *BucketRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.YearBucket, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+bucketColumns+" FROM year_buckets WHERE id=? AND user_id=?", id, userID)
	b, err := scanBucket(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBucketNotFound
	}
	return b, err
}

func (r *BucketRepo) list(ctx context.Context, query string, args ...any) ([]*model.YearBucket, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.YearBucket
	for rows.Next() {
		b, err := scanBucket(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByUser returns every bucket of a user, newest Hijri year first.
func (r *BucketRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.YearBucket, error) {
	return r.list(ctx,
		"SELECT "+bucketColumns+" FROM year_buckets WHERE user_id=? ORDER BY hijri_year DESC", userID)
}

// ListIncompleteByUser returns the user's open buckets, oldest debt
// first.
func (r *BucketRepo) ListIncompleteByUser(ctx context.Context, userID uint64) ([]*model.YearBucket, error) {
	return r.list(ctx,
		"SELECT "+bucketColumns+" FROM year_buckets WHERE user_id=? AND is_completed=0 ORDER BY hijri_year ASC", userID)
}

// FindMostUrgent returns the incomplete bucket with the smallest
// Hijri year, or nil when every bucket is settled. hijri_year is
// unique per user so no further tie-break is needed.
func (r *BucketRepo) FindMostUrgent(ctx context.Context, userID uint64) (*model.YearBucket, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+bucketColumns+" FROM year_buckets WHERE user_id=? AND is_completed=0 ORDER BY hijri_year ASC LIMIT 1",
		userID)
	b, err := scanBucket(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// Update rewrites the editable fields. Lowering total_days_owed below
// the current completed_days pulls completed_days down to the new
// ceiling so the clamping invariant survives edits; is_completed is
// recomputed in the same statement.
func (r *BucketRepo) Update(ctx context.Context, b *model.YearBucket) error {
	breakdown, err := json.Marshal(b.ReasonBreakdown)
	if err != nil {
		return err
	}
	// MySQL applies SET assignments left to right, so the derived
	// columns below read the already-clamped completed_days.
	_, err = r.DB.ExecContext(ctx,
		`UPDATE year_buckets
		 SET name=?, total_days_owed=?, reason_breakdown=?, notes=?,
		     completed_days = LEAST(completed_days, ?),
		     is_completed = completed_days >= total_days_owed,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id=? AND user_id=?`,
		b.Name, b.TotalDaysOwed, breakdown, b.Notes, b.TotalDaysOwed, b.ID, b.UserID)
	if err != nil {
		return err
	}
	fresh, err := r.GetByIDAndUser(ctx, b.ID, b.UserID)
	if err != nil {
		return err
	}
	*b = *fresh
	return nil
}

// IncrementCompleted adds count days, clamped at the bucket's
// ceiling, and returns the fresh row. The whole move is one UPDATE
// expression, so two simultaneous increments both land.
func (r *BucketRepo) IncrementCompleted(ctx context.Context, id, userID uint64, count int) (*model.YearBucket, error) {
	return r.adjustCompleted(ctx, id, userID,
		"completed_days = LEAST(completed_days + ?, total_days_owed)", count)
}

// DecrementCompleted removes count days, clamped at zero, and returns
// the fresh row. Used when a linked fast is deleted.
func (r *BucketRepo) DecrementCompleted(ctx context.Context, id, userID uint64, count int) (*model.YearBucket, error) {
	return r.adjustCompleted(ctx, id, userID,
		"completed_days = GREATEST(completed_days - ?, 0)", count)
}

func (r *BucketRepo) adjustCompleted(ctx context.Context, id, userID uint64, setExpr string, count int) (*model.YearBucket, error) {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE year_buckets
		 SET `+setExpr+`,
		     is_completed = completed_days >= total_days_owed,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id=? AND user_id=?`,
		count, id, userID)
	if err != nil {
		return nil, err
	}
	// RowsAffected is 0 both for "no such bucket" and "already at the
	// clamp", so existence comes from the re-read instead.
	return r.GetByIDAndUser(ctx, id, userID)
}

// Delete removes a bucket. Fasts that referenced it keep their
// orphaned reference by design.
func (r *BucketRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM year_buckets WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBucketNotFound
	}
	return nil
}

// Summary aggregates across all of a user's buckets, complete and
// incomplete. A user with no buckets gets the zero summary.
func (r *BucketRepo) Summary(ctx context.Context, userID uint64) (model.LedgerSummary, error) {
	var s model.LedgerSummary
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_days_owed),0),
		        COALESCE(SUM(completed_days),0),
		        COUNT(*),
		        COALESCE(SUM(is_completed),0)
		 FROM year_buckets WHERE user_id=?`, userID).
		Scan(&s.TotalOwed, &s.TotalCompleted, &s.BucketCount, &s.CompletedBuckets)
	if err != nil {
		return model.LedgerSummary{}, err
	}
	s.TotalRemaining = s.TotalOwed - s.TotalCompleted
	return s, nil
}
