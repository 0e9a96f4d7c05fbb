package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/rayyan-app/rayyan-server/internal/model"
)

func TestBucketCreateAndConflict(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewBucketRepo(db)
	uid := seedUser(t, db)

	b := &model.YearBucket{
		UserID:        uid,
		Name:          "Ramadan 1445",
		HijriYear:     1445 + 600, // inside the accepted 2000..2100 window
		TotalDaysOwed: 10,
		ReasonBreakdown: []model.ReasonCount{
			{Reason: model.ReasonTravel, Count: 6},
			{Reason: model.ReasonIllness, Count: 4},
		},
	}
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID == 0 {
		t.Fatal("create left ID zero")
	}
	if b.CompletedDays != 0 || b.IsCompleted {
		t.Errorf("new bucket not at zero: %+v", b)
	}

	dup := &model.YearBucket{UserID: uid, Name: "again", HijriYear: b.HijriYear, TotalDaysOwed: 5}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("second bucket for the same year: err = %v, want ErrConflict", err)
	}

	// The same year for a different user is fine.
	other := seedUser(t, db)
	ob := &model.YearBucket{UserID: other, Name: "theirs", HijriYear: b.HijriYear, TotalDaysOwed: 5}
	if err := repo.Create(ctx, ob); err != nil {
		t.Errorf("same year, different user: %v", err)
	}

	got, err := repo.GetByIDAndUser(ctx, b.ID, uid)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.ReasonBreakdown) != 2 || got.ReasonBreakdown[0].Reason != model.ReasonTravel {
		t.Errorf("reason breakdown did not round-trip: %+v", got.ReasonBreakdown)
	}

	// Ownership folds into not-found.
	if _, err := repo.GetByIDAndUser(ctx, b.ID, other); !errors.Is(err, ErrBucketNotFound) {
		t.Errorf("cross-user get: err = %v, want ErrBucketNotFound", err)
	}
}

func TestBucketIncrementClampsAtOwed(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewBucketRepo(db)
	uid := seedUser(t, db)

	b := &model.YearBucket{UserID: uid, Name: "x", HijriYear: 2040, TotalDaysOwed: 10}
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Four increments of three may only ever reach ten.
	var got *model.YearBucket
	for i := 0; i < 4; i++ {
		var err error
		got, err = repo.IncrementCompleted(ctx, b.ID, uid, 3)
		if err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}
	if got.CompletedDays != 10 {
		t.Errorf("CompletedDays = %d, want 10 (clamped)", got.CompletedDays)
	}
	if !got.IsCompleted {
		t.Error("bucket not flagged complete at the cap")
	}

	// Incrementing a finished bucket stays a silent no-op.
	got, err := repo.IncrementCompleted(ctx, b.ID, uid, 1)
	if err != nil {
		t.Fatalf("increment past cap: %v", err)
	}
	if got.CompletedDays != 10 {
		t.Errorf("CompletedDays = %d after no-op increment", got.CompletedDays)
	}
}

func TestBucketDecrementClampsAtZero(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewBucketRepo(db)
	uid := seedUser(t, db)

	b := &model.YearBucket{UserID: uid, Name: "x", HijriYear: 2041, TotalDaysOwed: 5}
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.IncrementCompleted(ctx, b.ID, uid, 2); err != nil {
		t.Fatalf("increment: %v", err)
	}

	got, err := repo.DecrementCompleted(ctx, b.ID, uid, 4)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if got.CompletedDays != 0 {
		t.Errorf("CompletedDays = %d, want 0 (clamped)", got.CompletedDays)
	}
	if got.IsCompleted {
		t.Error("empty bucket flagged complete")
	}

	if _, err := repo.IncrementCompleted(ctx, 999999, uid, 1); !errors.Is(err, ErrBucketNotFound) {
		t.Errorf("missing bucket: err = %v, want ErrBucketNotFound", err)
	}
}

func TestBucketUpdateLoweringOwedClampsCompleted(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewBucketRepo(db)
	uid := seedUser(t, db)

	b := &model.YearBucket{UserID: uid, Name: "x", HijriYear: 2042, TotalDaysOwed: 20}
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.IncrementCompleted(ctx, b.ID, uid, 15); err != nil {
		t.Fatalf("increment: %v", err)
	}

	b.TotalDaysOwed = 12
	if err := repo.Update(ctx, b); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetByIDAndUser(ctx, b.ID, uid)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CompletedDays != 12 {
		t.Errorf("CompletedDays = %d, want clamped to new owed total 12", got.CompletedDays)
	}
	if !got.IsCompleted {
		t.Error("bucket should be complete after owed dropped below progress")
	}
}

func TestBucketMostUrgentAndSummary(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewBucketRepo(db)
	uid := seedUser(t, db)

	if b, err := repo.FindMostUrgent(ctx, uid); err != nil || b != nil {
		t.Fatalf("empty ledger: bucket=%v err=%v, want nil,nil", b, err)
	}

	years := []struct {
		year int
		owed int
		done int
	}{
		{2044, 10, 10}, // finished, must never be urgent
		{2045, 10, 3},
		{2046, 10, 0},
	}
	ids := map[int]uint64{}
	for _, y := range years {
		b := &model.YearBucket{UserID: uid, Name: "y", HijriYear: y.year, TotalDaysOwed: y.owed}
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("create %d: %v", y.year, err)
		}
		if y.done > 0 {
			if _, err := repo.IncrementCompleted(ctx, b.ID, uid, y.done); err != nil {
				t.Fatalf("increment %d: %v", y.year, err)
			}
		}
		ids[y.year] = b.ID
	}

	urgent, err := repo.FindMostUrgent(ctx, uid)
	if err != nil {
		t.Fatalf("most urgent: %v", err)
	}
	if urgent == nil || urgent.ID != ids[2045] {
		t.Errorf("most urgent = %+v, want the oldest incomplete year 2045", urgent)
	}

	s, err := repo.Summary(ctx, uid)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.TotalOwed != 30 || s.TotalCompleted != 13 || s.TotalRemaining != 17 {
		t.Errorf("summary totals = %+v", s)
	}
	if s.BucketCount != 3 || s.CompletedBuckets != 1 {
		t.Errorf("summary counts = %+v", s)
	}
}

func TestBucketDelete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewBucketRepo(db)
	uid := seedUser(t, db)

	b := &model.YearBucket{UserID: uid, Name: "x", HijriYear: 2050, TotalDaysOwed: 3}
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, b.ID, uid); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByIDAndUser(ctx, b.ID, uid); !errors.Is(err, ErrBucketNotFound) {
		t.Errorf("get after delete: err = %v, want ErrBucketNotFound", err)
	}
	if err := repo.Delete(ctx, b.ID, uid); !errors.Is(err, ErrBucketNotFound) {
		t.Errorf("double delete: err = %v, want ErrBucketNotFound", err)
	}
}
