package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rayyan-app/rayyan-server/internal/model"
	"github.com/rayyan-app/rayyan-server/internal/utils"
)

func otpHash(t *testing.T, code string) string {
	t.Helper()
	h, err := utils.HashPassword(code, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash code: %v", err)
	}
	return h
}

func TestOtpIssueAndVerify(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewOtpRepo(db)

	o, err := repo.Issue(ctx, "Alice@Example.com", otpHash(t, "123456"), 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if o.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", o.Email)
	}

	got, err := repo.Verify(ctx, "alice@example.com", "123456")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.ID != o.ID {
		t.Errorf("verified id %d, want %d", got.ID, o.ID)
	}

	// A code is single use.
	if _, err := repo.Verify(ctx, "alice@example.com", "123456"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("second verify: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestOtpReissueInvalidatesPriorCodes(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewOtpRepo(db)

	if _, err := repo.Issue(ctx, "bob@example.com", otpHash(t, "111111"), 0); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	if _, err := repo.Issue(ctx, "bob@example.com", otpHash(t, "222222"), 0); err != nil {
		t.Fatalf("second issue: %v", err)
	}

	// The superseded code is dead even though its TTL has not passed.
	if _, err := repo.Verify(ctx, "bob@example.com", "111111"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old code: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := repo.Verify(ctx, "bob@example.com", "222222"); err != nil {
		t.Errorf("new code rejected: %v", err)
	}
}

func TestOtpAttemptsExhaustion(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewOtpRepo(db)

	if _, err := repo.Issue(ctx, "carol@example.com", otpHash(t, "333333"), 0); err != nil {
		t.Fatalf("issue: %v", err)
	}

	for i := 0; i < model.OtpMaxAttempts; i++ {
		if _, err := repo.Verify(ctx, "carol@example.com", "000000"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("wrong guess %d: err = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	// Even the correct code is refused once the cap is reached, and
	// the attempt burns the code.
	if _, err := repo.Verify(ctx, "carol@example.com", "333333"); !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("after cap: err = %v, want ErrAttemptsExhausted", err)
	}
	if _, err := repo.Verify(ctx, "carol@example.com", "333333"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("burned code: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestOtpExpiry(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewOtpRepo(db)

	issued := time.Now().UTC()
	repo.Now = func() time.Time { return issued }

	if _, err := repo.Issue(ctx, "dave@example.com", otpHash(t, "444444"), 0); err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Just inside the window it verifies; just past it the code is
	// gone no matter how correct.
	repo.Now = func() time.Time { return issued.Add(model.OtpTTL - time.Second) }
	if _, err := repo.Verify(ctx, "dave@example.com", "444444"); err != nil {
		t.Fatalf("verify inside TTL: %v", err)
	}

	repo.Now = func() time.Time { return issued }
	if _, err := repo.Issue(ctx, "dave@example.com", otpHash(t, "555555"), 0); err != nil {
		t.Fatalf("reissue: %v", err)
	}
	repo.Now = func() time.Time { return issued.Add(model.OtpTTL + time.Minute) }
	if _, err := repo.Verify(ctx, "dave@example.com", "555555"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expired code: err = %v, want ErrInvalidCredentials", err)
	}

	n, err := repo.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n < 1 {
		t.Errorf("DeleteExpired removed %d rows, want at least 1", n)
	}
}
