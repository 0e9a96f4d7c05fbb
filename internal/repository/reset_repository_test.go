package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rayyan-app/rayyan-server/internal/model"
	"github.com/rayyan-app/rayyan-server/internal/utils"
)

func TestPasswordResetLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewResetRepo(db)
	uid := seedUser(t, db)

	token, err := utils.NewResetToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	created, err := repo.Create(ctx, uid, token)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Validate(ctx, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.UserID != uid || got.ID != created.ID {
		t.Errorf("validated %+v", got)
	}

	if err := repo.Consume(ctx, got.ID); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if _, err := repo.Validate(ctx, token); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("consumed token: err = %v, want ErrInvalidCredentials", err)
	}

	if _, err := repo.Validate(ctx, "never-issued"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown token: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestPasswordResetExpiry(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewResetRepo(db)
	uid := seedUser(t, db)

	issued := time.Now().UTC()
	repo.Now = func() time.Time { return issued }

	token, _ := utils.NewResetToken()
	if _, err := repo.Create(ctx, uid, token); err != nil {
		t.Fatalf("create: %v", err)
	}

	repo.Now = func() time.Time { return issued.Add(model.PasswordResetTTL + time.Minute) }
	if _, err := repo.Validate(ctx, token); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expired token: err = %v, want ErrInvalidCredentials", err)
	}
}
