package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/rayyan-app/rayyan-server/internal/model"
)

func makeCircle(t *testing.T, repo *CircleRepo, owner uint64) *model.Circle {
	t.Helper()
	cl := &model.Circle{Name: "Fasting friends"}
	if err := repo.CreateWithOwner(context.Background(), cl, owner); err != nil {
		t.Fatalf("create circle: %v", err)
	}
	return cl
}

func TestCircleCreateWithOwner(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewCircleRepo(db)
	owner := seedUser(t, db)

	cl := makeCircle(t, repo, owner)
	if cl.ID == 0 || len(cl.InviteCode) != 6 {
		t.Fatalf("bad circle after create: %+v", cl)
	}

	members, err := repo.Members(ctx, cl.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 || members[0].Member.UserID != owner || !members[0].Member.IsAdmin {
		t.Errorf("owner membership wrong: %+v", members)
	}

	// One circle per user, whether creating or joining.
	again := &model.Circle{Name: "Second"}
	if err := repo.CreateWithOwner(ctx, again, owner); !errors.Is(err, ErrAlreadyInCircle) {
		t.Errorf("second create: err = %v, want ErrAlreadyInCircle", err)
	}
}

func TestCircleJoinRules(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewCircleRepo(db)
	owner := seedUser(t, db)
	cl := makeCircle(t, repo, owner)

	if _, err := repo.Join(ctx, "ZZZZZZ", seedUser(t, db)); !errors.Is(err, ErrCircleNotFound) {
		t.Errorf("bogus code: err = %v, want ErrCircleNotFound", err)
	}

	// Fill the circle to its cap of five.
	for i := 0; i < model.CircleMaxMembers-1; i++ {
		uid := seedUser(t, db)
		got, err := repo.Join(ctx, cl.InviteCode, uid)
		if err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		if got.ID != cl.ID {
			t.Fatalf("joined wrong circle %d", got.ID)
		}
	}

	if _, err := repo.Join(ctx, cl.InviteCode, seedUser(t, db)); !errors.Is(err, ErrCircleFull) {
		t.Errorf("sixth member: err = %v, want ErrCircleFull", err)
	}

	// A member cannot join twice.
	if _, err := repo.Join(ctx, cl.InviteCode, owner); !errors.Is(err, ErrAlreadyInCircle) {
		t.Errorf("rejoin: err = %v, want ErrAlreadyInCircle", err)
	}
}

func TestCircleLeaveHandsOverAdmin(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewCircleRepo(db)
	owner := seedUser(t, db)
	cl := makeCircle(t, repo, owner)

	second := seedUser(t, db)
	if _, err := repo.Join(ctx, cl.InviteCode, second); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := repo.Leave(ctx, owner); err != nil {
		t.Fatalf("owner leave: %v", err)
	}

	members, err := repo.Members(ctx, cl.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 || members[0].Member.UserID != second || !members[0].Member.IsAdmin {
		t.Errorf("admin not handed to the remaining member: %+v", members)
	}

	// Last member out dissolves the circle.
	if err := repo.Leave(ctx, second); err != nil {
		t.Fatalf("second leave: %v", err)
	}
	if _, err := repo.GetByUser(ctx, second); !errors.Is(err, ErrCircleNotFound) {
		t.Errorf("membership survived: err = %v", err)
	}
	if _, err := repo.Join(ctx, cl.InviteCode, seedUser(t, db)); !errors.Is(err, ErrCircleNotFound) {
		t.Errorf("dissolved circle still joinable: err = %v", err)
	}

	if err := repo.Leave(ctx, seedUser(t, db)); !errors.Is(err, ErrCircleNotFound) {
		t.Errorf("leave without membership: err = %v, want ErrCircleNotFound", err)
	}
}

func TestCirclePrivacyAndActions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewCircleRepo(db)
	owner := seedUser(t, db)
	cl := makeCircle(t, repo, owner)
	mate := seedUser(t, db)
	if _, err := repo.Join(ctx, cl.InviteCode, mate); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := repo.UpdatePrivacy(ctx, mate, model.PrivacyFull); err != nil {
		t.Fatalf("update privacy: %v", err)
	}
	members, _ := repo.Members(ctx, cl.ID)
	for _, m := range members {
		if m.Member.UserID == mate && m.Member.PrivacyTier != model.PrivacyFull {
			t.Errorf("privacy tier = %q, want full", m.Member.PrivacyTier)
		}
	}
	if err := repo.UpdatePrivacy(ctx, seedUser(t, db), model.PrivacyFull); !errors.Is(err, ErrCircleNotFound) {
		t.Errorf("privacy without membership: err = %v, want ErrCircleNotFound", err)
	}

	for _, at := range []model.ActionType{model.ActionDua, model.ActionFistBump, model.ActionReminder} {
		a := &model.CircleAction{CircleID: cl.ID, FromUser: owner, ToUser: mate, Type: at}
		if err := repo.AddAction(ctx, a); err != nil {
			t.Fatalf("add %s: %v", at, err)
		}
	}
	actions, err := repo.RecentActions(ctx, cl.ID, 2)
	if err != nil {
		t.Fatalf("recent actions: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("recent actions length = %d, want the limit 2", len(actions))
	}
	// Newest first.
	if actions[0].Type != model.ActionReminder {
		t.Errorf("latest action = %q, want reminder", actions[0].Type)
	}
}
