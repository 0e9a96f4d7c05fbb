// This file holds accountability-circle (Saku) persistence. A user
// belongs to at most one circle, enforced by the unique key on
// circle_members.user_id. Multi-row moves (create-with-owner, leave
// with admin handover) run inside transactions.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rayyan-app/rayyan-server/internal/model"
	"github.com/rayyan-app/rayyan-server/internal/utils"
)

// ErrCircleNotFound is returned when no circle matches the lookup.
var ErrCircleNotFound = errors.New("circle not found")

// ErrAlreadyInCircle is returned when a user who already belongs to a
// circle tries to create or join another one.
var ErrAlreadyInCircle = errors.New("already in a circle")

// ErrCircleFull is returned when a join would exceed the member cap.
var ErrCircleFull = errors.New("circle is full")

// CircleRepo encapsulates circle and membership queries.
type CircleRepo struct{ DB *sql.DB }

func NewCircleRepo(db *sql.DB) *CircleRepo { return &CircleRepo{DB: db} }

const circleColumns = "id,name,description,invite_code,created_by,created_at,updated_at"

func scanCircle(scan func(dest ...any) error) (*model.Circle, error) {
	var c model.Circle
	if err := scan(&c.ID, &c.Name, &c.Description, &c.InviteCode,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateWithOwner creates a circle with the caller as its admin
// member, generating a unique invite code. Fails with
// ErrAlreadyInCircle when the caller has a membership anywhere.
func (r *CircleRepo) CreateWithOwner(ctx context.Context, c *model.Circle, userID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM circle_members WHERE user_id=?", userID).Scan(&exists)
	if err == nil {
		return ErrAlreadyInCircle
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	// Retry on the rare code collision; the space is 32^6.
	var res sql.Result
	for attempt := 0; ; attempt++ {
		code, err := utils.NewInviteCode()
		if err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx,
			"INSERT INTO circles (name, description, invite_code, created_by) VALUES (?,?,?,?)",
			c.Name, c.Description, code, userID)
		if err == nil {
			c.InviteCode = code
			break
		}
		if !isDuplicateKey(err) || attempt >= 9 {
			return err
		}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.CreatedBy = userID

	if _, err = tx.ExecContext(ctx,
		"INSERT INTO circle_members (circle_id, user_id, privacy_tier, is_admin) VALUES (?,?,?,1)",
		c.ID, userID, model.PrivacyLimited); err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyInCircle
		}
		return err
	}
	return tx.Commit()
}

// GetByUser returns the circle the user belongs to, or
// ErrCircleNotFound.
func (r *CircleRepo) GetByUser(ctx context.Context, userID uint64) (*model.Circle, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT c.id,c.name,c.description,c.invite_code,c.created_by,c.created_at,c.updated_at
		 FROM circles c JOIN circle_members m ON m.circle_id = c.id
		 WHERE m.user_id=?`, userID)
	c, err := scanCircle(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCircleNotFound
	}
	return c, err
}

// Join adds the user to the circle behind an invite code. The member
// count is checked inside the transaction so concurrent joins cannot
// overshoot the cap.
func (r *CircleRepo) Join(ctx context.Context, inviteCode string, userID uint64) (*model.Circle, error) {
	inviteCode = strings.ToUpper(strings.TrimSpace(inviteCode))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		"SELECT "+circleColumns+" FROM circles WHERE invite_code=? FOR UPDATE", inviteCode)
	c, err := scanCircle(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCircleNotFound
		}
		return nil, err
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM circle_members WHERE circle_id=?", c.ID).Scan(&count); err != nil {
		return nil, err
	}
	if count >= model.CircleMaxMembers {
		return nil, ErrCircleFull
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO circle_members (circle_id, user_id, privacy_tier, is_admin) VALUES (?,?,?,0)",
		c.ID, userID, model.PrivacyLimited); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAlreadyInCircle
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return c, nil
}

// Leave removes the user's membership. The last member leaving
// deletes the circle and its actions; an admin leaving hands the
// role to the longest-standing remaining member.
func (r *CircleRepo) Leave(ctx context.Context, userID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		circleID uint64
		wasAdmin bool
	)
	err = tx.QueryRowContext(ctx,
		"SELECT circle_id, is_admin FROM circle_members WHERE user_id=? FOR UPDATE",
		userID).Scan(&circleID, &wasAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCircleNotFound
		}
		return err
	}

	if _, err = tx.ExecContext(ctx,
		"DELETE FROM circle_members WHERE circle_id=? AND user_id=?", circleID, userID); err != nil {
		return err
	}

	var remaining int
	if err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM circle_members WHERE circle_id=?", circleID).Scan(&remaining); err != nil {
		return err
	}
	if remaining == 0 {
		if _, err = tx.ExecContext(ctx,
			"DELETE FROM circle_actions WHERE circle_id=?", circleID); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx,
			"DELETE FROM circles WHERE id=?", circleID); err != nil {
			return err
		}
		return tx.Commit()
	}

	if wasAdmin {
		var admins int
		if err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM circle_members WHERE circle_id=? AND is_admin=1", circleID).Scan(&admins); err != nil {
			return err
		}
		if admins == 0 {
			if _, err = tx.ExecContext(ctx,
				`UPDATE circle_members SET is_admin=1
				 WHERE circle_id=? ORDER BY joined_at ASC, user_id ASC LIMIT 1`, circleID); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// MemberRow is a membership joined with the member's user record,
// shaped for the circle summary screen.
type MemberRow struct {
	Member model.CircleMember
	User   model.User
}

// Members lists a circle's memberships with user details, in join
// order.
func (r *CircleRepo) Members(ctx context.Context, circleID uint64) ([]MemberRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT m.circle_id, m.user_id, m.privacy_tier, m.is_admin, m.joined_at,
		        u.id, u.email, u.first_name, u.last_name
		 FROM circle_members m JOIN users u ON u.id = m.user_id
		 WHERE m.circle_id=? ORDER BY m.joined_at ASC, m.user_id ASC`, circleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MemberRow
	for rows.Next() {
		var mr MemberRow
		if err := rows.Scan(&mr.Member.CircleID, &mr.Member.UserID, &mr.Member.PrivacyTier,
			&mr.Member.IsAdmin, &mr.Member.JoinedAt,
			&mr.User.ID, &mr.User.Email, &mr.User.FirstName, &mr.User.LastName); err != nil {
			return nil, err
		}
		out = append(out, mr)
	}
	return out, rows.Err()
}

// UpdatePrivacy sets the caller's own privacy tier.
func (r *CircleRepo) UpdatePrivacy(ctx context.Context, userID uint64, tier model.PrivacyTier) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE circle_members SET privacy_tier=? WHERE user_id=?", tier, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM circle_members WHERE user_id=?", userID).Scan(&exists); err != nil {
			return ErrCircleNotFound
		}
	}
	return nil
}

// AddAction records one encouragement between members.
func (r *CircleRepo) AddAction(ctx context.Context, a *model.CircleAction) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO circle_actions (circle_id, from_user, to_user, type) VALUES (?,?,?,?)",
		a.CircleID, a.FromUser, a.ToUser, a.Type)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// RecentActions returns the latest encouragements in a circle.
func (r *CircleRepo) RecentActions(ctx context.Context, circleID uint64, limit int) ([]model.CircleAction, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, circle_id, from_user, to_user, type, created_at
		 FROM circle_actions WHERE circle_id=? ORDER BY id DESC LIMIT ?`, circleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CircleAction
	for rows.Next() {
		var a model.CircleAction
		if err := rows.Scan(&a.ID, &a.CircleID, &a.FromUser, &a.ToUser, &a.Type, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
