package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rayyan-app/rayyan-server/internal/model"
	"github.com/rayyan-app/rayyan-server/internal/repository"
)

// CircleHandler bundles dependencies for Saku circle endpoints.
type CircleHandler struct {
	Circles *repository.CircleRepo
	Buckets *repository.BucketRepo
	Fasts   *repository.FastRepo
}

func NewCircleHandler(c *repository.CircleRepo, b *repository.BucketRepo, f *repository.FastRepo) *CircleHandler {
	return &CircleHandler{Circles: c, Buckets: b, Fasts: f}
}

// ----- DTOs -----

type circleCreateReq struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}
type circleJoinReq struct {
	InviteCode string `json:"invite_code" validate:"required,len=6"`
}
type circlePrivacyReq struct {
	PrivacyTier string `json:"privacy_tier" validate:"required"`
}
type circleActionReq struct {
	ToUser uint64 `json:"to_user" validate:"required"`
	Type   string `json:"type" validate:"required"`
}

type circlePart struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	InviteCode  string    `json:"invite_code"`
	CreatedBy   uint64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// memberPart is one member card on the circle screen. Ledger fields
// appear according to the member's own privacy tier: hidden members
// show nothing, limited members show the progress fraction, full
// members show the day totals too.
type memberPart struct {
	UserID         uint64   `json:"user_id"`
	Name           string   `json:"name"`
	Initials       string   `json:"initials"`
	IsAdmin        bool     `json:"is_admin"`
	PrivacyTier    string   `json:"privacy_tier"`
	JoinedAt       string   `json:"joined_at"`
	FastingToday   bool     `json:"fasting_today"`
	Progress       *float64 `json:"progress,omitempty"`
	TotalOwed      *int     `json:"total_owed,omitempty"`
	TotalCompleted *int     `json:"total_completed,omitempty"`
}

type actionPart struct {
	ID        uint64    `json:"id"`
	FromUser  uint64    `json:"from_user"`
	ToUser    uint64    `json:"to_user"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

func toCirclePart(cl *model.Circle) circlePart {
	return circlePart{
		ID:          cl.ID,
		Name:        cl.Name,
		Description: cl.Description,
		InviteCode:  cl.InviteCode,
		CreatedBy:   cl.CreatedBy,
		CreatedAt:   cl.CreatedAt,
	}
}

// Create: open a circle; the creator becomes its admin and first
// member. One circle per user.
func (h *CircleHandler) Create(c echo.Context) error {
	var req circleCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cl := &model.Circle{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.Circles.CreateWithOwner(ctx, cl, middlewareUserID(c)); err != nil {
		if errors.Is(err, repository.ErrAlreadyInCircle) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already in a circle"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create circle failed"})
	}
	return c.JSON(http.StatusCreated, toCirclePart(cl))
}

// Join: enter a circle by invite code. Circles hold at most five
// members and a user belongs to at most one.
func (h *CircleHandler) Join(c echo.Context) error {
	var req circleJoinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	code := strings.ToUpper(strings.TrimSpace(req.InviteCode))
	cl, err := h.Circles.Join(ctx, code, middlewareUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCircleNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invite code not recognized"})
		case errors.Is(err, repository.ErrAlreadyInCircle):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already in a circle"})
		case errors.Is(err, repository.ErrCircleFull):
			return c.JSON(http.StatusConflict, echo.Map{"error": "circle is full"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "join circle failed"})
	}
	return c.JSON(http.StatusOK, toCirclePart(cl))
}

// Leave: exit the current circle. An emptied circle is removed; a
// departing admin hands the role to the oldest remaining member.
func (h *CircleHandler) Leave(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Circles.Leave(ctx, middlewareUserID(c)); err != nil {
		if errors.Is(err, repository.ErrCircleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not in a circle"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "leave circle failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "left circle"})
}

// My: the caller's circle, or null when not in one.
func (h *CircleHandler) My(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cl, err := h.Circles.GetByUser(ctx, middlewareUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrCircleNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"circle": nil})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load circle failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"circle": toCirclePart(cl)})
}

// Summary: member cards with privacy-filtered ledger progress plus
// the latest encouragements.
func (h *CircleHandler) Summary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cl, err := h.Circles.GetByUser(ctx, middlewareUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrCircleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not in a circle"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load circle failed"})
	}

	rows, err := h.Circles.Members(ctx, cl.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load members failed"})
	}

	today := model.FormatFastDate(time.Now())
	members := make([]memberPart, 0, len(rows))
	for _, row := range rows {
		mp := memberPart{
			UserID:      row.User.ID,
			Name:        row.User.FullName(),
			Initials:    row.User.Initials(),
			IsAdmin:     row.Member.IsAdmin,
			PrivacyTier: string(row.Member.PrivacyTier),
			JoinedAt:    row.Member.JoinedAt.UTC().Format(time.RFC3339),
		}
		if f, err := h.Fasts.GetByDate(ctx, row.User.ID, today); err == nil {
			mp.FastingToday = f.Status
		} else if !errors.Is(err, repository.ErrFastNotFound) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load members failed"})
		}
		if row.Member.PrivacyTier != model.PrivacyHidden {
			s, err := h.Buckets.Summary(ctx, row.User.ID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load progress failed"})
			}
			p := s.Progress()
			mp.Progress = &p
			if row.Member.PrivacyTier == model.PrivacyFull {
				owed, done := s.TotalOwed, s.TotalCompleted
				mp.TotalOwed = &owed
				mp.TotalCompleted = &done
			}
		}
		members = append(members, mp)
	}

	actions, err := h.Circles.RecentActions(ctx, cl.ID, 20)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load actions failed"})
	}
	aps := make([]actionPart, 0, len(actions))
	for _, a := range actions {
		aps = append(aps, actionPart{ID: a.ID, FromUser: a.FromUser, ToUser: a.ToUser, Type: string(a.Type), CreatedAt: a.CreatedAt})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"circle":         toCirclePart(cl),
		"members":        members,
		"recent_actions": aps,
	})
}

// UpdatePrivacy: set what the caller shares with their circle.
func (h *CircleHandler) UpdatePrivacy(c echo.Context) error {
	var req circlePrivacyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	tier := model.PrivacyTier(strings.ToLower(strings.TrimSpace(req.PrivacyTier)))
	if !model.ValidPrivacyTier(tier) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "privacy_tier must be one of hidden, limited, full"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Circles.UpdatePrivacy(ctx, middlewareUserID(c), tier); err != nil {
		if errors.Is(err, repository.ErrCircleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not in a circle"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update privacy failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"privacy_tier": string(tier)})
}

// SendAction: send a dua, fist bump or reminder to a circle mate.
func (h *CircleHandler) SendAction(c echo.Context) error {
	var req circleActionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	at := model.ActionType(strings.ToLower(strings.TrimSpace(req.Type)))
	if !model.ValidActionType(at) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be one of dua, fist_bump, reminder"})
	}
	uid := middlewareUserID(c)
	if req.ToUser == uid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot send an action to yourself"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cl, err := h.Circles.GetByUser(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrCircleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not in a circle"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load circle failed"})
	}

	rows, err := h.Circles.Members(ctx, cl.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load members failed"})
	}
	found := false
	for _, row := range rows {
		if row.User.ID == req.ToUser {
			found = true
			break
		}
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "recipient is not in your circle"})
	}

	a := &model.CircleAction{CircleID: cl.ID, FromUser: uid, ToUser: req.ToUser, Type: at}
	if err := h.Circles.AddAction(ctx, a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send action failed"})
	}
	return c.JSON(http.StatusCreated, actionPart{ID: a.ID, FromUser: a.FromUser, ToUser: a.ToUser, Type: string(a.Type), CreatedAt: time.Now().UTC()})
}
