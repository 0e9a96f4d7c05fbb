package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rayyan-app/rayyan-server/internal/model"
	"github.com/rayyan-app/rayyan-server/internal/repository"
)

// BucketHandler bundles dependencies for the Qada ledger endpoints.
type BucketHandler struct {
	Buckets *repository.BucketRepo
}

func NewBucketHandler(b *repository.BucketRepo) *BucketHandler {
	return &BucketHandler{Buckets: b}
}

// ----- DTOs -----

type bucketCreateReq struct {
	Name            string              `json:"name" validate:"max=100"`
	HijriYear       int                 `json:"hijri_year" validate:"required,min=2000,max=2100"`
	TotalDaysOwed   int                 `json:"total_days_owed" validate:"required,min=1,max=30"`
	ReasonBreakdown []model.ReasonCount `json:"reason_breakdown"`
	Notes           string              `json:"notes" validate:"max=1000"`
}
type bucketUpdateReq struct {
	Name            string              `json:"name" validate:"max=100"`
	TotalDaysOwed   int                 `json:"total_days_owed" validate:"required,min=1,max=30"`
	ReasonBreakdown []model.ReasonCount `json:"reason_breakdown"`
	Notes           string              `json:"notes" validate:"max=1000"`
}
type bucketAdjustReq struct {
	Count int `json:"count"`
}

type bucketPart struct {
	ID                 uint64              `json:"id"`
	Name               string              `json:"name"`
	HijriYear          int                 `json:"hijri_year"`
	TotalDaysOwed      int                 `json:"total_days_owed"`
	CompletedDays      int                 `json:"completed_days"`
	RemainingDays      int                 `json:"remaining_days"`
	ProgressPercentage int                 `json:"progress_percentage"`
	ReasonBreakdown    []model.ReasonCount `json:"reason_breakdown,omitempty"`
	Notes              string              `json:"notes,omitempty"`
	IsCompleted        bool                `json:"is_completed"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func toBucketPart(b *model.YearBucket) bucketPart {
	return bucketPart{
		ID:                 b.ID,
		Name:               b.Name,
		HijriYear:          b.HijriYear,
		TotalDaysOwed:      b.TotalDaysOwed,
		CompletedDays:      b.CompletedDays,
		RemainingDays:      b.RemainingDays(),
		ProgressPercentage: b.ProgressPercentage(),
		ReasonBreakdown:    b.ReasonBreakdown,
		Notes:              b.Notes,
		IsCompleted:        b.IsCompleted,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func validReasons(rs []model.ReasonCount) error {
	for _, rc := range rs {
		if !model.ValidMissedReason(rc.Reason) {
			return fmt.Errorf("unknown reason %q", rc.Reason)
		}
		if rc.Count < 0 {
			return fmt.Errorf("reason %q has negative count", rc.Reason)
		}
	}
	return nil
}

func bucketIDParam(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// Create: open a new year bucket. One bucket per Hijri year per user.
func (h *BucketHandler) Create(c echo.Context) error {
	var req bucketCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := validReasons(req.ReasonBreakdown); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("Ramadan %d", req.HijriYear)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b := &model.YearBucket{
		UserID:          middlewareUserID(c),
		Name:            name,
		HijriYear:       req.HijriYear,
		TotalDaysOwed:   req.TotalDaysOwed,
		ReasonBreakdown: req.ReasonBreakdown,
		Notes:           strings.TrimSpace(req.Notes),
	}
	if err := h.Buckets.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a bucket for this hijri year already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create bucket failed"})
	}
	return c.JSON(http.StatusCreated, toBucketPart(b))
}

// List: all buckets of the user, most recent Hijri year first.
func (h *BucketHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	buckets, err := h.Buckets.ListByUser(ctx, middlewareUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list buckets failed"})
	}
	out := make([]bucketPart, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, toBucketPart(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"buckets": out})
}

// Get: one bucket by id.
func (h *BucketHandler) Get(c echo.Context) error {
	id, err := bucketIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Buckets.GetByIDAndUser(ctx, id, middlewareUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrBucketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bucket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bucket failed"})
	}
	return c.JSON(http.StatusOK, toBucketPart(b))
}

// Update: change name, owed total, reasons or notes. When the owed
// total drops below days already completed, completed days are
// clamped down and the bucket may flip to completed.
func (h *BucketHandler) Update(c echo.Context) error {
	id, err := bucketIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req bucketUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := validReasons(req.ReasonBreakdown); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid := middlewareUserID(c)
	b, err := h.Buckets.GetByIDAndUser(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrBucketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bucket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bucket failed"})
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		b.Name = name
	}
	b.TotalDaysOwed = req.TotalDaysOwed
	b.ReasonBreakdown = req.ReasonBreakdown
	b.Notes = strings.TrimSpace(req.Notes)

	if err := h.Buckets.Update(ctx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update bucket failed"})
	}
	b, err = h.Buckets.GetByIDAndUser(ctx, id, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bucket failed"})
	}
	return c.JSON(http.StatusOK, toBucketPart(b))
}

// Delete: remove a bucket and its progress.
func (h *BucketHandler) Delete(c echo.Context) error {
	id, err := bucketIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Buckets.Delete(ctx, id, middlewareUserID(c)); err != nil {
		if errors.Is(err, repository.ErrBucketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bucket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete bucket failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Increment: mark days made up. Clamped at the owed total; counting
// past it is a silent no-op, never an error.
func (h *BucketHandler) Increment(c echo.Context) error {
	return h.adjust(c, +1)
}

// Decrement: undo made-up days. Clamped at zero.
func (h *BucketHandler) Decrement(c echo.Context) error {
	return h.adjust(c, -1)
}

func (h *BucketHandler) adjust(c echo.Context, dir int) error {
	id, err := bucketIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req bucketAdjustReq
	_ = c.Bind(&req)
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Count < 0 || req.Count > 30 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "count must be between 1 and 30"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var b *model.YearBucket
	if dir > 0 {
		b, err = h.Buckets.IncrementCompleted(ctx, id, middlewareUserID(c), req.Count)
	} else {
		b, err = h.Buckets.DecrementCompleted(ctx, id, middlewareUserID(c), req.Count)
	}
	if err != nil {
		if errors.Is(err, repository.ErrBucketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bucket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "adjust bucket failed"})
	}
	return c.JSON(http.StatusOK, toBucketPart(b))
}

// Summary: aggregate totals across every bucket of the user.
func (h *BucketHandler) Summary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Buckets.Summary(ctx, middlewareUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "summary failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_owed":        s.TotalOwed,
		"total_completed":   s.TotalCompleted,
		"total_remaining":   s.TotalRemaining,
		"bucket_count":      s.BucketCount,
		"completed_buckets": s.CompletedBuckets,
		"progress":          s.Progress(),
	})
}

// MostUrgent: the oldest bucket with days still owed, or null when
// the ledger is clear.
func (h *BucketHandler) MostUrgent(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Buckets.FindMostUrgent(ctx, middlewareUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if b == nil {
		return c.JSON(http.StatusOK, echo.Map{"bucket": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"bucket": toBucketPart(b)})
}
