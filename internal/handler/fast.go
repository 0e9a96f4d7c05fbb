package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rayyan-app/rayyan-server/internal/model"
	"github.com/rayyan-app/rayyan-server/internal/repository"
)

// FastHandler bundles dependencies for fast-logging endpoints.
type FastHandler struct {
	Fasts   *repository.FastRepo
	Buckets *repository.BucketRepo
}

func NewFastHandler(f *repository.FastRepo, b *repository.BucketRepo) *FastHandler {
	return &FastHandler{Fasts: f, Buckets: b}
}

// ----- DTOs -----

type fastCreateReq struct {
	FastDate     string `json:"fast_date" validate:"required"`
	Description  string `json:"description" validate:"max=500"`
	Type         string `json:"type" validate:"required"`
	SunnahType   string `json:"sunnah_type"`
	YearBucketID uint64 `json:"year_bucket_id"`
	Status       *bool  `json:"status"`
}
type fastBulkReq struct {
	Fasts []fastCreateReq `json:"fasts" validate:"required,min=1,max=60,dive"`
}
type fastStatusReq struct {
	Status bool `json:"status"`
}
type qadaLogReq struct {
	Date         string `json:"date" validate:"required"`
	YearBucketID uint64 `json:"year_bucket_id"`
	Description  string `json:"description" validate:"max=500"`
}

type fastPart struct {
	ID           uint64    `json:"id"`
	FastDate     string    `json:"fast_date"`
	Description  string    `json:"description,omitempty"`
	Type         string    `json:"type"`
	SunnahType   string    `json:"sunnah_type,omitempty"`
	YearBucketID uint64    `json:"year_bucket_id,omitempty"`
	Status       bool      `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toFastPart(f *model.Fast) fastPart {
	return fastPart{
		ID:           f.ID,
		FastDate:     f.FastDate,
		Description:  f.Description,
		Type:         string(f.Type),
		SunnahType:   string(f.SunnahType),
		YearBucketID: f.YearBucketID,
		Status:       f.Status,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// buildFast validates one create request into a model.Fast. Status
// defaults to observed. Qada fasts linked to a bucket must be
// observed, otherwise they would count unfasted days as progress.
func buildFast(userID uint64, req fastCreateReq) (*model.Fast, error) {
	date := strings.TrimSpace(req.FastDate)
	if _, err := model.ParseFastDate(date); err != nil {
		return nil, err
	}
	ft := model.FastType(strings.ToLower(strings.TrimSpace(req.Type)))
	if !model.ValidFastType(ft) {
		return nil, errors.New("type must be one of qada, sunnah, kaffarah, nafl")
	}
	st := model.SunnahType(strings.ToLower(strings.TrimSpace(req.SunnahType)))
	if ft == model.FastSunnah {
		if !model.ValidSunnahType(st) {
			return nil, errors.New("sunnah fasts require a valid sunnah_type")
		}
	} else if st != "" {
		return nil, errors.New("sunnah_type is only valid for sunnah fasts")
	}
	status := true
	if req.Status != nil {
		status = *req.Status
	}
	if req.YearBucketID != 0 {
		if ft != model.FastQada {
			return nil, errors.New("only qada fasts can pay down a year bucket")
		}
		if !status {
			return nil, errors.New("a missed fast cannot pay down a year bucket")
		}
	}
	return &model.Fast{
		UserID:       userID,
		FastDate:     date,
		Description:  strings.TrimSpace(req.Description),
		Type:         ft,
		SunnahType:   st,
		YearBucketID: req.YearBucketID,
		Status:       status,
	}, nil
}

// Create: log one fast. A qada fast linked to a bucket also advances
// that bucket's counter in the same transaction.
func (h *FastHandler) Create(c echo.Context) error {
	var req fastCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	f, err := buildFast(middlewareUserID(c), req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Fasts.Create(ctx, f); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "a fast is already logged for this date"})
		case errors.Is(err, repository.ErrBucketNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bucket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "log fast failed"})
	}
	return c.JSON(http.StatusCreated, toFastPart(f))
}

// CreateBulk: log many fasts at once. Dates already logged are
// skipped and reported, not treated as errors.
func (h *FastHandler) CreateBulk(c echo.Context) error {
	var req fastBulkReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	uid := middlewareUserID(c)
	fasts := make([]*model.Fast, 0, len(req.Fasts))
	for _, fr := range req.Fasts {
		f, err := buildFast(uid, fr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		fasts = append(fasts, f)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	skipped, err := h.Fasts.CreateBulk(ctx, fasts)
	if err != nil {
		if errors.Is(err, repository.ErrBucketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bucket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "log fasts failed"})
	}

	created := make([]fastPart, 0, len(fasts))
	for _, f := range fasts {
		if f.ID != 0 {
			created = append(created, toFastPart(f))
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"fasts": created, "skipped_dates": skipped})
}

// List: every fast of the user, newest first.
func (h *FastHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fasts, err := h.Fasts.ListByUser(ctx, middlewareUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list fasts failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"fasts": toFastParts(fasts)})
}

// Get: a single fast by id.
func (h *FastHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Fasts.GetByID(ctx, id, middlewareUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrFastNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "fast not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load fast failed"})
	}
	return c.JSON(http.StatusOK, toFastPart(f))
}

// ListByType: fasts filtered by kind.
func (h *FastHandler) ListByType(c echo.Context) error {
	ft := model.FastType(strings.ToLower(c.Param("type")))
	if !model.ValidFastType(ft) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be one of qada, sunnah, kaffarah, nafl"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fasts, err := h.Fasts.ListByType(ctx, middlewareUserID(c), ft)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list fasts failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"fasts": toFastParts(fasts)})
}

// ListMissed: fasts logged as not observed, oldest day first.
func (h *FastHandler) ListMissed(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fasts, err := h.Fasts.ListMissed(ctx, middlewareUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list fasts failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"fasts": toFastParts(fasts)})
}

// Today: the fast logged for the current day, or null.
func (h *FastHandler) Today(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	today := model.FormatFastDate(time.Now())
	f, err := h.Fasts.GetByDate(ctx, middlewareUserID(c), today)
	if err != nil {
		if errors.Is(err, repository.ErrFastNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"fast": nil, "date": today})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load fast failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"fast": toFastPart(f), "date": today})
}

// UpdateStatus: flip a fast between observed and missed.
func (h *FastHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req fastStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Fasts.UpdateStatus(ctx, id, middlewareUserID(c), req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrFastNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "fast not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update fast failed"})
	}
	return c.JSON(http.StatusOK, toFastPart(f))
}

// Delete: remove a fast. A qada fast that advanced a bucket gives the
// day back to that bucket in the same transaction.
func (h *FastHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Fasts.Delete(ctx, id, middlewareUserID(c)); err != nil {
		if errors.Is(err, repository.ErrFastNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "fast not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete fast failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats: streaks and completion totals for the profile screen.
func (h *FastHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Fasts.Stats(ctx, middlewareUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats failed"})
	}
	return c.JSON(http.StatusOK, stats)
}

// LogQada: one-tap ledger entry. Accepts an ISO date (YYYY-MM-DD) as
// the mobile calendar sends it, resolves the target bucket to the
// most urgent one when none is named, and records the fast plus the
// bucket increment atomically.
func (h *FastHandler) LogQada(c echo.Context) error {
	var req qadaLogReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	day, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be a valid YYYY-MM-DD day"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid := middlewareUserID(c)
	bucketID := req.YearBucketID
	if bucketID == 0 {
		b, err := h.Buckets.FindMostUrgent(ctx, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if b == nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no open bucket to pay down"})
		}
		bucketID = b.ID
	}

	f := &model.Fast{
		UserID:       uid,
		FastDate:     model.FormatFastDate(day),
		Description:  strings.TrimSpace(req.Description),
		Type:         model.FastQada,
		YearBucketID: bucketID,
		Status:       true,
	}
	if err := h.Fasts.Create(ctx, f); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "a fast is already logged for this date"})
		case errors.Is(err, repository.ErrBucketNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bucket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "log fast failed"})
	}

	b, err := h.Buckets.GetByIDAndUser(ctx, bucketID, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bucket failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"fast": toFastPart(f), "bucket": toBucketPart(b)})
}

func toFastParts(fasts []*model.Fast) []fastPart {
	out := make([]fastPart, 0, len(fasts))
	for _, f := range fasts {
		out = append(out, toFastPart(f))
	}
	return out
}
