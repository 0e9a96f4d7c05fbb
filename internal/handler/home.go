package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rayyan-app/rayyan-server/internal/model"
	"github.com/rayyan-app/rayyan-server/internal/repository"
	"github.com/rayyan-app/rayyan-server/internal/utils"
)

// HomeHandler assembles the dashboard screens from the other
// domains' repositories.
type HomeHandler struct {
	Users   *repository.UserRepo
	Fasts   *repository.FastRepo
	Buckets *repository.BucketRepo
	Circles *repository.CircleRepo
}

func NewHomeHandler(u *repository.UserRepo, f *repository.FastRepo, b *repository.BucketRepo, cl *repository.CircleRepo) *HomeHandler {
	return &HomeHandler{Users: u, Fasts: f, Buckets: b, Circles: cl}
}

// sunnahHorizonDays is how far ahead the dashboard looks for
// upcoming sunnah fasting occasions.
const sunnahHorizonDays = 30

type sunnahOpportunity struct {
	Date       string `json:"date"`
	SunnahType string `json:"sunnah_type"`
	Title      string `json:"title"`
	HijriDate  string `json:"hijri_date"`
}

// sunnahToday lists the sunnah fasting occasions that apply to the
// given day. Monday/Thursday comes from the weekday; the rest from
// the (approximate) Hijri calendar.
func sunnahToday(t time.Time) []sunnahOpportunity {
	hd := utils.ApproximateHijriDate(t)
	var out []sunnahOpportunity

	switch t.Weekday() {
	case time.Monday:
		out = append(out, sunnahOpportunity{
			SunnahType: string(model.SunnahMonday),
			Title:      "Monday fast",
			HijriDate:  hd.String(),
		})
	case time.Thursday:
		out = append(out, sunnahOpportunity{
			SunnahType: string(model.SunnahThursday),
			Title:      "Thursday fast",
			HijriDate:  hd.String(),
		})
	}
	if utils.IsWhiteDay(hd) {
		out = append(out, sunnahOpportunity{
			SunnahType: string(model.SunnahWhiteDays),
			Title:      "White days (13th-15th)",
			HijriDate:  hd.String(),
		})
	}
	if utils.IsDayOfArafah(hd) {
		out = append(out, sunnahOpportunity{
			SunnahType: string(model.SunnahArafah),
			Title:      "Day of Arafah",
			HijriDate:  hd.String(),
		})
	}
	if utils.IsAshuraWindow(hd) {
		out = append(out, sunnahOpportunity{
			SunnahType: string(model.SunnahAshura),
			Title:      "Ashura",
			HijriDate:  hd.String(),
		})
	}
	if utils.IsShawwalSix(hd) {
		out = append(out, sunnahOpportunity{
			SunnahType: string(model.SunnahShawwal),
			Title:      "Six days of Shawwal",
			HijriDate:  hd.String(),
		})
	}
	if utils.IsShaban(hd) {
		out = append(out, sunnahOpportunity{
			SunnahType: string(model.SunnahShaban),
			Title:      "Voluntary fasting in Shaban",
			HijriDate:  hd.String(),
		})
	}
	date := model.FormatFastDate(t)
	for i := range out {
		out[i].Date = date
	}
	return out
}

// sunnahUpcoming collects the occasions for each of the next days
// starting at from.
func sunnahUpcoming(from time.Time, days int) []sunnahOpportunity {
	out := []sunnahOpportunity{}
	for i := 0; i < days; i++ {
		out = append(out, sunnahToday(from.AddDate(0, 0, i))...)
	}
	return out
}

// Dashboard: everything the home screen needs in one call: greeting,
// today's fast, ledger totals, buckets, the circle card, streaks and
// the upcoming sunnah occasions.
func (h *HomeHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	uid := middlewareUserID(c)
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	now := time.Now()
	today := model.FormatFastDate(now)

	var todayFast *fastPart
	if f, err := h.Fasts.GetByDate(ctx, uid, today); err == nil {
		fp := toFastPart(f)
		todayFast = &fp
	} else if !errors.Is(err, repository.ErrFastNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load fast failed"})
	}

	summary, err := h.Buckets.Summary(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "summary failed"})
	}

	var urgent *bucketPart
	if b, err := h.Buckets.FindMostUrgent(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	} else if b != nil {
		bp := toBucketPart(b)
		urgent = &bp
	}

	buckets, err := h.Buckets.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list buckets failed"})
	}
	bps := make([]bucketPart, 0, len(buckets))
	for _, b := range buckets {
		bps = append(bps, toBucketPart(b))
	}

	stats, err := h.Fasts.Stats(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats failed"})
	}

	var circleCard echo.Map
	if cl, err := h.Circles.GetByUser(ctx, uid); err == nil {
		rows, err := h.Circles.Members(ctx, cl.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load circle failed"})
		}
		circleCard = echo.Map{
			"id":           cl.ID,
			"name":         cl.Name,
			"invite_code":  cl.InviteCode,
			"member_count": len(rows),
		}
	} else if !errors.Is(err, repository.ErrCircleNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load circle failed"})
	}

	hd := utils.ApproximateHijriDate(now)
	return c.JSON(http.StatusOK, echo.Map{
		"user":       toUserPart(u),
		"date":       today,
		"hijri_date": hd.String(),
		"today_fast": todayFast,
		"ledger": echo.Map{
			"total_owed":      summary.TotalOwed,
			"total_completed": summary.TotalCompleted,
			"total_remaining": summary.TotalRemaining,
			"progress":        summary.Progress(),
		},
		"most_urgent_bucket":   urgent,
		"buckets":              bps,
		"circle":               circleCard,
		"current_streak":       stats.CurrentStreak,
		"longest_streak":       stats.LongestStreak,
		"sunnah_opportunities": sunnahUpcoming(now, sunnahHorizonDays),
	})
}

// LedgerSummary: the Qada tab header: totals, progress and the
// incomplete buckets oldest first.
func (h *HomeHandler) LedgerSummary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid := middlewareUserID(c)
	summary, err := h.Buckets.Summary(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "summary failed"})
	}
	open, err := h.Buckets.ListIncompleteByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list buckets failed"})
	}
	parts := make([]bucketPart, 0, len(open))
	for _, b := range open {
		parts = append(parts, toBucketPart(b))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_owed":        summary.TotalOwed,
		"total_completed":   summary.TotalCompleted,
		"total_remaining":   summary.TotalRemaining,
		"bucket_count":      summary.BucketCount,
		"completed_buckets": summary.CompletedBuckets,
		"progress":          summary.Progress(),
		"open_buckets":      parts,
	})
}

// SunnahOpportunities: the next month of sunnah fasting occasions,
// for the calendar screen.
func (h *HomeHandler) SunnahOpportunities(c echo.Context) error {
	now := time.Now()
	hd := utils.ApproximateHijriDate(now)
	return c.JSON(http.StatusOK, echo.Map{
		"date":          model.FormatFastDate(now),
		"hijri_date":    hd.String(),
		"opportunities": sunnahUpcoming(now, sunnahHorizonDays),
	})
}
