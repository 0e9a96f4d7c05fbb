package model

import (
	"fmt"
	"time"
)

// FastType distinguishes what kind of fast a log entry records.
type FastType string

const (
	FastQada     FastType = "qada"
	FastSunnah   FastType = "sunnah"
	FastKaffarah FastType = "kaffarah"
	FastNafl     FastType = "nafl"
)

// ValidFastType reports whether t is one of the known fast types.
func ValidFastType(t FastType) bool {
	switch t {
	case FastQada, FastSunnah, FastKaffarah, FastNafl:
		return true
	}
	return false
}

// SunnahType narrows a sunnah fast to the occasion it follows.
type SunnahType string

const (
	SunnahMonday    SunnahType = "monday"
	SunnahThursday  SunnahType = "thursday"
	SunnahWhiteDays SunnahType = "white_days"
	SunnahAshura    SunnahType = "ashura"
	SunnahArafah    SunnahType = "arafah"
	SunnahShawwal   SunnahType = "shawwal"
	SunnahShaban    SunnahType = "shaban"
	SunnahOther     SunnahType = "other"
)

// ValidSunnahType reports whether t is one of the known sunnah occasions.
func ValidSunnahType(t SunnahType) bool {
	switch t {
	case SunnahMonday, SunnahThursday, SunnahWhiteDays, SunnahAshura,
		SunnahArafah, SunnahShawwal, SunnahShaban, SunnahOther:
		return true
	}
	return false
}

// Fast is one logged fast-day as stored in the `fasts` table. The
// date string doubles as the per-user uniqueness key (one entry per
// calendar day). A qada fast may reference the year bucket it pays
// down; deleting the bucket later leaves the reference orphaned on
// purpose.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owning user.
//  FastDate     – calendar day in DD-MM-YYYY form, unique per user.
//  Description  – optional free text.
//  Type         – qada, sunnah, kaffarah or nafl.
//  SunnahType   – occasion for sunnah fasts; empty otherwise.
//  YearBucketID – bucket being paid down (qada only, 0 when unset).
//  Status       – true when observed, false when missed.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Fast struct {
	ID           uint64     // fasts.id
	UserID       uint64     // fasts.user_id
	FastDate     string     // fasts.fast_date
	Description  string     // fasts.description
	Type         FastType   // fasts.type
	SunnahType   SunnahType // fasts.sunnah_type
	YearBucketID uint64     // fasts.year_bucket_id (0 = none)
	Status       bool       // fasts.status
	CreatedAt    time.Time  // fasts.created_at
	UpdatedAt    time.Time  // fasts.updated_at
}

// fastDateLayout is the storage form of fast dates. The mobile app
// has always sent DD-MM-YYYY, so the column keeps that order.
const fastDateLayout = "02-01-2006"

// ParseFastDate validates a DD-MM-YYYY string and returns the day it
// names. Rejects well-formed strings that are not real dates, such
// as 31-02-2024.
func ParseFastDate(s string) (time.Time, error) {
	t, err := time.Parse(fastDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fast date must be a valid DD-MM-YYYY day: %w", err)
	}
	return t, nil
}

// FormatFastDate renders a day in the stored DD-MM-YYYY form.
func FormatFastDate(t time.Time) string {
	return t.Format(fastDateLayout)
}

// FastStats summarizes a user's logged fasts for the profile screen.
type FastStats struct {
	TotalFasts     int    `json:"total_fasts"`
	CompletedFasts int    `json:"completed_fasts"`
	RemainingFasts int    `json:"remaining_fasts"`
	CompletionRate int    `json:"completion_rate"`
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	LastFastDate   string `json:"last_fast_date,omitempty"`
}
