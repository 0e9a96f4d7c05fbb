package model

import (
	"math"
	"time"
)

// MissedReason classifies why fast-days in a bucket were missed.
type MissedReason string

const (
	ReasonCycle         MissedReason = "cycle"
	ReasonTravel        MissedReason = "travel"
	ReasonIllness       MissedReason = "illness"
	ReasonPregnancy     MissedReason = "pregnancy"
	ReasonPostpartum    MissedReason = "postpartum"
	ReasonBreastfeeding MissedReason = "breastfeeding"
	ReasonOther         MissedReason = "other"
)

// ValidMissedReason reports whether r is one of the known reasons.
func ValidMissedReason(r MissedReason) bool {
	switch r {
	case ReasonCycle, ReasonTravel, ReasonIllness, ReasonPregnancy,
		ReasonPostpartum, ReasonBreastfeeding, ReasonOther:
		return true
	}
	return false
}

// ReasonCount is one entry of a bucket's reason breakdown.
type ReasonCount struct {
	Reason MissedReason `json:"reason"`
	Count  int          `json:"count"`
}

// YearBucket represents one Hijri year of owed Qada fast-days as
// stored in the `year_buckets` table. A user has at most one bucket
// per Hijri year (unique key on user_id + hijri_year). CompletedDays
// only moves through clamped increments and decrements and never
// leaves [0, TotalDaysOwed].
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – owning user.
//  Name            – display name, e.g. "Ramadan 1445".
//  HijriYear       – Hijri year number used for ordering (2000..2100).
//  TotalDaysOwed   – days owed for this year (1..30).
//  CompletedDays   – days made up so far.
//  ReasonBreakdown – optional list of {reason, count} pairs (JSON column).
//  Notes           – optional free text.
//  IsCompleted     – derived: CompletedDays >= TotalDaysOwed.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type YearBucket struct {
	ID              uint64        // year_buckets.id
	UserID          uint64        // year_buckets.user_id
	Name            string        // year_buckets.name
	HijriYear       int           // year_buckets.hijri_year
	TotalDaysOwed   int           // year_buckets.total_days_owed
	CompletedDays   int           // year_buckets.completed_days
	ReasonBreakdown []ReasonCount // year_buckets.reason_breakdown (JSON)
	Notes           string        // year_buckets.notes
	IsCompleted     bool          // year_buckets.is_completed
	CreatedAt       time.Time     // year_buckets.created_at
	UpdatedAt       time.Time     // year_buckets.updated_at
}

// RemainingDays is how many days are still owed in this bucket.
func (b YearBucket) RemainingDays() int {
	if b.TotalDaysOwed <= b.CompletedDays {
		return 0
	}
	return b.TotalDaysOwed - b.CompletedDays
}

// ProgressPercentage is the bucket's completion as a whole percent.
// A bucket that owes nothing counts as fully done.
func (b YearBucket) ProgressPercentage() int {
	if b.TotalDaysOwed == 0 {
		return 100
	}
	return int(math.Round(float64(b.CompletedDays) / float64(b.TotalDaysOwed) * 100))
}

// LedgerSummary aggregates every bucket of a user, complete or not.
type LedgerSummary struct {
	TotalOwed        int `json:"totalOwed"`
	TotalCompleted   int `json:"totalCompleted"`
	TotalRemaining   int `json:"totalRemaining"`
	BucketCount      int `json:"bucketCount"`
	CompletedBuckets int `json:"completedBuckets"`
}

// Progress is the overall completion fraction rounded to two decimal
// places. It is defined as 0 when nothing is owed so dashboards never
// divide by zero.
func (s LedgerSummary) Progress() float64 {
	if s.TotalOwed == 0 {
		return 0
	}
	return math.Round(float64(s.TotalCompleted)/float64(s.TotalOwed)*100) / 100
}
