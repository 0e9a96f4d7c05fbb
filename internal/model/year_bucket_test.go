package model

import "testing"

func TestYearBucketRemainingDays(t *testing.T) {
	cases := []struct {
		name string
		owed int
		done int
		want int
	}{
		{"untouched", 10, 0, 10},
		{"partial", 10, 4, 6},
		{"complete", 10, 10, 0},
		{"overshoot never negative", 10, 12, 0},
		{"nothing owed", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := YearBucket{TotalDaysOwed: tc.owed, CompletedDays: tc.done}
			if got := b.RemainingDays(); got != tc.want {
				t.Errorf("RemainingDays() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestYearBucketProgressPercentage(t *testing.T) {
	cases := []struct {
		name string
		owed int
		done int
		want int
	}{
		{"zero owed counts as done", 0, 0, 100},
		{"empty", 30, 0, 0},
		{"third rounds", 30, 10, 33},
		{"two thirds rounds", 30, 20, 67},
		{"half", 10, 5, 50},
		{"full", 10, 10, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := YearBucket{TotalDaysOwed: tc.owed, CompletedDays: tc.done}
			if got := b.ProgressPercentage(); got != tc.want {
				t.Errorf("ProgressPercentage() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestLedgerSummaryProgress(t *testing.T) {
	cases := []struct {
		name      string
		owed      int
		completed int
		want      float64
	}{
		{"empty ledger is zero not NaN", 0, 0, 0},
		{"half", 20, 10, 0.5},
		{"third rounds to two decimals", 30, 10, 0.33},
		{"two thirds rounds up", 30, 20, 0.67},
		{"complete", 15, 15, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := LedgerSummary{TotalOwed: tc.owed, TotalCompleted: tc.completed}
			if got := s.Progress(); got != tc.want {
				t.Errorf("Progress() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidMissedReason(t *testing.T) {
	for _, r := range []MissedReason{ReasonCycle, ReasonTravel, ReasonIllness, ReasonPregnancy, ReasonPostpartum, ReasonBreastfeeding, ReasonOther} {
		if !ValidMissedReason(r) {
			t.Errorf("ValidMissedReason(%q) = false", r)
		}
	}
	for _, r := range []MissedReason{"", "vacation", "CYCLE"} {
		if ValidMissedReason(r) {
			t.Errorf("ValidMissedReason(%q) = true", r)
		}
	}
}
