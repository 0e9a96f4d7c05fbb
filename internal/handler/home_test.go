package handler

import (
	"testing"
	"time"

	"github.com/rayyan-app/rayyan-server/internal/model"
)

func hasOpportunity(ops []sunnahOpportunity, st model.SunnahType) bool {
	for _, o := range ops {
		if o.SunnahType == string(st) {
			return true
		}
	}
	return false
}

func TestSunnahTodayWeekday(t *testing.T) {
	monday := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	if monday.Weekday() != time.Monday {
		t.Fatal("fixture is not a Monday")
	}
	if !hasOpportunity(sunnahToday(monday), model.SunnahMonday) {
		t.Error("Monday fast missing on a Monday")
	}

	thursday := monday.AddDate(0, 0, 3)
	if !hasOpportunity(sunnahToday(thursday), model.SunnahThursday) {
		t.Error("Thursday fast missing on a Thursday")
	}

	tuesday := monday.AddDate(0, 0, 1)
	ops := sunnahToday(tuesday)
	if hasOpportunity(ops, model.SunnahMonday) || hasOpportunity(ops, model.SunnahThursday) {
		t.Error("weekday fast offered on a Tuesday")
	}
}

func TestSunnahTodayCarriesHijriDate(t *testing.T) {
	ops := sunnahToday(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	for _, o := range ops {
		if o.HijriDate == "" {
			t.Errorf("opportunity %q has no hijri date", o.SunnahType)
		}
		if o.Title == "" {
			t.Errorf("opportunity %q has no title", o.SunnahType)
		}
	}
}

func TestSunnahUpcomingCoversWeekdays(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	ops := sunnahUpcoming(monday, 7)
	if !hasOpportunity(ops, model.SunnahMonday) {
		t.Error("a week from Monday has no Monday fast")
	}
	if !hasOpportunity(ops, model.SunnahThursday) {
		t.Error("a week from Monday has no Thursday fast")
	}
	for _, o := range ops {
		if o.Date == "" {
			t.Errorf("opportunity %q has no date", o.SunnahType)
		}
	}
	if len(sunnahUpcoming(monday, 0)) != 0 {
		t.Error("zero-day horizon returned opportunities")
	}
}
