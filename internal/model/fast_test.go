package model

import (
	"testing"
	"time"
)

func TestParseFastDate(t *testing.T) {
	got, err := ParseFastDate("15-03-2024")
	if err != nil {
		t.Fatalf("ParseFastDate: %v", err)
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parsed %v, want %v", got, want)
	}
}

func TestParseFastDateRejectsBadInput(t *testing.T) {
	for _, s := range []string{
		"",
		"2024-03-15", // ISO order not accepted here
		"31-02-2024", // not a real day
		"aa-bb-cccc",
	} {
		if _, err := ParseFastDate(s); err == nil {
			t.Errorf("ParseFastDate(%q) accepted", s)
		}
	}
}

func TestFormatFastDateRoundTrip(t *testing.T) {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	s := FormatFastDate(day)
	if s != "02-01-2025" {
		t.Fatalf("FormatFastDate = %q, want 02-01-2025", s)
	}
	back, err := ParseFastDate(s)
	if err != nil {
		t.Fatalf("round trip parse: %v", err)
	}
	if !back.Equal(day) {
		t.Errorf("round trip gave %v, want %v", back, day)
	}
}

func TestValidFastType(t *testing.T) {
	for _, ft := range []FastType{FastQada, FastSunnah, FastKaffarah, FastNafl} {
		if !ValidFastType(ft) {
			t.Errorf("ValidFastType(%q) = false", ft)
		}
	}
	if ValidFastType("ramadan") || ValidFastType("") {
		t.Error("unknown fast type accepted")
	}
}

func TestValidSunnahType(t *testing.T) {
	for _, st := range []SunnahType{SunnahMonday, SunnahThursday, SunnahWhiteDays, SunnahAshura, SunnahArafah, SunnahShawwal, SunnahShaban, SunnahOther} {
		if !ValidSunnahType(st) {
			t.Errorf("ValidSunnahType(%q) = false", st)
		}
	}
	if ValidSunnahType("friday") || ValidSunnahType("") {
		t.Error("unknown sunnah type accepted")
	}
}
