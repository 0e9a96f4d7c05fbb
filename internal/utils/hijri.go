package utils

import (
	"fmt"
	"time"
)

// HijriDate is an approximate date in the Islamic lunar calendar.
// The conversion below is a tabular approximation and can be off by
// a day or two around month boundaries; the app treats it as a hint
// for sunnah opportunities, never as a binding calendar.
type HijriDate struct {
	Day       int
	Month     int
	Year      int
	MonthName string
}

var hijriMonthNames = [12]string{
	"Muharram",
	"Safar",
	"Rabi al-Awwal",
	"Rabi al-Thani",
	"Jumada al-Awwal",
	"Jumada al-Thani",
	"Rajab",
	"Shaban",
	"Ramadan",
	"Shawwal",
	"Dhul Qadah",
	"Dhul Hijjah",
}

const (
	hijriYearLength  = 354.36667    // mean Hijri year in days
	hijriMonthLength = 29.530588853 // mean synodic month in days
)

// hijriEpoch is 19 July 622 CE (Gregorian), day one of the calendar.
var hijriEpoch = time.Date(622, time.July, 19, 0, 0, 0, 0, time.UTC)

// ApproximateHijriDate converts a Gregorian instant to the
// approximate Hijri date it falls on.
func ApproximateHijriDate(t time.Time) HijriDate {
	days := int(t.UTC().Sub(hijriEpoch).Hours() / 24)

	year := int(float64(days)/hijriYearLength) + 1
	yearLen := float64(hijriYearLength)
	daysIntoYear := days % int(yearLen)
	month := int(float64(daysIntoYear)/hijriMonthLength) + 1
	day := int(float64(daysIntoYear)-float64(month-1)*hijriMonthLength) + 1

	if day > 30 {
		day = 30
	}
	if month > 12 {
		month = 12
	}
	return HijriDate{
		Day:       day,
		Month:     month,
		Year:      year,
		MonthName: hijriMonthNames[month-1],
	}
}

// String renders the date as "13 Ramadan 1446 AH".
func (d HijriDate) String() string {
	return fmt.Sprintf("%d %s %d AH", d.Day, d.MonthName, d.Year)
}

// IsWhiteDay reports whether d is one of the White Days (13th, 14th
// or 15th of any Hijri month).
func IsWhiteDay(d HijriDate) bool {
	return d.Day >= 13 && d.Day <= 15
}

// IsShaban reports whether d falls in Shaban, the month of voluntary
// fasting before Ramadan.
func IsShaban(d HijriDate) bool {
	return d.Month == 8
}

// IsDayOfArafah reports whether d is the 9th of Dhul Hijjah.
func IsDayOfArafah(d HijriDate) bool {
	return d.Month == 12 && d.Day == 9
}

// IsAshuraWindow reports whether d is the Day of Ashura (10th of
// Muharram) or the day either side of it.
func IsAshuraWindow(d HijriDate) bool {
	return d.Month == 1 && d.Day >= 9 && d.Day <= 11
}

// IsShawwalSix reports whether d falls in the six fasting days of
// Shawwal, taken here as the 2nd through 7th (after Eid).
func IsShawwalSix(d HijriDate) bool {
	return d.Month == 10 && d.Day >= 2 && d.Day <= 7
}
