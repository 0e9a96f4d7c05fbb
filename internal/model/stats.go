package model

import "sort"

// ComputeFastStats derives the profile statistics from a user's full
// fast history. Streaks count consecutive observed entries in date
// order; the current streak runs backwards from the latest entry
// until the first miss.
func ComputeFastStats(fasts []Fast) FastStats {
	stats := FastStats{TotalFasts: len(fasts)}
	if len(fasts) == 0 {
		return stats
	}

	ordered := make([]Fast, len(fasts))
	copy(ordered, fasts)
	sort.Slice(ordered, func(i, j int) bool {
		di, erri := ParseFastDate(ordered[i].FastDate)
		dj, errj := ParseFastDate(ordered[j].FastDate)
		if erri != nil || errj != nil {
			return ordered[i].FastDate < ordered[j].FastDate
		}
		return di.Before(dj)
	})

	streak := 0
	for _, f := range ordered {
		if f.Status {
			stats.CompletedFasts++
			streak++
			if streak > stats.LongestStreak {
				stats.LongestStreak = streak
			}
		} else {
			streak = 0
		}
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		if !ordered[i].Status {
			break
		}
		stats.CurrentStreak++
	}

	stats.RemainingFasts = stats.TotalFasts - stats.CompletedFasts
	if stats.TotalFasts > 0 {
		stats.CompletionRate = int(float64(stats.CompletedFasts)/float64(stats.TotalFasts)*100 + 0.5)
	}

	if last, err := ParseFastDate(ordered[len(ordered)-1].FastDate); err == nil {
		stats.LastFastDate = last.Format("2006-01-02")
	}
	return stats
}
