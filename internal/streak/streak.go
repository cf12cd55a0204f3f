// Package streak derives streak and progress statistics from a habit's
// completion records. Every function is pure: callers supply a consistent
// snapshot of records and the reference day, and persist results themselves.
package streak

import (
	"sort"
	"time"

	"github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/models"
)

const secondsPerDay = 24 * 60 * 60

// dayNumber maps a calendar day to a day count since the Unix epoch.
// A zero day is a caller bug; input boundaries reject it via Validate.
func dayNumber(t time.Time) int64 {
	if t.IsZero() {
		panic("streak: zero day in completion record")
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

type recordKey struct {
	habitID string
	day     int64
}

// Dedupe keeps one record per habit and day. The record with the latest
// UpdatedAt wins; on equal timestamps the one appearing later in records wins.
// The result is ordered by day ascending.
func Dedupe(records []models.CompletionRecord) []models.CompletionRecord {
	latest := make(map[recordKey]int, len(records))
	for i, r := range records {
		k := recordKey{habitID: r.HabitID, day: dayNumber(r.Day)}
		if j, ok := latest[k]; ok && records[j].UpdatedAt.After(r.UpdatedAt) {
			continue
		}
		latest[k] = i
	}

	out := make([]models.CompletionRecord, 0, len(latest))
	for _, i := range latest {
		out = append(out, records[i])
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := dayNumber(out[i].Day), dayNumber(out[j].Day)
		if di != dj {
			return di < dj
		}
		return out[i].HabitID < out[j].HabitID
	})
	return out
}

// outcomes returns the winning completed flag for every recorded day
func outcomes(records []models.CompletionRecord) map[int64]bool {
	deduped := Dedupe(records)
	days := make(map[int64]bool, len(deduped))
	for _, r := range deduped {
		days[dayNumber(r.Day)] = r.Completed
	}
	return days
}

// CurrentStreak counts consecutive completed days ending at today. A day
// with no record breaks the streak exactly like a day marked not completed.
func CurrentStreak(records []models.CompletionRecord, today time.Time) int {
	days := outcomes(records)
	n := 0
	for d := dayNumber(today); days[d]; d-- {
		n++
	}
	return n
}

// LongestStreak returns the longest run of consecutive completed days
// anywhere in the records.
func LongestStreak(records []models.CompletionRecord) int {
	var completed []int64
	for d, ok := range outcomes(records) {
		if ok {
			completed = append(completed, d)
		}
	}
	if len(completed) == 0 {
		return 0
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i] < completed[j] })

	longest, run := 1, 1
	for i := 1; i < len(completed); i++ {
		if completed[i] == completed[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// MergeLongest combines a fresh longest streak with the stored one so that
// history never shrinks when old records disappear.
func MergeLongest(computed, stored int) int {
	if stored > computed {
		return stored
	}
	return computed
}

// CompletionRate is the fraction of days in [start, end] marked completed.
// An inverted range has no days and yields 0.
func CompletionRate(records []models.CompletionRecord, start, end time.Time) float64 {
	return Progress(records, start, end).Rate
}

// Progress counts the outcome of every day in the inclusive range [start, end].
func Progress(records []models.CompletionRecord, start, end time.Time) models.Progress {
	s, e := dayNumber(start), dayNumber(end)
	p := models.Progress{Start: start, End: end}
	if e < s {
		return p
	}

	p.TotalDays = int(e - s + 1)
	for d, ok := range outcomes(records) {
		if d < s || d > e {
			continue
		}
		if ok {
			p.CompletedDays++
		} else {
			p.MissedDays++
		}
	}
	p.UnrecordedDays = p.TotalDays - p.CompletedDays - p.MissedDays
	p.Rate = float64(p.CompletedDays) / float64(p.TotalDays)
	return p
}

// Recompute returns a copy of habit with both cached streak fields
// re-derived from records as of today.
func Recompute(habit models.Habit, records []models.CompletionRecord, today time.Time) models.Habit {
	habit.CurrentStreak = CurrentStreak(records, today)
	habit.LongestStreak = MergeLongest(LongestStreak(records), habit.LongestStreak)
	return habit
}

// Compute derives the full stats for habit over [start, end]. The streak
// fields come from Recompute, so the stored longest streak is honored.
func Compute(habit models.Habit, records []models.CompletionRecord, today, start, end time.Time) models.Stats {
	fresh := Recompute(habit, records, today)
	p := Progress(records, start, end)
	return models.Stats{
		HabitID:        habit.ID,
		CurrentStreak:  fresh.CurrentStreak,
		LongestStreak:  fresh.LongestStreak,
		CompletionRate: p.Rate,
		CompletedToday: fresh.CurrentStreak > 0,
		Progress:       p,
	}
}

// Summarize aggregates per-habit stats
func Summarize(stats []models.Stats) models.Summary {
	sum := models.Summary{Habits: len(stats)}
	if len(stats) == 0 {
		return sum
	}

	var rates float64
	for _, s := range stats {
		rates += s.CompletionRate
		if s.CompletedToday {
			sum.CompletedToday++
		}
		if s.CurrentStreak > sum.BestCurrent {
			sum.BestCurrent = s.CurrentStreak
		}
		if s.LongestStreak > sum.BestLongest {
			sum.BestLongest = s.LongestStreak
		}
	}
	sum.MeanRate = rates / float64(len(stats))
	return sum
}

// Validate checks that records form a well-formed snapshot for habitID:
// every record belongs to that habit and carries a plain calendar day.
func Validate(habitID string, records []models.CompletionRecord) error {
	for _, r := range records {
		if r.HabitID != habitID {
			return errors.Invalidf("record %s belongs to habit %q, not %q", r.ID, r.HabitID, habitID)
		}
		if r.Day.IsZero() {
			return errors.Invalidf("record %s has no day", r.ID)
		}
		if r.Day.Hour() != 0 || r.Day.Minute() != 0 || r.Day.Second() != 0 || r.Day.Nanosecond() != 0 {
			return errors.Invalidf("record %s day %s has a time component", r.ID, r.Day.Format(time.RFC3339))
		}
	}
	return nil
}
