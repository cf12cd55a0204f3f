package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/utils"
)

const habitID = "habit-1"

var writeClock = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

func rec(day string, completed bool) models.CompletionRecord {
	writeClock = writeClock.Add(time.Minute)
	return models.CompletionRecord{
		ID:        habitID + "/" + day,
		HabitID:   habitID,
		Day:       utils.MustParseDay(day),
		Completed: completed,
		CreatedAt: writeClock,
		UpdatedAt: writeClock,
	}
}

func completedRange(from, to string) []models.CompletionRecord {
	var out []models.CompletionRecord
	end := utils.MustParseDay(to)
	for d := utils.MustParseDay(from); !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, rec(utils.FormatDay(d), true))
	}
	return out
}

func day(s string) time.Time { return utils.MustParseDay(s) }

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name    string
		records []models.CompletionRecord
		today   string
		want    int
	}{
		{
			name:    "five consecutive days ending today",
			records: completedRange("2025-01-01", "2025-01-05"),
			today:   "2025-01-05",
			want:    5,
		},
		{
			name: "gap breaks the streak",
			records: append(completedRange("2025-01-01", "2025-01-03"),
				rec("2025-01-05", true)),
			today: "2025-01-05",
			want:  1,
		},
		{
			name: "explicit miss breaks the streak like a gap",
			records: append(completedRange("2025-01-01", "2025-01-03"),
				rec("2025-01-04", false), rec("2025-01-05", true)),
			today: "2025-01-05",
			want:  1,
		},
		{
			name:    "today not recorded yields zero",
			records: completedRange("2025-01-01", "2025-01-04"),
			today:   "2025-01-05",
			want:    0,
		},
		{
			name:    "today marked not completed yields zero",
			records: append(completedRange("2025-01-01", "2025-01-04"), rec("2025-01-05", false)),
			today:   "2025-01-05",
			want:    0,
		},
		{
			name:    "future records are ignored",
			records: completedRange("2025-01-04", "2025-01-09"),
			today:   "2025-01-05",
			want:    2,
		},
		{
			name:    "no records",
			records: nil,
			today:   "2025-01-05",
			want:    0,
		},
		{
			name:    "streak across a month boundary",
			records: completedRange("2025-01-29", "2025-02-02"),
			today:   "2025-02-02",
			want:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentStreak(tt.records, day(tt.today)))
		})
	}
}

func TestCurrentStreakIsIdempotent(t *testing.T) {
	records := append(completedRange("2025-01-01", "2025-01-03"), rec("2025-01-05", true))
	today := day("2025-01-05")

	first := CurrentStreak(records, today)
	second := CurrentStreak(records, today)
	assert.Equal(t, first, second)
}

func TestCurrentStreakAcrossDST(t *testing.T) {
	// Europe/Copenhagen switches to summer time on 2025-03-30
	records := completedRange("2025-03-28", "2025-04-01")
	assert.Equal(t, 5, CurrentStreak(records, day("2025-04-01")))
	assert.Equal(t, 5, LongestStreak(records))
}

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		name    string
		records []models.CompletionRecord
		want    int
	}{
		{name: "no records", records: nil, want: 0},
		{name: "only misses", records: []models.CompletionRecord{rec("2025-01-01", false), rec("2025-01-02", false)}, want: 0},
		{name: "single day", records: []models.CompletionRecord{rec("2025-01-01", true)}, want: 1},
		{
			name:    "longest run before a gap",
			records: append(completedRange("2025-01-01", "2025-01-03"), rec("2025-01-05", true)),
			want:    3,
		},
		{
			name: "later run is longer",
			records: append(completedRange("2025-01-01", "2025-01-02"),
				completedRange("2025-01-10", "2025-01-16")...),
			want: 7,
		},
		{
			name: "input order does not matter",
			records: []models.CompletionRecord{
				rec("2025-01-03", true), rec("2025-01-01", true), rec("2025-01-02", true),
			},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LongestStreak(tt.records))
		})
	}
}

func TestMergeLongest(t *testing.T) {
	assert.Equal(t, 10, MergeLongest(3, 10))
	assert.Equal(t, 4, MergeLongest(4, 2))
	assert.Equal(t, 0, MergeLongest(0, 0))
}

func TestCompletionRate(t *testing.T) {
	records := []models.CompletionRecord{
		rec("2025-01-01", true),
		rec("2025-01-02", true),
		rec("2025-01-03", false),
		rec("2025-01-04", true),
		rec("2025-01-06", true),
		rec("2025-01-07", true),
		rec("2025-01-09", true), // outside range
	}

	tests := []struct {
		name       string
		start, end string
		want       float64
	}{
		{name: "five of seven days", start: "2025-01-01", end: "2025-01-07", want: 5.0 / 7.0},
		{name: "single day range", start: "2025-01-03", end: "2025-01-03", want: 0},
		{name: "inverted range", start: "2025-01-07", end: "2025-01-01", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CompletionRate(records, day(tt.start), day(tt.end)), 1e-9)
		})
	}

	assert.InDelta(t, 0.7142857, CompletionRate(records, day("2025-01-01"), day("2025-01-07")), 1e-7)
}

func TestEmptyRecords(t *testing.T) {
	today := day("2025-01-05")

	assert.Zero(t, CurrentStreak(nil, today))
	assert.Zero(t, LongestStreak(nil))
	assert.Zero(t, CompletionRate(nil, day("2025-01-01"), today))
	assert.Zero(t, CompletionRate(nil, today, today))
}

func TestProgress(t *testing.T) {
	records := []models.CompletionRecord{
		rec("2025-01-01", true),
		rec("2025-01-02", false),
		rec("2025-01-04", true),
	}

	p := Progress(records, day("2025-01-01"), day("2025-01-05"))
	assert.Equal(t, 5, p.TotalDays)
	assert.Equal(t, 2, p.CompletedDays)
	assert.Equal(t, 1, p.MissedDays)
	assert.Equal(t, 2, p.UnrecordedDays)
	assert.InDelta(t, 0.4, p.Rate, 1e-9)

	empty := Progress(records, day("2025-01-05"), day("2025-01-01"))
	assert.Zero(t, empty.TotalDays)
	assert.Zero(t, empty.Rate)
}

func TestDedupeLatestWriteWins(t *testing.T) {
	older := rec("2025-01-05", true)
	newer := rec("2025-01-05", false)

	for _, order := range [][]models.CompletionRecord{{older, newer}, {newer, older}} {
		got := Dedupe(order)
		require.Len(t, got, 1)
		assert.False(t, got[0].Completed)
	}

	// Equal timestamps: the later position wins
	a, b := older, older
	b.Completed = false
	got := Dedupe([]models.CompletionRecord{a, b})
	require.Len(t, got, 1)
	assert.False(t, got[0].Completed)

	// Streaks see only the winning record
	assert.Zero(t, CurrentStreak([]models.CompletionRecord{older, newer}, day("2025-01-05")))
	assert.Zero(t, LongestStreak([]models.CompletionRecord{older, newer}))
}

func TestDedupeOrdersByDay(t *testing.T) {
	got := Dedupe([]models.CompletionRecord{
		rec("2025-01-03", true), rec("2025-01-01", true), rec("2025-01-02", false),
	})
	require.Len(t, got, 3)
	assert.Equal(t, "2025-01-01", utils.FormatDay(got[0].Day))
	assert.Equal(t, "2025-01-03", utils.FormatDay(got[2].Day))
}

func TestRecompute(t *testing.T) {
	today := day("2025-01-05")

	t.Run("gap scenario", func(t *testing.T) {
		records := append(completedRange("2025-01-01", "2025-01-03"), rec("2025-01-05", true))
		got := Recompute(models.Habit{ID: habitID}, records, today)
		assert.Equal(t, 1, got.CurrentStreak)
		assert.Equal(t, 3, got.LongestStreak)
	})

	t.Run("stored longest is retained", func(t *testing.T) {
		records := completedRange("2025-01-03", "2025-01-05")
		got := Recompute(models.Habit{ID: habitID, LongestStreak: 10}, records, today)
		assert.Equal(t, 3, got.CurrentStreak)
		assert.Equal(t, 10, got.LongestStreak)
	})

	t.Run("input habit is not modified", func(t *testing.T) {
		h := models.Habit{ID: habitID, CurrentStreak: 7, LongestStreak: 7}
		_ = Recompute(h, nil, today)
		assert.Equal(t, 7, h.CurrentStreak)
	})
}

func TestRecomputeLongestCoversCurrent(t *testing.T) {
	today := day("2025-01-20")
	start := day("2025-01-01")

	// Every completion pattern over a short window
	const window = 8
	for mask := 0; mask < 1<<window; mask++ {
		var records []models.CompletionRecord
		for i := 0; i < window; i++ {
			d := utils.FormatDay(today.AddDate(0, 0, -i))
			records = append(records, rec(d, mask&(1<<i) != 0))
		}
		got := Recompute(models.Habit{ID: habitID}, records, today)
		require.GreaterOrEqual(t, got.LongestStreak, got.CurrentStreak, "mask %b", mask)

		stats := Compute(models.Habit{ID: habitID}, records, today, start, today)
		require.Equal(t, got.CurrentStreak, stats.CurrentStreak)
		require.Equal(t, mask&1 != 0, stats.CompletedToday)
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, models.Summary{}, Summarize(nil))

	sum := Summarize([]models.Stats{
		{CurrentStreak: 2, LongestStreak: 9, CompletionRate: 0.5, CompletedToday: true},
		{CurrentStreak: 0, LongestStreak: 3, CompletionRate: 0.25},
		{CurrentStreak: 4, LongestStreak: 4, CompletionRate: 0.75, CompletedToday: true},
	})
	assert.Equal(t, 3, sum.Habits)
	assert.Equal(t, 2, sum.CompletedToday)
	assert.Equal(t, 4, sum.BestCurrent)
	assert.Equal(t, 9, sum.BestLongest)
	assert.InDelta(t, 0.5, sum.MeanRate, 1e-9)
}

func TestValidate(t *testing.T) {
	good := rec("2025-01-01", true)

	withTime := good
	withTime.Day = withTime.Day.Add(3 * time.Hour)

	noDay := good
	noDay.Day = time.Time{}

	other := good
	other.HabitID = "habit-2"

	tests := []struct {
		name    string
		records []models.CompletionRecord
		wantErr bool
	}{
		{name: "empty snapshot", records: nil},
		{name: "well formed", records: []models.CompletionRecord{good}},
		{name: "time component", records: []models.CompletionRecord{withTime}, wantErr: true},
		{name: "missing day", records: []models.CompletionRecord{noDay}, wantErr: true},
		{name: "foreign habit", records: []models.CompletionRecord{good, other}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(habitID, tt.records)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidInput(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestZeroDayPanics(t *testing.T) {
	bad := []models.CompletionRecord{{HabitID: habitID, Completed: true}}
	assert.Panics(t, func() { LongestStreak(bad) })
	assert.Panics(t, func() { CurrentStreak(nil, time.Time{}) })
}
