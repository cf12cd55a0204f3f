package models

import "time"

// Stats are the derived values for one habit
type Stats struct {
	HabitID        string   `json:"habit_id"`
	CurrentStreak  int      `json:"current_streak"`
	LongestStreak  int      `json:"longest_streak"`
	CompletionRate float64  `json:"completion_rate"`
	CompletedToday bool     `json:"completed_today"`
	Progress       Progress `json:"progress"`
}

// Progress counts days in an inclusive range by outcome
type Progress struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	TotalDays      int       `json:"total_days"`
	CompletedDays  int       `json:"completed_days"`
	MissedDays     int       `json:"missed_days"`
	UnrecordedDays int       `json:"unrecorded_days"`
	Rate           float64   `json:"rate"`
}

// Summary aggregates stats across habits
type Summary struct {
	Habits         int     `json:"habits"`
	CompletedToday int     `json:"completed_today"`
	MeanRate       float64 `json:"mean_rate"`
	BestCurrent    int     `json:"best_current"`
	BestLongest    int     `json:"best_longest"`
}
