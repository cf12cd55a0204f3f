package models

import (
	"time"

	"github.com/julianstephens/streakline/internal/constants"
)

// Habit is a tracked entity: a daily habit or an exam preparation plan.
// CurrentStreak and LongestStreak are cached values recomputed after every
// change to the habit's completion records.
type Habit struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Kind          constants.HabitKind `json:"kind"`
	StartDay      time.Time           `json:"start_day"`
	CurrentStreak int                 `json:"current_streak"`
	LongestStreak int                 `json:"longest_streak"`
	CreatedAt     time.Time           `json:"created_at"`
	ArchivedAt    *time.Time          `json:"archived_at,omitempty"`
	DeletedAt     *time.Time          `json:"deleted_at,omitempty"`
}

// IsActive reports whether the habit is neither archived nor deleted
func (h Habit) IsActive() bool {
	return h.ArchivedAt == nil && h.DeletedAt == nil
}

// CompletionRecord states whether a habit was completed on one calendar day.
// Day carries no time of day; it is midnight UTC of the calendar date.
type CompletionRecord struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	Day       time.Time `json:"day"`
	Completed bool      `json:"completed"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
