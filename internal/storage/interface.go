package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/streakline/internal/models"
)

var (
	// ErrNotFound is returned when a habit or record does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a state transition does not apply,
	// e.g. archiving an already archived habit
	ErrConflict = errors.New("conflict")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	// UpdateHabitStreaks writes only the cached streak fields
	UpdateHabitStreaks(id string, current, longest int) error
	ArchiveHabit(id string) error
	UnarchiveHabit(id string) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error
	// PurgeHabit removes a habit and all of its completion records
	PurgeHabit(id string) error

	// Completion records
	UpsertRecord(models.CompletionRecord) error
	GetRecord(habitID string, day time.Time) (models.CompletionRecord, error)
	// GetRecordsForHabit returns the habit's full history in one query,
	// ordered by day. The result is the snapshot streaks are computed from.
	GetRecordsForHabit(habitID string) ([]models.CompletionRecord, error)
	GetRecordsForDay(day time.Time) ([]models.CompletionRecord, error)
	GetRecordsInRange(habitID string, start, end time.Time) ([]models.CompletionRecord, error)
	// CountOrphanRecords returns records whose habit no longer exists
	CountOrphanRecords() (int, error)

	// Diagnostics
	SchemaVersion() (current, latest int, err error)

	// Utils
	GetConfigPath() string
}
