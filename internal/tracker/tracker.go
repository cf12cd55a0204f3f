// Package tracker applies habit mutations and keeps the cached streak
// fields in sync. Every record write is followed by a full re-read of the
// habit's history and a recomputation from that snapshot.
package tracker

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/storage"
	"github.com/julianstephens/streakline/internal/streak"
	"github.com/julianstephens/streakline/internal/utils"
)

// Backuper snapshots the store before destructive operations
type Backuper interface {
	Create() (string, error)
}

type Service struct {
	store  storage.Provider
	clock  utils.Clock
	loc    *time.Location
	backup Backuper
}

type Option func(*Service)

func WithClock(clock utils.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithBackup enables an automatic backup before Purge
func WithBackup(b Backuper) Option {
	return func(s *Service) { s.backup = b }
}

func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{store: store, clock: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() storage.Provider {
	return s.store
}

// Today returns the current calendar day in the configured timezone
func (s *Service) Today() time.Time {
	return utils.TodayIn(s.clock, s.loc)
}

// Window returns the inclusive range of the last days days ending today
func (s *Service) Window(days int) (time.Time, time.Time) {
	end := s.Today()
	if days < 1 {
		days = 1
	}
	return end.AddDate(0, 0, -(days - 1)), end
}

// AddHabit creates a habit. A zero start defaults to today.
func (s *Service) AddHabit(name string, kind constants.HabitKind, start time.Time) (models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, errors.Invalidf("habit name cannot be empty")
	}
	if kind == "" {
		kind = constants.HabitKindHabit
	}
	if !kind.Valid() {
		return models.Habit{}, errors.Invalidf("unknown habit kind %q (expected habit or exam)", kind)
	}
	if _, err := s.store.GetHabitByName(name); err == nil {
		return models.Habit{}, errors.Invalidf("habit %q already exists", name)
	} else if !stderrors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, err
	}
	if start.IsZero() {
		start = s.Today()
	}

	habit := models.Habit{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      kind,
		StartDay:  utils.DayOf(start),
		CreatedAt: s.clock().UTC(),
	}
	if err := s.store.AddHabit(habit); err != nil {
		return models.Habit{}, fmt.Errorf("failed to add habit: %w", err)
	}
	logger.Info("Habit added", "id", habit.ID, "name", habit.Name, "kind", habit.Kind)
	return habit, nil
}

// Resolve finds a live habit by name, falling back to its id
func (s *Service) Resolve(ref string) (models.Habit, error) {
	habit, err := s.store.GetHabitByName(ref)
	if err == nil {
		return habit, nil
	}
	if !stderrors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, err
	}
	habit, err = s.store.GetHabit(ref)
	if stderrors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, fmt.Errorf("habit %q: %w", ref, storage.ErrNotFound)
	}
	return habit, err
}

// Mark records whether habitID was completed on day, then recomputes and
// persists the habit's streaks. An existing record for the same day is
// updated in place.
func (s *Service) Mark(habitID string, day time.Time, completed bool, note string) (models.Stats, error) {
	if day.IsZero() {
		return models.Stats{}, errors.Invalidf("day is required")
	}
	day = utils.DayOf(day)
	today := s.Today()
	if day.After(today) {
		return models.Stats{}, errors.Invalidf("cannot mark %s, it is after today (%s)", utils.FormatDay(day), utils.FormatDay(today))
	}

	habit, err := s.store.GetHabit(habitID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to load habit %s: %w", habitID, err)
	}
	if habit.ArchivedAt != nil {
		return models.Stats{}, errors.Invalidf("habit %q is archived", habit.Name)
	}

	now := s.clock().UTC()
	record := models.CompletionRecord{
		ID:        uuid.New().String(),
		HabitID:   habitID,
		Day:       day,
		Completed: completed,
		Note:      strings.TrimSpace(note),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := s.store.GetRecord(habitID, day); err == nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else if !stderrors.Is(err, storage.ErrNotFound) {
		return models.Stats{}, err
	}

	if err := s.store.UpsertRecord(record); err != nil {
		return models.Stats{}, fmt.Errorf("failed to save record: %w", err)
	}
	logger.Debug("Record saved", "habit", habitID, "day", utils.FormatDay(day), "completed", completed)

	stats, err := s.recompute(habit, today)
	if err != nil {
		return models.Stats{}, err
	}
	logger.Info("Habit marked", "habit", habit.Name, "day", utils.FormatDay(day), "completed", completed,
		"current", stats.CurrentStreak, "longest", stats.LongestStreak)
	return stats, nil
}

// recompute re-reads the full history, derives fresh streaks and writes
// them back when they changed. Stats cover the default window.
func (s *Service) recompute(habit models.Habit, today time.Time) (models.Stats, error) {
	records, err := s.store.GetRecordsForHabit(habit.ID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to load records for %s: %w", habit.ID, err)
	}
	if err := streak.Validate(habit.ID, records); err != nil {
		return models.Stats{}, err
	}

	fresh := streak.Recompute(habit, records, today)
	if fresh.CurrentStreak != habit.CurrentStreak || fresh.LongestStreak != habit.LongestStreak {
		if err := s.store.UpdateHabitStreaks(habit.ID, fresh.CurrentStreak, fresh.LongestStreak); err != nil {
			return models.Stats{}, fmt.Errorf("failed to save streaks: %w", err)
		}
	}

	start := today.AddDate(0, 0, -(constants.DefaultStatsDays - 1))
	return streak.Compute(habit, records, today, start, today), nil
}

// Stats derives a habit's stats over [start, end] without writing anything
func (s *Service) Stats(habitID string, start, end time.Time) (models.Stats, error) {
	habit, err := s.store.GetHabit(habitID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to load habit %s: %w", habitID, err)
	}
	records, err := s.store.GetRecordsForHabit(habitID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to load records for %s: %w", habitID, err)
	}
	if err := streak.Validate(habitID, records); err != nil {
		return models.Stats{}, err
	}
	return streak.Compute(habit, records, s.Today(), start, end), nil
}

// Entry pairs a habit with its derived stats
type Entry struct {
	Habit models.Habit
	Stats models.Stats
}

// Overview computes stats for every active habit over [start, end]
func (s *Service) Overview(start, end time.Time) ([]Entry, models.Summary, error) {
	habits, err := s.store.GetAllHabits(false, false)
	if err != nil {
		return nil, models.Summary{}, fmt.Errorf("failed to list habits: %w", err)
	}

	entries := make([]Entry, 0, len(habits))
	all := make([]models.Stats, 0, len(habits))
	for _, h := range habits {
		st, err := s.Stats(h.ID, start, end)
		if err != nil {
			return nil, models.Summary{}, err
		}
		entries = append(entries, Entry{Habit: h, Stats: st})
		all = append(all, st)
	}
	return entries, streak.Summarize(all), nil
}

// Recompute re-derives and persists one habit's cached streaks
func (s *Service) Recompute(habitID string) (models.Habit, error) {
	habit, err := s.store.GetHabit(habitID)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to load habit %s: %w", habitID, err)
	}
	stats, err := s.recompute(habit, s.Today())
	if err != nil {
		return models.Habit{}, err
	}
	habit.CurrentStreak = stats.CurrentStreak
	habit.LongestStreak = stats.LongestStreak
	return habit, nil
}

// RecomputeAll refreshes every live habit, archived ones included, and
// returns how many had stale cached streaks.
func (s *Service) RecomputeAll() (int, error) {
	habits, err := s.store.GetAllHabits(true, false)
	if err != nil {
		return 0, fmt.Errorf("failed to list habits: %w", err)
	}

	changed := 0
	for _, h := range habits {
		fresh, err := s.Recompute(h.ID)
		if err != nil {
			return changed, err
		}
		if fresh.CurrentStreak != h.CurrentStreak || fresh.LongestStreak != h.LongestStreak {
			logger.Info("Streaks refreshed", "habit", h.Name,
				"current", fmt.Sprintf("%d->%d", h.CurrentStreak, fresh.CurrentStreak),
				"longest", fmt.Sprintf("%d->%d", h.LongestStreak, fresh.LongestStreak))
			changed++
		}
	}
	return changed, nil
}

// Purge permanently removes a habit and its records. When a backuper is
// configured the store is backed up first and its path returned.
func (s *Service) Purge(habitID string) (string, error) {
	var saved string
	if s.backup != nil {
		path, err := s.backup.Create()
		if err != nil {
			return "", fmt.Errorf("failed to back up before purge: %w", err)
		}
		saved = path
	}
	if err := s.store.PurgeHabit(habitID); err != nil {
		return saved, fmt.Errorf("failed to purge habit %s: %w", habitID, err)
	}
	logger.Info("Habit purged", "id", habitID, "backup", saved)
	return saved, nil
}
