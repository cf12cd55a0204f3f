// Package sqlstore implements habit and completion record persistence over
// database/sql. The sqlite and postgres stores own connection lifecycle and
// migrations and delegate queries here.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/storage"
)

const timestampFormat = time.RFC3339Nano

type Queries struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

func (q *Queries) exec(query string, args ...interface{}) (sql.Result, error) {
	return q.db.Exec(q.dialect.Rebind(query), args...)
}

func (q *Queries) queryRow(query string, args ...interface{}) *sql.Row {
	return q.db.QueryRow(q.dialect.Rebind(query), args...)
}

func (q *Queries) query(query string, args ...interface{}) (*sql.Rows, error) {
	return q.db.Query(q.dialect.Rebind(query), args...)
}

const habitColumns = `id, name, kind, start_day, current_streak, longest_streak, created_at, archived_at, deleted_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var kind, startDay, createdAt string
	var archivedAt, deletedAt sql.NullString

	err := row.Scan(&h.ID, &h.Name, &kind, &startDay, &h.CurrentStreak, &h.LongestStreak,
		&createdAt, &archivedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Habit{}, err
	}

	h.Kind = constants.HabitKind(kind)
	if h.StartDay, err = time.Parse(constants.DateFormat, startDay); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse start_day for habit %s: %w", h.ID, err)
	}
	if h.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	if h.ArchivedAt, err = parseNullTime(archivedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse archived_at for habit %s: %w", h.ID, err)
	}
	if h.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse deleted_at for habit %s: %w", h.ID, err)
	}
	return h, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(timestampFormat, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timestampFormat), Valid: true}
}

func (q *Queries) AddHabit(habit models.Habit) error {
	return q.UpdateHabit(habit)
}

func (q *Queries) GetHabit(id string) (models.Habit, error) {
	return scanHabit(q.queryRow(`
		SELECT `+habitColumns+`
		FROM habits WHERE id = ? AND deleted_at IS NULL`, id))
}

func (q *Queries) GetHabitByName(name string) (models.Habit, error) {
	return scanHabit(q.queryRow(`
		SELECT `+habitColumns+`
		FROM habits WHERE name = ? AND deleted_at IS NULL`, name))
}

func (q *Queries) GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits WHERE 1=1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if !includeArchived {
		query += " AND archived_at IS NULL"
	}
	query += " ORDER BY created_at, name"

	rows, err := q.query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (q *Queries) UpdateHabit(habit models.Habit) error {
	kind := habit.Kind
	if kind == "" {
		kind = constants.HabitKindHabit
	}

	_, err := q.exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			start_day = excluded.start_day,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			archived_at = excluded.archived_at,
			deleted_at = excluded.deleted_at`,
		habit.ID, habit.Name, string(kind), habit.StartDay.Format(constants.DateFormat),
		habit.CurrentStreak, habit.LongestStreak, habit.CreatedAt.UTC().Format(timestampFormat),
		nullTime(habit.ArchivedAt), nullTime(habit.DeletedAt))
	return err
}

func (q *Queries) UpdateHabitStreaks(id string, current, longest int) error {
	result, err := q.exec(`
		UPDATE habits SET current_streak = ?, longest_streak = ? WHERE id = ?`,
		current, longest, id)
	return expectRows(result, err, storage.ErrNotFound, "habit %s", id)
}

func (q *Queries) ArchiveHabit(id string) error {
	result, err := q.exec(`
		UPDATE habits SET archived_at = ? WHERE id = ? AND deleted_at IS NULL AND archived_at IS NULL`,
		now(), id)
	return expectRows(result, err, storage.ErrConflict, "habit %s not found or already archived/deleted", id)
}

func (q *Queries) UnarchiveHabit(id string) error {
	result, err := q.exec(`
		UPDATE habits SET archived_at = NULL WHERE id = ? AND deleted_at IS NULL AND archived_at IS NOT NULL`,
		id)
	return expectRows(result, err, storage.ErrConflict, "habit %s not found or not archived", id)
}

func (q *Queries) DeleteHabit(id string) error {
	result, err := q.exec(`
		UPDATE habits SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now(), id)
	return expectRows(result, err, storage.ErrConflict, "habit %s not found or already deleted", id)
}

func (q *Queries) RestoreHabit(id string) error {
	result, err := q.exec(`
		UPDATE habits SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`,
		id)
	return expectRows(result, err, storage.ErrConflict, "habit %s not found or not deleted", id)
}

// PurgeHabit deletes the records explicitly rather than relying on the
// foreign key cascade, which SQLite only enforces when the pragma is on.
func (q *Queries) PurgeHabit(id string) error {
	tx, err := q.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin purge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(q.dialect.Rebind(`DELETE FROM completion_records WHERE habit_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete completion records: %w", err)
	}
	result, err := tx.Exec(q.dialect.Rebind(`DELETE FROM habits WHERE id = ?`), id)
	if err := expectRows(result, err, storage.ErrNotFound, "habit %s", id); err != nil {
		return err
	}
	return tx.Commit()
}

func now() string {
	return time.Now().UTC().Format(timestampFormat)
}

// expectRows turns a zero-row write into sentinel wrapped with context
func expectRows(result sql.Result, err error, sentinel error, format string, args ...interface{}) error {
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
	}
	return nil
}
