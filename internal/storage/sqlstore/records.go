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

const recordColumns = `id, habit_id, day, completed, note, created_at, updated_at`

func scanRecord(row rowScanner) (models.CompletionRecord, error) {
	var r models.CompletionRecord
	var day, createdAt, updatedAt string

	err := row.Scan(&r.ID, &r.HabitID, &day, &r.Completed, &r.Note, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CompletionRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return models.CompletionRecord{}, err
	}

	if r.Day, err = time.Parse(constants.DateFormat, day); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to parse day for record %s: %w", r.ID, err)
	}
	if r.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to parse created_at for record %s: %w", r.ID, err)
	}
	if r.UpdatedAt, err = time.Parse(timestampFormat, updatedAt); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to parse updated_at for record %s: %w", r.ID, err)
	}
	return r, nil
}

func (q *Queries) scanRecords(query string, args ...interface{}) ([]models.CompletionRecord, error) {
	rows, err := q.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.CompletionRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// UpsertRecord writes the record for (habit, day), updating the existing
// row in place when one exists. The original id and created_at are kept.
func (q *Queries) UpsertRecord(r models.CompletionRecord) error {
	_, err := q.exec(`
		INSERT INTO completion_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			completed = excluded.completed,
			note = excluded.note,
			updated_at = excluded.updated_at`,
		r.ID, r.HabitID, r.Day.Format(constants.DateFormat), r.Completed, r.Note,
		r.CreatedAt.UTC().Format(timestampFormat), r.UpdatedAt.UTC().Format(timestampFormat))
	return err
}

func (q *Queries) GetRecord(habitID string, day time.Time) (models.CompletionRecord, error) {
	return scanRecord(q.queryRow(`
		SELECT `+recordColumns+`
		FROM completion_records WHERE habit_id = ? AND day = ?`,
		habitID, day.Format(constants.DateFormat)))
}

func (q *Queries) GetRecordsForHabit(habitID string) ([]models.CompletionRecord, error) {
	return q.scanRecords(`
		SELECT `+recordColumns+`
		FROM completion_records WHERE habit_id = ?
		ORDER BY day`, habitID)
}

func (q *Queries) GetRecordsForDay(day time.Time) ([]models.CompletionRecord, error) {
	return q.scanRecords(`
		SELECT `+recordColumns+`
		FROM completion_records WHERE day = ?
		ORDER BY habit_id`, day.Format(constants.DateFormat))
}

func (q *Queries) GetRecordsInRange(habitID string, start, end time.Time) ([]models.CompletionRecord, error) {
	return q.scanRecords(`
		SELECT `+recordColumns+`
		FROM completion_records
		WHERE habit_id = ? AND day >= ? AND day <= ?
		ORDER BY day`,
		habitID, start.Format(constants.DateFormat), end.Format(constants.DateFormat))
}

func (q *Queries) CountOrphanRecords() (int, error) {
	var n int
	err := q.queryRow(`
		SELECT COUNT(*) FROM completion_records r
		WHERE NOT EXISTS (SELECT 1 FROM habits h WHERE h.id = r.habit_id)`).Scan(&n)
	return n, err
}
