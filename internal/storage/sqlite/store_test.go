package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/storage"
	"github.com/julianstephens/streakline/internal/utils"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testHabit(id, name string) models.Habit {
	return models.Habit{
		ID:        id,
		Name:      name,
		Kind:      constants.HabitKindHabit,
		StartDay:  utils.MustParseDay("2025-01-01"),
		CreatedAt: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func testRecord(id, habitID, day string, completed bool, at time.Time) models.CompletionRecord {
	return models.CompletionRecord{
		ID:        id,
		HabitID:   habitID,
		Day:       utils.MustParseDay(day),
		Completed: completed,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestHabitRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	h := testHabit("h1", "Read")
	h.Kind = constants.HabitKindExam
	h.CurrentStreak = 2
	h.LongestStreak = 7
	if err := store.AddHabit(h); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	got, err := store.GetHabit("h1")
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got.Name != "Read" || got.Kind != constants.HabitKindExam {
		t.Errorf("unexpected habit: %+v", got)
	}
	if !got.StartDay.Equal(h.StartDay) || !got.CreatedAt.Equal(h.CreatedAt) {
		t.Errorf("dates did not round trip: %+v", got)
	}
	if got.CurrentStreak != 2 || got.LongestStreak != 7 {
		t.Errorf("expected streaks 2/7, got %d/%d", got.CurrentStreak, got.LongestStreak)
	}

	byName, err := store.GetHabitByName("Read")
	if err != nil {
		t.Fatalf("failed to get habit by name: %v", err)
	}
	if byName.ID != "h1" {
		t.Errorf("expected h1, got %s", byName.ID)
	}

	if _, err := store.GetHabit("missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateHabitStreaks(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddHabit(testHabit("h1", "Run")); err != nil {
		t.Fatal(err)
	}

	if err := store.UpdateHabitStreaks("h1", 3, 9); err != nil {
		t.Fatalf("failed to update streaks: %v", err)
	}
	got, _ := store.GetHabit("h1")
	if got.CurrentStreak != 3 || got.LongestStreak != 9 {
		t.Errorf("expected 3/9, got %d/%d", got.CurrentStreak, got.LongestStreak)
	}

	if err := store.UpdateHabitStreaks("missing", 1, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHabitLifecycle(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddHabit(testHabit("h1", "Stretch")); err != nil {
		t.Fatal(err)
	}

	if err := store.ArchiveHabit("h1"); err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if err := store.ArchiveHabit("h1"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("expected ErrConflict on double archive, got %v", err)
	}

	active, err := store.GetAllHabits(false, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Errorf("expected archived habit hidden, got %d habits", len(active))
	}
	withArchived, _ := store.GetAllHabits(true, false)
	if len(withArchived) != 1 || withArchived[0].ArchivedAt == nil {
		t.Fatalf("expected one archived habit, got %+v", withArchived)
	}

	if err := store.UnarchiveHabit("h1"); err != nil {
		t.Fatalf("unarchive failed: %v", err)
	}
	if err := store.UnarchiveHabit("h1"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("expected ErrConflict on double unarchive, got %v", err)
	}

	if err := store.DeleteHabit("h1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetHabit("h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected deleted habit to be hidden, got %v", err)
	}
	if err := store.DeleteHabit("h1"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("expected ErrConflict on double delete, got %v", err)
	}
	deleted, _ := store.GetAllHabits(true, true)
	if len(deleted) != 1 || deleted[0].DeletedAt == nil {
		t.Fatalf("expected one deleted habit, got %+v", deleted)
	}

	if err := store.RestoreHabit("h1"); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if _, err := store.GetHabit("h1"); err != nil {
		t.Errorf("expected restored habit, got %v", err)
	}
	if err := store.RestoreHabit("h1"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("expected ErrConflict on double restore, got %v", err)
	}
}

func TestHabitNameUniqueAmongLiveHabits(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddHabit(testHabit("h1", "Meditate")); err != nil {
		t.Fatal(err)
	}
	if err := store.AddHabit(testHabit("h2", "Meditate")); err == nil {
		t.Fatal("expected duplicate live name to be rejected")
	}

	if err := store.DeleteHabit("h1"); err != nil {
		t.Fatal(err)
	}
	if err := store.AddHabit(testHabit("h2", "Meditate")); err != nil {
		t.Fatalf("expected name reuse after delete, got %v", err)
	}
}

func TestUpsertRecordUpdatesInPlace(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddHabit(testHabit("h1", "Read")); err != nil {
		t.Fatal(err)
	}

	first := time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)
	if err := store.UpsertRecord(testRecord("r1", "h1", "2025-01-05", true, first)); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	second := testRecord("r2", "h1", "2025-01-05", false, first.Add(time.Hour))
	second.Note = "sick"
	if err := store.UpsertRecord(second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	records, err := store.GetRecordsForHabit("h1")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record per habit and day, got %d", len(records))
	}
	r := records[0]
	if r.ID != "r1" {
		t.Errorf("expected original id r1 to be kept, got %s", r.ID)
	}
	if r.Completed || r.Note != "sick" {
		t.Errorf("expected updated outcome, got %+v", r)
	}
	if !r.CreatedAt.Equal(first) || !r.UpdatedAt.Equal(first.Add(time.Hour)) {
		t.Errorf("unexpected timestamps: created %v updated %v", r.CreatedAt, r.UpdatedAt)
	}

	got, err := store.GetRecord("h1", utils.MustParseDay("2025-01-05"))
	if err != nil || got.ID != "r1" {
		t.Errorf("GetRecord: got %+v, %v", got, err)
	}
	if _, err := store.GetRecord("h1", utils.MustParseDay("2025-01-06")); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordQueries(t *testing.T) {
	store := setupTestStore(t)
	for _, h := range []models.Habit{testHabit("h1", "Read"), testHabit("h2", "Run")} {
		if err := store.AddHabit(h); err != nil {
			t.Fatal(err)
		}
	}

	at := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	for i, r := range []models.CompletionRecord{
		testRecord("a", "h1", "2025-01-03", true, at),
		testRecord("b", "h1", "2025-01-01", true, at),
		testRecord("c", "h1", "2025-01-02", false, at),
		testRecord("d", "h2", "2025-01-02", true, at),
	} {
		if err := store.UpsertRecord(r); err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
	}

	all, _ := store.GetRecordsForHabit("h1")
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if !all[i-1].Day.Before(all[i].Day) {
			t.Errorf("records not ordered by day: %v then %v", all[i-1].Day, all[i].Day)
		}
	}

	inRange, _ := store.GetRecordsInRange("h1", utils.MustParseDay("2025-01-02"), utils.MustParseDay("2025-01-03"))
	if len(inRange) != 2 {
		t.Errorf("expected 2 records in range, got %d", len(inRange))
	}

	onDay, _ := store.GetRecordsForDay(utils.MustParseDay("2025-01-02"))
	if len(onDay) != 2 || onDay[0].HabitID != "h1" || onDay[1].HabitID != "h2" {
		t.Errorf("unexpected records for day: %+v", onDay)
	}
}

func TestPurgeHabitRemovesRecords(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddHabit(testHabit("h1", "Read")); err != nil {
		t.Fatal(err)
	}
	at := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	if err := store.UpsertRecord(testRecord("r1", "h1", "2025-01-01", true, at)); err != nil {
		t.Fatal(err)
	}

	if err := store.PurgeHabit("h1"); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if _, err := store.GetHabit("h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected habit gone, got %v", err)
	}
	records, _ := store.GetRecordsForHabit("h1")
	if len(records) != 0 {
		t.Errorf("expected records purged, got %d", len(records))
	}
	orphans, err := store.CountOrphanRecords()
	if err != nil || orphans != 0 {
		t.Errorf("expected no orphans, got %d (%v)", orphans, err)
	}

	if err := store.PurgeHabit("h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second purge, got %v", err)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	store := setupTestStore(t)
	at := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	if err := store.UpsertRecord(testRecord("r1", "nope", "2025-01-01", true, at)); err == nil {
		t.Error("expected record for unknown habit to be rejected")
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Fatal("expected Load to fail before Init")
	}
}

func TestSchemaVersionAfterInit(t *testing.T) {
	store := setupTestStore(t)
	current, latest, err := store.SchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if current != latest || latest < 1 {
		t.Errorf("expected schema at latest, got %d/%d", current, latest)
	}

	applied, err := store.Migrate()
	if err != nil || applied != 0 {
		t.Errorf("expected no pending migrations, got %d (%v)", applied, err)
	}

	reopened := NewStore(store.GetConfigPath())
	if err := reopened.Load(); err != nil {
		t.Fatalf("failed to load existing store: %v", err)
	}
	reopened.Close()
}
