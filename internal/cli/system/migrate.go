package system

import (
	"fmt"

	"github.com/julianstephens/streakline/internal/cli"
)

// migrator is implemented by both SQL stores
type migrator interface {
	Migrate() (int, error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return fmt.Errorf("storage backend does not support migrations")
	}

	ctx.PerformAutomaticBackup()
	count, err := m.Migrate()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
		return nil
	}

	fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	changed, err := ctx.Tracker.RecomputeAll()
	if err != nil {
		return fmt.Errorf("failed to refresh streaks after migration: %w", err)
	}
	if changed > 0 {
		fmt.Printf("Refreshed cached streaks for %d habit(s).\n", changed)
	}
	return nil
}
