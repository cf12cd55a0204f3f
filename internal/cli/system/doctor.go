package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/lock"
	"github.com/julianstephens/streakline/internal/streak"
)

type DoctorCmd struct {
	Fix bool `help:"Repair stale cached streaks."`
}

type check struct {
	name     string
	needsDB  bool
	warnOnly bool
	run      func(*cli.Context) error
}

func (cmd *DoctorCmd) checks() []check {
	return []check{
		{name: "Database reachable", run: checkDBReachable},
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Orphan records", needsDB: true, run: checkOrphans},
		{name: "Record integrity", needsDB: true, run: checkRecords},
		{name: "Cached streaks", needsDB: true, run: cmd.checkStreaks},
		{name: "Clock/timezone", run: checkClockTimezone},
		{name: "Board lock", warnOnly: true, run: checkLock},
		{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	}
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false
	for _, c := range cmd.checks() {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
		if c.name == "Database reachable" {
			dbReachable = err == nil
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	_, err := ctx.Store.GetAllHabits(true, true)
	return err
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind %d, run 'streakline migrate'", current, latest)
	}
	if current > latest {
		return fmt.Errorf("schema version %d is newer than this binary supports (%d)", current, latest)
	}
	return nil
}

func checkOrphans(ctx *cli.Context) error {
	n, err := ctx.Store.CountOrphanRecords()
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%d completion record(s) reference missing habits", n)
	}
	return nil
}

func checkRecords(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(true, true)
	if err != nil {
		return err
	}
	for _, h := range habits {
		records, err := ctx.Store.GetRecordsForHabit(h.ID)
		if err != nil {
			return fmt.Errorf("habit %s: %w", h.Name, err)
		}
		if err := streak.Validate(h.ID, records); err != nil {
			return fmt.Errorf("habit %s: %w", h.Name, err)
		}
	}
	return nil
}

// checkStreaks compares cached streaks with a fresh computation and,
// with --fix, writes the fresh values back.
func (cmd *DoctorCmd) checkStreaks(ctx *cli.Context) error {
	if cmd.Fix {
		changed, err := ctx.Tracker.RecomputeAll()
		if err != nil {
			return err
		}
		if changed > 0 {
			fmt.Printf("   Refreshed %d habit(s)\n", changed)
		}
		return nil
	}

	habits, err := ctx.Store.GetAllHabits(true, false)
	if err != nil {
		return err
	}
	today := ctx.Tracker.Today()
	stale := 0
	for _, h := range habits {
		records, err := ctx.Store.GetRecordsForHabit(h.ID)
		if err != nil {
			return err
		}
		fresh := streak.Recompute(h, records, today)
		if fresh.CurrentStreak != h.CurrentStreak || fresh.LongestStreak != h.LongestStreak {
			stale++
		}
	}
	if stale > 0 {
		return fmt.Errorf("%d habit(s) have stale cached streaks, run 'streakline doctor --fix'", stale)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if ctx.Tracker.Today().IsZero() {
		return fmt.Errorf("could not determine today's date")
	}
	return nil
}

func checkLock(ctx *cli.Context) error {
	holder, err := lock.Inspect(ctx.ConfigDir)
	if err != nil {
		return err
	}
	if holder != nil && !holder.Alive {
		return fmt.Errorf("stale board lock left by pid %d, it will be cleared on next launch", holder.PID)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := ctx.Backups()
	if mgr == nil {
		return nil
	}
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.Dir())
	}
	return nil
}
