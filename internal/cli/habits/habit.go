package habits

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/storage"
	"github.com/julianstephens/streakline/internal/utils"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit or exam plan."`
	List    HabitListCmd    `cmd:"" help:"List habits with their streaks."`
	Mark    HabitMarkCmd    `cmd:"" help:"Mark a habit as completed for a day."`
	Miss    HabitMissCmd    `cmd:"" help:"Mark a habit as not completed for a day."`
	Stats   HabitStatsCmd   `cmd:"" help:"Show streaks and completion rate."`
	Log     HabitLogCmd     `cmd:"" help:"Show habit log (ASCII history)."`
	Archive HabitArchiveCmd `cmd:"" help:"Archive a habit."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit (soft delete)."`
	Restore HabitRestoreCmd `cmd:"" help:"Restore a deleted habit."`
	Purge   HabitPurgeCmd   `cmd:"" help:"Permanently remove a habit and its history."`
}

type HabitAddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name."`
	Kind        string `help:"Kind of entity: habit or exam." enum:"habit,exam" default:"habit"`
	Start       string `help:"Start day in YYYY-MM-DD format (default: today)."`
	Interactive bool   `short:"i" help:"Fill in the habit with an interactive form."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if c.Interactive {
		fm := &FormModel{Name: c.Name, Kind: constants.HabitKind(c.Kind), Start: c.Start}
		if err := NewAddForm(fm).Run(); err != nil {
			return err
		}
		c.Name, c.Kind, c.Start = fm.Name, string(fm.Kind), fm.Start
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("habit name is required (pass NAME or use -i)")
	}

	var start time.Time
	if c.Start != "" {
		day, err := utils.ParseDay(c.Start, ctx.Tracker.Today())
		if err != nil {
			return err
		}
		start = day
	}

	habit, err := ctx.Tracker.AddHabit(c.Name, constants.HabitKind(c.Kind), start)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s: %s (starting %s)\n", habit.Kind, habit.Name, utils.FormatDay(habit.StartDay))
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
	Deleted  bool `help:"Include deleted habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(c.Archived, c.Deleted)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}
	fmt.Print(renderList(habits))
	return nil
}

type HabitArchiveCmd struct {
	Name      string `arg:"" help:"Habit name to archive."`
	Unarchive bool   `help:"Unarchive the habit instead."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Resolve(c.Name)
	if err != nil {
		return err
	}

	if c.Unarchive {
		if err := ctx.Store.UnarchiveHabit(habit.ID); err != nil {
			return err
		}
		// The streak may have lapsed while archived.
		if _, err := ctx.Tracker.Recompute(habit.ID); err != nil {
			return err
		}
		fmt.Printf("Unarchived habit: %s\n", habit.Name)
		return nil
	}

	if err := ctx.Store.ArchiveHabit(habit.ID); err != nil {
		return err
	}
	fmt.Printf("Archived habit: %s\n", habit.Name)
	return nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Resolve(c.Name)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", habit.Name)
	fmt.Printf("(This is a soft delete. Use '%s habit restore' to undo)\n", constants.AppName)
	return nil
}

// findDeleted returns the most recently deleted habit with the given name
func findDeleted(store storage.Provider, name string) (models.Habit, error) {
	habits, err := store.GetAllHabits(true, true)
	if err != nil {
		return models.Habit{}, err
	}

	var found *models.Habit
	for i := range habits {
		h := habits[i]
		if h.Name != name || h.DeletedAt == nil {
			continue
		}
		if found == nil || h.DeletedAt.After(*found.DeletedAt) {
			found = &h
		}
	}
	if found == nil {
		return models.Habit{}, fmt.Errorf("deleted habit %q: %w", name, storage.ErrNotFound)
	}
	return *found, nil
}

type HabitRestoreCmd struct {
	Name string `arg:"" help:"Habit name to restore."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	habit, err := findDeleted(ctx.Store, c.Name)
	if err != nil {
		return err
	}
	if _, err := ctx.Store.GetHabitByName(c.Name); err == nil {
		return fmt.Errorf("cannot restore %q: a live habit already uses that name", c.Name)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if err := ctx.Store.RestoreHabit(habit.ID); err != nil {
		return err
	}
	if _, err := ctx.Tracker.Recompute(habit.ID); err != nil {
		return err
	}
	fmt.Printf("Restored habit: %s\n", habit.Name)
	return nil
}

type HabitPurgeCmd struct {
	Name string `arg:"" help:"Habit name to purge. Deleted habits are matched too."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitPurgeCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Resolve(c.Name)
	if errors.Is(err, storage.ErrNotFound) {
		habit, err = findDeleted(ctx.Store, c.Name)
	}
	if err != nil {
		return err
	}

	if !c.Yes && !cli.Confirm(fmt.Sprintf("Permanently remove %q and all of its records?", habit.Name)) {
		fmt.Println("Purge cancelled.")
		return nil
	}

	saved, err := ctx.Tracker.Purge(habit.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Purged habit: %s\n", habit.Name)
	if saved != "" {
		fmt.Printf("Backup saved to: %s\n", saved)
	}
	return nil
}
