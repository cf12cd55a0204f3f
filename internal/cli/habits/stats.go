package habits

import (
	"fmt"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/models"
)

type HabitStatsCmd struct {
	Name string `arg:"" optional:"" help:"Habit name (default: all active habits)."`
	Days int    `help:"Number of days, ending today, used for the completion rate." default:"30"`
}

func (c *HabitStatsCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return errors.Invalidf("--days must be at least 1, got %d", c.Days)
	}
	start, end := ctx.Tracker.Window(c.Days)

	if c.Name != "" {
		habit, err := ctx.Tracker.Resolve(c.Name)
		if err != nil {
			return err
		}
		stats, err := ctx.Tracker.Stats(habit.ID, start, end)
		if err != nil {
			return err
		}
		fmt.Println(renderStats(habit, stats))
		return nil
	}

	entries, summary, err := ctx.Tracker.Overview(start, end)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No habits found.")
		return nil
	}
	for _, e := range entries {
		fmt.Println(renderStats(e.Habit, e.Stats))
	}
	fmt.Println(renderSummary(summary))
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		c.Days = constants.DefaultLogDays
	}

	var habits []models.Habit
	if c.Habit != "" {
		habit, err := ctx.Tracker.Resolve(c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{habit}
	} else {
		all, err := ctx.Store.GetAllHabits(false, false)
		if err != nil {
			return err
		}
		habits = all
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	start, end := ctx.Tracker.Window(c.Days)
	records := make(map[string][]models.CompletionRecord, len(habits))
	for _, h := range habits {
		rs, err := ctx.Store.GetRecordsInRange(h.ID, start, end)
		if err != nil {
			return err
		}
		records[h.ID] = rs
	}

	fmt.Printf("Habit log (last %d days):\n\n", c.Days)
	fmt.Print(renderLog(habits, records, start, c.Days))
	return nil
}
