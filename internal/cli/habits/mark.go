package habits

import (
	"fmt"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/utils"
)

type HabitMarkCmd struct {
	Name string `arg:"" help:"Habit name."`
	Date string `help:"Day in YYYY-MM-DD format, or today/yesterday (default: today)."`
	Note string `help:"Optional note for this entry."`
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	return mark(ctx, c.Name, c.Date, c.Note, true)
}

type HabitMissCmd struct {
	Name string `arg:"" help:"Habit name."`
	Date string `help:"Day in YYYY-MM-DD format, or today/yesterday (default: today)."`
	Note string `help:"Optional note for this entry."`
}

func (c *HabitMissCmd) Run(ctx *cli.Context) error {
	return mark(ctx, c.Name, c.Date, c.Note, false)
}

func mark(ctx *cli.Context, name, date, note string, completed bool) error {
	habit, err := ctx.Tracker.Resolve(name)
	if err != nil {
		return err
	}
	day, err := utils.ParseDay(date, ctx.Tracker.Today())
	if err != nil {
		return err
	}

	stats, err := ctx.Tracker.Mark(habit.ID, day, completed, note)
	if err != nil {
		return err
	}

	verb := "Marked"
	if !completed {
		verb = "Missed"
	}
	fmt.Printf("%s %q for %s\n", verb, habit.Name, utils.FormatDay(day))
	fmt.Println(renderStreaks(stats))
	return nil
}
