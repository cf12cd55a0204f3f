package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/utils"
)

// FormModel holds the values edited by the add form
type FormModel struct {
	Name  string
	Kind  constants.HabitKind
	Start string
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("habit name cannot be empty")
	}
	return nil
}

func validateStart(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := utils.ParseDay(s, time.Now())
	return err
}

// NewAddForm builds the interactive form for a new habit or exam plan
func NewAddForm(fm *FormModel) *huh.Form {
	if fm.Kind == "" {
		fm.Kind = constants.HabitKindHabit
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(validateName),
			huh.NewSelect[constants.HabitKind]().
				Title("Kind").
				Options(
					huh.NewOption("Habit", constants.HabitKindHabit),
					huh.NewOption("Exam plan", constants.HabitKindExam),
				).
				Value(&fm.Kind),
			huh.NewInput().
				Title("Start day").
				Description("YYYY-MM-DD, blank for today").
				Value(&fm.Start).
				Validate(validateStart),
		),
	).WithTheme(huh.ThemeDracula())
}
