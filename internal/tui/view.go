package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streakline/internal/constants"
)

// NewHabitForm creates the form for adding habits
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[constants.HabitKind]().
				Title("Kind").
				Options(
					huh.NewOption("Habit", constants.HabitKindHabit),
					huh.NewOption("Exam plan", constants.HabitKindExam),
				).
				Value(&fm.Kind),
		),
	).WithTheme(huh.ThemeDracula())
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateToday:
		content = docStyle.Render(m.board.View())
	case StateStats:
		content = docStyle.Render(m.viewStats())
	case StateAddHabit:
		content = docStyle.Render(m.form.View())
	case StateConfirmArchive:
		content = m.viewConfirmArchive()
	}

	parts := []string{m.viewTabs(), content}
	if m.status != "" {
		parts = append(parts, warningStyle.Render(m.status))
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var rendered []string
	for i, title := range tabs {
		active := m.state == SessionState(i) ||
			(i == int(StateToday) && (m.state == StateAddHabit || m.state == StateConfirmArchive))
		if active {
			rendered = append(rendered, activeTabStyle.Render(title))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) viewStats() string {
	if len(m.entries) == 0 {
		return "No habits yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s/%d   %s %s   %s %s   %s %s\n\n",
		labelStyle.Render("done today"), valueStyle.Render(fmt.Sprint(m.summary.CompletedToday)), m.summary.Habits,
		labelStyle.Render("mean rate"), valueStyle.Render(fmt.Sprintf("%.0f%%", m.summary.MeanRate*100)),
		labelStyle.Render("best current"), valueStyle.Render(fmt.Sprint(m.summary.BestCurrent)),
		labelStyle.Render("best longest"), valueStyle.Render(fmt.Sprint(m.summary.BestLongest)))

	for _, e := range m.entries {
		filled := int(e.Stats.CompletionRate*20 + 0.5)
		fmt.Fprintf(&b, "%-20s %s%s %3.0f%%  streak %d  best %d\n",
			e.Habit.Name,
			valueStyle.Render(strings.Repeat("█", filled)),
			labelStyle.Render(strings.Repeat("░", 20-filled)),
			e.Stats.CompletionRate*100, e.Stats.CurrentStreak, e.Stats.LongestStreak)
	}
	fmt.Fprintf(&b, "\n%s", labelStyle.Render(fmt.Sprintf("completion over the last %d days", constants.DefaultStatsDays)))
	return b.String()
}

func (m Model) viewConfirmArchive() string {
	name := m.habitToArchiveID
	for _, e := range m.entries {
		if e.Habit.ID == m.habitToArchiveID {
			name = e.Habit.Name
		}
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Archive %q?", name)),
			"",
			"Its history is kept; unarchive with 'streakline habit archive --unarchive'.",
			"",
			"[y] Archive   [n] Cancel",
		),
	)
}
