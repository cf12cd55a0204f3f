package habits

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/utils"
)

const nameWidth = 20

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	streakStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

func padName(name string) string {
	if len(name) > nameWidth {
		return name[:nameWidth-3] + "..."
	}
	return name + strings.Repeat(" ", nameWidth-len(name))
}

func status(h models.Habit) string {
	switch {
	case h.DeletedAt != nil:
		return missStyle.Render(" [DELETED]")
	case h.ArchivedAt != nil:
		return mutedStyle.Render(" [ARCHIVED]")
	}
	return ""
}

func renderList(habits []models.Habit) string {
	var b strings.Builder
	for _, h := range habits {
		fmt.Fprintf(&b, "%s %s  current %s  longest %d%s\n",
			padName(h.Name),
			labelStyle.Render(fmt.Sprintf("%-5s", h.Kind)),
			streakStyle.Render(fmt.Sprintf("%3d", h.CurrentStreak)),
			h.LongestStreak,
			status(h))
	}
	return b.String()
}

func renderStreaks(s models.Stats) string {
	return fmt.Sprintf("%s %s  %s %d",
		labelStyle.Render("current streak"), streakStyle.Render(fmt.Sprint(s.CurrentStreak)),
		labelStyle.Render("longest"), s.LongestStreak)
}

func renderStats(h models.Habit, s models.Stats) string {
	p := s.Progress
	lines := []string{
		titleStyle.Render(h.Name) + mutedStyle.Render(" ("+string(h.Kind)+")"),
		renderStreaks(s),
		fmt.Sprintf("%s %.1f%% %s",
			labelStyle.Render("completion"), s.CompletionRate*100,
			mutedStyle.Render(fmt.Sprintf("(%s to %s)", utils.FormatDay(p.Start), utils.FormatDay(p.End)))),
		fmt.Sprintf("%s %d  %s %d  %s %d  %s %d",
			labelStyle.Render("days"), p.TotalDays,
			doneStyle.Render("done"), p.CompletedDays,
			missStyle.Render("missed"), p.MissedDays,
			mutedStyle.Render("unrecorded"), p.UnrecordedDays),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderSummary(sum models.Summary) string {
	return boxStyle.Render(strings.Join([]string{
		titleStyle.Render("Summary"),
		fmt.Sprintf("%s %d/%d", labelStyle.Render("completed today"), sum.CompletedToday, sum.Habits),
		fmt.Sprintf("%s %.1f%%", labelStyle.Render("mean completion"), sum.MeanRate*100),
		fmt.Sprintf("%s %s  %s %d",
			labelStyle.Render("best current"), streakStyle.Render(fmt.Sprint(sum.BestCurrent)),
			labelStyle.Render("best longest"), sum.BestLongest),
	}, "\n"))
}

// renderLog draws one row per habit with a cell per day from start:
// x for completed, - for missed, . for unrecorded.
func renderLog(habits []models.Habit, records map[string][]models.CompletionRecord, start time.Time, days int) string {
	var b strings.Builder

	b.WriteString(padName("Habit"))
	for i := 0; i < days; i++ {
		fmt.Fprintf(&b, " %5s", start.AddDate(0, 0, i).Format("01/02"))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", nameWidth+6*days))
	b.WriteString("\n")

	for _, h := range habits {
		outcome := make(map[string]bool)
		for _, r := range records[h.ID] {
			outcome[utils.FormatDay(r.Day)] = r.Completed
		}

		b.WriteString(padName(h.Name))
		for i := 0; i < days; i++ {
			completed, ok := outcome[utils.FormatDay(start.AddDate(0, 0, i))]
			switch {
			case !ok:
				b.WriteString("  " + mutedStyle.Render(".") + "   ")
			case completed:
				b.WriteString("  " + doneStyle.Render("x") + "   ")
			default:
				b.WriteString("  " + missStyle.Render("-") + "   ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
