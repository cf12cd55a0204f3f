package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/tracker"
	"github.com/julianstephens/streakline/internal/tui/components/board"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateStats
	StateAddHabit
	StateConfirmArchive
)

var tabs = []string{"Today", "Stats"}

// HabitFormModel holds the values edited by the add form
type HabitFormModel struct {
	Name string
	Kind constants.HabitKind
}

type Model struct {
	tracker          *tracker.Service
	state            SessionState
	keys             KeyMap
	help             help.Model
	board            board.Model
	entries          []tracker.Entry
	summary          models.Summary
	form             *huh.Form
	habitForm        *HabitFormModel
	habitToArchiveID string
	status           string
	quitting         bool
	width            int
	height           int
}

func NewModel(svc *tracker.Service) Model {
	m := Model{
		tracker: svc,
		state:   StateToday,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		board:   board.New(0, 0),
	}
	m.refresh()
	return m
}

// refresh reloads every active habit's stats and today's outcomes
func (m *Model) refresh() {
	start, end := m.tracker.Window(constants.DefaultStatsDays)
	entries, summary, err := m.tracker.Overview(start, end)
	if err != nil {
		logger.Error("Failed to load habits", "error", err)
		m.status = "⚠ " + err.Error()
		return
	}

	today := make(map[string]bool)
	records, err := m.tracker.Store().GetRecordsForDay(m.tracker.Today())
	if err != nil {
		logger.Error("Failed to load today's records", "error", err)
	}
	for _, r := range records {
		today[r.HabitID] = r.Completed
	}

	items := make([]board.Item, len(entries))
	for i, e := range entries {
		status := board.Unrecorded
		if completed, ok := today[e.Habit.ID]; ok {
			status = board.Missed
			if completed {
				status = board.Done
			}
		}
		items[i] = board.Item{Habit: e.Habit, Stats: e.Stats, Today: status}
	}

	m.entries = entries
	m.summary = summary
	m.board.SetItems(items)
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Tab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Refresh, m.keys.Quit, m.keys.Help}
	keys := board.DefaultKeyMap()
	return [][]key.Binding{global, {keys.Add, keys.Mark, keys.Miss, keys.Archive}}
}

func (m Model) Init() tea.Cmd {
	return m.board.Init()
}
