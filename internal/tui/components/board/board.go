package board

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streakline/internal/models"
)

// DayStatus is a habit's outcome for today
type DayStatus int

const (
	Unrecorded DayStatus = iota
	Done
	Missed
)

type AddHabitMsg struct{}

// MarkMsg asks to record today's outcome for a habit
type MarkMsg struct {
	ID        string
	Completed bool
}

type ArchiveHabitMsg struct {
	ID string
}

type Item struct {
	Habit models.Habit
	Stats models.Stats
	Today DayStatus
}

func (i Item) Title() string {
	switch i.Today {
	case Done:
		return "✓ " + i.Habit.Name
	case Missed:
		return "✗ " + i.Habit.Name
	}
	return "○ " + i.Habit.Name
}

func (i Item) Description() string {
	return fmt.Sprintf("%s · streak %d · best %d · %.0f%%",
		i.Habit.Kind, i.Stats.CurrentStreak, i.Stats.LongestStreak, i.Stats.CompletionRate*100)
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add     key.Binding
	Mark    key.Binding
	Miss    key.Binding
	Archive key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Mark: key.NewBinding(
			key.WithKeys("m", " "),
			key.WithHelp("m/space", "mark done"),
		),
		Miss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "mark missed"),
		),
		Archive: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "archive"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	bindings := func() []key.Binding {
		return []key.Binding{keys.Add, keys.Mark, keys.Miss, keys.Archive}
	}
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings

	return Model{list: l, keys: keys}
}

func (m *Model) SetItems(items []Item) {
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}
	m.list.SetItems(listItems)
}

func (m Model) Items() []Item {
	var out []Item
	for _, it := range m.list.Items() {
		if i, ok := it.(Item); ok {
			out = append(out, i)
		}
	}
	return out
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		selected, hasSelection := m.list.SelectedItem().(Item)
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Mark) && hasSelection:
			// Marking a done habit again toggles it back to missed.
			completed := selected.Today != Done
			return m, func() tea.Msg { return MarkMsg{ID: selected.Habit.ID, Completed: completed} }
		case key.Matches(msg, m.keys.Miss) && hasSelection:
			return m, func() tea.Msg { return MarkMsg{ID: selected.Habit.ID, Completed: false} }
		case key.Matches(msg, m.keys.Archive) && hasSelection:
			return m, func() tea.Msg { return ArchiveHabitMsg{ID: selected.Habit.ID} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
