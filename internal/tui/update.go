package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/tui/components/board"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.board.SetSize(msg.Width-4, msg.Height-6)
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmArchive:
		return m.updateConfirmArchive(msg)
	}

	switch msg := msg.(type) {
	case board.AddHabitMsg:
		m.habitForm = &HabitFormModel{Kind: constants.HabitKindHabit}
		m.form = NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case board.MarkMsg:
		if _, err := m.tracker.Mark(msg.ID, m.tracker.Today(), msg.Completed, ""); err != nil {
			logger.Error("Failed to mark habit", "habit", msg.ID, "error", err)
			m.status = "⚠ " + err.Error()
			return m, nil
		}
		m.status = ""
		m.refresh()
		return m, nil

	case board.ArchiveHabitMsg:
		m.habitToArchiveID = msg.ID
		m.state = StateConfirmArchive
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % SessionState(len(tabs))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + SessionState(len(tabs))) % SessionState(len(tabs))
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
			return m, nil
		}
	}

	if m.state == StateToday {
		var cmd tea.Cmd
		m.board, cmd = m.board.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateToday
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if _, err := m.tracker.AddHabit(m.habitForm.Name, m.habitForm.Kind, m.tracker.Today()); err != nil {
			// Stay in the form so the user can fix the name or cancel.
			m.status = "⚠ " + err.Error()
			m.form.State = huh.StateNormal
			return m, cmd
		}
		m.status = ""
		m.refresh()
		m.state = StateToday
	case huh.StateAborted:
		m.state = StateToday
	}
	return m, cmd
}

func (m Model) updateConfirmArchive(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if err := m.tracker.Store().ArchiveHabit(m.habitToArchiveID); err != nil {
			m.status = "⚠ " + err.Error()
		} else {
			m.status = ""
			m.refresh()
		}
		m.habitToArchiveID = ""
		m.state = StateToday
	case key.Matches(keyMsg, m.keys.Cancel):
		m.habitToArchiveID = ""
		m.state = StateToday
	}
	return m, nil
}
