package system

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/lock"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	l, err := lock.Acquire(ctx.ConfigDir)
	if errors.Is(err, lock.ErrHeld) {
		return fmt.Errorf("%w; close the other board first", err)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release board lock", "error", err)
		}
	}()

	ctx.PerformAutomaticBackup()

	// Streaks lapse overnight without any write, so refresh on open.
	if _, err := ctx.Tracker.RecomputeAll(); err != nil {
		logger.Warn("Failed to refresh streaks", "error", err)
	}

	p := tea.NewProgram(tui.NewModel(ctx.Tracker), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("board exited with error: %w", err)
	}
	return nil
}
