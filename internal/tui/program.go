package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pollchat/internal/poller"
)

// Run shows the model full-screen and polls every interval until the user quits or ctx ends.
// The poller only posts PollMsg into the program; the fetch itself runs as a tea.Cmd.
// Extra options are appended after the defaults.
func Run(ctx context.Context, model Model, interval time.Duration, logger *zerolog.Logger, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(model, opts...)

	p := poller.New(interval, func(context.Context) {
		program.Send(PollMsg{})
	}, logger)
	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}
	defer p.Stop()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
