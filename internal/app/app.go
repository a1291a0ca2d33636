package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pollchat/internal/config"
	"github.com/vovakirdan/pollchat/internal/console"
	"github.com/vovakirdan/pollchat/internal/poller"
	"github.com/vovakirdan/pollchat/internal/remote"
	"github.com/vovakirdan/pollchat/internal/render"
	"github.com/vovakirdan/pollchat/internal/session"
	"github.com/vovakirdan/pollchat/internal/tui"
)

// ErrNothingToSend is returned by Send when the name or text is blank.
var ErrNothingToSend = errors.New("name and text are required")

// App wires the remote client to one of the chat surfaces.
type App struct {
	cfg    config.Config
	loc    *time.Location
	remote *remote.Client
	log    *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolve timezone: %w", err)
	}

	return &App{
		cfg:    cfg,
		loc:    loc,
		remote: remote.NewClient(cfg.Endpoint, cfg.RequestTimeout, logger),
		log:    logger,
	}, nil
}

// RunTUI runs the interactive screen until the user quits or ctx is cancelled.
func (a *App) RunTUI(ctx context.Context) error {
	a.log.Info().Str("endpoint", a.cfg.Endpoint).Dur("interval", a.cfg.PollInterval).Msg("starting chat")

	model := tui.New(ctx, a.remote, tui.Options{
		Name:     a.cfg.Name,
		Location: a.loc,
	}, a.log)
	if err := tui.Run(ctx, model, a.cfg.PollInterval, a.log); err != nil {
		return err
	}

	a.log.Info().Msg("chat closed")
	return nil
}

// RunConsole polls into a line-mode console reading drafts from in.
// The poller is stopped before returning, so no cycle outlives the call.
func (a *App) RunConsole(ctx context.Context, in io.Reader, out io.Writer, colored bool) error {
	c := console.New(in, out, colored, a.log)
	s := a.newSession(c)

	p := poller.New(a.cfg.PollInterval, func(ctx context.Context) {
		s.UpdateMessages(ctx)
	}, a.log)
	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}
	defer p.Stop()

	a.log.Info().Str("endpoint", a.cfg.Endpoint).Str("name", a.cfg.Name).Msg("watching messages")
	return c.Run(ctx, s, p)
}

// List runs one fetch-and-render pass and prints the panel.
// A failed fetch prints an empty panel and is returned so scripts can tell.
func (a *App) List(ctx context.Context, out io.Writer, colored bool) error {
	panel := session.NewMemoryPanel()
	res := a.newSession(panel).UpdateMessages(ctx)

	printUnits(out, panel.Units(), colored)
	if res.Err != nil {
		return fmt.Errorf("fetch messages: %w", res.Err)
	}
	return nil
}

// Send posts text under the configured name, then prints the refreshed panel.
func (a *App) Send(ctx context.Context, text string, out io.Writer, colored bool) error {
	panel := session.NewMemoryPanel()
	s := a.newSession(panel)
	s.SetDraft(text)

	res := s.Send(ctx)
	if res.Skipped {
		return ErrNothingToSend
	}

	printUnits(out, panel.Units(), colored)
	if res.Err != nil {
		return fmt.Errorf("send message: %w", res.Err)
	}
	return nil
}

func (a *App) newSession(panel session.Panel) *session.Session {
	s := session.New(a.remote, panel, session.Options{Location: a.loc}, a.log)
	s.SetName(a.cfg.Name)
	return s
}

func printUnits(out io.Writer, units []render.Unit, colored bool) {
	for _, line := range render.Plain(units, colored) {
		fmt.Fprintln(out, line)
	}
}
