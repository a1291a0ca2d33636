// Package tui is the interactive chat surface: a name field, a draft field and a panel
// that is redrawn from scratch whenever a fetch completes.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pollchat/internal/render"
	"github.com/vovakirdan/pollchat/internal/session"
)

// chrome is the number of lines below the panel: separator, status, name, draft.
const chrome = 4

const (
	focusName = iota
	focusDraft
)

var (
	focusedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// PollMsg asks the model to start a fetch-and-render cycle. The poller sends it.
type PollMsg struct{}

type cycleMsg struct {
	res   session.CycleResult
	units []render.Unit
	at    time.Time
}

type sentMsg struct {
	res   session.SendResult
	units []render.Unit
	at    time.Time
}

// Options configures a Model.
type Options struct {
	Name     string
	Location *time.Location
	Now      func() time.Time
}

// Model is the bubbletea model for the chat screen. The text inputs mirror their values
// into a session, which does the fetching, classifying and sending.
type Model struct {
	ctx    context.Context
	sess   *session.Session
	drawn  *session.MemoryPanel
	styles render.Styles
	loc    *time.Location
	now    func() time.Time
	log    *zerolog.Logger

	name  textinput.Model
	draft textinput.Model
	panel viewport.Model
	focus int
	ready bool
	width int

	units     []render.Unit
	status    string
	statusErr bool
}

// New builds the model. Fetches and sends run under ctx.
func New(ctx context.Context, remote session.Remote, opts Options, logger *zerolog.Logger) Model {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	name := textinput.New()
	name.Prompt = "Name > "
	name.Placeholder = "your display name"
	name.CharLimit = 64
	name.SetValue(opts.Name)

	draft := textinput.New()
	draft.Prompt = "Message > "
	draft.Placeholder = "type and press enter"
	draft.CharLimit = 1000

	drawn := session.NewMemoryPanel()
	sess := session.New(remote, drawn, session.Options{Location: opts.Location, Now: opts.Now}, logger)
	sess.SetName(opts.Name)

	m := Model{
		ctx:    ctx,
		sess:   sess,
		drawn:  drawn,
		styles: render.DefaultStyles(),
		loc:    opts.Location,
		now:    opts.Now,
		log:    logger,
		name:   name,
		draft:  draft,
		status: "loading messages...",
	}
	if opts.Name == "" {
		m.setFocus(focusName)
	} else {
		m.setFocus(focusDraft)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case PollMsg:
		return m, m.fetch()

	case cycleMsg:
		m.show(msg.units, msg.res, msg.at)
		return m, nil

	case sentMsg:
		m.draft.SetValue("")
		m.show(msg.units, msg.res.Refresh, msg.at)
		if msg.res.Err != nil {
			m.setStatus(fmt.Sprintf("send failed: %v", msg.res.Err), true)
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "shift+tab":
		if m.focus == focusName {
			m.setFocus(focusDraft)
		} else {
			m.setFocus(focusName)
		}
		return m, nil
	case "enter":
		if m.focus == focusName {
			m.setFocus(focusDraft)
			return m, nil
		}
		return m, m.send()
	case "ctrl+r":
		return m, m.fetch()
	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, cmd
	}
	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == focusName {
		m.name, cmd = m.name.Update(msg)
		m.sess.SetName(m.name.Value())
	} else {
		m.draft, cmd = m.draft.Update(msg)
		m.sess.SetDraft(m.draft.Value())
	}
	return m, cmd
}

// fetch runs a session cycle off the UI goroutine; whichever cycle completes last wins the panel.
func (m Model) fetch() tea.Cmd {
	ctx, sess, drawn, now := m.ctx, m.sess, m.drawn, m.now
	return func() tea.Msg {
		res := sess.UpdateMessages(ctx)
		return cycleMsg{res: res, units: drawn.Units(), at: now()}
	}
}

// send returns nil when name or text is blank: no request, draft untouched.
func (m Model) send() tea.Cmd {
	if _, ok := session.PrepareSend(m.sess.Name(), m.sess.Draft(), m.now()); !ok {
		return nil
	}
	ctx, sess, drawn, now := m.ctx, m.sess, m.drawn, m.now
	return func() tea.Msg {
		res := sess.Send(ctx)
		return sentMsg{res: res, units: drawn.Units(), at: now()}
	}
}

// show swaps in the units of a finished cycle and reports it on the status line.
func (m *Model) show(units []render.Unit, res session.CycleResult, at time.Time) {
	m.units = units
	m.redraw()
	m.log.Debug().Int("count", len(m.units)).Bool("failed", res.Err != nil).Msg("cycle shown")
	if res.Err != nil {
		m.setStatus(fmt.Sprintf("fetch failed: %v", res.Err), true)
		return
	}
	m.setStatus(fmt.Sprintf("%d messages, updated %s", len(m.units), render.FormatClock(at.In(m.loc))), false)
}

func (m *Model) setFocus(target int) {
	m.focus = target
	if target == focusName {
		m.name.Focus()
		m.name.PromptStyle = focusedStyle
		m.draft.Blur()
		m.draft.PromptStyle = blurredStyle
		return
	}
	m.draft.Focus()
	m.draft.PromptStyle = focusedStyle
	m.name.Blur()
	m.name.PromptStyle = blurredStyle
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) resize(width, height int) {
	panelHeight := height - chrome
	if panelHeight < 1 {
		panelHeight = 1
	}
	m.width = width
	if !m.ready {
		m.panel = viewport.New(width, panelHeight)
		m.ready = true
	} else {
		m.panel.Width = width
		m.panel.Height = panelHeight
	}
	m.name.Width = width - lipgloss.Width(m.name.Prompt) - 1
	m.draft.Width = width - lipgloss.Width(m.draft.Prompt) - 1
	m.redraw()
}

// redraw replaces the panel content wholesale and scrolls to the newest unit.
func (m *Model) redraw() {
	if !m.ready {
		return
	}
	m.panel.SetContent(m.styles.Panel(m.units, m.width))
	m.panel.GotoBottom()
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "starting...\n"
	}

	status := statusStyle.Render(m.status)
	if m.statusErr {
		status = statusErrStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.panel.View(),
		blurredStyle.Render(separator(m.width)),
		status,
		m.name.View(),
		m.draft.View(),
	)
}

func separator(width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat("-", width)
}
