// Package session is the headless chat page: two input values, a panel it fully owns,
// and the fetch-and-render and send actions that tie them to the remote endpoint.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pollchat/internal/chat"
	"github.com/vovakirdan/pollchat/internal/render"
)

// Remote is the slice of the endpoint client a session needs.
type Remote interface {
	FetchMessages(ctx context.Context) ([]chat.Message, error)
	PostMessage(ctx context.Context, draft chat.Draft) error
}

// Panel is the scrollable container a session redraws on every cycle.
// Implementations must tolerate calls from the poller goroutine.
type Panel interface {
	// Replace clears the panel and draws units in order.
	Replace(units []render.Unit)
	// ScrollToBottom moves to the maximum scroll offset.
	ScrollToBottom()
}

// CycleResult describes one fetch-and-render pass. Err is the swallowed fetch failure, if any.
type CycleResult struct {
	Count int
	Err   error
}

// SendResult describes one send action.
type SendResult struct {
	// Skipped is true when name or text was blank and nothing was sent.
	Skipped bool
	Draft   chat.Draft
	Err     error
	Refresh CycleResult
}

// Options tweaks a session. Zero values mean local time and the wall clock.
type Options struct {
	Location *time.Location
	Now      func() time.Time
}

// Session holds the name and draft inputs and drives the panel.
type Session struct {
	remote Remote
	panel  Panel
	loc    *time.Location
	now    func() time.Time
	log    *zerolog.Logger

	mu    sync.Mutex
	name  string
	draft string
}

// New builds a session drawing into panel.
func New(remote Remote, panel Panel, opts Options, logger *zerolog.Logger) *Session {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		remote: remote,
		panel:  panel,
		loc:    opts.Location,
		now:    opts.Now,
		log:    logger,
	}
}

// Name returns the current value of the name input.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName replaces the name input. Takes effect on the next render.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// Draft returns the current value of the draft input.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the draft input.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// UpdateMessages fetches the full list, redraws the panel from scratch and scrolls to the end.
// A failed fetch draws an empty panel; the error is only reported in the result.
func (s *Session) UpdateMessages(ctx context.Context) CycleResult {
	msgs, err := s.remote.FetchMessages(ctx)

	units := render.FormatAll(msgs, s.Name(), s.loc)
	s.panel.Replace(units)
	s.panel.ScrollToBottom()

	s.log.Debug().Int("count", len(units)).AnErr("fetch_err", err).Msg("panel redrawn")
	return CycleResult{Count: len(units), Err: err}
}

// Send posts the draft under the current name, then clears the draft and refreshes once.
// Blank name or text makes it a no-op. A failed post still clears the draft.
func (s *Session) Send(ctx context.Context) SendResult {
	draft, ok := PrepareSend(s.Name(), s.Draft(), s.now())
	if !ok {
		s.log.Debug().Msg("send skipped: empty name or text")
		return SendResult{Skipped: true}
	}

	err := s.remote.PostMessage(ctx, draft)
	s.SetDraft("")

	return SendResult{
		Draft:   draft,
		Err:     err,
		Refresh: s.UpdateMessages(ctx),
	}
}

// PrepareSend trims both inputs and stamps a draft with now.
// It reports false when either trimmed value is empty.
func PrepareSend(name, text string, now time.Time) (chat.Draft, bool) {
	sender := strings.TrimSpace(name)
	body := strings.TrimSpace(text)
	if sender == "" || body == "" {
		return chat.Draft{}, false
	}
	return chat.NewDraft(sender, body, now), true
}
