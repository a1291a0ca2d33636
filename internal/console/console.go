// Package console is the line-mode chat surface for plain terminals and pipes.
//
// Each poll cycle prints the whole panel again under a separator. Lines read from input are
// drafts; a few slash commands stand in for the name field and the refresh button.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pollchat/internal/render"
	"github.com/vovakirdan/pollchat/internal/session"
)

// Refresher requests an out-of-cycle poll.
type Refresher interface {
	Trigger()
}

// Console writes snapshots to out and reads drafts from in.
type Console struct {
	out     io.Writer
	in      io.Reader
	colored bool
	log     *zerolog.Logger

	mu sync.Mutex
}

// New builds a console. colored enables ANSI colors in the panel output.
func New(in io.Reader, out io.Writer, colored bool, logger *zerolog.Logger) *Console {
	return &Console{
		out:     out,
		in:      in,
		colored: colored,
		log:     logger,
	}
}

// Replace implements session.Panel by printing a full snapshot.
func (c *Console) Replace(units []render.Unit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "---- %d messages ----\n", len(units))
	for _, line := range render.Plain(units, c.colored) {
		fmt.Fprintln(c.out, line)
	}
}

// ScrollToBottom implements session.Panel. Output already ends at the newest line.
func (c *Console) ScrollToBottom() {}

// Printf writes a line outside the panel, serialised with snapshots.
func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Run reads input until EOF, "/quit", or ctx ends.
// Plain lines are sent as drafts under the session's name.
func (c *Console) Run(ctx context.Context, s *session.Session, refresher Refresher) error {
	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			if quit := c.handle(ctx, s, refresher, line); quit {
				return nil
			}
		}
	}
}

func (c *Console) handle(ctx context.Context, s *session.Session, refresher Refresher, line string) bool {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "/quit":
		return true
	case trimmed == "/refresh":
		if refresher != nil {
			refresher.Trigger()
		}
		return false
	case trimmed == "/name" || strings.HasPrefix(trimmed, "/name "):
		name := strings.TrimPrefix(strings.TrimPrefix(trimmed, "/name"), " ")
		s.SetName(name)
		c.Printf("name set to %q", name)
		return false
	}

	s.SetDraft(line)
	res := s.Send(ctx)
	switch {
	case res.Skipped:
		c.log.Debug().Msg("blank name or message, nothing sent")
	case res.Err != nil:
		c.log.Warn().Err(res.Err).Msg("message may not have been delivered")
	}
	return false
}
