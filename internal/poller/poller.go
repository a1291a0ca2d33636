// Package poller runs a function on a fixed interval under an explicit start/stop lifecycle.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrAlreadyStarted is returned by Start on a running poller.
var ErrAlreadyStarted = errors.New("poller already started")

// Func is one poll cycle.
type Func func(ctx context.Context)

// Poller invokes fn once on Start and then every interval until stopped.
//
// Runs are not serialised: a slow cycle does not delay the next tick, and two cycles
// may be in flight at once. No jitter, no backoff, no pause on failure.
type Poller struct {
	interval time.Duration
	fn       Func
	log      *zerolog.Logger

	trigger chan struct{}

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running sync.WaitGroup
}

// New builds a stopped poller.
func New(interval time.Duration, fn Func, logger *zerolog.Logger) *Poller {
	return &Poller{
		interval: interval,
		fn:       fn,
		log:      logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Start launches the loop. The first cycle begins immediately.
// The loop ends when ctx is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(ctx, p.done)

	p.log.Debug().Dur("interval", p.interval).Msg("poller started")
	return nil
}

// Stop cancels the loop and any cycle in flight, then waits for them to return.
// Safe to call more than once, and before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.running.Wait()

	p.log.Debug().Msg("poller stopped")
}

// Trigger asks for one extra cycle now without resetting the interval.
// Requests made while one is already pending are merged.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		case <-p.trigger:
			p.run(ctx)
		}
	}
}

func (p *Poller) run(ctx context.Context) {
	p.running.Add(1)
	go func() {
		defer p.running.Done()
		p.fn(ctx)
	}()
}
