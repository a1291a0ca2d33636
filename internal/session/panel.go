package session

import (
	"sync"

	"github.com/vovakirdan/pollchat/internal/render"
)

// MemoryPanel keeps the last drawn units in memory. Used by one-shot commands and tests.
type MemoryPanel struct {
	mu      sync.Mutex
	units   []render.Unit
	offset  int
	redraws int
}

// NewMemoryPanel returns an empty panel.
func NewMemoryPanel() *MemoryPanel {
	return &MemoryPanel{}
}

// Replace implements Panel.
func (p *MemoryPanel) Replace(units []render.Unit) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.units = append([]render.Unit(nil), units...)
	p.offset = 0
	p.redraws++
}

// ScrollToBottom implements Panel. The offset is the index of the last unit.
func (p *MemoryPanel) ScrollToBottom() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.units) == 0 {
		p.offset = 0
		return
	}
	p.offset = len(p.units) - 1
}

// Units returns a copy of what is currently drawn.
func (p *MemoryPanel) Units() []render.Unit {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]render.Unit(nil), p.units...)
}

// Offset returns the current scroll offset.
func (p *MemoryPanel) Offset() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offset
}

// Redraws counts Replace calls.
func (p *MemoryPanel) Redraws() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.redraws
}
