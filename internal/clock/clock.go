// Package clock abstracts the tick source used by debouncing and animation so
// tests can fire timers explicitly instead of sleeping.
package clock

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickFunc has the shape of tea.Tick.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// Real is the production tick source.
var Real TickFunc = tea.Tick

// Scheduled is one recorded tick.
type Scheduled struct {
	Delay time.Duration
	fn    func(time.Time) tea.Msg
}

// Msg produces the message the tick would deliver.
func (s Scheduled) Msg() tea.Msg {
	return s.fn(time.Now())
}

// Recorder is a TickFunc that remembers every scheduled tick.
type Recorder struct {
	mu    sync.Mutex
	ticks []Scheduled
}

// Tick records the request. The returned command delivers the message immediately.
func (r *Recorder) Tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	r.mu.Lock()
	r.ticks = append(r.ticks, Scheduled{Delay: d, fn: fn})
	r.mu.Unlock()
	return func() tea.Msg { return fn(time.Now()) }
}

// All returns every tick recorded so far.
func (r *Recorder) All() []Scheduled {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Scheduled, len(r.ticks))
	copy(out, r.ticks)
	return out
}

// Last returns the most recent tick. ok is false if none were recorded.
func (r *Recorder) Last() (Scheduled, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ticks) == 0 {
		return Scheduled{}, false
	}
	return r.ticks[len(r.ticks)-1], true
}

// Len is the number of recorded ticks.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ticks)
}

// Reset forgets recorded ticks.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.ticks = nil
	r.mu.Unlock()
}
