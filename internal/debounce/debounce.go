// Package debounce coalesces bursts of triggers into one delayed action per key.
//
// Timers are Bubble Tea ticks, so they cannot be stopped once started. Each
// Schedule bumps a per-key sequence number instead; a FiredMsg whose sequence
// is no longer current is dropped by Handle, which is what cancelling means here.
package debounce

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"storesearch/internal/clock"
)

// Keys used by the search controller.
const (
	KeySearch = "search"
	KeyReset  = "reset"
)

// FiredMsg is delivered when a debounce timer elapses.
type FiredMsg struct {
	Owner string
	Key   string
	Seq   uint64
}

type pending struct {
	seq    uint64
	action func() tea.Cmd
}

// Debouncer holds the pending action per key for one owner.
type Debouncer struct {
	owner   string
	tick    clock.TickFunc
	seq     uint64
	pending map[string]pending
	stopped bool
}

// New creates a debouncer. Messages it produces carry owner so a parent model
// can route them when several controllers share one program.
func New(owner string, tick clock.TickFunc) *Debouncer {
	if tick == nil {
		tick = clock.Real
	}
	return &Debouncer{
		owner:   owner,
		tick:    tick,
		pending: make(map[string]pending),
	}
}

// Schedule replaces any pending action under key and arms a new timer.
func (d *Debouncer) Schedule(key string, delay time.Duration, action func() tea.Cmd) tea.Cmd {
	if d.stopped {
		return nil
	}
	d.seq++
	seq := d.seq
	d.pending[key] = pending{seq: seq, action: action}

	owner := d.owner
	return d.tick(delay, func(time.Time) tea.Msg {
		return FiredMsg{Owner: owner, Key: key, Seq: seq}
	})
}

// Handle runs the action for msg if it is still the latest one for its key.
// The action is consumed, so it fires at most once.
func (d *Debouncer) Handle(msg FiredMsg) tea.Cmd {
	if d.stopped || msg.Owner != d.owner {
		return nil
	}
	p, ok := d.pending[msg.Key]
	if !ok || p.seq != msg.Seq {
		return nil
	}
	delete(d.pending, msg.Key)
	if p.action == nil {
		return nil
	}
	return p.action()
}

// Cancel drops the pending action under key.
func (d *Debouncer) Cancel(key string) {
	delete(d.pending, key)
}

// Pending reports whether key has an armed action.
func (d *Debouncer) Pending(key string) bool {
	_, ok := d.pending[key]
	return ok
}

// Stop clears every pending action. Later Schedule calls are ignored.
func (d *Debouncer) Stop() {
	d.stopped = true
	d.pending = make(map[string]pending)
}
