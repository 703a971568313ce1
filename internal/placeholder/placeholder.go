// Package placeholder animates the idle search box placeholder: it types a
// category name one character at a time, holds it, deletes it and moves on to
// the next category.
//
// The engine is driven by a single tick. Every step renders the current slice
// and then moves charIndex, so the text seen after a step always reflects the
// index before the move. A tag identifies the pending step; pausing bumps the
// tag so a tick that was already in flight is ignored when it lands.
package placeholder

import (
	"encoding/json"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"

	"storesearch/internal/clock"
)

const (
	TypeDelay   = 85 * time.Millisecond
	HoldDelay   = 1200 * time.Millisecond
	DeleteDelay = 40 * time.Millisecond
	NextDelay   = 300 * time.Millisecond
)

// DefaultPrefix is shown when no prefix is configured.
const DefaultPrefix = "Search"

// Phase of the animation.
type Phase int

const (
	Idle Phase = iota
	Typing
	Deleting
)

func (p Phase) String() string {
	switch p {
	case Typing:
		return "typing"
	case Deleting:
		return "deleting"
	default:
		return "idle"
	}
}

// StepMsg advances the animation by one step.
type StepMsg struct {
	Owner string
	Tag   uint64
}

// Options configures a new Engine.
type Options struct {
	Owner         string
	Prefix        string
	Categories    []string
	ReducedMotion bool
	Tick          clock.TickFunc
}

// Engine owns PlaceholderState for one search box.
type Engine struct {
	owner         string
	tick          clock.TickFunc
	prefix        string
	categories    [][]rune
	reducedMotion bool

	categoryIndex int
	charIndex     int
	deleting      bool

	pending   bool
	tag       uint64
	nextDelay time.Duration
	stopped   bool

	text string
}

// New builds an engine and renders its initial text. It does not start the loop.
func New(opts Options) *Engine {
	tick := opts.Tick
	if tick == nil {
		tick = clock.Real
	}
	e := &Engine{
		owner:         opts.Owner,
		tick:          tick,
		reducedMotion: opts.ReducedMotion,
	}
	e.setData(opts.Prefix, opts.Categories)
	e.Reset()
	return e
}

// ParseCategories decodes the JSON array carried by data-placeholder-categories.
func ParseCategories(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, serr.Wrap(err, "placeholder categories must be a JSON array of strings")
	}
	return out, nil
}

// Configure replaces prefix and categories from raw attribute data and resets
// the animation. Unparsable category data degrades to no categories.
func (e *Engine) Configure(prefix, rawCategories string) {
	cats, err := ParseCategories(rawCategories)
	if err != nil {
		logger.LogErr(err, "ignoring malformed placeholder categories", "raw", rawCategories)
		cats = nil
	}
	e.SetData(prefix, cats)
}

// SetData replaces prefix and categories and resets the animation.
func (e *Engine) SetData(prefix string, categories []string) {
	e.setData(prefix, categories)
	e.Reset()
}

func (e *Engine) setData(prefix string, categories []string) {
	e.prefix = strings.TrimRight(prefix, " ")
	e.categories = e.categories[:0]
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c != "" {
			e.categories = append(e.categories, []rune(c))
		}
	}
}

// SetReducedMotion switches between the animated and static renderings.
func (e *Engine) SetReducedMotion(reduced bool) {
	e.reducedMotion = reduced
	e.Reset()
}

// Animated reports whether the loop may run at all.
func (e *Engine) Animated() bool {
	return len(e.categories) > 1 && !e.reducedMotion && !e.stopped
}

// Resume starts or continues the loop. It is a no-op while a step is pending.
func (e *Engine) Resume() tea.Cmd {
	if e.pending || !e.Animated() {
		return nil
	}
	return e.schedule(e.nextDelay)
}

// Pause cancels the pending step and enters Idle.
func (e *Engine) Pause() {
	e.tag++
	e.pending = false
}

// Stop pauses for good; used on teardown.
func (e *Engine) Stop() {
	e.Pause()
	e.stopped = true
}

// Reset returns to the first category with nothing typed and cancels any pending step.
func (e *Engine) Reset() {
	e.Pause()
	e.categoryIndex = 0
	e.charIndex = 0
	e.deleting = false
	e.nextDelay = TypeDelay

	switch {
	case len(e.categories) == 0:
		e.text = e.compose(nil)
	case !e.Animated():
		e.text = e.compose(e.categories[0])
	default:
		e.text = e.compose(nil)
	}
}

// Update handles a StepMsg addressed to this engine.
func (e *Engine) Update(msg StepMsg) tea.Cmd {
	if msg.Owner != e.owner || msg.Tag != e.tag || !e.pending {
		return nil
	}
	e.pending = false
	if !e.Animated() {
		return nil
	}

	current := e.categories[e.categoryIndex]
	e.text = e.compose(current[:max(e.charIndex, 0)])

	var delay time.Duration
	switch {
	case !e.deleting && e.charIndex < len(current):
		e.charIndex++
		delay = TypeDelay
	case !e.deleting:
		e.deleting = true
		delay = HoldDelay
	case e.charIndex > 0:
		e.charIndex--
		delay = DeleteDelay
	default:
		e.deleting = false
		e.categoryIndex = (e.categoryIndex + 1) % len(e.categories)
		delay = NextDelay
	}
	e.nextDelay = delay
	return e.schedule(delay)
}

func (e *Engine) schedule(delay time.Duration) tea.Cmd {
	e.tag++
	e.pending = true
	owner, tag := e.owner, e.tag
	return e.tick(delay, func(time.Time) tea.Msg {
		return StepMsg{Owner: owner, Tag: tag}
	})
}

func (e *Engine) compose(typed []rune) string {
	prefix := e.prefix
	if prefix == "" && len(e.categories) == 0 {
		prefix = DefaultPrefix
	}
	return strings.TrimRight(prefix+" "+string(typed), " ")
}

// Text is the placeholder currently shown.
func (e *Engine) Text() string { return e.text }

// Phase reports Idle when no step is pending.
func (e *Engine) Phase() Phase {
	switch {
	case !e.pending:
		return Idle
	case e.deleting:
		return Deleting
	default:
		return Typing
	}
}

// Pending reports whether a step timer is outstanding.
func (e *Engine) Pending() bool { return e.pending }

// CategoryIndex and CharIndex expose the cursor for tests and debugging.
func (e *Engine) CategoryIndex() int { return e.categoryIndex }
func (e *Engine) CharIndex() int     { return e.charIndex }

// CurrentCategory is the category being typed, or "" when there are none.
func (e *Engine) CurrentCategory() string {
	if len(e.categories) == 0 {
		return ""
	}
	return string(e.categories[e.categoryIndex])
}
