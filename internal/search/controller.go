// Package search is the predictive search interaction controller: it owns
// the search box, debounces keystrokes into renderer requests, applies the
// returned fragments to the live results subtree, and drives keyboard
// navigation, dropdown visibility and the idle placeholder animation.
//
// A Controller is not safe for concurrent use. All of its methods run on the
// Bubble Tea update loop; only the commands it returns run elsewhere, and
// those never touch controller state.
package search

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"

	"storesearch/internal/abort"
	"storesearch/internal/clock"
	"storesearch/internal/config"
	"storesearch/internal/debounce"
	"storesearch/internal/domain"
	"storesearch/internal/eventbus"
	"storesearch/internal/fragment"
	"storesearch/internal/placeholder"
	"storesearch/internal/recent"
	"storesearch/internal/render"
)

// FrameDelay stands in for one animation frame.
const FrameDelay = 16 * time.Millisecond

// Reflected attribute names.
const (
	AttrExpanded        = fragment.ExpandedAttr
	AttrInteractionMode = "data-interaction-mode"
)

// ActionClearRecentlyViewed marks the item that empties the recently viewed list.
const ActionClearRecentlyViewed = "clear-recently-viewed"

// Navigator performs a page navigation.
type Navigator interface {
	Navigate(url string, reason domain.NavigationReason) error
}

// Scroller moves the results viewport. Implementations may animate and
// return the command that drives the animation.
type Scroller interface {
	ScrollIntoView(index int, smooth bool) tea.Cmd
	ScrollToTop()
}

type noopScroller struct{}

func (noopScroller) ScrollIntoView(int, bool) tea.Cmd { return nil }
func (noopScroller) ScrollToTop()                     {}

// Options configures a Controller.
type Options struct {
	Owner string

	ResultsID             string
	ResultsSection        string
	EmptySection          string
	RecentlyViewedSection string
	SearchPath            string

	DebounceDelay time.Duration
	ResetDelay    time.Duration

	Prefix        string
	Categories    []string
	ReducedMotion bool
	CursorBlink   bool

	Renderer  render.Renderer
	Recent    recent.Store
	Navigator Navigator
	Scroller  Scroller
	Bus       eventbus.EventBus
	Tick      clock.TickFunc
	Context   context.Context
}

// OptionsFromConfig fills the configurable parts of Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ResultsID:             cfg.Storefront.ResultsID,
		ResultsSection:        cfg.Storefront.ResultsSection,
		EmptySection:          cfg.Storefront.EmptySection,
		RecentlyViewedSection: cfg.Storefront.RecentlyViewedSect,
		SearchPath:            cfg.Storefront.SearchPath,
		DebounceDelay:         cfg.Search.DebounceDelay(),
		ResetDelay:            cfg.Search.ResetDelay(),
		Prefix:                cfg.Placeholder.Prefix,
		Categories:            cfg.Placeholder.Categories,
		ReducedMotion:         cfg.Placeholder.ReducedMotion,
	}
}

func (o *Options) defaults() {
	if o.Owner == "" {
		o.Owner = "search"
	}
	if o.ResultsID == "" {
		o.ResultsID = "predictive-search-results"
	}
	if o.ResultsSection == "" {
		o.ResultsSection = "predictive-search"
	}
	if o.EmptySection == "" {
		o.EmptySection = "predictive-search-empty"
	}
	if o.RecentlyViewedSection == "" {
		o.RecentlyViewedSection = "recently-viewed"
	}
	if o.SearchPath == "" {
		o.SearchPath = "/search"
	}
	if o.DebounceDelay <= 0 {
		o.DebounceDelay = 200 * time.Millisecond
	}
	if o.ResetDelay <= 0 {
		o.ResetDelay = 100 * time.Millisecond
	}
	if o.Recent == nil {
		o.Recent = recent.NewMemory()
	}
	if o.Scroller == nil {
		o.Scroller = noopScroller{}
	}
	if o.Tick == nil {
		o.Tick = clock.Real
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
}

// Controller is one search box with its results dropdown.
type Controller struct {
	opts      Options
	sessionID string

	input       textinput.Model
	doc         *fragment.Document
	tokens      *abort.Manager
	debouncer   *debounce.Debouncer
	placeholder *placeholder.Engine
	keys        KeyMap

	// SearchSession
	rawTerm string

	// DropdownState
	open bool

	focused      bool
	mode         domain.InteractionMode
	clearVisible bool
	rendered     bool
	frameSeq     uint64
	torn         bool
	inputAttrs   map[string]string
}

// New creates a controller. It renders the initial placeholder but schedules nothing.
func New(opts Options) (*Controller, error) {
	if opts.Renderer == nil {
		return nil, serr.New("search controller needs a renderer")
	}
	opts.defaults()

	ti := textinput.New()
	ti.Prompt = ""
	if !opts.CursorBlink {
		ti.Cursor.SetMode(cursor.CursorStatic)
	}

	c := &Controller{
		opts:      opts,
		sessionID: uuid.NewString(),
		input:     ti,
		doc:       fragment.New(opts.ResultsID),
		tokens:    abort.NewManager(opts.Context),
		debouncer: debounce.New(opts.Owner, opts.Tick),
		placeholder: placeholder.New(placeholder.Options{
			Owner:         opts.Owner,
			Prefix:        opts.Prefix,
			Categories:    opts.Categories,
			ReducedMotion: opts.ReducedMotion,
			Tick:          opts.Tick,
		}),
		keys:       DefaultKeyMap(),
		mode:       domain.InteractionKeyboard,
		inputAttrs: make(map[string]string),
	}
	c.syncPlaceholder()
	c.reflect()
	logger.Debug("Search controller created", "session", c.sessionID, "owner", opts.Owner)
	return c, nil
}

// Init starts the placeholder animation if it is eligible.
func (c *Controller) Init() tea.Cmd {
	return c.updatePlaceholder()
}

// Update routes one message. Only transport and markup failures are returned
// as errors; superseded work is dropped silently.
func (c *Controller) Update(msg tea.Msg) (tea.Cmd, error) {
	if c.torn {
		return nil, nil
	}

	switch msg := msg.(type) {
	case debounce.FiredMsg:
		return c.debouncer.Handle(msg), nil

	case placeholder.StepMsg:
		cmd := c.placeholder.Update(msg)
		c.syncPlaceholder()
		return cmd, nil

	case fragmentMsg:
		if msg.owner != c.opts.Owner {
			return nil, nil
		}
		return c.applyFragment(msg)

	case frameMsg:
		if msg.owner == c.opts.Owner && msg.seq == c.frameSeq {
			c.opts.Scroller.ScrollToTop()
		}
		return nil, nil

	case tea.KeyMsg:
		if !c.focused {
			return nil, nil
		}
		return c.handleKey(msg)
	}

	// cursor blink and anything else the input understands
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd, nil
}

// Teardown stops every timer and aborts in-flight work. Messages that arrive
// afterwards are ignored.
func (c *Controller) Teardown() {
	if c.torn {
		return
	}
	c.torn = true
	c.debouncer.Stop()
	c.placeholder.Stop()
	c.tokens.Close()
	logger.Debug("Search controller torn down", "session", c.sessionID)
}

// SessionID identifies this controller in logs and events.
func (c *Controller) SessionID() string { return c.sessionID }

// Owner routes messages when several controllers share a program.
func (c *Controller) Owner() string { return c.opts.Owner }

// Term is the raw typed term.
func (c *Controller) Term() string { return c.rawTerm }

// Focused reports whether the search input has focus.
func (c *Controller) Focused() bool { return c.focused }

// ClearVisible reports whether the clear affordance is shown.
func (c *Controller) ClearVisible() bool { return c.clearVisible }

// Mode is the current interaction mode.
func (c *Controller) Mode() domain.InteractionMode { return c.mode }

// Document is the live results subtree. Callers must treat it as read-only.
func (c *Controller) Document() *fragment.Document { return c.doc }

// SelectedIndex is the keyboard selection, or -1.
func (c *Controller) SelectedIndex() int { return c.doc.SelectedIndex() }

// Placeholder exposes the typing engine for inspection.
func (c *Controller) Placeholder() *placeholder.Engine { return c.placeholder }

// Keys is the navigation key map.
func (c *Controller) Keys() KeyMap { return c.keys }

// InputAttr returns an attribute reflected onto the search input.
func (c *Controller) InputAttr(name string) string { return c.inputAttrs[name] }

// ReducedMotion reports whether animations are disabled.
func (c *Controller) ReducedMotion() bool { return c.opts.ReducedMotion }

// SetReducedMotion switches animated scrolling and the placeholder loop.
func (c *Controller) SetReducedMotion(reduced bool) tea.Cmd {
	c.opts.ReducedMotion = reduced
	c.placeholder.SetReducedMotion(reduced)
	c.syncPlaceholder()
	return c.updatePlaceholder()
}

// ConfigurePlaceholder reloads placeholder data, e.g. after a config change.
func (c *Controller) ConfigurePlaceholder(prefix string, categories []string) tea.Cmd {
	c.placeholder.SetData(prefix, categories)
	c.syncPlaceholder()
	return c.updatePlaceholder()
}

// InputView renders the search input.
func (c *Controller) InputView() string {
	return c.input.View()
}

// SetWidth sizes the search input.
func (c *Controller) SetWidth(w int) {
	c.input.Width = w
}

// updatePlaceholder pauses the animation while the input is focused or
// holds a value and resumes it otherwise.
func (c *Controller) updatePlaceholder() tea.Cmd {
	if c.focused || c.rawTerm != "" {
		c.placeholder.Pause()
		return nil
	}
	return c.placeholder.Resume()
}

func (c *Controller) syncPlaceholder() {
	c.input.Placeholder = c.placeholder.Text()
}

func (c *Controller) publish(e eventbus.DomainEvent) {
	if c.opts.Bus != nil {
		c.opts.Bus.Publish(e)
	}
}
