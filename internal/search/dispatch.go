package search

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rohanthewiz/logger"
	"golang.org/x/sync/errgroup"

	"storesearch/internal/abort"
	"storesearch/internal/debounce"
	"storesearch/internal/domain"
	"storesearch/internal/eventbus"
	"storesearch/internal/fragment"
	"storesearch/internal/render"
)

// Placeholder data attributes an empty-state fragment may carry.
const (
	AttrPlaceholderPrefix     = "data-placeholder-prefix"
	AttrPlaceholderCategories = "data-placeholder-categories"
)

type opKind int

const (
	opQuery opKind = iota
	opReset
)

// fragmentMsg carries a fetched, parsed fragment back to the update loop.
type fragmentMsg struct {
	owner  string
	token  *abort.Token
	kind   opKind
	term   string
	root   *goquery.Selection
	recent int
	err    error
}

// frameMsg is the one-frame deferral after a swap.
type frameMsg struct {
	owner string
	seq   uint64
}

// onInputChange runs after every edit of the input value.
func (c *Controller) onInputChange(value string) tea.Cmd {
	c.rawTerm = value
	c.mode = domain.InteractionKeyboard
	placeholderCmd := c.updatePlaceholder()
	c.Open()

	if strings.TrimSpace(value) == "" {
		// results for a term the visitor has erased are never wanted
		c.debouncer.Cancel(debounce.KeySearch)
		c.tokens.Close()
		return tea.Batch(placeholderCmd, c.debouncer.Schedule(debounce.KeyReset, c.opts.ResetDelay, c.ResetSearch))
	}

	c.debouncer.Cancel(debounce.KeyReset)
	term := value
	return tea.Batch(placeholderCmd, c.debouncer.Schedule(debounce.KeySearch, c.opts.DebounceDelay, func() tea.Cmd {
		return c.DispatchQuery(term)
	}))
}

// DispatchQuery requests results for term. An empty term resets instead.
func (c *Controller) DispatchQuery(term string) tea.Cmd {
	term = strings.TrimSpace(term)
	if term == "" {
		return c.ResetSearch()
	}

	c.clearVisible = true
	tok := c.tokens.Begin()
	c.publish(eventbus.QueryDispatchedEvent{SessionID: c.sessionID, Term: term, TokenID: tok.ID()})
	logger.Debug("Query dispatched", "session", c.sessionID, "term", term, "token", tok.ID())

	owner := c.opts.Owner
	renderer := c.opts.Renderer
	section := c.opts.ResultsSection
	selector := c.doc.RootSelector()

	return func() tea.Msg {
		msg := fragmentMsg{owner: owner, token: tok, kind: opQuery, term: term}
		markup, err := renderer.Fragment(tok.Context(), section, term)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.root, msg.err = fragment.ParseSection(section, markup, selector)
		return msg
	}
}

// ResetSearch clears the term and loads the empty state, merged with the
// recently viewed products when there are any.
func (c *Controller) ResetSearch() tea.Cmd {
	c.rawTerm = ""
	c.input.SetValue("")
	c.clearVisible = false
	c.debouncer.Cancel(debounce.KeySearch)
	c.debouncer.Cancel(debounce.KeyReset)
	tok := c.tokens.Begin()
	logger.Debug("Search reset", "session", c.sessionID, "token", tok.ID())

	owner := c.opts.Owner
	renderer := c.opts.Renderer
	store := c.opts.Recent
	emptySection := c.opts.EmptySection
	recentSection := c.opts.RecentlyViewedSection
	selector := c.doc.RootSelector()

	return func() tea.Msg {
		msg := fragmentMsg{owner: owner, token: tok, kind: opReset}

		ids, err := store.List()
		if err != nil {
			logger.LogErr(err, "could not list recently viewed products")
			ids = nil
		}

		var emptyMarkup, recentMarkup string
		g, ctx := errgroup.WithContext(tok.Context())
		g.Go(func() error {
			var err error
			emptyMarkup, err = renderer.Fragment(ctx, emptySection, "")
			return err
		})
		if len(ids) > 0 {
			g.Go(func() error {
				var err error
				recentMarkup, err = renderer.Fragment(ctx, recentSection, RecentlyViewedQuery(ids))
				return err
			})
		}
		if err := g.Wait(); err != nil {
			msg.err = err
			return msg
		}
		if tok.Aborted() {
			return msg
		}

		base, err := fragment.ParseSection(emptySection, emptyMarkup, selector)
		if err != nil {
			msg.err = err
			return msg
		}
		if recentMarkup != "" {
			extra, err := fragment.ParseSection(recentSection, recentMarkup, "#"+recentSection)
			if err != nil {
				msg.err = err
				return msg
			}
			msg.recent = extra.Find(fragment.ItemSelector).Length()
			fragment.MergeInto(base, fragment.RecentlyViewedCSS, extra)
		}
		msg.root = base
		return msg
	}
}

// RecentlyViewedQuery builds the renderer query for a list of product ids.
func RecentlyViewedQuery(ids []string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, "id:"+id)
	}
	return strings.Join(parts, " OR ")
}

// applyFragment is the only place the live subtree changes content. It
// applies msg only when its token is still the newest one.
func (c *Controller) applyFragment(msg fragmentMsg) (tea.Cmd, error) {
	if !c.tokens.IsCurrent(msg.token) {
		logger.Debug("Discarding superseded fragment", "session", c.sessionID, "token", msg.token.ID())
		return nil, nil
	}
	if msg.err != nil {
		if render.IsCancellation(msg.err) {
			return nil, nil
		}
		c.publish(eventbus.ErrorEvent{Message: "search render failed", Err: msg.err})
		return nil, msg.err
	}
	if msg.root == nil {
		return nil, nil
	}

	c.doc.Apply(msg.root)
	c.rendered = true
	c.reflect()

	var cmds []tea.Cmd
	switch msg.kind {
	case opQuery:
		c.Open()
		c.publish(eventbus.ResultsRenderedEvent{SessionID: c.sessionID, Term: msg.term, Items: c.doc.Count()})
	case opReset:
		c.refreshPlaceholder()
		cmds = append(cmds, c.updatePlaceholder())
		c.publish(eventbus.SearchResetEvent{SessionID: c.sessionID, RecentlyViewed: msg.recent})
	}

	c.frameSeq++
	owner, seq := c.opts.Owner, c.frameSeq
	cmds = append(cmds, c.opts.Tick(FrameDelay, func(time.Time) tea.Msg {
		return frameMsg{owner: owner, seq: seq}
	}))
	return tea.Batch(cmds...), nil
}

// refreshPlaceholder rewinds the animation, taking new data from the empty
// state when it carries any.
func (c *Controller) refreshPlaceholder() {
	prefix, hasPrefix := c.doc.Data(AttrPlaceholderPrefix)
	raw, hasCategories := c.doc.Data(AttrPlaceholderCategories)
	switch {
	case hasCategories:
		if !hasPrefix {
			prefix = c.opts.Prefix
		}
		c.placeholder.Configure(prefix, raw)
	case hasPrefix:
		c.placeholder.SetData(prefix, c.opts.Categories)
	default:
		c.placeholder.Reset()
	}
	c.syncPlaceholder()
}
