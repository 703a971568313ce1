package search

import (
	"net/url"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"

	"storesearch/internal/domain"
	"storesearch/internal/eventbus"
)

func (c *Controller) handleKey(msg tea.KeyMsg) (tea.Cmd, error) {
	if c.open {
		switch {
		case key.Matches(msg, c.keys.Escape):
			return c.Escape(), nil
		case key.Matches(msg, c.keys.Next):
			return c.Move(1), nil
		case key.Matches(msg, c.keys.Prev):
			return c.Move(-1), nil
		case key.Matches(msg, c.keys.Submit):
			return c.Submit()
		}
	} else if key.Matches(msg, c.keys.Escape) {
		return c.Escape(), nil
	}

	// everything else edits the input, including left/right
	before := c.input.Value()
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	if after := c.input.Value(); after != before {
		return tea.Batch(cmd, c.onInputChange(after)), nil
	}
	return cmd, nil
}

// Escape closes the dropdown, clears the term and selection and blurs the input.
func (c *Controller) Escape() tea.Cmd {
	c.Close()
	c.doc.ClearSelection()
	reset := c.ResetSearch()
	blur := c.Blur()
	return tea.Batch(reset, blur)
}

// Move steps the keyboard selection by delta with wrap-around. From no
// selection, forward lands on the first item and backward on the last.
func (c *Controller) Move(delta int) tea.Cmd {
	n := c.doc.Count()
	if n == 0 {
		return nil
	}
	i := c.doc.SelectedIndex()
	var next int
	switch {
	case i < 0 && delta > 0:
		next = 0
	case i < 0:
		next = n - 1
	default:
		next = ((i+delta)%n + n) % n
	}
	return c.Select(next)
}

// Select marks item i as the only selected item, scrolls it into view and
// keeps focus on the input.
func (c *Controller) Select(i int) tea.Cmd {
	if i < 0 || i >= c.doc.Count() {
		return nil
	}
	old := c.doc.SelectedIndex()
	c.doc.Select(i)
	c.mode = domain.InteractionKeyboard
	c.focused = true
	c.input.Focus()
	c.reflect()
	c.publish(eventbus.SelectionChangedEvent{SessionID: c.sessionID, OldIndex: old, NewIndex: i})
	return c.opts.Scroller.ScrollIntoView(i, !c.opts.ReducedMotion)
}

// Submit resolves Enter: the single-result shortcut, then the selected
// item, then the full search page for the typed term.
func (c *Controller) Submit() (tea.Cmd, error) {
	if u := c.doc.SingleResultURL(); u != "" {
		return nil, c.navigate(u, domain.NavigateSingleResult)
	}
	if i := c.doc.SelectedIndex(); i >= 0 {
		return c.activate(i, domain.NavigateSelection)
	}
	return nil, c.navigate(c.SearchPageURL(c.rawTerm), domain.NavigateSearchPage)
}

// SearchPageURL is the full results page for term.
func (c *Controller) SearchPageURL(term string) string {
	return c.opts.SearchPath + "?" + url.Values{"q": {term}}.Encode()
}

// Hover marks item i active within its group.
func (c *Controller) Hover(i int) {
	if i < 0 || i >= c.doc.Count() {
		return
	}
	c.doc.Activate(i)
	if c.mode != domain.InteractionMouse {
		c.mode = domain.InteractionMouse
		c.reflect()
	}
}

// Click activates item i as a pointer would.
func (c *Controller) Click(i int) (tea.Cmd, error) {
	if i < 0 || i >= c.doc.Count() {
		return nil, nil
	}
	c.Hover(i)
	return c.activate(i, domain.NavigateClick)
}

func (c *Controller) activate(i int, reason domain.NavigationReason) (tea.Cmd, error) {
	item, ok := c.doc.Item(i)
	if !ok {
		return nil, nil
	}
	if item.Action == ActionClearRecentlyViewed {
		return c.ClearRecentlyViewed()
	}
	if item.ProductID != "" {
		if err := c.opts.Recent.Add(item.ProductID); err != nil {
			logger.LogErr(err, "could not record recently viewed product", "id", item.ProductID)
		}
	}
	if item.URL == "" {
		return nil, nil
	}
	return nil, c.navigate(item.URL, reason)
}

// ClearRecentlyViewed empties the store, announces it and reloads the empty state.
func (c *Controller) ClearRecentlyViewed() (tea.Cmd, error) {
	if err := c.opts.Recent.Clear(); err != nil {
		return nil, serr.Wrap(err, "failed to clear recently viewed")
	}
	c.publish(eventbus.RecentlyViewedClearedEvent{SessionID: c.sessionID})
	return c.ResetSearch(), nil
}

func (c *Controller) navigate(target string, reason domain.NavigationReason) error {
	c.publish(eventbus.NavigationRequestedEvent{SessionID: c.sessionID, URL: target, Reason: reason})
	logger.Info("Navigating", "session", c.sessionID, "url", target, "reason", string(reason))
	if c.opts.Navigator == nil {
		return nil
	}
	if err := c.opts.Navigator.Navigate(target, reason); err != nil {
		return serr.Wrap(err, "navigation failed")
	}
	return nil
}
