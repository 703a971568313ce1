package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"storesearch/internal/clock"
	"storesearch/internal/debounce"
	"storesearch/internal/domain"
	"storesearch/internal/placeholder"
	"storesearch/internal/recent"
	"storesearch/internal/render"
)

const emptyMarkup = `
<div id="predictive-search-results" data-empty-state>
  <div data-group="popular" data-group-title="Popular">
    <a role="option" href="/collections/new">New arrivals</a>
  </div>
  <div data-recently-viewed-slot></div>
</div>`

func resultsMarkup(term string, titles ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div id="predictive-search-results" data-results-term="%s">`, term)
	b.WriteString(`<div data-group="products" data-group-title="Products">`)
	for i, title := range titles {
		fmt.Fprintf(&b, `<div role="option" data-product-id="p%d"><a href="/products/%s">%s</a></div>`,
			i, strings.ReplaceAll(title, " ", "-"), title)
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

type call struct {
	section string
	query   string
}

type fakeRenderer struct {
	mu           sync.Mutex
	pages        map[string]string
	errs         map[string]error
	calls        []call
	ignoreCancel bool
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		pages: map[string]string{"predictive-search-empty": emptyMarkup},
		errs:  map[string]error{},
	}
}

func (f *fakeRenderer) set(section, query, markup string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[section+"|"+query] = markup
}

func (f *fakeRenderer) Fragment(ctx context.Context, section, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{section, query})
	if !f.ignoreCancel && ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err := f.errs[section]; err != nil {
		return "", err
	}
	if m, ok := f.pages[section+"|"+query]; ok {
		return m, nil
	}
	if m, ok := f.pages[section]; ok {
		return m, nil
	}
	return "", &render.TransportError{URL: section, Status: 404}
}

func (f *fakeRenderer) queries(section string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c.section == section {
			out = append(out, c.query)
		}
	}
	return out
}

type navigation struct {
	url    string
	reason domain.NavigationReason
}

type fakeNavigator struct {
	visits []navigation
	err    error
}

func (n *fakeNavigator) Navigate(url string, reason domain.NavigationReason) error {
	n.visits = append(n.visits, navigation{url, reason})
	return n.err
}

type fakeScroller struct {
	intoView []int
	smooth   []bool
	tops     int
}

func (s *fakeScroller) ScrollIntoView(i int, smooth bool) tea.Cmd {
	s.intoView = append(s.intoView, i)
	s.smooth = append(s.smooth, smooth)
	return nil
}

func (s *fakeScroller) ScrollToTop() { s.tops++ }

// harness drives a Controller the way the Bubble Tea runtime would, except
// that debounce timers and (when hold is set) fragments wait for the test.
type harness struct {
	t        *testing.T
	c        *Controller
	renderer *fakeRenderer
	nav      *fakeNavigator
	scroll   *fakeScroller
	ticks    *clock.Recorder
	recent   *recent.Memory

	hold  bool
	fires []debounce.FiredMsg
	steps []placeholder.StepMsg
	held  []fragmentMsg
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		renderer: newFakeRenderer(),
		nav:      &fakeNavigator{},
		scroll:   &fakeScroller{},
		ticks:    &clock.Recorder{},
		recent:   recent.NewMemory(),
	}
	opts := Options{
		Renderer:  h.renderer,
		Navigator: h.nav,
		Scroller:  h.scroll,
		Recent:    h.recent,
		Tick:      h.ticks.Tick,
	}
	for _, m := range mutate {
		m(&opts)
	}
	c, err := New(opts)
	require.NoError(t, err)
	h.c = c
	t.Cleanup(c.Teardown)
	return h
}

// collect runs cmd and flattens batches into leaf messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// settle runs cmd and feeds its results back, parking timers and held fragments.
func (h *harness) settle(cmd tea.Cmd) error {
	var first error
	for _, msg := range collect(cmd) {
		switch msg := msg.(type) {
		case debounce.FiredMsg:
			h.fires = append(h.fires, msg)
			continue
		case placeholder.StepMsg:
			h.steps = append(h.steps, msg)
			continue
		case fragmentMsg:
			if h.hold {
				h.held = append(h.held, msg)
				continue
			}
		}
		if err := h.feed(msg); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (h *harness) feed(msg tea.Msg) error {
	cmd, err := h.c.Update(msg)
	if settleErr := h.settle(cmd); err == nil {
		err = settleErr
	}
	return err
}

// fire delivers every parked debounce timer, oldest first.
func (h *harness) fire() error {
	fires := h.fires
	h.fires = nil
	var first error
	for _, f := range fires {
		if err := h.feed(f); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// release feeds held fragments in the given order.
func (h *harness) release(order ...int) error {
	held := h.held
	h.held = nil
	var first error
	for _, i := range order {
		if err := h.feed(held[i]); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (h *harness) focus() {
	h.t.Helper()
	require.NoError(h.t, h.settle(h.c.Focus()))
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	for _, r := range s {
		require.NoError(h.t, h.feed(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}))
	}
}

func (h *harness) press(k tea.KeyType) error {
	return h.feed(tea.KeyMsg{Type: k})
}

// search types term, lets the debounce elapse and applies the results.
func (h *harness) search(term string, titles ...string) {
	h.t.Helper()
	h.renderer.set("predictive-search", term, resultsMarkup(term, titles...))
	h.typeText(term)
	require.NoError(h.t, h.fire())
}
