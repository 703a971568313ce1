package search

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"storesearch/internal/debounce"
	"storesearch/internal/domain"
	"storesearch/internal/eventbus"
	"storesearch/internal/fragment"
	"storesearch/internal/render"
)

func TestNewRequiresRenderer(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestTypingDispatchesOnlyFinalTerm(t *testing.T) {
	h := newHarness(t)
	h.focus()
	h.renderer.set("predictive-search", "red", resultsMarkup("red", "Red scarf"))

	h.typeText("red")
	assert.Len(t, h.fires, 3)
	assert.Empty(t, h.renderer.queries("predictive-search"), "nothing dispatched before the debounce elapses")

	for _, s := range h.ticks.All() {
		if s.Delay != FrameDelay {
			assert.Equal(t, 200*time.Millisecond, s.Delay)
		}
	}

	require.NoError(t, h.fire())
	assert.Equal(t, []string{"red"}, h.renderer.queries("predictive-search"))
	assert.Equal(t, "red", h.c.Document().RootAttr("data-results-term"))
	assert.True(t, h.c.IsOpen())
	assert.True(t, h.c.ClearVisible())
	assert.Equal(t, "red", h.c.Term())
}

func TestLastRequestWins(t *testing.T) {
	for name, order := range map[string][]int{
		"older arrives last":  {1, 0},
		"older arrives first": {0, 1},
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.focus()
			h.renderer.ignoreCancel = true
			h.renderer.set("predictive-search", "red", resultsMarkup("red", "Red scarf"))
			h.renderer.set("predictive-search", "blue", resultsMarkup("blue", "Blue hat", "Blue bag"))
			h.hold = true

			require.NoError(t, h.settle(h.c.DispatchQuery("red")))
			require.NoError(t, h.settle(h.c.DispatchQuery("blue")))
			require.Len(t, h.held, 2)

			require.NoError(t, h.release(order...))
			assert.Equal(t, "blue", h.c.Document().RootAttr("data-results-term"))
			assert.Equal(t, 2, h.c.Document().Count())
		})
	}
}

func TestSupersededRequestIsCancelledQuietly(t *testing.T) {
	h := newHarness(t)
	h.focus()
	h.renderer.set("predictive-search", "blue", resultsMarkup("blue", "Blue hat"))
	h.hold = true

	first := h.c.DispatchQuery("red")
	second := h.c.DispatchQuery("blue")

	// the first transfer observes its cancelled context
	require.NoError(t, h.settle(first))
	require.NoError(t, h.settle(second))
	require.NoError(t, h.release(0, 1))

	assert.Equal(t, "blue", h.c.Document().RootAttr("data-results-term"))
}

func TestClearingInFlightQueryShowsEmptyState(t *testing.T) {
	h := newHarness(t)
	h.focus()
	h.renderer.ignoreCancel = true
	h.renderer.set("predictive-search", "blue", resultsMarkup("blue", "Blue hat"))
	h.hold = true

	h.typeText("blue")
	require.NoError(t, h.fire())
	require.Len(t, h.held, 1, "blue is in flight")

	for range "blue" {
		require.NoError(t, h.press(tea.KeyBackspace))
	}
	assert.Equal(t, "", h.c.Term())
	require.NoError(t, h.fire())
	require.Len(t, h.held, 2, "reset is in flight too")

	// reset lands, then the late blue response
	require.NoError(t, h.release(1, 0))

	assert.NotEmpty(t, h.c.Document().Root().Find("[data-recently-viewed-slot]").Nodes)
	assert.Empty(t, h.c.Document().RootAttr("data-results-term"))
	assert.False(t, h.c.ClearVisible())
}

func TestResetAndQueryShareOneLineage(t *testing.T) {
	t.Run("query begun after reset wins", func(t *testing.T) {
		h := newHarness(t)
		h.renderer.ignoreCancel = true
		h.renderer.set("predictive-search", "red", resultsMarkup("red", "Red scarf"))
		h.hold = true

		require.NoError(t, h.settle(h.c.ResetSearch()))
		require.NoError(t, h.settle(h.c.DispatchQuery("red")))
		require.NoError(t, h.release(1, 0))

		assert.Equal(t, "red", h.c.Document().RootAttr("data-results-term"))
	})

	t.Run("reset begun after query wins", func(t *testing.T) {
		h := newHarness(t)
		h.renderer.ignoreCancel = true
		h.renderer.set("predictive-search", "red", resultsMarkup("red", "Red scarf"))
		h.hold = true

		require.NoError(t, h.settle(h.c.DispatchQuery("red")))
		require.NoError(t, h.settle(h.c.ResetSearch()))
		require.NoError(t, h.release(1, 0))

		assert.Empty(t, h.c.Document().RootAttr("data-results-term"))
		assert.Equal(t, 1, h.c.Document().Count())
	})
}

func TestResetIsIdempotent(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.recent.Add("a"))
	h.renderer.set("recently-viewed", "id:a",
		`<div id="recently-viewed"><div data-group="recent"><a role="option" href="/products/a">A</a></div></div>`)

	require.NoError(t, h.settle(h.c.ResetSearch()))
	once := h.c.Document().HTML()

	require.NoError(t, h.settle(h.c.ResetSearch()))
	assert.Equal(t, once, h.c.Document().HTML())
	assert.Equal(t, 2, h.c.Document().Count())
}

func TestDispatchEmptyTermResets(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.settle(h.c.DispatchQuery("   ")))

	assert.Empty(t, h.renderer.queries("predictive-search"))
	assert.Equal(t, []string{""}, h.renderer.queries("predictive-search-empty"))
}

func TestResetMergesRecentlyViewed(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.recent.Add("b"))
	require.NoError(t, h.recent.Add("a"))
	h.renderer.set("recently-viewed", "id:a OR id:b", `
<div id="recently-viewed">
  <div data-group="recent" data-group-title="Recently viewed">
    <div role="option" data-product-id="a"><a href="/products/a">A</a></div>
    <div role="option" data-product-id="b"><a href="/products/b">B</a></div>
    <button role="option" data-action="clear-recently-viewed">Clear</button>
  </div>
</div>`)

	require.NoError(t, h.settle(h.c.ResetSearch()))
	doc := h.c.Document()
	require.Equal(t, 4, doc.Count())
	assert.Equal(t, 3, doc.Root().Find(fragment.RecentlyViewedCSS+" "+fragment.ItemSelector).Length())

	// clearing empties the store and reloads without the recent fragment
	cmd, err := h.c.Click(3)
	require.NoError(t, err)
	require.NoError(t, h.settle(cmd))

	ids, _ := h.recent.List()
	assert.Empty(t, ids)
	assert.Equal(t, 1, doc.Count())
	assert.Len(t, h.renderer.queries("recently-viewed"), 1)
}

func TestTransportErrorPropagatesAndKeepsState(t *testing.T) {
	h := newHarness(t)
	h.focus()
	h.search("red", "Red scarf", "Ruby ring")
	before := h.c.Document().HTML()

	h.renderer.errs["predictive-search"] = &render.TransportError{URL: "x", Status: 502}
	err := h.settle(h.c.DispatchQuery("reds"))

	var te *render.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 502, te.Status)
	assert.Equal(t, before, h.c.Document().HTML())
}

func TestMissingMarkupIsError(t *testing.T) {
	h := newHarness(t)
	h.renderer.set("predictive-search", "red", `<div id="somewhere-else"></div>`)

	err := h.settle(h.c.DispatchQuery("red"))
	var missing *fragment.MissingMarkupError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "predictive-search", missing.Section)
}

func TestSwapScrollsToTopNextFrame(t *testing.T) {
	h := newHarness(t)
	h.focus()
	tops := h.scroll.tops

	h.search("red", "Red scarf")
	assert.Equal(t, tops+1, h.scroll.tops)

	last, ok := h.ticks.Last()
	require.True(t, ok)
	assert.Equal(t, FrameDelay, last.Delay)
}

func TestStaleFrameIsIgnored(t *testing.T) {
	h := newHarness(t)
	_, err := h.c.Update(frameMsg{owner: h.c.Owner(), seq: 99})
	require.NoError(t, err)
	assert.Zero(t, h.scroll.tops)
}

func TestForeignOwnerMessagesIgnored(t *testing.T) {
	h := newHarness(t)
	h.focus()
	h.typeText("r")

	cmd, err := h.c.Update(debounce.FiredMsg{Owner: "other", Key: debounce.KeySearch, Seq: h.fires[0].Seq})
	require.NoError(t, err)
	assert.Nil(t, cmd)
	assert.Empty(t, h.renderer.queries("predictive-search"))
}

func TestTeardownDropsLateWork(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bus := eventbus.New()
	defer bus.Close()

	h := newHarness(t, func(o *Options) { o.Bus = bus })
	h.focus()
	h.renderer.ignoreCancel = true
	h.renderer.set("predictive-search", "re", resultsMarkup("re", "Red scarf"))
	h.hold = true

	h.typeText("re")
	require.NoError(t, h.fire())
	require.Len(t, h.held, 1)
	h.typeText("d")

	h.c.Teardown()
	before := h.c.Document().HTML()

	require.NoError(t, h.fire())
	require.NoError(t, h.release(0))
	assert.Len(t, h.renderer.queries("predictive-search"), 1, "pending debounce never fired")
	assert.Equal(t, before, h.c.Document().HTML())
	assert.Nil(t, h.c.Focus())
}

func TestEventsPublished(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bus := eventbus.New()
	defer bus.Close()

	got := make(chan eventbus.DomainEvent, 32)
	for _, et := range []eventbus.EventType{
		eventbus.EventQueryDispatched,
		eventbus.EventResultsRendered,
		eventbus.EventDropdownToggled,
	} {
		bus.Subscribe(et, func(e eventbus.DomainEvent) { got <- e })
	}

	h := newHarness(t, func(o *Options) { o.Bus = bus })
	h.focus()
	h.search("red", "Red scarf")

	seen := map[eventbus.EventType]bool{}
	timeout := time.After(time.Second)
	for len(seen) < 3 {
		select {
		case e := <-got:
			seen[e.Type()] = true
			if q, ok := e.(eventbus.QueryDispatchedEvent); ok {
				assert.Equal(t, "red", q.Term)
				assert.Equal(t, h.c.SessionID(), q.SessionID)
			}
		case <-timeout:
			t.Fatalf("missing events, saw %v", seen)
		}
	}
}

func TestInteractionModeReflection(t *testing.T) {
	h := newHarness(t)
	h.focus()
	h.search("red", "Red scarf", "Ruby ring")

	assert.Equal(t, string(domain.InteractionKeyboard), h.c.InputAttr(AttrInteractionMode))
	h.c.Hover(1)
	assert.Equal(t, string(domain.InteractionMouse), h.c.InputAttr(AttrInteractionMode))
	item, _ := h.c.Document().Item(1)
	assert.True(t, item.Active)

	require.NoError(t, h.press(tea.KeyDown))
	assert.Equal(t, string(domain.InteractionKeyboard), h.c.InputAttr(AttrInteractionMode))
}
