package fragment

import (
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsMarkup = `
<div id="predictive-search-results" data-results-term="red">
  <div data-group="queries" data-group-title="Suggestions">
    <a role="option" href="/search?q=red+dress">red dress</a>
  </div>
  <div data-group="products" data-group-title="Products">
    <div role="option" data-product-id="p1"><a href="/products/ruby-ring"><span data-title>Ruby ring</span></a></div>
    <div role="option" data-product-id="p2"><a href="/products/red-scarf"><span data-title>Red scarf</span></a></div>
  </div>
  <div data-group="pages" data-group-title="Pages">
    <a role="option" href="/pages/care">Caring for red   stones</a>
  </div>
</div>`

func load(t *testing.T, markup string) *Document {
	t.Helper()
	d := New("predictive-search-results")
	src, err := ParseSection("predictive-search", markup, d.RootSelector())
	require.NoError(t, err)
	d.Apply(src)
	return d
}

func TestItemsAcrossGroups(t *testing.T) {
	d := load(t, resultsMarkup)

	require.Equal(t, 4, d.Count())
	assert.Equal(t, -1, d.SelectedIndex())

	item, ok := d.Item(1)
	require.True(t, ok)
	assert.Equal(t, "products", item.Group)
	assert.Equal(t, "Ruby ring", item.Title)
	assert.Equal(t, "/products/ruby-ring", item.URL)
	assert.Equal(t, "p1", item.ProductID)

	item, _ = d.Item(3)
	assert.Equal(t, "Caring for red stones", item.Title)
	assert.Equal(t, "/pages/care", item.URL)
}

func TestSelectKeepsSingleMarker(t *testing.T) {
	d := load(t, resultsMarkup)

	d.Select(2)
	assert.Equal(t, 2, d.SelectedIndex())
	d.Select(0)
	assert.Equal(t, 0, d.SelectedIndex())

	marked := d.Root().Find(`[aria-selected="true"]`).Length()
	assert.Equal(t, 1, marked)

	d.ClearSelection()
	assert.Equal(t, -1, d.SelectedIndex())
}

func TestActivateIsPerGroup(t *testing.T) {
	d := load(t, resultsMarkup)

	d.Activate(0)
	d.Activate(1)
	d.Activate(2)

	active := d.Root().Find(`[data-active="true"]`)
	assert.Equal(t, 2, active.Length(), "one active item in queries and one in products")

	item, _ := d.Item(2)
	assert.True(t, item.Active)
	item, _ = d.Item(1)
	assert.False(t, item.Active)
}

func TestSectionsPreserveOrder(t *testing.T) {
	d := load(t, resultsMarkup)

	sections := d.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, "Suggestions", sections[0].Title)
	assert.Equal(t, []int{1, 2}, sections[1].Indexes)
	assert.Equal(t, "Pages", sections[2].Title)
}

func TestMissingRootIsMarkupError(t *testing.T) {
	_, err := ParseSection("predictive-search", `<div id="other"></div>`, "#predictive-search-results")
	var missing *MissingMarkupError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "predictive-search", missing.Section)
}

func TestMorphReplacesContentAndDropsSelection(t *testing.T) {
	d := load(t, resultsMarkup)
	d.Select(1)
	liveRoot := d.Root().Nodes[0]

	src, err := ParseSection("predictive-search", `
<div id="predictive-search-results" data-single-result-url="/products/ruby-ring">
  <div data-group="products" data-group-title="Products">
    <div role="option" data-product-id="p1"><a href="/products/ruby-ring">Ruby ring</a></div>
  </div>
</div>`, d.RootSelector())
	require.NoError(t, err)
	d.Apply(src)

	assert.Same(t, liveRoot, d.Root().Nodes[0], "container node identity is preserved")
	assert.Equal(t, 1, d.Count())
	assert.Equal(t, -1, d.SelectedIndex())
	assert.Equal(t, "/products/ruby-ring", d.SingleResultURL())
	assert.Empty(t, d.RootAttr("data-results-term"))
}

func TestMorphKeepsMatchingNodes(t *testing.T) {
	d := load(t, resultsMarkup)
	group := d.Root().Find(`[data-group="queries"]`).Nodes[0]

	d.Apply(mustParse(t, `
<div id="predictive-search-results">
  <div data-group="queries" data-group-title="Suggestions">
    <a role="option" href="/search?q=red+shoes">red shoes</a>
  </div>
</div>`))

	assert.Same(t, group, d.Root().Find(`[data-group="queries"]`).Nodes[0])
	item, _ := d.Item(0)
	assert.Equal(t, "red shoes", item.Title)
}

func TestMergeIntoSlot(t *testing.T) {
	base := mustParse(t, `
<div id="predictive-search-results">
  <div data-group="popular"><a role="option" href="/collections/new">New in</a></div>
  <div data-recently-viewed-slot></div>
</div>`)
	extra := mustParse(t, `
<div id="recently-viewed">
  <div data-group="recent"><a role="option" href="/products/a">A</a></div>
</div>`)

	MergeInto(base, RecentlyViewedCSS, extra)

	d := New("predictive-search-results")
	d.Apply(base)
	require.Equal(t, 2, d.Count())
	item, _ := d.Item(1)
	assert.Equal(t, "recent", item.Group)
}

func TestDataAndMessage(t *testing.T) {
	d := load(t, `
<div id="predictive-search-results">
  <p data-message>No results for   "zz"</p>
  <div data-placeholder-prefix="Search for" data-placeholder-categories='["rings"]'></div>
</div>`)

	assert.Equal(t, `No results for "zz"`, d.Message())
	v, ok := d.Data("data-placeholder-categories")
	assert.True(t, ok)
	assert.Equal(t, `["rings"]`, v)
	_, ok = d.Data("data-missing")
	assert.False(t, ok)
}

func mustParse(t *testing.T, markup string) *goquery.Selection {
	t.Helper()
	sel, err := ParseSection("test", markup, "div[id]")
	require.NoError(t, err)
	return sel
}
