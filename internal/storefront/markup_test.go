package storefront

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storesearch/internal/fragment"
)

func TestPredictiveMarksSingleProduct(t *testing.T) {
	markup := RenderPredictive(DefaultCatalog().Search("ruby"), "/search")

	root, err := fragment.ParseSection(SectionResults, markup, "#"+ResultsID)
	require.NoError(t, err)
	assert.Equal(t, "/products/ruby-ring", root.AttrOr(fragment.SingleResultAttr, ""))
	assert.Equal(t, "ruby", root.AttrOr("data-results-term", ""))

	products := root.Find(`[data-group="products"] ` + fragment.ItemSelector)
	require.Equal(t, 1, products.Length())
	assert.Equal(t, "1002", products.AttrOr(fragment.ProductIDAttr, ""))
	assert.Equal(t, "/products/ruby-ring", products.Find("a").AttrOr("href", ""))
}

func TestPredictiveGroupsAndItems(t *testing.T) {
	markup := RenderPredictive(DefaultCatalog().Search("jacket"), "/search")
	root, err := fragment.ParseSection(SectionResults, markup, "#"+ResultsID)
	require.NoError(t, err)

	_, single := root.Attr(fragment.SingleResultAttr)
	assert.False(t, single)

	doc := fragment.New(ResultsID)
	doc.Apply(root)
	var names []string
	for _, sec := range doc.Sections() {
		names = append(names, sec.Name)
	}
	assert.Equal(t, []string{"queries", "products", "collections"}, names)
	assert.Equal(t, 4, doc.Count())

	item, ok := doc.Item(0)
	require.True(t, ok)
	assert.Equal(t, "/search?q=jackets", item.URL)
}

func TestPredictiveNoResultsMessage(t *testing.T) {
	markup := RenderPredictive(DefaultCatalog().Search("zzzz"), "/search")
	root, err := fragment.ParseSection(SectionResults, markup, "#"+ResultsID)
	require.NoError(t, err)

	doc := fragment.New(ResultsID)
	doc.Apply(root)
	assert.Zero(t, doc.Count())
	assert.Contains(t, doc.Message(), "zzzz")
}

func TestPredictiveEscapesTerm(t *testing.T) {
	markup := RenderPredictive(Results{Term: "<script>"}, "/search")
	assert.NotContains(t, markup, "<script>")
}

func TestEmptyStateCarriesPlaceholderData(t *testing.T) {
	c := DefaultCatalog()
	root, err := fragment.ParseSection(SectionEmpty, RenderEmpty(c), "#"+ResultsID)
	require.NoError(t, err)

	assert.Equal(t, c.Placeholder.Prefix, root.AttrOr("data-placeholder-prefix", ""))
	var cats []string
	require.NoError(t, json.Unmarshal([]byte(root.AttrOr("data-placeholder-categories", "")), &cats))
	assert.Equal(t, c.Placeholder.Categories, cats)

	assert.Equal(t, 1, root.Find(fragment.RecentlyViewedCSS).Length())
	assert.Equal(t, len(c.Popular), root.Find(fragment.ItemSelector).Length())
}

func TestRecentlyViewedMergesIntoSlot(t *testing.T) {
	c := DefaultCatalog()
	base, err := fragment.ParseSection(SectionEmpty, RenderEmpty(c), "#"+ResultsID)
	require.NoError(t, err)

	markup := RenderRecentlyViewed(c.ProductsByID(ParseIDQuery("id:1003 OR id:1001")))
	extra, err := fragment.ParseSection(SectionRecentlyViewed, markup, "#"+RecentlyViewedID)
	require.NoError(t, err)
	fragment.MergeInto(base, fragment.RecentlyViewedCSS, extra)

	slot := base.Find(fragment.RecentlyViewedCSS)
	items := slot.Find(fragment.ItemSelector)
	require.Equal(t, 3, items.Length(), "two products and the clear action")
	assert.Equal(t, "1003", items.First().AttrOr(fragment.ProductIDAttr, ""))
	assert.Equal(t, "clear-recently-viewed", items.Last().AttrOr(fragment.ActionAttr, ""))
}

func TestRecentlyViewedEmpty(t *testing.T) {
	markup := RenderRecentlyViewed(nil)
	root, err := fragment.ParseSection(SectionRecentlyViewed, markup, "#"+RecentlyViewedID)
	require.NoError(t, err)
	assert.Zero(t, root.Find(fragment.ItemSelector).Length())
}

func TestPages(t *testing.T) {
	c := DefaultCatalog()
	p, ok := c.ProductByHandle("ruby-ring")
	require.True(t, ok)
	page := RenderProductPage(p)
	assert.Contains(t, page, "Ruby ring")
	assert.Contains(t, page, "$189.00")

	search := RenderSearchPage(c.Search("shoe"))
	assert.Contains(t, search, "Trail running shoes")
	assert.True(t, strings.Contains(search, "/collections/shoes"))
}
