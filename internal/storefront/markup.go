package storefront

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/rohanthewiz/element"
)

// Section ids understood by the suggest endpoint.
const (
	SectionResults        = "predictive-search"
	SectionEmpty          = "predictive-search-empty"
	SectionRecentlyViewed = "recently-viewed"
)

// Element ids the client looks for in a section response.
const (
	ResultsID        = "predictive-search-results"
	RecentlyViewedID = "recently-viewed"
)

func esc(s string) string { return html.EscapeString(s) }

func searchURL(path, term string) string {
	return path + "?" + url.Values{"q": {term}}.Encode()
}

func price(p float64) string { return fmt.Sprintf("$%.2f", p) }

// sectionWrapper matches the container a section rendering endpoint puts
// around every section.
func sectionWrapper(b *element.Builder, section string, body func()) {
	b.Div("id", "shopify-section-"+section, "class", "shopify-section").R(
		b.Wrap(body),
	)
}

// RenderPredictive renders the predictive-search section for res.
func RenderPredictive(res Results, searchPath string) string {
	b := element.NewBuilder()

	attrs := []string{"id", ResultsID, "data-results-term", esc(res.Term)}
	// one product and nothing else to choose from: Enter goes straight there
	if len(res.Products) == 1 && len(res.Collections)+len(res.Pages) == 0 {
		attrs = append(attrs, "data-single-result-url", res.Products[0].URL())
	}

	sectionWrapper(b, SectionResults, func() {
		b.Div(attrs...).R(
			b.Wrap(func() {
				if res.Empty() {
					b.P("data-message", "").T(esc(fmt.Sprintf("No results found for “%s”", res.Term)))
					return
				}
				if len(res.Queries) > 0 {
					b.Div("data-group", "queries", "data-group-title", "Suggestions").R(
						element.ForEach(res.Queries, func(q string) {
							b.A("role", "option", "href", esc(searchURL(searchPath, q))).T(esc(q))
						}),
					)
				}
				if len(res.Products) > 0 {
					b.Div("data-group", "products", "data-group-title", "Products").R(
						element.ForEach(res.Products, func(p Product) {
							renderProductOption(b, p)
						}),
					)
				}
				if len(res.Collections) > 0 {
					b.Div("data-group", "collections", "data-group-title", "Collections").R(
						element.ForEach(res.Collections, func(c Collection) {
							b.A("role", "option", "href", c.URL()).T(esc(c.Title))
						}),
					)
				}
				if len(res.Pages) > 0 {
					b.Div("data-group", "pages", "data-group-title", "Pages").R(
						element.ForEach(res.Pages, func(p Page) {
							b.A("role", "option", "href", p.URL()).T(esc(p.Title))
						}),
					)
				}
			}),
		)
	})
	return b.String()
}

func renderProductOption(b *element.Builder, p Product) {
	b.Div("role", "option", "data-product-id", esc(p.ID)).R(
		b.A("href", p.URL()).R(
			b.Span("data-title", "").T(esc(p.Title)),
		),
		b.SpanClass("price").T(price(p.Price)),
	)
}

// RenderEmpty renders the empty-state section: popular links, the
// placeholder data and a slot for recently viewed products.
func RenderEmpty(c *Catalog) string {
	b := element.NewBuilder()

	cats, _ := json.Marshal(c.Placeholder.Categories)
	sectionWrapper(b, SectionEmpty, func() {
		b.Div("id", ResultsID,
			"data-empty-state", "",
			"data-placeholder-prefix", esc(c.Placeholder.Prefix),
			"data-placeholder-categories", esc(string(cats)),
		).R(
			b.Div("data-group", "popular", "data-group-title", "Popular").R(
				element.ForEach(c.Popular, func(l Link) {
					b.A("role", "option", "href", esc(l.URL)).T(esc(l.Title))
				}),
			),
			b.Div("data-recently-viewed-slot", "").R(),
		)
	})
	return b.String()
}

// RenderRecentlyViewed renders the recently viewed products with a clear action.
func RenderRecentlyViewed(products []Product) string {
	b := element.NewBuilder()

	sectionWrapper(b, SectionRecentlyViewed, func() {
		b.Div("id", RecentlyViewedID).R(
			b.Wrap(func() {
				if len(products) == 0 {
					return
				}
				b.Div("data-group", "recent", "data-group-title", "Recently viewed").R(
					element.ForEach(products, func(p Product) {
						renderProductOption(b, p)
					}),
					b.Button("type", "button", "role", "option", "data-action", "clear-recently-viewed").T("Clear recently viewed"),
				)
			}),
		)
	})
	return b.String()
}

// RenderSearchPage renders the full results page for a term.
func RenderSearchPage(res Results) string {
	b := element.NewBuilder()

	title := "Search"
	if res.Term != "" {
		title = fmt.Sprintf("Search: %s", res.Term)
	}
	page(b, title, func() {
		b.H2().T(esc(title))
		if res.Empty() {
			b.P().T(esc(fmt.Sprintf("No results found for “%s”.", res.Term)))
			return
		}
		b.Ul().R(
			element.ForEach(res.Products, func(p Product) {
				b.Li().R(
					b.A("href", p.URL()).T(esc(p.Title)),
					b.T(" "+price(p.Price)),
				)
			}),
			element.ForEach(res.Collections, func(c Collection) {
				b.Li().R(b.A("href", c.URL()).T(esc(c.Title)))
			}),
			element.ForEach(res.Pages, func(p Page) {
				b.Li().R(b.A("href", p.URL()).T(esc(p.Title)))
			}),
		)
	})
	return b.String()
}

// RenderProductPage renders one product.
func RenderProductPage(p Product) string {
	b := element.NewBuilder()
	page(b, p.Title, func() {
		b.H2().T(esc(p.Title))
		b.P().T(esc(p.Vendor))
		b.PClass("price").T(price(p.Price))
		b.P().T(esc("Tags: " + strings.Join(p.Tags, ", ")))
	})
	return b.String()
}

func page(b *element.Builder, title string, body func()) {
	b.Html().R(
		b.Head().R(
			b.Meta("charset", "UTF-8"),
			b.Title().T(esc(title)),
		),
		b.Body().R(
			b.Main().R(
				b.Wrap(body),
			),
		),
	)
}
