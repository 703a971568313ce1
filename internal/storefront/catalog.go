// Package storefront is a small section renderer for local development: it
// answers predictive search section requests with HTML fragments and serves
// the pages those fragments link to.
package storefront

import (
	_ "embed"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rohanthewiz/serr"
)

//go:embed catalog.toml
var defaultCatalog []byte

// Per-group result limits.
const (
	maxQueries     = 3
	maxProducts    = 4
	maxCollections = 3
	maxPages       = 2
)

// Product is one catalog product.
type Product struct {
	ID     string   `toml:"id"`
	Handle string   `toml:"handle"`
	Title  string   `toml:"title"`
	Vendor string   `toml:"vendor"`
	Price  float64  `toml:"price"`
	Tags   []string `toml:"tags"`
}

// URL is the product page path.
func (p Product) URL() string { return "/products/" + p.Handle }

// Collection groups products by tag.
type Collection struct {
	Handle string `toml:"handle"`
	Title  string `toml:"title"`
}

// URL is the collection page path.
func (c Collection) URL() string { return "/collections/" + c.Handle }

// Page is a static content page.
type Page struct {
	Handle string `toml:"handle"`
	Title  string `toml:"title"`
}

// URL is the content page path.
func (p Page) URL() string { return "/pages/" + p.Handle }

// Link is a titled link shown in the empty state.
type Link struct {
	Title string `toml:"title"`
	URL   string `toml:"url"`
}

// PlaceholderData feeds the animated search placeholder.
type PlaceholderData struct {
	Prefix     string   `toml:"prefix"`
	Categories []string `toml:"categories"`
}

// Catalog is everything the renderer can show.
type Catalog struct {
	Placeholder PlaceholderData `toml:"placeholder"`
	Popular     []Link          `toml:"popular"`
	Products    []Product       `toml:"products"`
	Collections []Collection    `toml:"collections"`
	Pages       []Page          `toml:"pages"`
}

// Results are the matches for one term, grouped the way the dropdown shows them.
type Results struct {
	Term        string
	Queries     []string
	Products    []Product
	Collections []Collection
	Pages       []Page
}

// Empty reports whether nothing matched.
func (r Results) Empty() bool {
	return len(r.Queries)+len(r.Products)+len(r.Collections)+len(r.Pages) == 0
}

// DefaultCatalog is the built-in demo catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(err) // embedded file is part of the build
	}
	return c
}

// ParseCatalog decodes a TOML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, serr.Wrap(err, "failed to parse catalog")
	}
	return &c, nil
}

// LoadCatalog reads a catalog file. An empty path means the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, serr.Wrap(err, "failed to read catalog "+path)
	}
	return ParseCatalog(data)
}

func matches(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Search finds products, collections, pages and query suggestions for term.
func (c *Catalog) Search(term string) Results {
	res := Results{Term: term}
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return res
	}

	seen := map[string]bool{}
	for _, p := range c.Products {
		if matches(t, append([]string{p.Title, p.Vendor}, p.Tags...)...) && len(res.Products) < maxProducts {
			res.Products = append(res.Products, p)
		}
		for _, s := range append([]string{strings.ToLower(p.Title)}, p.Tags...) {
			if strings.HasPrefix(s, t) && s != t && !seen[s] && len(res.Queries) < maxQueries {
				seen[s] = true
				res.Queries = append(res.Queries, s)
			}
		}
	}
	for _, col := range c.Collections {
		if matches(t, col.Title, col.Handle) && len(res.Collections) < maxCollections {
			res.Collections = append(res.Collections, col)
		}
	}
	for _, pg := range c.Pages {
		if matches(t, pg.Title) && len(res.Pages) < maxPages {
			res.Pages = append(res.Pages, pg)
		}
	}
	return res
}

// ProductByHandle looks a product up by its URL handle.
func (c *Catalog) ProductByHandle(handle string) (Product, bool) {
	for _, p := range c.Products {
		if p.Handle == handle {
			return p, true
		}
	}
	return Product{}, false
}

// ProductsByID returns the products for ids in the order given, skipping unknown ids.
func (c *Catalog) ProductsByID(ids []string) []Product {
	byID := make(map[string]Product, len(c.Products))
	for _, p := range c.Products {
		byID[p.ID] = p
	}
	var out []Product
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// ParseIDQuery reads a recently viewed query of the form "id:a OR id:b".
func ParseIDQuery(q string) []string {
	var ids []string
	for _, part := range strings.Split(q, " OR ") {
		part = strings.TrimSpace(part)
		if id, ok := strings.CutPrefix(part, "id:"); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
