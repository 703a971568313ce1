package storefront

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
)

// ServerOptions configures the storefront server.
type ServerOptions struct {
	Address    string
	Catalog    *Catalog
	SearchPath string
	Verbose    bool
	ReadyChan  chan struct{}
}

// Handlers serves the catalog.
type Handlers struct {
	catalog    *Catalog
	searchPath string
}

// NewHandlers creates handlers over catalog.
func NewHandlers(catalog *Catalog, searchPath string) *Handlers {
	if searchPath == "" {
		searchPath = "/search"
	}
	return &Handlers{catalog: catalog, searchPath: searchPath}
}

// NewServer creates and configures the RWeb server
func NewServer(opts ServerOptions) *rweb.Server {
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	s := rweb.NewServer(rweb.ServerOptions{
		Address:   opts.Address,
		Verbose:   opts.Verbose,
		ReadyChan: opts.ReadyChan,
	})
	if opts.Verbose {
		s.Use(rweb.RequestInfo)
	}
	s.Use(noStore)

	h := NewHandlers(opts.Catalog, opts.SearchPath)
	s.Get("/search/suggest", h.Suggest)
	s.Get(h.searchPath, h.SearchPage)
	s.Get("/products/:handle", h.ProductPage)
	s.Get("/health", func(c rweb.Context) error {
		return c.WriteHTML("ok")
	})
	return s
}

// noStore keeps fragments out of intermediary caches; the client caches them itself.
func noStore(c rweb.Context) error {
	c.Response().SetHeader("Cache-Control", "no-store")
	return c.Next()
}

// Suggest renders one section for ?q=&section_id=.
func (h *Handlers) Suggest(c rweb.Context) error {
	section := queryParam(c, "section_id")
	q := queryParam(c, "q")

	markup, ok := h.RenderSection(section, q)
	if !ok {
		logger.Info("Unknown section requested", "section", section)
		c.SetStatus(http.StatusNotFound)
		return c.WriteHTML("unknown section " + section)
	}
	logger.Debug("Rendered section", "section", section, "q", q)
	return c.WriteHTML(markup)
}

// RenderSection renders a section by id. ok is false for unknown sections.
func (h *Handlers) RenderSection(section, q string) (markup string, ok bool) {
	switch section {
	case SectionResults:
		return RenderPredictive(h.catalog.Search(q), h.searchPath), true
	case SectionEmpty:
		return RenderEmpty(h.catalog), true
	case SectionRecentlyViewed:
		return RenderRecentlyViewed(h.catalog.ProductsByID(ParseIDQuery(q))), true
	}
	return "", false
}

// SearchPage renders the full results page.
func (h *Handlers) SearchPage(c rweb.Context) error {
	q := queryParam(c, "q")
	return c.WriteHTML(RenderSearchPage(h.catalog.Search(q)))
}

// ProductPage renders a product by handle.
func (h *Handlers) ProductPage(c rweb.Context) error {
	p, ok := h.catalog.ProductByHandle(c.Request().Param("handle"))
	if !ok {
		c.SetStatus(http.StatusNotFound)
		return c.WriteHTML("product not found")
	}
	return c.WriteHTML(RenderProductPage(p))
}

// queryParam reads a query parameter, decoding form escapes if the router left them in.
func queryParam(c rweb.Context, name string) string {
	v := c.Request().QueryParam(name)
	if !strings.ContainsAny(v, "%+") {
		return v
	}
	if dec, err := url.QueryUnescape(v); err == nil {
		return dec
	}
	return v
}
