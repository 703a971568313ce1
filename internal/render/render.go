// Package render fetches storefront section fragments.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// Renderer returns the markup of one storefront section rendered for query.
type Renderer interface {
	Fragment(ctx context.Context, sectionID, query string) (string, error)
}

// TransportError is a network, status or read failure talking to the renderer.
type TransportError struct {
	URL    string
	Status int // 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("renderer %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("renderer %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsCancellation reports whether err only says the request was abandoned.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Client talks to the storefront section rendering endpoint.
type Client struct {
	baseURL    string
	suggestURL string
	http       *http.Client
	userAgent  string
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL     string
	SuggestPath string // defaults to /search/suggest
	UserAgent   string
	HTTPClient  *http.Client
}

// NewClient creates a renderer client. No timeout is set: a hung request is
// superseded by the next keystroke, which cancels its context.
func NewClient(opts ClientOptions) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, serr.New("storefront base URL must be absolute: " + opts.BaseURL)
	}
	path := opts.SuggestPath
	if path == "" {
		path = "/search/suggest"
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "storesearch"
	}
	return &Client{
		baseURL:    base.String(),
		suggestURL: base.String() + path,
		http:       hc,
		userAgent:  ua,
	}, nil
}

// BaseURL is the storefront root, used to resolve relative links.
func (c *Client) BaseURL() string { return c.baseURL }

// Fragment requests {suggest}?q=query&section_id=sectionID.
func (c *Client) Fragment(ctx context.Context, sectionID, query string) (string, error) {
	v := url.Values{}
	v.Set("q", query)
	v.Set("section_id", sectionID)
	target := c.suggestURL + "?" + v.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &TransportError{URL: target, Err: serr.Wrap(err, "failed to build renderer request")}
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &TransportError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &TransportError{URL: target, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &TransportError{URL: target, Err: serr.Wrap(err, "failed to read renderer response")}
	}
	logger.Debug("Fragment fetched", "section", sectionID, "query", query, "bytes", len(body))
	return string(body), nil
}

type cacheKey struct {
	section string
	query   string
}

// Cached memoizes successful fragments of the sections it is told to cache.
type Cached struct {
	next     Renderer
	cache    *lru.Cache[cacheKey, string]
	sections map[string]bool
}

// NewCached wraps next with an LRU of size entries. With no sections given every section is cached.
func NewCached(next Renderer, size int, sections ...string) (*Cached, error) {
	if size <= 0 {
		size = 64
	}
	c, err := lru.New[cacheKey, string](size)
	if err != nil {
		return nil, serr.Wrap(err, "failed to create fragment cache")
	}
	var only map[string]bool
	if len(sections) > 0 {
		only = make(map[string]bool, len(sections))
		for _, s := range sections {
			only[s] = true
		}
	}
	return &Cached{next: next, cache: c, sections: only}, nil
}

func (c *Cached) cacheable(section string) bool {
	return c.sections == nil || c.sections[section]
}

// Lookup returns a cached fragment without touching the network.
func (c *Cached) Lookup(sectionID, query string) (string, bool) {
	if !c.cacheable(sectionID) {
		return "", false
	}
	return c.cache.Get(cacheKey{sectionID, query})
}

// Fragment serves from cache or delegates and remembers the result.
func (c *Cached) Fragment(ctx context.Context, sectionID, query string) (string, error) {
	if markup, ok := c.Lookup(sectionID, query); ok {
		return markup, nil
	}
	markup, err := c.next.Fragment(ctx, sectionID, query)
	if err != nil {
		return "", err
	}
	if c.cacheable(sectionID) {
		c.cache.Add(cacheKey{sectionID, query}, markup)
	}
	return markup, nil
}

// Purge empties the cache.
func (c *Cached) Purge() { c.cache.Purge() }
