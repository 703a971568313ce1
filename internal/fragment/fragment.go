// Package fragment holds the live results subtree as an HTML document and
// derives the navigable result list from it.
//
// Nothing here caches the item list: every query walks the current tree, so
// the rendered markup stays the only source of truth for what is selectable.
package fragment

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohanthewiz/serr"
	"golang.org/x/net/html"

	"storesearch/internal/domain"
)

// Markup conventions shared with the storefront renderer.
const (
	ItemSelector      = `[role="option"]`
	GroupSelector     = `[data-group]`
	MessageSelector   = `[data-message]`
	SelectedAttr      = "aria-selected"
	ActiveAttr        = "data-active"
	ExpandedAttr      = "aria-expanded"
	SingleResultAttr  = "data-single-result-url"
	GroupTitleAttr    = "data-group-title"
	ProductIDAttr     = "data-product-id"
	ActionAttr        = "data-action"
	RecentlyViewedCSS = "[data-recently-viewed-slot]"
)

// MissingMarkupError is returned when a response lacks the expected section root.
type MissingMarkupError struct {
	Section  string
	Selector string
}

func (e *MissingMarkupError) Error() string {
	return fmt.Sprintf("section %q response has no element matching %s", e.Section, e.Selector)
}

// ParseSection parses markup and returns the element matching selector.
func ParseSection(section, markup, selector string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, serr.Wrap(err, "failed to parse "+section+" markup")
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, &MissingMarkupError{Section: section, Selector: selector}
	}
	return sel, nil
}

// Document is the live results subtree.
type Document struct {
	rootID string
	doc    *goquery.Document
	root   *goquery.Selection
}

// New creates an empty results container with the given element id.
func New(rootID string) *Document {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(
		fmt.Sprintf(`<div id="%s" role="listbox" aria-expanded="false"></div>`, html.EscapeString(rootID))))
	return &Document{rootID: rootID, doc: doc, root: doc.Find("#" + rootID)}
}

// RootSelector matches the results container in a renderer response.
func (d *Document) RootSelector() string { return "#" + d.rootID }

// Root is the live container.
func (d *Document) Root() *goquery.Selection { return d.root }

// Apply reconciles the live container with src.
func (d *Document) Apply(src *goquery.Selection) {
	Morph(d.root, src)
}

// HTML returns the container's outer markup.
func (d *Document) HTML() string {
	out, err := goquery.OuterHtml(d.root)
	if err != nil {
		return ""
	}
	return out
}

// SetRootAttr reflects state onto the container.
func (d *Document) SetRootAttr(name, value string) {
	d.root.SetAttr(name, value)
}

// RootAttr reads an attribute from the container.
func (d *Document) RootAttr(name string) string {
	return d.root.AttrOr(name, "")
}

// Data returns the first value of attr found on the container or inside it.
func (d *Document) Data(attr string) (string, bool) {
	if v, ok := d.root.Attr(attr); ok {
		return v, true
	}
	return d.root.Find("[" + attr + "]").First().Attr(attr)
}

func (d *Document) items() *goquery.Selection {
	return d.root.Find(ItemSelector)
}

// Count is the number of navigable items in the current render.
func (d *Document) Count() int {
	return d.items().Length()
}

// SelectedIndex is the index of the item marked selected, or -1.
func (d *Document) SelectedIndex() int {
	idx := -1
	d.items().EachWithBreak(func(i int, s *goquery.Selection) bool {
		if s.AttrOr(SelectedAttr, "") == "true" {
			idx = i
			return false
		}
		return true
	})
	return idx
}

// Select marks item i as the only selected item. Out-of-range i clears the selection.
func (d *Document) Select(i int) {
	items := d.items()
	items.SetAttr(SelectedAttr, "false")
	if i >= 0 && i < items.Length() {
		items.Eq(i).SetAttr(SelectedAttr, "true")
	}
}

// ClearSelection unmarks every item.
func (d *Document) ClearSelection() {
	d.items().SetAttr(SelectedAttr, "false")
}

// Activate marks item i active within its group (hover feedback).
func (d *Document) Activate(i int) {
	items := d.items()
	if i < 0 || i >= items.Length() {
		return
	}
	item := items.Eq(i)
	scope := item.Closest(GroupSelector)
	if scope.Length() == 0 {
		scope = d.root
	}
	scope.Find(ItemSelector).RemoveAttr(ActiveAttr)
	item.SetAttr(ActiveAttr, "true")
}

// PrimaryLink is the href of item i (its own, or its first link).
func (d *Document) PrimaryLink(i int) string {
	items := d.items()
	if i < 0 || i >= items.Length() {
		return ""
	}
	item := items.Eq(i)
	if href, ok := item.Attr("href"); ok && goquery.NodeName(item) == "a" {
		return href
	}
	return item.Find("a[href]").First().AttrOr("href", "")
}

// SingleResultURL returns the shortcut URL the renderer sets when exactly one product matched.
func (d *Document) SingleResultURL() string {
	v, _ := d.Data(SingleResultAttr)
	return v
}

// Message is the free-text notice of the current render (e.g. "no results").
func (d *Document) Message() string {
	return collapse(d.root.Find(MessageSelector).First().Text())
}

// Item describes item i.
func (d *Document) Item(i int) (domain.ResultItem, bool) {
	items := d.items()
	if i < 0 || i >= items.Length() {
		return domain.ResultItem{}, false
	}
	return d.describe(i, items.Eq(i)), true
}

func (d *Document) describe(i int, s *goquery.Selection) domain.ResultItem {
	group := s.Closest(GroupSelector)
	title := s.Find("[data-title]").First().Text()
	if strings.TrimSpace(title) == "" {
		title = s.Text()
	}
	return domain.ResultItem{
		Group:     group.AttrOr("data-group", ""),
		Title:     collapse(title),
		URL:       d.PrimaryLink(i),
		ProductID: s.AttrOr(ProductIDAttr, ""),
		Action:    s.AttrOr(ActionAttr, ""),
		Selected:  s.AttrOr(SelectedAttr, "") == "true",
		Active:    s.AttrOr(ActiveAttr, "") == "true",
	}
}

// Section is one titled group of items, with their global indexes.
type Section struct {
	Name    string
	Title   string
	Indexes []int
	Items   []domain.ResultItem
}

// Sections groups the items for display, in document order.
func (d *Document) Sections() []Section {
	var out []Section
	byGroup := map[*html.Node]int{}

	d.items().Each(func(i int, s *goquery.Selection) {
		group := s.Closest(GroupSelector)
		var key *html.Node
		if group.Length() > 0 {
			key = group.Nodes[0]
		}
		pos, ok := byGroup[key]
		if !ok {
			sec := Section{}
			if key != nil {
				sec.Name = group.AttrOr("data-group", "")
				sec.Title = group.AttrOr(GroupTitleAttr, sec.Name)
			}
			out = append(out, sec)
			pos = len(out) - 1
			byGroup[key] = pos
		}
		out[pos].Indexes = append(out[pos].Indexes, i)
		out[pos].Items = append(out[pos].Items, d.describe(i, s))
	})
	return out
}

// MergeInto appends clones of extra's children into the first element of base
// matching slotSelector, or into base itself when there is no slot.
func MergeInto(base *goquery.Selection, slotSelector string, extra *goquery.Selection) {
	if base.Length() == 0 || extra.Length() == 0 {
		return
	}
	slot := base.Find(slotSelector).First()
	if slot.Length() == 0 {
		slot = base
	}
	dst := slot.Nodes[0]
	for c := extra.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		dst.AppendChild(cloneNode(c))
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
