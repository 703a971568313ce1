package fragment

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Morph makes target's attributes and children match source while keeping
// target's own node, and any child node that lines up with a source node of
// the same kind, in place. Unmatched nodes are replaced by clones.
func Morph(target, source *goquery.Selection) {
	if target.Length() == 0 || source.Length() == 0 {
		return
	}
	dst, src := target.Nodes[0], source.Nodes[0]
	syncAttrs(dst, src)
	morphChildren(dst, src)
}

func morphChildren(dst, src *html.Node) {
	d := dst.FirstChild
	for s := src.FirstChild; s != nil; s = s.NextSibling {
		if d != nil && sameKind(d, s) {
			switch d.Type {
			case html.ElementNode:
				syncAttrs(d, s)
				morphChildren(d, s)
			default:
				d.Data = s.Data
			}
			d = d.NextSibling
			continue
		}
		// d is nil at the tail, which appends
		dst.InsertBefore(cloneNode(s), d)
	}
	for d != nil {
		next := d.NextSibling
		dst.RemoveChild(d)
		d = next
	}
}

func sameKind(a, b *html.Node) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Type != html.ElementNode {
		return true
	}
	return a.Data == b.Data && attr(a, "id") == attr(b, "id")
}

func syncAttrs(dst, src *html.Node) {
	dst.Attr = append(dst.Attr[:0:0], src.Attr...)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(cloneNode(ch))
	}
	return c
}
