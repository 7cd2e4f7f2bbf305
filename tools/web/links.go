package web

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is an anchor found on a page.
type Link struct {
	Text string
	Href string
}

// ExtractLinks lists the absolute http(s) links among the first maxLinks
// anchors of the page at rawURL.
func (b *Browser) ExtractLinks(ctx context.Context, rawURL string) (string, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	body, closer, err := b.fetch(ctx, target)
	if err != nil {
		return "", err
	}
	defer closer.Close()

	doc, err := html.Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", target, err)
	}

	links := PageLinks(doc, target, b.maxLinks)

	lines := make([]string, len(links))
	for i, l := range links {
		lines[i] = fmt.Sprintf("- %s: %s", l.Text, l.Href)
	}
	return fmt.Sprintf("Links found on %s:\n\n", strings.TrimSpace(rawURL)) + strings.Join(lines, "\n"), nil
}

// PageLinks walks the first limit anchors carrying an href and keeps those
// that resolve to absolute http(s) URLs against base.
func PageLinks(doc *html.Node, base *url.URL, limit int) []Link {
	var anchors []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if limit > 0 && len(anchors) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && attr(n, "href") != "" {
			anchors = append(anchors, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	links := make([]Link, 0, len(anchors))
	for _, a := range anchors {
		ref, err := url.Parse(strings.TrimSpace(attr(a, "href")))
		if err != nil {
			continue
		}
		abs := ref
		if base != nil {
			abs = base.ResolveReference(ref)
		}
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		links = append(links, Link{Text: strings.TrimSpace(nodeText(a)), Href: abs.String()})
	}
	return links
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
