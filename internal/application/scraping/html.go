package scraping

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

var priceRe = regexp.MustCompile(`[$€£]\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

// parseCollectionHTML extracts product cards from a rendered collection
// page. The fallback is best-effort: it finds anchors pointing at product
// pages and reads title and price out of the surrounding card markup.
// External IDs are product handles here, since rendered pages do not carry
// numeric product IDs.
func parseCollectionHTML(body []byte, scheme, domain string) ([]ScrapedItem, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse collection page: %w", err)
	}

	seen := make(map[string]struct{})
	var items []ScrapedItem

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if item, ok := productFromAnchor(n, scheme, domain); ok {
				if _, dup := seen[item.ExternalID]; !dup {
					seen[item.ExternalID] = struct{}{}
					items = append(items, item)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return items, nil
}

func productFromAnchor(a *html.Node, scheme, domain string) (ScrapedItem, bool) {
	handle := productHandle(attrValue(a, "href"))
	if handle == "" {
		return ScrapedItem{}, false
	}

	title := strings.TrimSpace(collapseSpace(textContent(a)))

	// the price usually lives in a sibling of the link, so climb towards the
	// card element. Stop as soon as the subtree contains a price, and never
	// climb into an ancestor that holds other product links: that would be
	// the whole grid, and its lowest price belongs to a different product.
	card := a
	for depth := 0; depth < 3 && card.Parent != nil && card.Parent.Type == html.ElementNode; depth++ {
		if priceRe.MatchString(textContent(card)) {
			break
		}
		if containsOtherProductAnchor(card.Parent, handle) {
			break
		}
		card = card.Parent
	}
	cardText := textContent(card)

	if title == "" {
		title = strings.TrimSpace(collapseSpace(textContent(a.Parent)))
	}
	if title == "" {
		return ScrapedItem{}, false
	}

	price, ok := extractPrice(cardText)
	if !ok {
		return ScrapedItem{}, false
	}

	return ScrapedItem{
		ExternalID: handle,
		Title:      title,
		Price:      price,
		Available:  !strings.Contains(strings.ToLower(cardText), "sold out"),
		ProductURL: fmt.Sprintf("%s://%s/products/%s", scheme, domain, handle),
	}, true
}

// containsOtherProductAnchor reports whether the subtree links to a product
// other than the given handle
func containsOtherProductAnchor(n *html.Node, handle string) bool {
	if n.Type == html.ElementNode && n.Data == "a" {
		if h := productHandle(attrValue(n, "href")); h != "" && h != handle {
			return true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if containsOtherProductAnchor(c, handle) {
			return true
		}
	}
	return false
}

// productHandle extracts the trailing handle from a product URL path
func productHandle(href string) string {
	idx := strings.Index(href, "/products/")
	if idx < 0 {
		return ""
	}
	handle := href[idx+len("/products/"):]
	if cut := strings.IndexAny(handle, "?#"); cut >= 0 {
		handle = handle[:cut]
	}
	handle = strings.TrimSuffix(handle, "/")
	if handle == "" || strings.Contains(handle, "/") {
		return ""
	}
	return handle
}

// extractPrice returns the lowest currency amount in the text. Cards often
// show both a compare-at and a sale price, and the sale price is the lower
// one.
func extractPrice(text string) (decimal.Decimal, bool) {
	matches := priceRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return decimal.Decimal{}, false
	}

	var lowest decimal.Decimal
	found := false
	for _, m := range matches {
		raw := strings.ReplaceAll(m[1], ",", "")
		price, err := decimal.NewFromString(raw)
		if err != nil || !price.IsPositive() {
			continue
		}
		if !found || price.LessThan(lowest) {
			lowest = price
			found = true
		}
	}
	return lowest, found
}

func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
