package scraping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/infrastructure/config"
)

const (
	maxResponseSize = 10 * 1024 * 1024 // 10MB
	feedPageSize    = 250
)

var (
	// ErrCollectionUnavailable indicates neither the JSON feed nor the HTML
	// fallback yielded a usable collection page.
	ErrCollectionUnavailable = errors.New("collection unavailable")

	// ErrFeedUnavailable indicates the JSON product feed specifically failed
	ErrFeedUnavailable = errors.New("product feed unavailable")
)

// CollectionFetcher retrieves all items of one competitor collection
type CollectionFetcher interface {
	FetchCollection(ctx context.Context, domain, collection string) ([]ScrapedItem, error)
}

// HTTPCollectionFetcher fetches collections over HTTP. It prefers the
// storefront JSON feed and falls back to parsing the collection's HTML
// page when the feed is blocked or missing.
type HTTPCollectionFetcher struct {
	httpClient *http.Client
	userAgent  string
	scheme     string
}

// NewCollectionFetcher creates a fetcher from scraper configuration
func NewCollectionFetcher(cfg config.ScraperConfig) *HTTPCollectionFetcher {
	return &HTTPCollectionFetcher{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		userAgent: cfg.UserAgent,
		scheme:    "https",
	}
}

// FetchCollection retrieves every item in the collection, feed first
func (f *HTTPCollectionFetcher) FetchCollection(ctx context.Context, domain, collection string) ([]ScrapedItem, error) {
	items, feedErr := f.fetchFeed(ctx, domain, collection)
	if feedErr == nil {
		return items, nil
	}

	items, htmlErr := f.fetchHTML(ctx, domain, collection)
	if htmlErr != nil {
		return nil, fmt.Errorf("%w: feed: %v, html: %v", ErrCollectionUnavailable, feedErr, htmlErr)
	}
	return items, nil
}

// fetchFeed walks the paginated products.json feed until a short page
func (f *HTTPCollectionFetcher) fetchFeed(ctx context.Context, domain, collection string) ([]ScrapedItem, error) {
	var all []ScrapedItem
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s://%s/collections/%s/products.json?limit=%d&page=%d",
			f.scheme, domain, collection, feedPageSize, page)

		body, err := f.get(ctx, url, "application/json")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
		}

		var feed feedResponse
		if err := json.Unmarshal(body, &feed); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON: %v", ErrFeedUnavailable, err)
		}

		for i := range feed.Products {
			if item, ok := feed.Products[i].toItem(f.scheme, domain); ok {
				all = append(all, item)
			}
		}
		if len(feed.Products) < feedPageSize {
			return all, nil
		}
	}
}

// fetchHTML parses the rendered collection page as a last resort
func (f *HTTPCollectionFetcher) fetchHTML(ctx context.Context, domain, collection string) ([]ScrapedItem, error) {
	url := fmt.Sprintf("%s://%s/collections/%s", f.scheme, domain, collection)

	body, err := f.get(ctx, url, "text/html")
	if err != nil {
		return nil, err
	}
	return parseCollectionHTML(body, f.scheme, domain)
}

func (f *HTTPCollectionFetcher) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
}

// feedResponse is the storefront products.json wire format
type feedResponse struct {
	Products []feedProduct `json:"products"`
}

type feedProduct struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Vendor      string `json:"vendor"`
	ProductType string `json:"product_type"`
	Images      []struct {
		Src string `json:"src"`
	} `json:"images"`
	Variants []feedVariant `json:"variants"`
}

type feedVariant struct {
	ID             int64  `json:"id"`
	SKU            string `json:"sku"`
	Price          string `json:"price"`
	CompareAtPrice string `json:"compare_at_price"`
	Available      bool   `json:"available"`
}

// toItem normalizes a feed product. Items with no positively priced
// variant are dropped; the cheapest in-stock variant sets the price, or
// the cheapest overall when everything is sold out.
func (p *feedProduct) toItem(scheme, domain string) (ScrapedItem, bool) {
	variant, available := p.pickVariant()
	if variant == nil {
		return ScrapedItem{}, false
	}

	price, err := decimal.NewFromString(variant.Price)
	if err != nil || !price.IsPositive() {
		return ScrapedItem{}, false
	}

	item := ScrapedItem{
		ExternalID:  strconv.FormatInt(p.ID, 10),
		Title:       p.Title,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		SKU:         variant.SKU,
		Price:       price,
		Available:   available,
		ProductURL:  fmt.Sprintf("%s://%s/products/%s", scheme, domain, p.Handle),
	}
	if len(p.Images) > 0 {
		item.ImageURL = p.Images[0].Src
	}
	if variant.CompareAtPrice != "" {
		if compareAt, err := decimal.NewFromString(variant.CompareAtPrice); err == nil && compareAt.IsPositive() {
			item.CompareAtPrice = &compareAt
		}
	}
	return item, true
}

func (p *feedProduct) pickVariant() (*feedVariant, bool) {
	cheapest := func(inStockOnly bool) *feedVariant {
		var best *feedVariant
		var bestPrice decimal.Decimal
		for i := range p.Variants {
			v := &p.Variants[i]
			if inStockOnly && !v.Available {
				continue
			}
			price, err := decimal.NewFromString(v.Price)
			if err != nil || !price.IsPositive() {
				continue
			}
			if best == nil || price.LessThan(bestPrice) {
				best = v
				bestPrice = price
			}
		}
		return best
	}

	if v := cheapest(true); v != nil {
		return v, true
	}
	return cheapest(false), false
}
