// Package catalogapi provides a client for the merchant's own catalog
// API. The sync service pulls product pages through it and mirrors them
// into the local catalog tables.
package catalogapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pricewatch/backend/internal/infrastructure/config"
)

const maxResponseSize = 10 * 1024 * 1024 // 10MB

var (
	// ErrCatalogUnavailable indicates the catalog API could not be reached
	// or returned a server-side failure.
	ErrCatalogUnavailable = errors.New("catalog API unavailable")

	// ErrCatalogInvalidResponse indicates the catalog API answered with a
	// payload the client could not interpret.
	ErrCatalogInvalidResponse = errors.New("catalog API returned invalid response")

	// ErrCatalogUnauthorized indicates the configured API key was rejected.
	ErrCatalogUnauthorized = errors.New("catalog API rejected credentials")
)

// Client talks to the catalog API over HTTP
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
}

// NewClient creates a catalog API client from configuration
func NewClient(cfg config.CatalogAPIConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("catalog API base URL is required")
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 250
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// FetchProducts retrieves one page of sellable products from the catalog.
// An empty cursor fetches the first page; the returned page carries the
// cursor for the next one. Products that are inactive, unpublished, or
// have no purchasable positively-priced variant are filtered out.
func (c *Client) FetchProducts(ctx context.Context, vendor, cursor string) (*ProductPage, error) {
	endpoint, err := url.Parse(c.baseURL + "/api/products")
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base URL: %v", ErrCatalogInvalidResponse, err)
	}

	query := endpoint.Query()
	query.Set("limit", strconv.Itoa(c.pageSize))
	if vendor != "" {
		query.Set("vendor", vendor)
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	endpoint.RawQuery = query.Encode()

	body, err := c.doRequest(ctx, endpoint.String())
	if err != nil {
		return nil, err
	}

	var response catalogProductsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse product page: %v", ErrCatalogInvalidResponse, err)
	}

	page := &ProductPage{
		Products:   make([]ProductRecord, 0, len(response.Products)),
		NextCursor: response.PageInfo.NextCursor,
		HasNext:    response.PageInfo.HasNext,
	}
	for i := range response.Products {
		product := &response.Products[i]
		if !product.sellable() {
			continue
		}
		page.Products = append(page.Products, product.toRecord())
	}
	return page, nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrCatalogUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrCatalogUnauthorized, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrCatalogUnavailable, resp.StatusCode)
	}
	return body, nil
}
