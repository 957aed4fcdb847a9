package scraping

import (
	"github.com/shopspring/decimal"
)

// ScrapedItem is one competitor product observed in a collection fetch,
// normalized from either the JSON feed or the HTML fallback.
type ScrapedItem struct {
	ExternalID     string
	Title          string
	Vendor         string
	ProductType    string
	SKU            string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Available      bool
	ImageURL       string
	ProductURL     string
}
