package catalogapi

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// catalogProductsResponse is the wire format of the catalog API's
// paginated product listing.
type catalogProductsResponse struct {
	Products []wireProduct `json:"products"`
	PageInfo struct {
		NextCursor string `json:"next_cursor"`
		HasNext    bool   `json:"has_next"`
	} `json:"page_info"`
}

type wireProduct struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Vendor      string        `json:"vendor"`
	ProductType string        `json:"product_type"`
	Status      string        `json:"status"`
	PublishedAt *string       `json:"published_at"`
	BodyHTML    string        `json:"body_html"`
	Variants    []wireVariant `json:"variants"`
}

type wireVariant struct {
	ID                int64  `json:"id"`
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	CompareAtPrice    string `json:"compare_at_price"`
	InventoryQuantity int    `json:"inventory_quantity"`
	Available         bool   `json:"available"`
}

// ProductRecord is a catalog product normalized for syncing. Only items
// that passed the sellability filter are mapped into records.
type ProductRecord struct {
	ExternalID     string
	Title          string
	Vendor         string
	ProductType    string
	SKU            string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	InventoryQty   int
}

// ProductPage is one page of sellable catalog products
type ProductPage struct {
	Products   []ProductRecord
	NextCursor string
	HasNext    bool
}

// sellable reports whether the product should be monitored: it must be
// active, published, and carry at least one purchasable variant with a
// positive price.
func (p *wireProduct) sellable() bool {
	if p.Status != "active" {
		return false
	}
	if p.PublishedAt == nil || *p.PublishedAt == "" {
		return false
	}
	return p.bestVariant() != nil
}

// bestVariant returns the cheapest purchasable variant with a positive
// price, or nil when none qualifies.
func (p *wireProduct) bestVariant() *wireVariant {
	var best *wireVariant
	var bestPrice decimal.Decimal
	for i := range p.Variants {
		v := &p.Variants[i]
		if !v.Available {
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

// toRecord maps a sellable wire product to a normalized record
func (p *wireProduct) toRecord() ProductRecord {
	v := p.bestVariant()

	record := ProductRecord{
		ExternalID:   strconv.FormatInt(p.ID, 10),
		Title:        p.Title,
		Vendor:       p.Vendor,
		ProductType:  p.ProductType,
		Description:  p.BodyHTML,
		SKU:          v.SKU,
		InventoryQty: v.InventoryQuantity,
	}

	record.Price, _ = decimal.NewFromString(v.Price)
	if v.CompareAtPrice != "" {
		if compareAt, err := decimal.NewFromString(v.CompareAtPrice); err == nil && compareAt.IsPositive() {
			record.CompareAtPrice = &compareAt
		}
	}
	return record
}
