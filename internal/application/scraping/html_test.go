package scraping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCollectionHTML_ExtractsCards(t *testing.T) {
	page := []byte(`
		<html><body>
		<ul class="product-grid">
			<li class="card">
				<a href="/collections/espresso-machines/products/rocket-appartamento">Rocket Appartamento</a>
				<span class="price">$1,899.00</span>
			</li>
			<li class="card">
				<a href="/products/breville-bambino-plus?variant=123">Breville Bambino Plus</a>
				<span class="price">$499.95</span>
			</li>
		</ul>
		</body></html>
	`)

	items, err := parseCollectionHTML(page, "https", "shop.example.com")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "rocket-appartamento", items[0].ExternalID)
	assert.Equal(t, "Rocket Appartamento", items[0].Title)
	assert.Equal(t, "1899", items[0].Price.String())
	assert.Equal(t, "https://shop.example.com/products/rocket-appartamento", items[0].ProductURL)

	// query parameters are stripped from the handle
	assert.Equal(t, "breville-bambino-plus", items[1].ExternalID)
	assert.Equal(t, "499.95", items[1].Price.String())
}

func TestParseCollectionHTML_DeduplicatesHandles(t *testing.T) {
	page := []byte(`
		<div class="card">
			<a href="/products/niche-zero"><img src="x.jpg"/></a>
			<a href="/products/niche-zero">Niche Zero</a>
			<span>$699.00</span>
		</div>
	`)

	items, err := parseCollectionHTML(page, "https", "shop.example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "niche-zero", items[0].ExternalID)
}

func TestParseCollectionHTML_SalePricePicksLower(t *testing.T) {
	page := []byte(`
		<div class="card">
			<a href="/products/eureka-mignon">Eureka Mignon Specialita</a>
			<span class="compare-at">$599.00</span>
			<span class="sale">$549.00</span>
		</div>
	`)

	items, err := parseCollectionHTML(page, "https", "shop.example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "549", items[0].Price.String())
}

func TestParseCollectionHTML_SoldOutFlag(t *testing.T) {
	page := []byte(`
		<div class="card">
			<a href="/products/la-marzocco-linea-micra">La Marzocco Linea Micra</a>
			<span class="price">$3,900.00</span>
			<span class="badge">Sold Out</span>
		</div>
	`)

	items, err := parseCollectionHTML(page, "https", "shop.example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].Available)
}

func TestParseCollectionHTML_DoesNotBorrowNeighborPrice(t *testing.T) {
	// a card with no price of its own must be skipped, not given the
	// cheapest price elsewhere on the page
	page := []byte(`
		<ul class="product-grid">
			<li class="card">
				<a href="/products/lelit-bianca">Lelit Bianca</a>
			</li>
			<li class="card">
				<a href="/products/timemore-c2">Timemore C2</a>
				<span class="price">$75.00</span>
			</li>
		</ul>
	`)

	items, err := parseCollectionHTML(page, "https", "shop.example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "timemore-c2", items[0].ExternalID)
	assert.Equal(t, "75", items[0].Price.String())
}

func TestParseCollectionHTML_SkipsCardsWithoutPrice(t *testing.T) {
	page := []byte(`
		<nav>
			<a href="/products/some-product">A navigation link without any price nearby</a>
		</nav>
	`)

	items, err := parseCollectionHTML(page, "https", "shop.example.com")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestProductHandle(t *testing.T) {
	assert.Equal(t, "foo", productHandle("/products/foo"))
	assert.Equal(t, "foo", productHandle("/collections/bar/products/foo"))
	assert.Equal(t, "foo", productHandle("/products/foo?variant=1"))
	assert.Equal(t, "foo", productHandle("https://shop.example.com/products/foo#reviews"))
	assert.Empty(t, productHandle("/collections/bar"))
	assert.Empty(t, productHandle("/products/"))
}
