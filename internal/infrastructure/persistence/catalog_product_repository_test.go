package persistence

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/backend/internal/domain/catalog"
	"github.com/pricewatch/backend/internal/domain/shared"
)

func newTestProduct(t *testing.T, externalID, title, vendor string, price string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(externalID, title, vendor, decimal.RequireFromString(price))
	require.NoError(t, err)
	return p
}

func TestGormProductRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	t.Run("creates new product", func(t *testing.T) {
		p := newTestProduct(t, "ext-1001", "Profitec Pro 600", "Profitec", "2199.00")

		created, err := repo.Upsert(ctx, p)
		require.NoError(t, err)
		assert.True(t, created)

		found, err := repo.FindByExternalID(ctx, "ext-1001")
		require.NoError(t, err)
		assert.Equal(t, "Profitec Pro 600", found.Title)
	})

	t.Run("converges on repeated upserts of the same external ID", func(t *testing.T) {
		p := newTestProduct(t, "ext-1002", "Rocket Appartamento", "Rocket Espresso", "1899.00")
		created, err := repo.Upsert(ctx, p)
		require.NoError(t, err)
		assert.True(t, created)

		again := newTestProduct(t, "ext-1002", "Rocket Appartamento TCA", "Rocket Espresso", "1949.00")
		created, err = repo.Upsert(ctx, again)
		require.NoError(t, err)
		assert.False(t, created)

		// The stored row ID is stable across upserts
		assert.Equal(t, p.ID, again.ID)

		var count int64
		require.NoError(t, db.Model(&catalog.Product{}).Where("external_id = ?", "ext-1002").Count(&count).Error)
		assert.Equal(t, int64(1), count)

		found, err := repo.FindByExternalID(ctx, "ext-1002")
		require.NoError(t, err)
		assert.Equal(t, "Rocket Appartamento TCA", found.Title)
		assert.True(t, found.Price.Equal(decimal.RequireFromString("1949.00")))
	})

	t.Run("upsert does not clear an existing embedding", func(t *testing.T) {
		p := newTestProduct(t, "ext-1003", "Niche Zero", "Niche", "499.00")
		_, err := repo.Upsert(ctx, p)
		require.NoError(t, err)

		p.Embedding = shared.Vector{0.1, 0.2, 0.3}
		require.NoError(t, repo.Save(ctx, p))

		resync := newTestProduct(t, "ext-1003", "Niche Zero Black", "Niche", "529.00")
		_, err = repo.Upsert(ctx, resync)
		require.NoError(t, err)

		found, err := repo.FindByExternalID(ctx, "ext-1003")
		require.NoError(t, err)
		assert.Equal(t, "Niche Zero Black", found.Title)
		assert.Equal(t, shared.Vector{0.1, 0.2, 0.3}, found.Embedding)
	})
}

func TestGormProductRepository_DeactivateAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	seed := func(externalID, vendor string) *catalog.Product {
		p := newTestProduct(t, externalID, "Product "+externalID, vendor, "100.00")
		_, err := repo.Upsert(ctx, p)
		require.NoError(t, err)
		return p
	}

	seed("b-1", "Breville")
	seed("b-2", "Breville")
	seed("b-3", "Breville")
	other := seed("p-1", "Profitec")

	t.Run("deactivates unseen products of the vendor only", func(t *testing.T) {
		n, err := repo.DeactivateAbsent(ctx, "Breville", []string{"b-1", "b-3"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		gone, err := repo.FindByExternalID(ctx, "b-2")
		require.NoError(t, err)
		assert.False(t, gone.Available)

		kept, err := repo.FindByExternalID(ctx, "b-1")
		require.NoError(t, err)
		assert.True(t, kept.Available)

		untouched, err := repo.FindByExternalID(ctx, other.ExternalID)
		require.NoError(t, err)
		assert.True(t, untouched.Available)
	})

	t.Run("empty seen set deactivates every available product of the vendor", func(t *testing.T) {
		n, err := repo.DeactivateAbsent(ctx, "Breville", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("already inactive rows are not counted again", func(t *testing.T) {
		n, err := repo.DeactivateAbsent(ctx, "Breville", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}

func TestGormProductRepository_FindMissingEmbedding(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	withEmb := newTestProduct(t, "e-1", "Embedded", "Acme", "10.00")
	withEmb.Embedding = shared.Vector{0.5}
	require.NoError(t, repo.Save(ctx, withEmb))

	noEmb := newTestProduct(t, "e-2", "Not Embedded", "Acme", "10.00")
	require.NoError(t, repo.Save(ctx, noEmb))

	inactive := newTestProduct(t, "e-3", "Inactive", "Acme", "10.00")
	inactive.Deactivate()
	require.NoError(t, repo.Save(ctx, inactive))

	products, err := repo.FindMissingEmbedding(ctx, 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "e-2", products[0].ExternalID)
}

func TestGormProductRepository_FindAvailableByVendor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	for _, ext := range []string{"v-1", "v-2", "v-3"} {
		p := newTestProduct(t, ext, "Machine "+ext, "Lelit", "900.00")
		require.NoError(t, repo.Save(ctx, p))
	}
	off := newTestProduct(t, "v-4", "Gone", "Lelit", "900.00")
	off.Deactivate()
	require.NoError(t, repo.Save(ctx, off))

	t.Run("returns only available products", func(t *testing.T) {
		products, err := repo.FindAvailableByVendor(ctx, "Lelit", 0)
		require.NoError(t, err)
		assert.Len(t, products, 3)
	})

	t.Run("respects limit", func(t *testing.T) {
		products, err := repo.FindAvailableByVendor(ctx, "Lelit", 2)
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})
}

func TestGormProductRepository_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)

	_, err := repo.FindByID(context.Background(), newTestProduct(t, "x", "x", "x", "1").ID)
	assert.Equal(t, shared.ErrNotFound, err)
}

func TestGormProductRepository_FindAll_Filters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	a := newTestProduct(t, "f-1", "Bambino Plus", "Breville", "499.00")
	b := newTestProduct(t, "f-2", "Barista Express", "Breville", "699.00")
	c := newTestProduct(t, "f-3", "Linea Micra", "La Marzocco", "3900.00")
	for _, p := range []*catalog.Product{a, b, c} {
		require.NoError(t, repo.Save(ctx, p))
	}

	t.Run("filters by vendor", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["vendor"] = "Breville"

		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("search matches title", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "Micra"

		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "f-3", products[0].ExternalID)
	})

	t.Run("count ignores pagination", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 1

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
