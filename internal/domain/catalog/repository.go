package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for catalog products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByExternalID(ctx context.Context, externalID string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	FindAvailableByVendor(ctx context.Context, vendor string, limit int) ([]Product, error)
	FindMissingEmbedding(ctx context.Context, limit int) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
	// Upsert creates the product or updates the existing row keyed by
	// external_id in a single atomic write. Returns true when a new row
	// was created.
	Upsert(ctx context.Context, product *Product) (created bool, err error)
	// DeactivateAbsent soft-deletes every available product of the vendor
	// whose external ID is not in seenExternalIDs. Returns the number of
	// rows deactivated. Rows are never deleted.
	DeactivateAbsent(ctx context.Context, vendor string, seenExternalIDs []string) (int64, error)
}

// MonitoredBrandRepository defines persistence operations for monitored brands
type MonitoredBrandRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MonitoredBrand, error)
	FindByName(ctx context.Context, name string) (*MonitoredBrand, error)
	FindActive(ctx context.Context) ([]MonitoredBrand, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]MonitoredBrand, error)
	Save(ctx context.Context, brand *MonitoredBrand) error
}
