// Package syncing mirrors the authoritative first-party catalog into the
// local product tables and keeps product embeddings filled in.
package syncing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pricewatch/backend/internal/domain/catalog"
	"github.com/pricewatch/backend/internal/domain/shared"
	"github.com/pricewatch/backend/internal/infrastructure/catalogapi"
	"github.com/pricewatch/backend/internal/infrastructure/config"
	"github.com/pricewatch/backend/internal/infrastructure/embedding"
)

const (
	defaultBatchSize   = 10
	defaultBatchDelay  = time.Second
	maxBackfillBatches = 1000
)

// CatalogClient pages through the first-party catalog
type CatalogClient interface {
	FetchProducts(ctx context.Context, vendor, cursor string) (*catalogapi.ProductPage, error)
}

// CatalogSyncServiceImpl pulls catalog products per monitored brand,
// upserts them, and soft-deletes what the source no longer carries
type CatalogSyncServiceImpl struct {
	brandRepo   catalog.MonitoredBrandRepository
	productRepo catalog.ProductRepository
	client      CatalogClient
	embedder    embedding.Embedder
	cfg         config.EmbeddingConfig
	log         *zap.Logger

	// sleep is injected in tests to avoid real batch delays
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCatalogSyncService creates a new CatalogSyncServiceImpl. The embedder
// is optional; a nil embedder disables the backfill pass.
func NewCatalogSyncService(
	brandRepo catalog.MonitoredBrandRepository,
	productRepo catalog.ProductRepository,
	client CatalogClient,
	embedder embedding.Embedder,
	cfg config.EmbeddingConfig,
	log *zap.Logger,
) *CatalogSyncServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogSyncServiceImpl{
		brandRepo:   brandRepo,
		productRepo: productRepo,
		client:      client,
		embedder:    embedder,
		cfg:         cfg,
		log:         log,
		sleep:       ctxSleep,
	}
}

// SyncResult summarizes one catalog sync run
type SyncResult struct {
	Brands      int          `json:"brands"`
	Found       int          `json:"found"`
	Created     int          `json:"created"`
	Updated     int          `json:"updated"`
	Deactivated int64        `json:"deactivated"`
	Embedded    int          `json:"embedded"`
	Errors      []BrandError `json:"errors,omitempty"`
}

// BrandError records a brand whose sync did not finish
type BrandError struct {
	Brand   string `json:"brand"`
	Message string `json:"message"`
}

// Sync refreshes the local catalog from the external source of truth.
// A non-empty brandNames list restricts the run to those active brands;
// otherwise every active brand is synced. Each brand is paged through in
// full; products absent from the source are soft-deleted, never removed.
// A brand whose fetch fails mid-way is reported and skipped without
// deactivating anything, since a partial seen set would wrongly deactivate
// live products.
func (s *CatalogSyncServiceImpl) Sync(ctx context.Context, brandNames []string) (*SyncResult, error) {
	brands, err := s.brandRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	if len(brandNames) > 0 {
		byName := make(map[string]int, len(brands))
		for i := range brands {
			byName[brands[i].Name] = i
		}
		var selected []catalog.MonitoredBrand
		for _, name := range brandNames {
			idx, ok := byName[name]
			if !ok {
				result.Errors = append(result.Errors, BrandError{
					Brand:   name,
					Message: "brand is not monitored or not active",
				})
				continue
			}
			selected = append(selected, brands[idx])
		}
		brands = selected
	}
	if len(brands) == 0 {
		return nil, shared.ErrNoBrandsConfigured
	}

	result.Brands = len(brands)
	for i := range brands {
		s.syncBrand(ctx, &brands[i], result)
	}

	if s.embedder != nil {
		embedded, err := s.BackfillEmbeddings(ctx)
		if err != nil {
			s.log.Warn("embedding backfill incomplete", zap.Error(err))
		}
		result.Embedded = embedded
	}

	s.log.Info("catalog sync finished",
		zap.Int("brands", result.Brands),
		zap.Int("found", result.Found),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int64("deactivated", result.Deactivated),
		zap.Int("embedded", result.Embedded))
	return result, nil
}

func (s *CatalogSyncServiceImpl) syncBrand(ctx context.Context, brand *catalog.MonitoredBrand, result *SyncResult) {
	log := s.log.With(zap.String("brand", brand.Name))

	var seen []string
	cursor := ""
	for {
		page, err := s.client.FetchProducts(ctx, brand.Name, cursor)
		if err != nil {
			log.Error("brand sync aborted", zap.Error(err))
			result.Errors = append(result.Errors, BrandError{
				Brand:   brand.Name,
				Message: err.Error(),
			})
			return
		}

		for i := range page.Products {
			record := &page.Products[i]
			created, err := s.upsertProduct(ctx, brand, record)
			if err != nil {
				log.Warn("product rejected",
					zap.String("external_id", record.ExternalID),
					zap.Error(err))
				result.Errors = append(result.Errors, BrandError{
					Brand:   brand.Name,
					Message: fmt.Sprintf("product %s: %v", record.ExternalID, err),
				})
				continue
			}
			seen = append(seen, record.ExternalID)
			result.Found++
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}

		if !page.HasNext || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	deactivated, err := s.productRepo.DeactivateAbsent(ctx, brand.Name, seen)
	if err != nil {
		log.Error("could not deactivate absent products", zap.Error(err))
		result.Errors = append(result.Errors, BrandError{
			Brand:   brand.Name,
			Message: err.Error(),
		})
		return
	}
	result.Deactivated += deactivated

	log.Info("brand synced",
		zap.Int("seen", len(seen)),
		zap.Int64("deactivated", deactivated))
}

func (s *CatalogSyncServiceImpl) upsertProduct(ctx context.Context, brand *catalog.MonitoredBrand, record *catalogapi.ProductRecord) (bool, error) {
	product, err := catalog.NewProduct(record.ExternalID, record.Title, record.Vendor, record.Price)
	if err != nil {
		return false, err
	}
	if err := product.ApplySync(record.Title, record.Vendor, record.ProductType, record.SKU,
		record.Price, record.CompareAtPrice, record.InventoryQty); err != nil {
		return false, err
	}
	product.SetBrand(&brand.ID)

	return s.productRepo.Upsert(ctx, product)
}

// BackfillEmbeddings generates vectors for available products that do not
// have one yet, in configured batches with a delay between them. It
// returns the number of products embedded; an embedding outage stops the
// pass early with what was done so far.
func (s *CatalogSyncServiceImpl) BackfillEmbeddings(ctx context.Context) (int, error) {
	if s.embedder == nil {
		return 0, nil
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	delay := s.cfg.BatchDelay
	if delay <= 0 {
		delay = defaultBatchDelay
	}
	maxInput := s.cfg.MaxInputLength
	if maxInput <= 0 {
		maxInput = embedding.DefaultMaxInputLength
	}

	embedded := 0
	for batch := 0; batch < maxBackfillBatches; batch++ {
		products, err := s.productRepo.FindMissingEmbedding(ctx, batchSize)
		if err != nil {
			return embedded, err
		}
		if len(products) == 0 {
			return embedded, nil
		}

		texts := make([]string, len(products))
		for i := range products {
			texts[i] = embedding.ProductText(products[i].Vendor, products[i].ProductType, products[i].Title, "", maxInput)
		}

		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			if errors.Is(err, embedding.ErrEmbeddingUnavailable) {
				s.log.Warn("embedding API unavailable, stopping backfill",
					zap.Int("embedded", embedded),
					zap.Error(err))
				return embedded, err
			}
			return embedded, err
		}

		for i := range products {
			if i >= len(vectors) || vectors[i].IsZero() {
				continue
			}
			products[i].SetEmbedding(vectors[i])
			if err := s.productRepo.Save(ctx, &products[i]); err != nil {
				return embedded, err
			}
			embedded++
		}

		if len(products) < batchSize {
			return embedded, nil
		}
		if err := s.sleep(ctx, delay); err != nil {
			return embedded, err
		}
	}
	return embedded, nil
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
