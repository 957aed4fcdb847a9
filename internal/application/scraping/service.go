package scraping

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pricewatch/backend/internal/domain/competitor"
	"github.com/pricewatch/backend/internal/domain/shared"
	"github.com/pricewatch/backend/internal/infrastructure/config"
	"github.com/pricewatch/backend/internal/infrastructure/embedding"
)

const (
	defaultMaxRetries  = 3
	defaultBackoffBase = 5 * time.Second
	defaultJobTimeout  = 30 * time.Minute
)

// ScraperServiceImpl runs competitor scrape jobs: it walks each monitored
// collection, upserts listings, and appends price history on real changes.
type ScraperServiceImpl struct {
	competitorRepo competitor.Repository
	listingRepo    competitor.ListingRepository
	historyRepo    competitor.PriceHistoryRepository
	jobRepo        competitor.ScrapeJobRepository
	fetcher        CollectionFetcher
	embedder       embedding.Embedder
	cfg            config.ScraperConfig
	log            *zap.Logger

	// sleep is injected in tests to avoid real backoff waits
	sleep func(ctx context.Context, d time.Duration) error
}

// NewScraperService creates a new ScraperServiceImpl. The embedder is
// optional; a nil embedder skips listing embeddings.
func NewScraperService(
	competitorRepo competitor.Repository,
	listingRepo competitor.ListingRepository,
	historyRepo competitor.PriceHistoryRepository,
	jobRepo competitor.ScrapeJobRepository,
	fetcher CollectionFetcher,
	embedder embedding.Embedder,
	cfg config.ScraperConfig,
	log *zap.Logger,
) *ScraperServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScraperServiceImpl{
		competitorRepo: competitorRepo,
		listingRepo:    listingRepo,
		historyRepo:    historyRepo,
		jobRepo:        jobRepo,
		fetcher:        fetcher,
		embedder:       embedder,
		cfg:            cfg,
		log:            log,
		sleep:          ctxSleep,
	}
}

// Scrape runs a full scrape of one competitor synchronously and returns
// the finished job's result. A non-empty collections list restricts the
// run to those collections instead of the competitor's configured set.
func (s *ScraperServiceImpl) Scrape(ctx context.Context, competitorID uuid.UUID, collections []string) (*ScrapeResult, error) {
	comp, job, err := s.prepareJob(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	s.run(ctx, comp, job, collections)
	result := resultFromJob(job)
	return &result, nil
}

// StartScrape persists a pending job and runs it in the background under
// the configured job timeout. The caller polls the job for completion.
func (s *ScraperServiceImpl) StartScrape(ctx context.Context, competitorID uuid.UUID, collections []string) (*competitor.ScrapeJob, error) {
	comp, job, err := s.prepareJob(ctx, competitorID)
	if err != nil {
		return nil, err
	}

	timeout := s.cfg.JobTimeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.run(runCtx, comp, job, collections)
	}()

	return job, nil
}

// ScrapeAll scrapes every active competitor sequentially
func (s *ScraperServiceImpl) ScrapeAll(ctx context.Context) (*ScrapeAllResult, error) {
	competitors, err := s.competitorRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	result := &ScrapeAllResult{Competitors: len(competitors)}
	for i := range competitors {
		runResult, err := s.Scrape(ctx, competitors[i].ID, nil)
		if err != nil {
			s.log.Error("scrape run failed",
				zap.String("competitor", competitors[i].Name),
				zap.Error(err))
			continue
		}
		result.Results = append(result.Results, *runResult)
	}
	return result, nil
}

// GetJob retrieves a scrape job by ID
func (s *ScraperServiceImpl) GetJob(ctx context.Context, id uuid.UUID) (*competitor.ScrapeJob, error) {
	return s.jobRepo.FindByID(ctx, id)
}

// ListJobs lists scrape jobs with filtering and pagination
func (s *ScraperServiceImpl) ListJobs(ctx context.Context, filter shared.Filter) ([]competitor.ScrapeJob, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.jobRepo.FindAll(ctx, filter)
}

// prepareJob validates the competitor and persists a pending job for it
func (s *ScraperServiceImpl) prepareJob(ctx context.Context, competitorID uuid.UUID) (*competitor.Competitor, *competitor.ScrapeJob, error) {
	comp, err := s.competitorRepo.FindByID(ctx, competitorID)
	if err != nil {
		return nil, nil, err
	}
	if !comp.Active {
		return nil, nil, shared.ErrCompetitorInactive
	}

	job, err := competitor.NewScrapeJob(comp.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, nil, err
	}
	return comp, job, nil
}

// run drives one job from pending to a terminal state. A failed collection
// is recorded and skipped; the run keeps going with the remaining
// collections.
func (s *ScraperServiceImpl) run(ctx context.Context, comp *competitor.Competitor, job *competitor.ScrapeJob, collections []string) {
	log := s.log.With(
		zap.String("competitor", comp.Name),
		zap.String("domain", comp.Domain),
		zap.String("job_id", job.ID.String()),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("scrape run panicked", zap.Any("panic", r))
			s.failJob(job, fmt.Sprintf("panic: %v", r))
		}
	}()

	if err := job.Start(); err != nil {
		log.Error("could not start scrape job", zap.Error(err))
		return
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		log.Error("could not persist running job", zap.Error(err))
		return
	}

	limiter := rate.NewLimiter(rate.Every(comp.RateLimit()), 1)

	if len(collections) == 0 {
		collections = comp.Collections
	}

	var found, created, updated int
	var collErrs []competitor.CollectionError

	for _, collection := range collections {
		if err := limiter.Wait(ctx); err != nil {
			s.failJob(job, fmt.Sprintf("run aborted: %v", err))
			return
		}

		items, err := s.fetchWithRetry(ctx, log, comp.Domain, collection)
		if err != nil {
			log.Warn("collection failed, continuing with remaining collections",
				zap.String("collection", collection),
				zap.Error(err))
			collErrs = append(collErrs, competitor.CollectionError{
				Collection: collection,
				Message:    err.Error(),
			})
			continue
		}

		found += len(items)
		vectors := s.embedItems(ctx, log, items)

		for i := range items {
			wasCreated, err := s.processItem(ctx, comp.ID, &items[i], vectors, i)
			if err != nil {
				log.Warn("listing rejected",
					zap.String("collection", collection),
					zap.String("external_id", items[i].ExternalID),
					zap.Error(err))
				collErrs = append(collErrs, competitor.CollectionError{
					Collection: collection,
					Message:    fmt.Sprintf("item %s: %v", items[i].ExternalID, err),
				})
				continue
			}
			if wasCreated {
				created++
			} else {
				updated++
			}
		}

		log.Info("collection scraped",
			zap.String("collection", collection),
			zap.Int("items", len(items)))
	}

	if err := job.Complete(found, created, updated, len(collErrs), collErrs); err != nil {
		log.Error("could not complete scrape job", zap.Error(err))
		return
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		log.Error("could not persist completed job", zap.Error(err))
		return
	}

	comp.MarkScraped(time.Now())
	if err := s.competitorRepo.Save(ctx, comp); err != nil {
		log.Warn("could not record scrape completion on competitor", zap.Error(err))
	}

	log.Info("scrape run finished",
		zap.Int("found", found),
		zap.Int("created", created),
		zap.Int("updated", updated),
		zap.Int("errors", len(collErrs)))
}

// fetchWithRetry fetches a collection with doubling backoff between
// attempts
func (s *ScraperServiceImpl) fetchWithRetry(ctx context.Context, log *zap.Logger, domain, collection string) ([]ScrapedItem, error) {
	attempts := s.cfg.MaxRetries
	if attempts <= 0 {
		attempts = defaultMaxRetries
	}
	backoff := s.cfg.BackoffBase
	if backoff <= 0 {
		backoff = defaultBackoffBase
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		items, err := s.fetcher.FetchCollection(ctx, domain, collection)
		if err == nil {
			return items, nil
		}
		lastErr = err

		if attempt < attempts {
			log.Warn("collection fetch failed, retrying",
				zap.String("collection", collection),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			if sleepErr := s.sleep(ctx, backoff); sleepErr != nil {
				return nil, sleepErr
			}
			backoff *= 2
		}
	}
	return nil, lastErr
}

// embedItems generates embedding vectors for a batch of items. Embedding
// failures are tolerated; listings are still stored and the backfill pass
// can fill vectors in later.
func (s *ScraperServiceImpl) embedItems(ctx context.Context, log *zap.Logger, items []ScrapedItem) []shared.Vector {
	if s.embedder == nil || len(items) == 0 {
		return nil
	}

	texts := make([]string, len(items))
	for i := range items {
		texts[i] = embedding.ProductText(items[i].Vendor, items[i].ProductType, items[i].Title, "", embedding.DefaultMaxInputLength)
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		log.Warn("embedding batch failed, storing listings without vectors", zap.Error(err))
		return nil
	}
	return vectors
}

// processItem upserts one listing and appends price history when the price
// actually moved
func (s *ScraperServiceImpl) processItem(ctx context.Context, competitorID uuid.UUID, item *ScrapedItem, vectors []shared.Vector, idx int) (bool, error) {
	listing, err := competitor.NewListing(competitorID, item.ExternalID, item.Title, item.Price)
	if err != nil {
		return false, err
	}
	if err := listing.ApplyScrape(item.Title, item.Vendor, item.ProductType, item.SKU,
		item.Price, item.CompareAtPrice, item.Available, item.ImageURL, item.ProductURL); err != nil {
		return false, err
	}
	if idx < len(vectors) && !vectors[idx].IsZero() {
		listing.SetEmbedding(vectors[idx])
	}

	created, err := s.listingRepo.Upsert(ctx, listing)
	if err != nil {
		return false, err
	}

	lastPrice, err := s.historyRepo.LastPrice(ctx, listing.ID)
	if err != nil {
		return created, err
	}
	if competitor.ShouldRecord(lastPrice, item.Price) {
		entry, err := competitor.NewPriceHistoryEntry(listing.ID, item.Price)
		if err != nil {
			return created, err
		}
		if err := s.historyRepo.Append(ctx, entry); err != nil {
			return created, err
		}
	}
	return created, nil
}

func (s *ScraperServiceImpl) failJob(job *competitor.ScrapeJob, cause string) {
	if err := job.Fail(cause); err != nil {
		return
	}
	// the run context may already be cancelled, so persist the terminal
	// state on a fresh one
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.jobRepo.Save(saveCtx, job); err != nil {
		s.log.Error("could not persist failed job", zap.Error(err))
	}
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
