package scraping

import (
	"github.com/google/uuid"

	"github.com/pricewatch/backend/internal/domain/competitor"
)

// ScrapeResult summarizes one completed scrape run
type ScrapeResult struct {
	JobID        uuid.UUID                    `json:"job_id"`
	CompetitorID uuid.UUID                    `json:"competitor_id"`
	Status       competitor.ScrapeJobStatus   `json:"status"`
	Found        int                          `json:"found"`
	Created      int                          `json:"created"`
	Updated      int                          `json:"updated"`
	Errors       int                          `json:"errors"`
	ErrorDetail  []competitor.CollectionError `json:"error_detail,omitempty"`
	DurationMs   int64                        `json:"duration_ms"`
}

// ScrapeAllResult summarizes a run across every active competitor
type ScrapeAllResult struct {
	Competitors int            `json:"competitors"`
	Results     []ScrapeResult `json:"results"`
}

func resultFromJob(job *competitor.ScrapeJob) ScrapeResult {
	return ScrapeResult{
		JobID:        job.ID,
		CompetitorID: job.CompetitorID,
		Status:       job.Status,
		Found:        job.Found,
		Created:      job.Created,
		Updated:      job.Updated,
		Errors:       job.Errors,
		ErrorDetail:  job.ErrorDetail,
		DurationMs:   job.DurationMs,
	}
}
