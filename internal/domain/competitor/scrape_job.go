package competitor

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// ScrapeJobStatus represents the lifecycle state of a scrape run
type ScrapeJobStatus string

const (
	ScrapeJobStatusPending   ScrapeJobStatus = "pending"
	ScrapeJobStatusRunning   ScrapeJobStatus = "running"
	ScrapeJobStatusCompleted ScrapeJobStatus = "completed"
	ScrapeJobStatusFailed    ScrapeJobStatus = "failed"
)

// CollectionError captures a failed collection within an otherwise
// successful run
type CollectionError struct {
	Collection string `json:"collection"`
	Message    string `json:"message"`
}

// CollectionErrorList is stored as a JSON array column
type CollectionErrorList []CollectionError

// Value implements driver.Valuer
func (l CollectionErrorList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]CollectionError{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *CollectionErrorList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, l)
	case string:
		return json.Unmarshal([]byte(data), l)
	default:
		return fmt.Errorf("cannot scan %T into CollectionErrorList", value)
	}
}

// ScrapeJob records one scraping run for a competitor. Terminal states
// (completed, failed) are final.
type ScrapeJob struct {
	shared.BaseAggregateRoot
	CompetitorID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status       ScrapeJobStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	Found        int                 `gorm:"not null;default:0"`
	Created      int                 `gorm:"not null;default:0"`
	Updated      int                 `gorm:"not null;default:0"`
	Errors       int                 `gorm:"not null;default:0"`
	ErrorDetail  CollectionErrorList `gorm:"type:jsonb"`
	FailureCause string              `gorm:"type:text"`
	StartedAt    *time.Time
	FinishedAt   *time.Time
	DurationMs   int64 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ScrapeJob) TableName() string {
	return "scrape_jobs"
}

// NewScrapeJob creates a pending job for a competitor
func NewScrapeJob(competitorID uuid.UUID) (*ScrapeJob, error) {
	if competitorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPETITOR", "Competitor ID is required")
	}
	return &ScrapeJob{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompetitorID:      competitorID,
		Status:            ScrapeJobStatusPending,
	}, nil
}

// Start transitions pending -> running
func (j *ScrapeJob) Start() error {
	if j.Status != ScrapeJobStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Scrape job can only start from pending")
	}
	now := time.Now()
	j.Status = ScrapeJobStatusRunning
	j.StartedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()
	return nil
}

// Complete transitions running -> completed with the run's result counts
func (j *ScrapeJob) Complete(found, created, updated, errors int, details []CollectionError) error {
	if j.Status != ScrapeJobStatusRunning {
		return shared.NewDomainError("INVALID_STATE", "Scrape job can only complete from running")
	}
	now := time.Now()
	j.Status = ScrapeJobStatusCompleted
	j.Found = found
	j.Created = created
	j.Updated = updated
	j.Errors = errors
	j.ErrorDetail = CollectionErrorList(details)
	j.FinishedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = now.Sub(*j.StartedAt).Milliseconds()
	}
	j.UpdatedAt = now
	j.IncrementVersion()
	return nil
}

// Fail transitions running -> failed with the captured cause
func (j *ScrapeJob) Fail(cause string) error {
	if j.Status != ScrapeJobStatusRunning && j.Status != ScrapeJobStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Scrape job is already terminal")
	}
	now := time.Now()
	j.Status = ScrapeJobStatusFailed
	j.FailureCause = cause
	j.FinishedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = now.Sub(*j.StartedAt).Milliseconds()
	}
	j.UpdatedAt = now
	j.IncrementVersion()
	return nil
}

// IsTerminal reports whether the job reached a final state
func (j *ScrapeJob) IsTerminal() bool {
	return j.Status == ScrapeJobStatusCompleted || j.Status == ScrapeJobStatusFailed
}
