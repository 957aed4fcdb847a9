package competitor

import (
	"strings"
	"time"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// DefaultRateLimit is the delay between collection fetches when the
// competitor does not specify one.
const DefaultRateLimit = 2000 * time.Millisecond

// Competitor is a scraping target configuration
type Competitor struct {
	shared.BaseAggregateRoot
	Name          string         `gorm:"type:varchar(200);not null"`
	Domain        string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	RateLimitMs   int            `gorm:"not null;default:2000"`
	Collections   CollectionList `gorm:"type:jsonb"`
	Active        bool           `gorm:"not null;index"`
	LastScrapedAt *time.Time
}

// TableName returns the table name for GORM
func (Competitor) TableName() string {
	return "competitors"
}

// NewCompetitor creates a new scraping target
func NewCompetitor(name, domain string, collections []string) (*Competitor, error) {
	name = strings.TrimSpace(name)
	domain = strings.TrimSpace(strings.ToLower(domain))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Competitor name cannot be empty")
	}
	if domain == "" {
		return nil, shared.NewDomainError("INVALID_DOMAIN", "Competitor domain cannot be empty")
	}

	return &Competitor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Domain:            domain,
		RateLimitMs:       int(DefaultRateLimit / time.Millisecond),
		Collections:       CollectionList(collections),
		Active:            true,
	}, nil
}

// RateLimit returns the delay between collection fetches
func (c *Competitor) RateLimit() time.Duration {
	if c.RateLimitMs <= 0 {
		return DefaultRateLimit
	}
	return time.Duration(c.RateLimitMs) * time.Millisecond
}

// SetRateLimit overrides the per-collection fetch delay
func (c *Competitor) SetRateLimit(d time.Duration) error {
	if d < 0 {
		return shared.NewDomainError("INVALID_RATE_LIMIT", "Rate limit cannot be negative")
	}
	c.RateLimitMs = int(d / time.Millisecond)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetCollections replaces the monitored collection list
func (c *Competitor) SetCollections(collections []string) {
	c.Collections = CollectionList(collections)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// MarkScraped records the completion time of the latest scrape run
func (c *Competitor) MarkScraped(at time.Time) {
	c.LastScrapedAt = &at
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate enables scraping for the competitor
func (c *Competitor) Activate() {
	if c.Active {
		return
	}
	c.Active = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Deactivate disables scraping for the competitor
func (c *Competitor) Deactivate() {
	if !c.Active {
		return
	}
	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
