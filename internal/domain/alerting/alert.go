package alerting

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// AlertStatus represents the lifecycle state of a price alert
type AlertStatus string

const (
	AlertStatusUnread    AlertStatus = "unread"
	AlertStatusResolved  AlertStatus = "resolved"
	AlertStatusDismissed AlertStatus = "dismissed"
)

// Alert is a detected MAP violation tied to exactly one product match.
// At most one alert per match may be outside {resolved, dismissed} at any
// time; rescans update the active alert instead of creating duplicates.
type Alert struct {
	shared.BaseAggregateRoot
	MatchID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title      string          `gorm:"type:varchar(500);not null"`
	Message    string          `gorm:"type:text"`
	Severity   Severity        `gorm:"type:varchar(20);not null;index"`
	OldPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PriceDelta decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status     AlertStatus     `gorm:"type:varchar(20);not null;default:'unread';index"`
	ResolvedAt *time.Time
}

// TableName returns the table name for GORM
func (Alert) TableName() string {
	return "price_alerts"
}

// NewAlert creates an unread alert for a violating match. OldPrice is the
// MAP, NewPrice the competitor price.
func NewAlert(matchID uuid.UUID, title, message string, severity Severity, mapPrice, competitorPrice decimal.Decimal) (*Alert, error) {
	if matchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATCH", "Match ID is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Alert title cannot be empty")
	}
	if !severity.IsValid() {
		return nil, shared.NewDomainError("INVALID_SEVERITY", "Unknown alert severity")
	}

	return &Alert{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MatchID:           matchID,
		Title:             strings.TrimSpace(title),
		Message:           message,
		Severity:          severity,
		OldPrice:          mapPrice,
		NewPrice:          competitorPrice,
		PriceDelta:        mapPrice.Sub(competitorPrice),
		Status:            AlertStatusUnread,
	}, nil
}

// Refresh updates an active alert with the latest scan figures. Terminal
// alerts reject the update; rescans never reopen them.
func (a *Alert) Refresh(title, message string, severity Severity, mapPrice, competitorPrice decimal.Decimal) error {
	if a.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Resolved or dismissed alerts cannot be refreshed")
	}
	if !severity.IsValid() {
		return shared.NewDomainError("INVALID_SEVERITY", "Unknown alert severity")
	}

	a.Title = strings.TrimSpace(title)
	a.Message = message
	a.Severity = severity
	a.OldPrice = mapPrice
	a.NewPrice = competitorPrice
	a.PriceDelta = mapPrice.Sub(competitorPrice)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Resolve transitions unread -> resolved
func (a *Alert) Resolve() error {
	if a.Status == AlertStatusResolved {
		return shared.NewDomainError("ALREADY_RESOLVED", "Alert is already resolved")
	}
	if a.Status == AlertStatusDismissed {
		return shared.NewDomainError("INVALID_STATE", "Dismissed alerts cannot be resolved")
	}

	now := time.Now()
	a.Status = AlertStatusResolved
	a.ResolvedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}

// Dismiss transitions unread -> dismissed
func (a *Alert) Dismiss() error {
	if a.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Alert is already terminal")
	}

	now := time.Now()
	a.Status = AlertStatusDismissed
	a.ResolvedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}

// IsTerminal reports whether the alert reached a final state
func (a *Alert) IsTerminal() bool {
	return a.Status == AlertStatusResolved || a.Status == AlertStatusDismissed
}
