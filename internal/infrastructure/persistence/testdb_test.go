package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pricewatch/backend/internal/domain/alerting"
	"github.com/pricewatch/backend/internal/domain/catalog"
	"github.com/pricewatch/backend/internal/domain/competitor"
	"github.com/pricewatch/backend/internal/domain/matching"
)

// setupTestDB opens an in-memory SQLite database migrated with every
// aggregate the repositories persist.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&catalog.Product{},
		&catalog.MonitoredBrand{},
		&competitor.Competitor{},
		&competitor.Listing{},
		&competitor.PriceHistoryEntry{},
		&competitor.ScrapeJob{},
		&matching.Match{},
		&alerting.Alert{},
	)
	require.NoError(t, err)

	return db
}
