package report

import (
	"testing"
	"time"

	"inventory-service/internal/models"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func product(status string, quantity, daysToExpiry int) models.Product {
	return models.Product{
		Status:    status,
		Quantity:  quantity,
		ExpiresAt: now.AddDate(0, 0, daysToExpiry),
	}
}

func TestBuildInventorySummaryStatusCounts(t *testing.T) {
	products := []models.Product{
		product(models.StatusAvailable, 10, 90),
		product(models.StatusAvailable, 5, 90),
		product(models.StatusLow, 1, 90),
		product(models.StatusUnavailable, 0, 90),
	}

	summary := BuildInventorySummary(products, now, 30)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Available)
	assert.Equal(t, 1, summary.Low)
	assert.Equal(t, 1, summary.Unavailable)
	assert.Equal(t, 0, summary.NearExpiry)
}

func TestBuildInventorySummaryNearExpiry(t *testing.T) {
	products := []models.Product{
		product(models.StatusAvailable, 1, 30),  // on the threshold
		product(models.StatusAvailable, 1, 31),  // just outside
		product(models.StatusAvailable, 1, 0),   // today
		product(models.StatusAvailable, 1, -10), // recently expired still counts
		product(models.StatusAvailable, 1, -40), // long expired does not
	}

	summary := BuildInventorySummary(products, now, 30)
	assert.Equal(t, 3, summary.NearExpiry)
}

func TestBuildDashboardSummaryQuantityBuckets(t *testing.T) {
	products := []models.Product{
		product(models.StatusAvailable, 5, 90),
		product(models.StatusAvailable, 2, 90),
		product(models.StatusLow, 1, 90),
		product(models.StatusUnavailable, 0, 90),
	}

	summary := BuildDashboardSummary(products, now, 2, 3)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.InStock)
	assert.Equal(t, 1, summary.LowStock)
	assert.Equal(t, 1, summary.OutOfStock)
}

func TestBuildDashboardSummaryExpiryBuckets(t *testing.T) {
	products := []models.Product{
		product(models.StatusAvailable, 1, -1), // expired
		product(models.StatusAvailable, 1, 0),  // expires today -> soon
		product(models.StatusAvailable, 1, 3),  // on the warn threshold
		product(models.StatusAvailable, 1, 4),  // safe
	}

	summary := BuildDashboardSummary(products, now, 2, 3)
	assert.Equal(t, 1, summary.Expired)
	assert.Equal(t, 2, summary.ExpiringSoon)
	assert.Equal(t, 1, summary.Safe)
}

func TestEmptyListing(t *testing.T) {
	inv := BuildInventorySummary(nil, now, 30)
	assert.Equal(t, InventorySummary{}, inv)

	dash := BuildDashboardSummary(nil, now, 2, 3)
	assert.Equal(t, DashboardSummary{}, dash)
}
