// Package report computes read-only dashboard aggregations over the product
// collection. Nothing here mutates state; summaries are rebuilt from the full
// listing on every call.
package report

import (
	"time"

	"inventory-service/internal/models"
)

// InventorySummary partitions products by their stored availability status
// and counts those close to their expiry date.
type InventorySummary struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Low         int `json:"low"`
	Unavailable int `json:"unavailable"`
	NearExpiry  int `json:"near_expiry"`
}

// DashboardSummary partitions products by on-hand quantity and by expiry
// proximity.
type DashboardSummary struct {
	Total        int `json:"total"`
	InStock      int `json:"in_stock"`
	LowStock     int `json:"low_stock"`
	OutOfStock   int `json:"out_of_stock"`
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiring_soon"`
	Safe         int `json:"safe"`
}

// BuildInventorySummary counts products per availability status plus those
// whose expiry date falls within nearExpiryDays of now.
func BuildInventorySummary(products []models.Product, now time.Time, nearExpiryDays int) InventorySummary {
	summary := InventorySummary{Total: len(products)}

	for _, p := range products {
		switch p.Status {
		case models.StatusAvailable:
			summary.Available++
		case models.StatusLow:
			summary.Low++
		case models.StatusUnavailable:
			summary.Unavailable++
		}

		days := daysUntil(now, p.ExpiresAt)
		if days < 0 {
			days = -days
		}
		if days <= nearExpiryDays {
			summary.NearExpiry++
		}
	}
	return summary
}

// BuildDashboardSummary buckets products by quantity against the low-stock
// threshold, and by expiry into expired / expiring within warnDays / safe.
// The buckets within each partition are disjoint.
func BuildDashboardSummary(products []models.Product, now time.Time, lowThreshold, warnDays int) DashboardSummary {
	summary := DashboardSummary{Total: len(products)}

	for _, p := range products {
		switch {
		case p.Quantity == 0:
			summary.OutOfStock++
		case p.Quantity < lowThreshold:
			summary.LowStock++
		default:
			summary.InStock++
		}

		days := daysUntil(now, p.ExpiresAt)
		switch {
		case days < 0:
			summary.Expired++
		case days <= warnDays:
			summary.ExpiringSoon++
		default:
			summary.Safe++
		}
	}
	return summary
}

// daysUntil returns whole calendar days from now until t, negative if t is past
func daysUntil(now, t time.Time) int {
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tDate := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(tDate.Sub(nowDate).Hours() / 24)
}
