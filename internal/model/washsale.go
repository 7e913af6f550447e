package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WashSaleWindow is the period before and after a loss sale during which a
// replacement purchase disallows the loss.
const WashSaleWindow = 30 * 24 * time.Hour

// WashSale records one (disposition, replacement lot) pair inside the
// wash-sale window. The disallowed loss is the full realized loss of the
// disposition; it is not pro-rated when several replacement lots match.
// Immutable after creation.
type WashSale struct {
	ID               string          `json:"id"`
	DispositionID    string          `json:"dispositionId"`
	ReplacementLotID string          `json:"replacementLotId"`
	DisallowedLoss   decimal.Decimal `json:"disallowedLoss"`
	WindowStart      time.Time       `json:"washSaleWindowStart"`
	WindowEnd        time.Time       `json:"washSaleWindowEnd"`
	CreatedAt        time.Time       `json:"createdAt,omitempty"`
}

// InWindow reports whether an acquisition date falls inside the wash-sale
// window, boundaries inclusive: a replacement bought exactly 30 days before
// or after the disposition counts.
func InWindow(acquisition, windowStart, windowEnd time.Time) bool {
	return !acquisition.Before(windowStart) && !acquisition.After(windowEnd)
}

// WashSaleSummary aggregates an account's wash sales for one tax year.
type WashSaleSummary struct {
	TaxYear               int             `json:"taxYear"`
	WashSaleCount         int             `json:"washSaleCount"`
	TotalDisallowedLosses decimal.Decimal `json:"totalDisallowedLosses"`
	AverageDisallowedLoss decimal.Decimal `json:"averageDisallowedLoss"`
}
