package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LongTermHolding is the minimum holding period for long-term gain treatment.
// Fixed policy, not configurable.
const LongTermHolding = 365 * 24 * time.Hour

// TaxLotDisposition records the sale of units out of one specific tax lot.
// A single SELL transaction produces one disposition per lot it was matched
// against. Immutable after creation except for holding-period back-fill.
type TaxLotDisposition struct {
	ID                string          `json:"id"`
	TaxLotID          string          `json:"taxLotId"`
	SaleTransactionID string          `json:"saleTransactionId"`
	Quantity          decimal.Decimal `json:"quantity"`
	Proceeds          decimal.Decimal `json:"proceeds"`
	Date              time.Time       `json:"date"`
	HoldingPeriod     time.Duration   `json:"holdingPeriod"`
	CreatedAt         time.Time       `json:"createdAt,omitempty"`
}

// IsLongTerm reports whether the disposition qualifies for long-term
// treatment: an exact duration of at least 365 days, not a calendar-year
// comparison. A holding period of exactly 365 days is long-term.
func (d TaxLotDisposition) IsLongTerm() bool {
	return d.HoldingPeriod >= LongTermHolding
}
