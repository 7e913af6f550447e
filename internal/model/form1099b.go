package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Form1099B holds the annual 1099-B totals for one (account, tax year) pair.
// Totals are derived entirely from the linked dispositions and their wash
// sales; CalculateTotals in the service layer rebuilds them from scratch on
// every request, never incrementally.
//
// Uncovered totals are carried as zero-filled placeholders: the calculation
// path only tracks covered positions.
type Form1099B struct {
	ID        string `json:"id"`
	AccountID string `json:"accountId"`
	TaxYear   int    `json:"taxYear"`

	STCoveredProceeds   decimal.Decimal `json:"stCoveredProceeds"`
	STCoveredBasis      decimal.Decimal `json:"stCoveredBasis"`
	STUncoveredProceeds decimal.Decimal `json:"stUncoveredProceeds"`

	LTCoveredProceeds   decimal.Decimal `json:"ltCoveredProceeds"`
	LTCoveredBasis      decimal.Decimal `json:"ltCoveredBasis"`
	LTUncoveredProceeds decimal.Decimal `json:"ltUncoveredProceeds"`

	WashSaleAdjustments decimal.Decimal `json:"washSaleAdjustments"`

	ComputedAt time.Time `json:"computedAt,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}
