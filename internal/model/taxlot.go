package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxLot represents a specific acquisition of securities tracked for tax
// purposes. One lot is opened per BUY (or reinvestment) transaction and is
// never physically deleted, so the disposition history stays auditable.
//
// RemainingQuantity only decreases through dispositions that reference this
// lot. AdjustedBasis starts equal to CostBasis and only grows, by wash-sale
// disallowed-loss additions.
type TaxLot struct {
	ID                string          `json:"id"`
	AccountID         string          `json:"accountId"`
	TransactionID     string          `json:"transactionId"`
	InvestmentID      string          `json:"investmentId"`
	Quantity          decimal.Decimal `json:"quantity"`
	AcquisitionDate   time.Time       `json:"acquisitionDate"`
	CostBasis         decimal.Decimal `json:"costBasis"`
	RemainingQuantity decimal.Decimal `json:"remainingQuantity"`
	AdjustedBasis     decimal.Decimal `json:"adjustedBasis"`
	CreatedAt         time.Time       `json:"createdAt,omitempty"`
}

// CostBasisPerShare returns the per-share basis from the lot's original
// quantity and cost basis, not the adjusted remaining amounts. Wash-sale loss
// calculation is defined against the original figures.
func (l TaxLot) CostBasisPerShare() decimal.Decimal {
	if l.Quantity.IsZero() {
		return decimal.Zero
	}
	return l.CostBasis.Div(l.Quantity)
}

// AdjustedBasisPerShare returns the per-share adjusted basis from the lot's
// original quantity. Used for HIFO candidate ordering.
func (l TaxLot) AdjustedBasisPerShare() decimal.Decimal {
	if l.Quantity.IsZero() {
		return decimal.Zero
	}
	return l.AdjustedBasis.Div(l.Quantity)
}
