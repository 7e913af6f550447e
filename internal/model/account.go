package model

import (
	"fmt"
	"time"
)

// CostBasisMethod selects which open tax lots a sale draws down.
type CostBasisMethod string

const (
	// CostBasisFIFO matches sales against the oldest lots first.
	CostBasisFIFO CostBasisMethod = "FIFO"

	// CostBasisLIFO matches sales against the newest lots first.
	CostBasisLIFO CostBasisMethod = "LIFO"

	// CostBasisHIFO matches sales against the lots with the highest
	// adjusted basis per share first.
	CostBasisHIFO CostBasisMethod = "HIFO"

	// CostBasisSpecific requires the caller to designate the exact lots.
	CostBasisSpecific CostBasisMethod = "SPECIFIC"
)

// ParseCostBasisMethod validates a cost basis method string and returns the
// typed value. Unknown values are rejected, never coerced to a default.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch CostBasisMethod(s) {
	case CostBasisFIFO, CostBasisLIFO, CostBasisHIFO, CostBasisSpecific:
		return CostBasisMethod(s), nil
	}
	return "", fmt.Errorf("unknown cost basis method: %q", s)
}

// TaxableAccount links a brokerage portfolio to tax tracking and carries its
// tax settings. At most one TaxableAccount exists per portfolio.
type TaxableAccount struct {
	ID               string          `json:"id"`
	PortfolioID      string          `json:"portfolioId"`
	CostBasisMethod  CostBasisMethod `json:"costBasisMethod"`
	WashSaleTracking bool            `json:"washSaleTracking"`
	AccountType      AccountType     `json:"accountType,omitempty"`
	Category         AccountCategory `json:"category,omitempty"`
	CreatedAt        time.Time       `json:"createdAt,omitempty"`
}
