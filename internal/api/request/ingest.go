package request

import "github.com/shopspring/decimal"

// IngestTransactionRequest mirrors the "transaction created" notification
// published by the portfolio ledger. Quantity, price and fees accept JSON
// numbers or strings; dates accept YYYY-MM-DD or RFC 3339.
type IngestTransactionRequest struct {
	ReferenceID    string          `json:"referenceId"`
	PortfolioID    string          `json:"portfolioId"`
	InvestmentID   string          `json:"investmentId"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	Fees           decimal.Decimal `json:"fees"`
	Date           string          `json:"date"`
	SettlementDate *string         `json:"settlementDate,omitempty"`
	SpecificLotIDs []string        `json:"specificLotIds,omitempty"`
}
