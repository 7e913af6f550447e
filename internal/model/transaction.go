package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of ledger transaction the engine reacts to.
type TransactionType string

const (
	TransactionBuy      TransactionType = "BUY"
	TransactionSell     TransactionType = "SELL"
	TransactionDividend TransactionType = "DIVIDEND"
	TransactionSplit    TransactionType = "SPLIT"
	TransactionTransfer TransactionType = "TRANSFER"
	TransactionFee      TransactionType = "FEE"
	TransactionOther    TransactionType = "OTHER"
)

// ParseTransactionType validates a transaction type string.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionBuy, TransactionSell, TransactionDividend,
		TransactionSplit, TransactionTransfer, TransactionFee, TransactionOther:
		return TransactionType(s), nil
	}
	return "", fmt.Errorf("unknown transaction type: %q", s)
}

// Transaction is the record consumed from the upstream portfolio ledger via
// "transaction created" notifications. The engine never originates these;
// ReferenceID is the ledger's stable UUID used for idempotent replay.
type Transaction struct {
	ReferenceID     string          `json:"referenceId"`
	AccountID       string          `json:"accountId"`
	InvestmentID    string          `json:"investmentId"`
	Type            TransactionType `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Fees            decimal.Decimal `json:"fees"`
	TransactionDate time.Time       `json:"transactionDate"`
	SettlementDate  *time.Time      `json:"settlementDate,omitempty"`
}

// GrossAmount is quantity times price, before fees.
func (t Transaction) GrossAmount() decimal.Decimal {
	return t.Quantity.Mul(t.Price)
}
