package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TaxableEventType classifies non-trade taxable occurrences.
type TaxableEventType string

const (
	EventQualifiedDividend TaxableEventType = "DIV_QUALIFIED"
	EventOrdinaryDividend  TaxableEventType = "DIV_ORDINARY"
	EventReturnOfCapital   TaxableEventType = "ROC"
	EventShortTermGain     TaxableEventType = "STCG"
	EventLongTermGain      TaxableEventType = "LTCG"
)

// ParseTaxableEventType validates an event type string against the closed set.
func ParseTaxableEventType(s string) (TaxableEventType, error) {
	switch TaxableEventType(s) {
	case EventQualifiedDividend, EventOrdinaryDividend, EventReturnOfCapital,
		EventShortTermGain, EventLongTermGain:
		return TaxableEventType(s), nil
	}
	return "", fmt.Errorf("unknown taxable event type: %q", s)
}

// TaxableEvent records a tax-relevant occurrence that is not a lot
// disposition: dividends, return of capital, or a realized gain
// classification produced by the matching engine.
type TaxableEvent struct {
	ID            string           `json:"id"`
	AccountID     string           `json:"accountId"`
	TransactionID string           `json:"transactionId"`
	EventType     TaxableEventType `json:"eventType"`
	Amount        decimal.Decimal  `json:"amount"`
	Date          time.Time        `json:"date"`
	CreatedAt     time.Time        `json:"createdAt,omitempty"`
}
