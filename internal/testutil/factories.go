package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JohnPierce/PersonalFinance/internal/model"
)

// AccountBuilder provides a fluent interface for creating test taxable accounts.
//
// Example usage:
//
//	// Simple creation with defaults (FIFO, wash sale tracking on)
//	account := testutil.NewAccount().Build(t, db)
//
//	// Customized account
//	account := testutil.NewAccount().
//	    WithMethod(model.CostBasisHIFO).
//	    WithoutWashSaleTracking().
//	    Build(t, db)
type AccountBuilder struct {
	ID               string
	PortfolioID      string
	CostBasisMethod  model.CostBasisMethod
	WashSaleTracking bool
	AccountType      model.AccountType
	Category         model.AccountCategory
}

// NewAccount creates an AccountBuilder with sensible defaults.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		ID:               MakeID(),
		PortfolioID:      MakeID(),
		CostBasisMethod:  model.CostBasisFIFO,
		WashSaleTracking: true,
		AccountType:      model.AccountTypeTaxable,
		Category:         model.CategoryBrokerage,
	}
}

// WithID sets a custom ID.
func (b *AccountBuilder) WithID(id string) *AccountBuilder {
	b.ID = id
	return b
}

// WithPortfolioID sets a custom portfolio ID.
func (b *AccountBuilder) WithPortfolioID(portfolioID string) *AccountBuilder {
	b.PortfolioID = portfolioID
	return b
}

// WithMethod sets the cost basis method.
func (b *AccountBuilder) WithMethod(method model.CostBasisMethod) *AccountBuilder {
	b.CostBasisMethod = method
	return b
}

// WithoutWashSaleTracking disables wash sale tracking.
func (b *AccountBuilder) WithoutWashSaleTracking() *AccountBuilder {
	b.WashSaleTracking = false
	return b
}

// WithAccountType sets the account type and derives its category.
func (b *AccountBuilder) WithAccountType(accountType model.AccountType) *AccountBuilder {
	b.AccountType = accountType
	b.Category = model.CategoryFor(accountType)
	return b
}

// Build creates the account in the database and returns it.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.TaxableAccount {
	t.Helper()

	query := `
		INSERT INTO taxable_account (id, portfolio_id, cost_basis_method, wash_sale_tracking, account_type, category)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.PortfolioID, string(b.CostBasisMethod), b.WashSaleTracking,
		string(b.AccountType), string(b.Category))
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return model.TaxableAccount{
		ID:               b.ID,
		PortfolioID:      b.PortfolioID,
		CostBasisMethod:  b.CostBasisMethod,
		WashSaleTracking: b.WashSaleTracking,
		AccountType:      b.AccountType,
		Category:         b.Category,
	}
}

// LotBuilder provides a fluent interface for creating test tax lots.
//
// Example usage:
//
//	lot := testutil.NewLot(account.ID).
//	    WithQuantity("100").
//	    WithCostBasis("1500").
//	    AcquiredOn(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)).
//	    Build(t, db)
type LotBuilder struct {
	ID              string
	AccountID       string
	TransactionID   string
	InvestmentID    string
	Quantity        decimal.Decimal
	AcquisitionDate time.Time
	CostBasis       decimal.Decimal
	Remaining       decimal.Decimal
	AdjustedBasis   decimal.Decimal
	remainingSet    bool
}

// NewLot creates a LotBuilder with sensible defaults for the given account.
func NewLot(accountID string) *LotBuilder {
	return &LotBuilder{
		ID:              MakeID(),
		AccountID:       accountID,
		TransactionID:   MakeID(),
		InvestmentID:    MakeID(),
		Quantity:        decimal.NewFromInt(100),
		AcquisitionDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		CostBasis:       decimal.NewFromInt(1000),
	}
}

// WithID sets a custom ID.
func (b *LotBuilder) WithID(id string) *LotBuilder {
	b.ID = id
	return b
}

// WithTransactionID sets the acquisition transaction ID.
func (b *LotBuilder) WithTransactionID(transactionID string) *LotBuilder {
	b.TransactionID = transactionID
	return b
}

// WithInvestmentID sets the investment the lot holds.
func (b *LotBuilder) WithInvestmentID(investmentID string) *LotBuilder {
	b.InvestmentID = investmentID
	return b
}

// WithQuantity sets the lot's original quantity.
func (b *LotBuilder) WithQuantity(quantity string) *LotBuilder {
	b.Quantity = decimal.RequireFromString(quantity)
	return b
}

// WithCostBasis sets the lot's total cost basis.
func (b *LotBuilder) WithCostBasis(costBasis string) *LotBuilder {
	b.CostBasis = decimal.RequireFromString(costBasis)
	return b
}

// WithRemaining sets the remaining quantity independently of the original.
func (b *LotBuilder) WithRemaining(remaining string) *LotBuilder {
	b.Remaining = decimal.RequireFromString(remaining)
	b.remainingSet = true
	return b
}

// AcquiredOn sets the acquisition date.
func (b *LotBuilder) AcquiredOn(date time.Time) *LotBuilder {
	b.AcquisitionDate = date
	return b
}

// Build creates the lot in the database and returns it. Remaining quantity
// defaults to the full quantity and adjusted basis to the cost basis.
func (b *LotBuilder) Build(t *testing.T, db *sql.DB) model.TaxLot {
	t.Helper()

	if !b.remainingSet {
		b.Remaining = b.Quantity
	}
	if b.AdjustedBasis.IsZero() {
		b.AdjustedBasis = b.CostBasis
	}

	query := `
		INSERT INTO tax_lot (id, account_id, transaction_id, investment_id, quantity,
			acquisition_date, cost_basis, remaining_quantity, adjusted_basis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.AccountID, b.TransactionID, b.InvestmentID,
		b.Quantity.String(), b.AcquisitionDate.UTC().Format(time.RFC3339),
		b.CostBasis.String(), b.Remaining.String(), b.AdjustedBasis.String())
	if err != nil {
		t.Fatalf("Failed to create test lot: %v", err)
	}

	return model.TaxLot{
		ID:                b.ID,
		AccountID:         b.AccountID,
		TransactionID:     b.TransactionID,
		InvestmentID:      b.InvestmentID,
		Quantity:          b.Quantity,
		AcquisitionDate:   b.AcquisitionDate,
		CostBasis:         b.CostBasis,
		RemainingQuantity: b.Remaining,
		AdjustedBasis:     b.AdjustedBasis,
	}
}

// DispositionBuilder provides a fluent interface for creating test dispositions.
type DispositionBuilder struct {
	ID                string
	TaxLotID          string
	SaleTransactionID string
	Quantity          decimal.Decimal
	Proceeds          decimal.Decimal
	Date              time.Time
	HoldingPeriod     time.Duration
}

// NewDisposition creates a DispositionBuilder with sensible defaults for the
// given lot.
func NewDisposition(taxLotID string) *DispositionBuilder {
	return &DispositionBuilder{
		ID:                MakeID(),
		TaxLotID:          taxLotID,
		SaleTransactionID: MakeID(),
		Quantity:          decimal.NewFromInt(10),
		Proceeds:          decimal.NewFromInt(100),
		Date:              time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		HoldingPeriod:     100 * 24 * time.Hour,
	}
}

// WithSaleTransactionID sets the sale transaction ID.
func (b *DispositionBuilder) WithSaleTransactionID(saleTransactionID string) *DispositionBuilder {
	b.SaleTransactionID = saleTransactionID
	return b
}

// WithQuantity sets the disposed quantity.
func (b *DispositionBuilder) WithQuantity(quantity string) *DispositionBuilder {
	b.Quantity = decimal.RequireFromString(quantity)
	return b
}

// WithProceeds sets the apportioned proceeds.
func (b *DispositionBuilder) WithProceeds(proceeds string) *DispositionBuilder {
	b.Proceeds = decimal.RequireFromString(proceeds)
	return b
}

// OnDate sets the disposition date.
func (b *DispositionBuilder) OnDate(date time.Time) *DispositionBuilder {
	b.Date = date
	return b
}

// WithHoldingPeriod sets the holding period.
func (b *DispositionBuilder) WithHoldingPeriod(period time.Duration) *DispositionBuilder {
	b.HoldingPeriod = period
	return b
}

// Build creates the disposition in the database and returns it.
func (b *DispositionBuilder) Build(t *testing.T, db *sql.DB) model.TaxLotDisposition {
	t.Helper()

	query := `
		INSERT INTO tax_lot_disposition (id, tax_lot_id, sale_transaction_id, quantity,
			proceeds, date, holding_period_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.TaxLotID, b.SaleTransactionID,
		b.Quantity.String(), b.Proceeds.String(),
		b.Date.UTC().Format(time.RFC3339), int64(b.HoldingPeriod.Seconds()))
	if err != nil {
		t.Fatalf("Failed to create test disposition: %v", err)
	}

	return model.TaxLotDisposition{
		ID:                b.ID,
		TaxLotID:          b.TaxLotID,
		SaleTransactionID: b.SaleTransactionID,
		Quantity:          b.Quantity,
		Proceeds:          b.Proceeds,
		Date:              b.Date,
		HoldingPeriod:     b.HoldingPeriod,
	}
}

// CreateWashSale creates a wash sale record linking a disposition and a
// replacement lot.
func CreateWashSale(t *testing.T, db *sql.DB, dispositionID, replacementLotID, disallowedLoss string, windowStart, windowEnd time.Time) model.WashSale {
	t.Helper()

	washSale := model.WashSale{
		ID:               MakeID(),
		DispositionID:    dispositionID,
		ReplacementLotID: replacementLotID,
		DisallowedLoss:   decimal.RequireFromString(disallowedLoss),
		WindowStart:      windowStart,
		WindowEnd:        windowEnd,
	}

	query := `
		INSERT INTO wash_sale (id, disposition_id, replacement_lot_id, disallowed_loss,
			wash_sale_window_start, wash_sale_window_end)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, washSale.ID, washSale.DispositionID, washSale.ReplacementLotID,
		washSale.DisallowedLoss.String(),
		washSale.WindowStart.UTC().Format(time.RFC3339),
		washSale.WindowEnd.UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test wash sale: %v", err)
	}

	return washSale
}

// CreateTaxableEvent creates a taxable event record for an account.
func CreateTaxableEvent(t *testing.T, db *sql.DB, accountID string, eventType model.TaxableEventType, amount string, date time.Time) model.TaxableEvent {
	t.Helper()

	event := model.TaxableEvent{
		ID:            MakeID(),
		AccountID:     accountID,
		TransactionID: MakeID(),
		EventType:     eventType,
		Amount:        decimal.RequireFromString(amount),
		Date:          date,
	}

	query := `
		INSERT INTO taxable_event (id, account_id, transaction_id, event_type, amount, date)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, event.ID, event.AccountID, event.TransactionID,
		string(event.EventType), event.Amount.String(), event.Date.UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test taxable event: %v", err)
	}

	return event
}

// SellTransaction builds a SELL transaction for matching tests.
func SellTransaction(accountPortfolioID, investmentID, quantity, price string, date time.Time) model.Transaction {
	return model.Transaction{
		ReferenceID:     MakeID(),
		AccountID:       accountPortfolioID,
		InvestmentID:    investmentID,
		Type:            model.TransactionSell,
		Quantity:        decimal.RequireFromString(quantity),
		Price:           decimal.RequireFromString(price),
		Fees:            decimal.Zero,
		TransactionDate: date,
	}
}
