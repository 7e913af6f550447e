package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/model"
)

// TaxLotRepository provides data access methods for the tax_lot table.
// Lots are append-only except for the two fields the engine is allowed to
// mutate: remaining_quantity (matching engine) and adjusted_basis (wash sale
// detector). Rows are never deleted so the audit trail stays intact.
type TaxLotRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTaxLotRepository creates a new TaxLotRepository with the provided database connection.
func NewTaxLotRepository(db *sql.DB) *TaxLotRepository {
	return &TaxLotRepository{db: db}
}

// WithTx returns a new TaxLotRepository scoped to the provided transaction.
func (r *TaxLotRepository) WithTx(tx *sql.Tx) *TaxLotRepository {
	return &TaxLotRepository{db: r.db, tx: tx}
}

func (r *TaxLotRepository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const taxLotColumns = `id, account_id, transaction_id, investment_id, quantity,
	acquisition_date, cost_basis, remaining_quantity, adjusted_basis, created_at`

// Insert creates a new tax lot record.
func (r *TaxLotRepository) Insert(ctx context.Context, lot *model.TaxLot) error {
	query := `
		INSERT INTO tax_lot (id, account_id, transaction_id, investment_id, quantity,
			acquisition_date, cost_basis, remaining_quantity, adjusted_basis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.querier().ExecContext(ctx, query,
		lot.ID,
		lot.AccountID,
		lot.TransactionID,
		lot.InvestmentID,
		lot.Quantity.String(),
		lot.AcquisitionDate.UTC().Format(time.RFC3339),
		lot.CostBasis.String(),
		lot.RemainingQuantity.String(),
		lot.AdjustedBasis.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert tax lot: %w", err)
	}

	return nil
}

// GetByID retrieves a single tax lot by its ID.
// Returns ErrLotNotFound if no lot with the given ID exists.
func (r *TaxLotRepository) GetByID(lotID string) (model.TaxLot, error) {
	query := `SELECT ` + taxLotColumns + ` FROM tax_lot WHERE id = ?`

	lot, err := scanTaxLot(r.querier().QueryRow(query, lotID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.TaxLot{}, apperrors.ErrLotNotFound
	}
	return lot, err
}

// GetByTransactionID retrieves the lot opened by a specific acquisition
// transaction. Returns ErrLotNotFound if the transaction opened no lot.
// Used for idempotent replay of "transaction created" notifications.
func (r *TaxLotRepository) GetByTransactionID(transactionID string) (model.TaxLot, error) {
	query := `SELECT ` + taxLotColumns + ` FROM tax_lot WHERE transaction_id = ?`

	lot, err := scanTaxLot(r.querier().QueryRow(query, transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.TaxLot{}, apperrors.ErrLotNotFound
	}
	return lot, err
}

// GetOpenLots retrieves all lots of an investment in an account that still
// have remaining quantity, ordered by acquisition date then creation order.
// The creation-order secondary sort is the stable tie-break the matching
// engine relies on; method-specific reordering happens in the service layer.
func (r *TaxLotRepository) GetOpenLots(accountID, investmentID string) ([]model.TaxLot, error) {
	query := `
		SELECT ` + taxLotColumns + `
		FROM tax_lot
		WHERE account_id = ?
		AND investment_id = ?
		AND CAST(remaining_quantity AS REAL) > 0
		ORDER BY acquisition_date ASC, created_at ASC, rowid ASC
	`

	return r.queryLots(query, accountID, investmentID)
}

// GetLotsInWindow retrieves all lots of an investment acquired inside
// [windowStart, windowEnd], boundaries inclusive, excluding one lot (the lot
// being disposed). These are the wash-sale replacement candidates.
func (r *TaxLotRepository) GetLotsInWindow(accountID, investmentID string, windowStart, windowEnd time.Time, excludeLotID string) ([]model.TaxLot, error) {
	query := `
		SELECT ` + taxLotColumns + `
		FROM tax_lot
		WHERE account_id = ?
		AND investment_id = ?
		AND acquisition_date >= ?
		AND acquisition_date <= ?
		AND id != ?
		ORDER BY acquisition_date ASC, created_at ASC, rowid ASC
	`

	return r.queryLots(query,
		accountID,
		investmentID,
		windowStart.UTC().Format(time.RFC3339),
		windowEnd.UTC().Format(time.RFC3339),
		excludeLotID,
	)
}

// GetByAccount retrieves all lots of an account, ordered by acquisition date.
// If accountID is empty, all lots are returned.
func (r *TaxLotRepository) GetByAccount(accountID string) ([]model.TaxLot, error) {
	if accountID == "" {
		return r.queryLots(`SELECT ` + taxLotColumns + ` FROM tax_lot ORDER BY acquisition_date ASC, created_at ASC`)
	}

	query := `
		SELECT ` + taxLotColumns + `
		FROM tax_lot
		WHERE account_id = ?
		ORDER BY acquisition_date ASC, created_at ASC
	`
	return r.queryLots(query, accountID)
}

// UpdateRemaining writes a lot's new remaining quantity. The caller holds the
// account's write lock and has validated sufficiency; this is the atomic
// write half of the read-validate-write cycle.
func (r *TaxLotRepository) UpdateRemaining(ctx context.Context, lotID string, remaining decimal.Decimal) error {
	return r.updateField(ctx, "remaining_quantity", lotID, remaining)
}

// UpdateAdjustedBasis writes a lot's new adjusted basis after a wash-sale
// disallowed-loss addition.
func (r *TaxLotRepository) UpdateAdjustedBasis(ctx context.Context, lotID string, adjusted decimal.Decimal) error {
	return r.updateField(ctx, "adjusted_basis", lotID, adjusted)
}

func (r *TaxLotRepository) updateField(ctx context.Context, column, lotID string, value decimal.Decimal) error {
	query := `UPDATE tax_lot SET ` + column + ` = ? WHERE id = ?`

	result, err := r.querier().ExecContext(ctx, query, value.String(), lotID)
	if err != nil {
		return fmt.Errorf("failed to update tax lot %s: %w", column, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrLotNotFound
	}

	return nil
}

func (r *TaxLotRepository) queryLots(query string, args ...any) ([]model.TaxLot, error) {
	rows, err := r.querier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax_lot table: %w", err)
	}
	defer rows.Close()

	lots := []model.TaxLot{}

	for rows.Next() {
		lot, err := scanTaxLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax_lot table: %w", err)
	}

	return lots, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan code.
type scanner interface {
	Scan(dest ...any) error
}

func scanTaxLot(s scanner) (model.TaxLot, error) {
	var lot model.TaxLot
	var quantityStr, acquisitionStr, costBasisStr, remainingStr, adjustedStr, createdAtStr string

	err := s.Scan(
		&lot.ID,
		&lot.AccountID,
		&lot.TransactionID,
		&lot.InvestmentID,
		&quantityStr,
		&acquisitionStr,
		&costBasisStr,
		&remainingStr,
		&adjustedStr,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TaxLot{}, err
	}
	if err != nil {
		return model.TaxLot{}, fmt.Errorf("failed to scan tax_lot table results: %w", err)
	}

	if lot.Quantity, err = decimal.NewFromString(quantityStr); err != nil {
		return model.TaxLot{}, fmt.Errorf("failed to parse lot quantity: %w", err)
	}
	if lot.CostBasis, err = decimal.NewFromString(costBasisStr); err != nil {
		return model.TaxLot{}, fmt.Errorf("failed to parse lot cost basis: %w", err)
	}
	if lot.RemainingQuantity, err = decimal.NewFromString(remainingStr); err != nil {
		return model.TaxLot{}, fmt.Errorf("failed to parse lot remaining quantity: %w", err)
	}
	if lot.AdjustedBasis, err = decimal.NewFromString(adjustedStr); err != nil {
		return model.TaxLot{}, fmt.Errorf("failed to parse lot adjusted basis: %w", err)
	}

	if lot.AcquisitionDate, err = ParseTime(acquisitionStr); err != nil {
		return model.TaxLot{}, err
	}
	if lot.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.TaxLot{}, err
	}

	return lot, nil
}
