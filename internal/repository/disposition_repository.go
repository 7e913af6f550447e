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

// DispositionRepository provides data access methods for the
// tax_lot_disposition table. Dispositions are immutable once written.
type DispositionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewDispositionRepository creates a new DispositionRepository with the provided database connection.
func NewDispositionRepository(db *sql.DB) *DispositionRepository {
	return &DispositionRepository{db: db}
}

// WithTx returns a new DispositionRepository scoped to the provided transaction.
func (r *DispositionRepository) WithTx(tx *sql.Tx) *DispositionRepository {
	return &DispositionRepository{db: r.db, tx: tx}
}

func (r *DispositionRepository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const dispositionColumns = `d.id, d.tax_lot_id, d.sale_transaction_id, d.quantity,
	d.proceeds, d.date, d.holding_period_seconds, d.created_at`

// Insert creates a new disposition record.
func (r *DispositionRepository) Insert(ctx context.Context, d *model.TaxLotDisposition) error {
	query := `
		INSERT INTO tax_lot_disposition (id, tax_lot_id, sale_transaction_id, quantity,
			proceeds, date, holding_period_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.querier().ExecContext(ctx, query,
		d.ID,
		d.TaxLotID,
		d.SaleTransactionID,
		d.Quantity.String(),
		d.Proceeds.String(),
		d.Date.UTC().Format(time.RFC3339),
		int64(d.HoldingPeriod.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert disposition: %w", err)
	}

	return nil
}

// GetByID retrieves a single disposition by its ID.
// Returns ErrDispositionNotFound if no record with the given ID exists.
func (r *DispositionRepository) GetByID(dispositionID string) (model.TaxLotDisposition, error) {
	query := `SELECT ` + dispositionColumns + ` FROM tax_lot_disposition d WHERE d.id = ?`

	d, err := scanDisposition(r.querier().QueryRow(query, dispositionID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.TaxLotDisposition{}, apperrors.ErrDispositionNotFound
	}
	return d, err
}

// GetBySaleTransaction retrieves all dispositions emitted for one sale
// transaction. Used to detect already-processed SELL notifications.
func (r *DispositionRepository) GetBySaleTransaction(saleTransactionID string) ([]model.TaxLotDisposition, error) {
	query := `
		SELECT ` + dispositionColumns + `
		FROM tax_lot_disposition d
		WHERE d.sale_transaction_id = ?
		ORDER BY d.created_at ASC, d.rowid ASC
	`
	return r.queryDispositions(query, saleTransactionID)
}

// GetByAccountAndPeriod retrieves all of an account's dispositions dated
// inside [startDate, endDate], joined through the disposed lot. This is the
// input set for the retroactive wash-sale scan.
func (r *DispositionRepository) GetByAccountAndPeriod(accountID string, startDate, endDate time.Time) ([]model.TaxLotDisposition, error) {
	query := `
		SELECT ` + dispositionColumns + `
		FROM tax_lot_disposition d
		JOIN tax_lot l ON l.id = d.tax_lot_id
		WHERE l.account_id = ?
		AND d.date >= ?
		AND d.date <= ?
		ORDER BY d.date ASC, d.rowid ASC
	`
	return r.queryDispositions(query,
		accountID,
		startDate.UTC().Format(time.RFC3339),
		endDate.UTC().Format(time.RFC3339),
	)
}

// GetByAccount retrieves all of an account's dispositions, newest last.
// If accountID is empty, all dispositions are returned.
func (r *DispositionRepository) GetByAccount(accountID string) ([]model.TaxLotDisposition, error) {
	if accountID == "" {
		query := `SELECT ` + dispositionColumns + ` FROM tax_lot_disposition d ORDER BY d.date ASC, d.rowid ASC`
		return r.queryDispositions(query)
	}

	query := `
		SELECT ` + dispositionColumns + `
		FROM tax_lot_disposition d
		JOIN tax_lot l ON l.id = d.tax_lot_id
		WHERE l.account_id = ?
		ORDER BY d.date ASC, d.rowid ASC
	`
	return r.queryDispositions(query, accountID)
}

func (r *DispositionRepository) queryDispositions(query string, args ...any) ([]model.TaxLotDisposition, error) {
	rows, err := r.querier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax_lot_disposition table: %w", err)
	}
	defer rows.Close()

	dispositions := []model.TaxLotDisposition{}

	for rows.Next() {
		d, err := scanDisposition(rows)
		if err != nil {
			return nil, err
		}
		dispositions = append(dispositions, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax_lot_disposition table: %w", err)
	}

	return dispositions, nil
}

func scanDisposition(s scanner) (model.TaxLotDisposition, error) {
	var d model.TaxLotDisposition
	var quantityStr, proceedsStr, dateStr, createdAtStr string
	var holdingSeconds int64

	err := s.Scan(
		&d.ID,
		&d.TaxLotID,
		&d.SaleTransactionID,
		&quantityStr,
		&proceedsStr,
		&dateStr,
		&holdingSeconds,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TaxLotDisposition{}, err
	}
	if err != nil {
		return model.TaxLotDisposition{}, fmt.Errorf("failed to scan tax_lot_disposition table results: %w", err)
	}

	if d.Quantity, err = decimal.NewFromString(quantityStr); err != nil {
		return model.TaxLotDisposition{}, fmt.Errorf("failed to parse disposition quantity: %w", err)
	}
	if d.Proceeds, err = decimal.NewFromString(proceedsStr); err != nil {
		return model.TaxLotDisposition{}, fmt.Errorf("failed to parse disposition proceeds: %w", err)
	}

	d.HoldingPeriod = time.Duration(holdingSeconds) * time.Second

	if d.Date, err = ParseTime(dateStr); err != nil {
		return model.TaxLotDisposition{}, err
	}
	if d.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.TaxLotDisposition{}, err
	}

	return d, nil
}
