package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JohnPierce/PersonalFinance/internal/model"
)

// WashSaleRepository provides data access methods for the wash_sale table.
type WashSaleRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewWashSaleRepository creates a new WashSaleRepository with the provided database connection.
func NewWashSaleRepository(db *sql.DB) *WashSaleRepository {
	return &WashSaleRepository{db: db}
}

// WithTx returns a new WashSaleRepository scoped to the provided transaction.
func (r *WashSaleRepository) WithTx(tx *sql.Tx) *WashSaleRepository {
	return &WashSaleRepository{db: r.db, tx: tx}
}

func (r *WashSaleRepository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const washSaleColumns = `w.id, w.disposition_id, w.replacement_lot_id, w.disallowed_loss,
	w.wash_sale_window_start, w.wash_sale_window_end, w.created_at`

// Insert creates a new wash sale record. The unique constraint on
// (disposition_id, replacement_lot_id) is the database backstop for the
// detector's idempotence guarantee.
func (r *WashSaleRepository) Insert(ctx context.Context, w *model.WashSale) error {
	query := `
		INSERT INTO wash_sale (id, disposition_id, replacement_lot_id, disallowed_loss,
			wash_sale_window_start, wash_sale_window_end)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.querier().ExecContext(ctx, query,
		w.ID,
		w.DispositionID,
		w.ReplacementLotID,
		w.DisallowedLoss.String(),
		w.WindowStart.UTC().Format(time.RFC3339),
		w.WindowEnd.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert wash sale: %w", err)
	}

	return nil
}

// Exists reports whether a wash sale already links the disposition to the
// replacement lot. Reprocessing a disposition must not double-apply the
// basis adjustment, so the detector checks here first.
func (r *WashSaleRepository) Exists(dispositionID, replacementLotID string) (bool, error) {
	query := `
		SELECT 1 FROM wash_sale
		WHERE disposition_id = ? AND replacement_lot_id = ?
	`

	var one int
	err := r.querier().QueryRow(query, dispositionID, replacementLotID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check wash sale existence: %w", err)
	}

	return true, nil
}

// GetByDisposition retrieves all wash sales recorded against one disposition.
func (r *WashSaleRepository) GetByDisposition(dispositionID string) ([]model.WashSale, error) {
	query := `
		SELECT ` + washSaleColumns + `
		FROM wash_sale w
		WHERE w.disposition_id = ?
		ORDER BY w.created_at ASC, w.rowid ASC
	`
	return r.queryWashSales(query, dispositionID)
}

// GetByAccount retrieves all wash sales for an account, joined through the
// disposition's lot. If accountID is empty, all wash sales are returned.
func (r *WashSaleRepository) GetByAccount(accountID string) ([]model.WashSale, error) {
	if accountID == "" {
		query := `SELECT ` + washSaleColumns + ` FROM wash_sale w ORDER BY w.created_at ASC, w.rowid ASC`
		return r.queryWashSales(query)
	}

	query := `
		SELECT ` + washSaleColumns + `
		FROM wash_sale w
		JOIN tax_lot_disposition d ON d.id = w.disposition_id
		JOIN tax_lot l ON l.id = d.tax_lot_id
		WHERE l.account_id = ?
		ORDER BY w.created_at ASC, w.rowid ASC
	`
	return r.queryWashSales(query, accountID)
}

// GetByAccountAndYear retrieves the account's wash sales whose disposition is
// dated in the given tax year. Input set for the wash-sale summary.
func (r *WashSaleRepository) GetByAccountAndYear(accountID string, taxYear int) ([]model.WashSale, error) {
	yearStart := time.Date(taxYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(taxYear+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	query := `
		SELECT ` + washSaleColumns + `
		FROM wash_sale w
		JOIN tax_lot_disposition d ON d.id = w.disposition_id
		JOIN tax_lot l ON l.id = d.tax_lot_id
		WHERE l.account_id = ?
		AND d.date >= ?
		AND d.date < ?
		ORDER BY w.created_at ASC, w.rowid ASC
	`
	return r.queryWashSales(query,
		accountID,
		yearStart.Format(time.RFC3339),
		yearEnd.Format(time.RFC3339),
	)
}

func (r *WashSaleRepository) queryWashSales(query string, args ...any) ([]model.WashSale, error) {
	rows, err := r.querier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wash_sale table: %w", err)
	}
	defer rows.Close()

	washSales := []model.WashSale{}

	for rows.Next() {
		var w model.WashSale
		var lossStr, startStr, endStr, createdAtStr string

		err := rows.Scan(
			&w.ID,
			&w.DispositionID,
			&w.ReplacementLotID,
			&lossStr,
			&startStr,
			&endStr,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wash_sale table results: %w", err)
		}

		if w.DisallowedLoss, err = decimal.NewFromString(lossStr); err != nil {
			return nil, fmt.Errorf("failed to parse disallowed loss: %w", err)
		}

		if w.WindowStart, err = ParseTime(startStr); err != nil {
			return nil, err
		}
		if w.WindowEnd, err = ParseTime(endStr); err != nil {
			return nil, err
		}
		if w.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}

		washSales = append(washSales, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wash_sale table: %w", err)
	}

	return washSales, nil
}
