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

// Form1099BRepository provides data access methods for the form_1099b table
// and its disposition link table.
type Form1099BRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewForm1099BRepository creates a new Form1099BRepository with the provided database connection.
func NewForm1099BRepository(db *sql.DB) *Form1099BRepository {
	return &Form1099BRepository{db: db}
}

// WithTx returns a new Form1099BRepository scoped to the provided transaction.
func (r *Form1099BRepository) WithTx(tx *sql.Tx) *Form1099BRepository {
	return &Form1099BRepository{db: r.db, tx: tx}
}

func (r *Form1099BRepository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const form1099bColumns = `id, account_id, tax_year,
	st_covered_proceeds, st_covered_basis, st_uncovered_proceeds,
	lt_covered_proceeds, lt_covered_basis, lt_uncovered_proceeds,
	wash_sale_adjustments, computed_at, created_at`

// Insert creates a zero-totaled 1099-B record for an account and tax year.
func (r *Form1099BRepository) Insert(ctx context.Context, form *model.Form1099B) error {
	query := `
		INSERT INTO form_1099b (id, account_id, tax_year)
		VALUES (?, ?, ?)
	`

	if _, err := r.querier().ExecContext(ctx, query, form.ID, form.AccountID, form.TaxYear); err != nil {
		return fmt.Errorf("failed to insert form 1099-B: %w", err)
	}

	return nil
}

// GetByAccountAndYear retrieves the 1099-B record for one account and tax year.
// Returns ErrForm1099BNotFound if no record exists yet.
func (r *Form1099BRepository) GetByAccountAndYear(accountID string, taxYear int) (model.Form1099B, error) {
	query := `SELECT ` + form1099bColumns + ` FROM form_1099b WHERE account_id = ? AND tax_year = ?`

	form, err := scanForm1099B(r.querier().QueryRow(query, accountID, taxYear))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Form1099B{}, apperrors.ErrForm1099BNotFound
	}
	return form, err
}

// ReplaceLinks discards the form's current disposition link set and writes a
// new one. Recomputation is a full replace, so stale links never survive.
func (r *Form1099BRepository) ReplaceLinks(ctx context.Context, formID string, dispositionIDs []string) error {
	if _, err := r.querier().ExecContext(ctx, `DELETE FROM form_1099b_disposition WHERE form_id = ?`, formID); err != nil {
		return fmt.Errorf("failed to clear form 1099-B links: %w", err)
	}

	for _, dispositionID := range dispositionIDs {
		_, err := r.querier().ExecContext(ctx,
			`INSERT INTO form_1099b_disposition (form_id, disposition_id) VALUES (?, ?)`,
			formID, dispositionID,
		)
		if err != nil {
			return fmt.Errorf("failed to link disposition to form 1099-B: %w", err)
		}
	}

	return nil
}

// GetLinkedDispositionIDs returns the IDs in the form's current link set.
func (r *Form1099BRepository) GetLinkedDispositionIDs(formID string) ([]string, error) {
	rows, err := r.querier().Query(
		`SELECT disposition_id FROM form_1099b_disposition WHERE form_id = ? ORDER BY disposition_id ASC`,
		formID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query form_1099b_disposition table: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan form_1099b_disposition results: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating form_1099b_disposition table: %w", err)
	}

	return ids, nil
}

// UpdateTotals overwrites the form's aggregate fields with freshly computed
// values and stamps the computation time.
func (r *Form1099BRepository) UpdateTotals(ctx context.Context, form *model.Form1099B) error {
	query := `
		UPDATE form_1099b
		SET st_covered_proceeds = ?, st_covered_basis = ?, st_uncovered_proceeds = ?,
			lt_covered_proceeds = ?, lt_covered_basis = ?, lt_uncovered_proceeds = ?,
			wash_sale_adjustments = ?, computed_at = ?
		WHERE id = ?
	`

	result, err := r.querier().ExecContext(ctx, query,
		form.STCoveredProceeds.String(),
		form.STCoveredBasis.String(),
		form.STUncoveredProceeds.String(),
		form.LTCoveredProceeds.String(),
		form.LTCoveredBasis.String(),
		form.LTUncoveredProceeds.String(),
		form.WashSaleAdjustments.String(),
		form.ComputedAt.UTC().Format(time.RFC3339),
		form.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update form 1099-B totals: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrForm1099BNotFound
	}

	return nil
}

func scanForm1099B(s scanner) (model.Form1099B, error) {
	var form model.Form1099B
	var stProceeds, stBasis, stUncovered, ltProceeds, ltBasis, ltUncovered, washAdj string
	var computedAt sql.NullString
	var createdAtStr string

	err := s.Scan(
		&form.ID,
		&form.AccountID,
		&form.TaxYear,
		&stProceeds,
		&stBasis,
		&stUncovered,
		&ltProceeds,
		&ltBasis,
		&ltUncovered,
		&washAdj,
		&computedAt,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Form1099B{}, err
	}
	if err != nil {
		return model.Form1099B{}, fmt.Errorf("failed to scan form_1099b table results: %w", err)
	}

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&form.STCoveredProceeds, stProceeds},
		{&form.STCoveredBasis, stBasis},
		{&form.STUncoveredProceeds, stUncovered},
		{&form.LTCoveredProceeds, ltProceeds},
		{&form.LTCoveredBasis, ltBasis},
		{&form.LTUncoveredProceeds, ltUncovered},
		{&form.WashSaleAdjustments, washAdj},
	}
	for _, f := range fields {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return model.Form1099B{}, fmt.Errorf("failed to parse form 1099-B amount: %w", err)
		}
	}

	if computedAt.Valid && computedAt.String != "" {
		if form.ComputedAt, err = ParseTime(computedAt.String); err != nil {
			return model.Form1099B{}, err
		}
	}
	if form.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.Form1099B{}, err
	}

	return form, nil
}
