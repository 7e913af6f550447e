package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/model"
)

// AccountRepository provides data access methods for the taxable_account table.
type AccountRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// WithTx returns a new AccountRepository scoped to the provided transaction.
func (r *AccountRepository) WithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{db: r.db, tx: tx}
}

func (r *AccountRepository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert creates a taxable account record. The unique constraint on
// portfolio_id enforces at most one taxable account per portfolio; a
// violation surfaces as ErrDuplicateTaxableAccount.
func (r *AccountRepository) Insert(ctx context.Context, account *model.TaxableAccount) error {
	query := `
		INSERT INTO taxable_account (id, portfolio_id, cost_basis_method, wash_sale_tracking, account_type, category)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.querier().ExecContext(ctx, query,
		account.ID,
		account.PortfolioID,
		string(account.CostBasisMethod),
		account.WashSaleTracking,
		string(account.AccountType),
		string(account.Category),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.ErrDuplicateTaxableAccount
		}
		return fmt.Errorf("failed to insert taxable account: %w", err)
	}

	return nil
}

// GetByID retrieves a single taxable account by its ID.
// Returns ErrAccountNotFound if no record with the given ID exists.
func (r *AccountRepository) GetByID(accountID string) (model.TaxableAccount, error) {
	query := `
		SELECT id, portfolio_id, cost_basis_method, wash_sale_tracking, account_type, category, created_at
		FROM taxable_account
		WHERE id = ?
	`
	return r.scanOne(r.querier().QueryRow(query, accountID))
}

// GetByPortfolioID retrieves the taxable account tracking the given portfolio.
// Returns ErrAccountNotFound if the portfolio has not opted into tax tracking.
func (r *AccountRepository) GetByPortfolioID(portfolioID string) (model.TaxableAccount, error) {
	query := `
		SELECT id, portfolio_id, cost_basis_method, wash_sale_tracking, account_type, category, created_at
		FROM taxable_account
		WHERE portfolio_id = ?
	`
	return r.scanOne(r.querier().QueryRow(query, portfolioID))
}

func (r *AccountRepository) scanOne(row *sql.Row) (model.TaxableAccount, error) {
	var a model.TaxableAccount
	var method, accountType, category, createdAtStr string

	err := row.Scan(&a.ID, &a.PortfolioID, &method, &a.WashSaleTracking, &accountType, &category, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TaxableAccount{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.TaxableAccount{}, fmt.Errorf("failed to scan taxable account: %w", err)
	}

	a.CostBasisMethod = model.CostBasisMethod(method)
	a.AccountType = model.AccountType(accountType)
	a.Category = model.AccountCategory(category)

	a.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.TaxableAccount{}, err
	}

	return a, nil
}

// List retrieves all taxable accounts, ordered by creation time.
func (r *AccountRepository) List() ([]model.TaxableAccount, error) {
	query := `
		SELECT id, portfolio_id, cost_basis_method, wash_sale_tracking, account_type, category, created_at
		FROM taxable_account
		ORDER BY created_at ASC
	`

	rows, err := r.querier().Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query taxable_account table: %w", err)
	}
	defer rows.Close()

	accounts := []model.TaxableAccount{}

	for rows.Next() {
		var a model.TaxableAccount
		var method, accountType, category, createdAtStr string

		if err := rows.Scan(&a.ID, &a.PortfolioID, &method, &a.WashSaleTracking, &accountType, &category, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan taxable_account table results: %w", err)
		}

		a.CostBasisMethod = model.CostBasisMethod(method)
		a.AccountType = model.AccountType(accountType)
		a.Category = model.AccountCategory(category)

		a.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating taxable_account table: %w", err)
	}

	return accounts, nil
}

// UpdateSettings changes the cost basis method and wash-sale tracking flag.
// These are the only mutable attributes of a taxable account.
func (r *AccountRepository) UpdateSettings(ctx context.Context, accountID string, method model.CostBasisMethod, washSaleTracking bool) error {
	query := `
		UPDATE taxable_account
		SET cost_basis_method = ?, wash_sale_tracking = ?
		WHERE id = ?
	`

	result, err := r.querier().ExecContext(ctx, query, string(method), washSaleTracking, accountID)
	if err != nil {
		return fmt.Errorf("failed to update taxable account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrAccountNotFound
	}

	return nil
}
