package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JohnPierce/PersonalFinance/internal/model"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
)

// AccountService handles taxable account lifecycle: opting a portfolio into
// tax tracking and changing its tax settings. Accounts are never implicitly
// deleted; open lots keep their account for the audit trail.
type AccountService struct {
	accountRepo *repository.AccountRepository
}

// NewAccountService creates a new AccountService with the provided repository dependencies.
func NewAccountService(accountRepo *repository.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// CreateAccount opts a portfolio into tax tracking. The account type, when
// supplied, determines the derived tax category. At most one taxable account
// may exist per portfolio; a second attempt fails with
// ErrDuplicateTaxableAccount.
func (s *AccountService) CreateAccount(ctx context.Context, portfolioID string, method model.CostBasisMethod, washSaleTracking bool, accountType model.AccountType) (*model.TaxableAccount, error) {
	account := &model.TaxableAccount{
		ID:               uuid.New().String(),
		PortfolioID:      portfolioID,
		CostBasisMethod:  method,
		WashSaleTracking: washSaleTracking,
		AccountType:      accountType,
		CreatedAt:        time.Now().UTC(),
	}
	if accountType != "" {
		account.Category = model.CategoryFor(accountType)
	}

	if err := s.accountRepo.Insert(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create taxable account: %w", err)
	}

	return account, nil
}

// GetAccount retrieves a taxable account by its ID.
func (s *AccountService) GetAccount(accountID string) (model.TaxableAccount, error) {
	return s.accountRepo.GetByID(accountID)
}

// GetAccountByPortfolio retrieves the taxable account tracking a portfolio.
func (s *AccountService) GetAccountByPortfolio(portfolioID string) (model.TaxableAccount, error) {
	return s.accountRepo.GetByPortfolioID(portfolioID)
}

// ListAccounts retrieves all taxable accounts.
func (s *AccountService) ListAccounts() ([]model.TaxableAccount, error) {
	return s.accountRepo.List()
}

// UpdateSettings changes an account's cost basis method and wash-sale
// tracking flag, the only attributes that may change after creation.
func (s *AccountService) UpdateSettings(ctx context.Context, accountID string, method model.CostBasisMethod, washSaleTracking bool) (model.TaxableAccount, error) {
	if err := s.accountRepo.UpdateSettings(ctx, accountID, method, washSaleTracking); err != nil {
		return model.TaxableAccount{}, err
	}
	return s.accountRepo.GetByID(accountID)
}
