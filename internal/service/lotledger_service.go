package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/model"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
)

// LotLedgerService owns tax lot creation and remaining-quantity bookkeeping.
// It enforces quantity conservation: a lot's remaining quantity only moves
// through validated decrements, and the disposed total can never exceed the
// original quantity.
type LotLedgerService struct {
	lotRepo *repository.TaxLotRepository
}

// NewLotLedgerService creates a new LotLedgerService with the provided repository dependencies.
func NewLotLedgerService(lotRepo *repository.TaxLotRepository) *LotLedgerService {
	return &LotLedgerService{lotRepo: lotRepo}
}

// OpenLot creates a tax lot for an acquisition. Remaining quantity starts at
// the full quantity and adjusted basis starts at cost basis. A non-positive
// quantity or cost basis fails with ErrInvalidQuantity; bad inputs are
// rejected, never coerced.
func (s *LotLedgerService) OpenLot(ctx context.Context, accountID, transactionID, investmentID string, quantity, costBasis decimal.Decimal, acquisitionDate time.Time) (*model.TaxLot, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrInvalidQuantity, transactionID)
	}
	if costBasis.IsNegative() {
		return nil, fmt.Errorf("%w: transaction %s has negative cost basis", apperrors.ErrInvalidQuantity, transactionID)
	}

	lot := &model.TaxLot{
		ID:                uuid.New().String(),
		AccountID:         accountID,
		TransactionID:     transactionID,
		InvestmentID:      investmentID,
		Quantity:          quantity,
		AcquisitionDate:   acquisitionDate.UTC(),
		CostBasis:         costBasis,
		RemainingQuantity: quantity,
		AdjustedBasis:     costBasis,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.lotRepo.Insert(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to open tax lot: %w", err)
	}

	return lot, nil
}

// Decrement reduces a lot's remaining quantity through the given repository,
// which the caller has scoped to its unit-of-work transaction. A decrement
// larger than the remaining quantity fails with ErrOverdisposal: that means
// matching selected more than the lot holds, which is a bug upstream, and is
// never silently clamped.
func (s *LotLedgerService) Decrement(ctx context.Context, lotRepo *repository.TaxLotRepository, lot *model.TaxLot, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: lot %s", apperrors.ErrInvalidQuantity, lot.ID)
	}
	if quantity.GreaterThan(lot.RemainingQuantity) {
		return fmt.Errorf("%w: lot %s has %s remaining, requested %s",
			apperrors.ErrOverdisposal, lot.ID, lot.RemainingQuantity, quantity)
	}

	remaining := lot.RemainingQuantity.Sub(quantity)
	if err := lotRepo.UpdateRemaining(ctx, lot.ID, remaining); err != nil {
		return err
	}

	lot.RemainingQuantity = remaining
	return nil
}

// GetLot retrieves a single tax lot by its ID.
func (s *LotLedgerService) GetLot(lotID string) (model.TaxLot, error) {
	return s.lotRepo.GetByID(lotID)
}

// GetLotsByAccount retrieves all lots for an account, or all lots when
// accountID is empty.
func (s *LotLedgerService) GetLotsByAccount(accountID string) ([]model.TaxLot, error) {
	return s.lotRepo.GetByAccount(accountID)
}
