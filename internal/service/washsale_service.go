package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/model"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
)

// WashSaleService detects wash sales: a disposition at a loss combined with a
// replacement purchase of the same investment within 30 days either side. It
// records one WashSale per (disposition, replacement lot) pair and moves the
// disallowed loss into the replacement lot's adjusted basis.
//
// The loss is computed from the disposed lot's original cost basis and
// quantity, and the full loss is applied to every matching replacement lot
// rather than pro-rated.
type WashSaleService struct {
	db              *sql.DB
	lotRepo         *repository.TaxLotRepository
	dispositionRepo *repository.DispositionRepository
	washSaleRepo    *repository.WashSaleRepository
	locks           *AccountLockRegistry
}

// NewWashSaleService creates a new WashSaleService with the provided dependencies.
func NewWashSaleService(
	db *sql.DB,
	lotRepo *repository.TaxLotRepository,
	dispositionRepo *repository.DispositionRepository,
	washSaleRepo *repository.WashSaleRepository,
	locks *AccountLockRegistry,
) *WashSaleService {
	return &WashSaleService{
		db:              db,
		lotRepo:         lotRepo,
		dispositionRepo: dispositionRepo,
		washSaleRepo:    washSaleRepo,
		locks:           locks,
	}
}

// ProcessDisposition re-runs wash-sale detection for one disposition in its
// own unit of work. Safe to call repeatedly: existing (disposition,
// replacement lot) pairs are skipped and their basis adjustment is not
// applied twice. The caller must not hold the account lock.
func (s *WashSaleService) ProcessDisposition(ctx context.Context, account model.TaxableAccount, dispositionID string) error {
	defer s.locks.Acquire(account.ID)()
	return s.processDispositionUnitOfWork(ctx, account, dispositionID)
}

func (s *WashSaleService) processDispositionUnitOfWork(ctx context.Context, account model.TaxableAccount, dispositionID string) error {
	disposition, err := s.dispositionRepo.GetByID(dispositionID)
	if err != nil {
		return err
	}
	lot, err := s.lotRepo.GetByID(disposition.TaxLotID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin wash sale transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := s.processDispositionInTx(ctx, tx, account, disposition, lot); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit wash sale transaction: %w", err)
	}

	return nil
}

// processDispositionInTx performs detection inside the caller's transaction.
// Used by the matching engine so that dispositions, decrements, wash sales,
// and basis adjustments land in one atomic unit of work.
func (s *WashSaleService) processDispositionInTx(ctx context.Context, tx *sql.Tx, account model.TaxableAccount, disposition model.TaxLotDisposition, lot model.TaxLot) error {
	if !account.WashSaleTracking {
		return nil
	}

	realizedLoss := realizedLoss(lot, disposition)
	if !realizedLoss.IsPositive() {
		return nil
	}

	windowStart := disposition.Date.Add(-model.WashSaleWindow)
	windowEnd := disposition.Date.Add(model.WashSaleWindow)

	lotRepo := s.lotRepo.WithTx(tx)
	washSaleRepo := s.washSaleRepo.WithTx(tx)

	replacements, err := lotRepo.GetLotsInWindow(account.ID, lot.InvestmentID, windowStart, windowEnd, lot.ID)
	if err != nil {
		return err
	}

	for _, replacement := range replacements {
		if !model.InWindow(replacement.AcquisitionDate, windowStart, windowEnd) {
			return fmt.Errorf("%w: lot %s acquired %s",
				apperrors.ErrWashSaleWindowViolation, replacement.ID,
				replacement.AcquisitionDate.Format(time.RFC3339))
		}

		exists, err := washSaleRepo.Exists(disposition.ID, replacement.ID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		washSale := &model.WashSale{
			ID:               uuid.New().String(),
			DispositionID:    disposition.ID,
			ReplacementLotID: replacement.ID,
			DisallowedLoss:   realizedLoss,
			WindowStart:      windowStart,
			WindowEnd:        windowEnd,
		}
		if err := washSaleRepo.Insert(ctx, washSale); err != nil {
			return err
		}

		adjusted := replacement.AdjustedBasis.Add(realizedLoss)
		if err := lotRepo.UpdateAdjustedBasis(ctx, replacement.ID, adjusted); err != nil {
			return err
		}
	}

	return nil
}

// realizedLoss returns the positive loss amount of a disposition, or a
// non-positive value when the disposition realized a gain. Cost basis per
// share comes from the lot's original quantity and cost basis.
func realizedLoss(lot model.TaxLot, disposition model.TaxLotDisposition) decimal.Decimal {
	if disposition.Quantity.IsZero() {
		return decimal.Zero
	}
	costPerShare := lot.CostBasisPerShare()
	salePerShare := disposition.Proceeds.Div(disposition.Quantity)
	return costPerShare.Sub(salePerShare).Mul(disposition.Quantity).Round(2)
}

// ScanFailure records one disposition the retroactive scan could not process.
type ScanFailure struct {
	SaleTransactionID string `json:"saleTransactionId"`
	DispositionID     string `json:"dispositionId"`
	Error             string `json:"error"`
}

// ScanResult summarizes a retroactive wash-sale scan.
type ScanResult struct {
	Processed int           `json:"processed"`
	Failures  []ScanFailure `json:"failures"`
}

// DetectWashSalesForPeriod replays wash-sale detection for every disposition
// of the account dated inside [startDate, endDate]. Used when historical
// transactions are entered late. Idempotent: re-running over the same range
// creates no duplicate records and no doubled adjustments.
//
// One disposition's failure does not abort the scan; all failures are
// collected in the result, keyed by the offending sale's reference ID.
func (s *WashSaleService) DetectWashSalesForPeriod(ctx context.Context, account model.TaxableAccount, startDate, endDate time.Time) (ScanResult, error) {
	if endDate.Before(startDate) {
		return ScanResult{}, apperrors.ErrInvalidDateRange
	}

	// Hold the account lock for the whole scan: batch detection must not
	// interleave with live disposition processing on the same account.
	defer s.locks.Acquire(account.ID)()

	dispositions, err := s.dispositionRepo.GetByAccountAndPeriod(account.ID, startDate, endDate)
	if err != nil {
		return ScanResult{}, err
	}

	result := ScanResult{Failures: []ScanFailure{}}

	for _, disposition := range dispositions {
		if err := s.processDispositionUnitOfWork(ctx, account, disposition.ID); err != nil {
			result.Failures = append(result.Failures, ScanFailure{
				SaleTransactionID: disposition.SaleTransactionID,
				DispositionID:     disposition.ID,
				Error:             err.Error(),
			})
			continue
		}
		result.Processed++
	}

	return result, nil
}

// GetWashSaleSummary aggregates an account's wash sales for one tax year.
func (s *WashSaleService) GetWashSaleSummary(accountID string, taxYear int) (model.WashSaleSummary, error) {
	washSales, err := s.washSaleRepo.GetByAccountAndYear(accountID, taxYear)
	if err != nil {
		return model.WashSaleSummary{}, err
	}

	summary := model.WashSaleSummary{
		TaxYear:               taxYear,
		WashSaleCount:         len(washSales),
		TotalDisallowedLosses: decimal.Zero,
		AverageDisallowedLoss: decimal.Zero,
	}

	for _, w := range washSales {
		summary.TotalDisallowedLosses = summary.TotalDisallowedLosses.Add(w.DisallowedLoss)
	}
	if summary.WashSaleCount > 0 {
		summary.AverageDisallowedLoss = summary.TotalDisallowedLosses.
			Div(decimal.NewFromInt(int64(summary.WashSaleCount))).Round(2)
	}

	return summary, nil
}

// GetWashSalesByAccount retrieves all wash sale records for an account, or
// all records when accountID is empty.
func (s *WashSaleService) GetWashSalesByAccount(accountID string) ([]model.WashSale, error) {
	return s.washSaleRepo.GetByAccount(accountID)
}
