package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/model"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
)

// Form1099BService maintains the annual 1099-B aggregation for taxable
// accounts. Totals are rebuilt from scratch on every calculation and the
// form's disposition links are fully replaced, so re-running after a
// retroactive scan or a late transaction always converges on the same
// numbers.
type Form1099BService struct {
	db              *sql.DB
	accountRepo     *repository.AccountRepository
	lotRepo         *repository.TaxLotRepository
	dispositionRepo *repository.DispositionRepository
	washSaleRepo    *repository.WashSaleRepository
	formRepo        *repository.Form1099BRepository
	locks           *AccountLockRegistry
}

// NewForm1099BService creates a new Form1099BService with the provided dependencies.
func NewForm1099BService(
	db *sql.DB,
	accountRepo *repository.AccountRepository,
	lotRepo *repository.TaxLotRepository,
	dispositionRepo *repository.DispositionRepository,
	washSaleRepo *repository.WashSaleRepository,
	formRepo *repository.Form1099BRepository,
	locks *AccountLockRegistry,
) *Form1099BService {
	return &Form1099BService{
		db:              db,
		accountRepo:     accountRepo,
		lotRepo:         lotRepo,
		dispositionRepo: dispositionRepo,
		washSaleRepo:    washSaleRepo,
		formRepo:        formRepo,
		locks:           locks,
	}
}

// CalculateTotals rebuilds the 1099-B for one account and tax year. The form
// row is created on first use; its linked dispositions are replaced with the
// year's current set and all totals recomputed. Dispositions are bucketed
// short term or long term by holding period; basis uses the lot's adjusted
// basis so that wash-sale adjustments flow through.
func (s *Form1099BService) CalculateTotals(ctx context.Context, accountID string, taxYear int) (model.Form1099B, error) {
	if taxYear < 1900 || taxYear > 9999 {
		return model.Form1099B{}, apperrors.ErrInvalidTaxYear
	}
	if _, err := s.accountRepo.GetByID(accountID); err != nil {
		return model.Form1099B{}, err
	}

	defer s.locks.Acquire(accountID)()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Form1099B{}, fmt.Errorf("failed to begin 1099-B transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	form, err := s.calculateInTx(ctx, tx, accountID, taxYear)
	if err != nil {
		return model.Form1099B{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Form1099B{}, fmt.Errorf("failed to commit 1099-B transaction: %w", err)
	}

	return form, nil
}

func (s *Form1099BService) calculateInTx(ctx context.Context, tx *sql.Tx, accountID string, taxYear int) (model.Form1099B, error) {
	formRepo := s.formRepo.WithTx(tx)
	lotRepo := s.lotRepo.WithTx(tx)
	dispositionRepo := s.dispositionRepo.WithTx(tx)
	washSaleRepo := s.washSaleRepo.WithTx(tx)

	form, err := formRepo.GetByAccountAndYear(accountID, taxYear)
	if errors.Is(err, apperrors.ErrForm1099BNotFound) {
		form = model.Form1099B{
			ID:        uuid.New().String(),
			AccountID: accountID,
			TaxYear:   taxYear,
		}
		if err := formRepo.Insert(ctx, &form); err != nil {
			return model.Form1099B{}, err
		}
	} else if err != nil {
		return model.Form1099B{}, err
	}

	yearStart := time.Date(taxYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0).Add(-time.Nanosecond)
	dispositions, err := dispositionRepo.GetByAccountAndPeriod(accountID, yearStart, yearEnd)
	if err != nil {
		return model.Form1099B{}, err
	}

	form.STCoveredProceeds = decimal.Zero
	form.STCoveredBasis = decimal.Zero
	form.STUncoveredProceeds = decimal.Zero
	form.LTCoveredProceeds = decimal.Zero
	form.LTCoveredBasis = decimal.Zero
	form.LTUncoveredProceeds = decimal.Zero
	form.WashSaleAdjustments = decimal.Zero

	dispositionIDs := make([]string, 0, len(dispositions))
	for _, d := range dispositions {
		dispositionIDs = append(dispositionIDs, d.ID)

		lot, err := lotRepo.GetByID(d.TaxLotID)
		if err != nil {
			return model.Form1099B{}, err
		}
		basis := d.Quantity.Mul(lot.AdjustedBasis).Round(2)

		if d.IsLongTerm() {
			form.LTCoveredProceeds = form.LTCoveredProceeds.Add(d.Proceeds)
			form.LTCoveredBasis = form.LTCoveredBasis.Add(basis)
		} else {
			form.STCoveredProceeds = form.STCoveredProceeds.Add(d.Proceeds)
			form.STCoveredBasis = form.STCoveredBasis.Add(basis)
		}

		washSales, err := washSaleRepo.GetByDisposition(d.ID)
		if err != nil {
			return model.Form1099B{}, err
		}
		for _, w := range washSales {
			form.WashSaleAdjustments = form.WashSaleAdjustments.Add(w.DisallowedLoss)
		}
	}

	if err := formRepo.ReplaceLinks(ctx, form.ID, dispositionIDs); err != nil {
		return model.Form1099B{}, err
	}

	form.ComputedAt = time.Now().UTC()
	if err := formRepo.UpdateTotals(ctx, &form); err != nil {
		return model.Form1099B{}, err
	}

	return form, nil
}

// GetForm retrieves the stored 1099-B for an account and tax year without
// recomputing it.
func (s *Form1099BService) GetForm(accountID string, taxYear int) (model.Form1099B, error) {
	if taxYear < 1900 || taxYear > 9999 {
		return model.Form1099B{}, apperrors.ErrInvalidTaxYear
	}
	if _, err := s.accountRepo.GetByID(accountID); err != nil {
		return model.Form1099B{}, err
	}
	return s.formRepo.GetByAccountAndYear(accountID, taxYear)
}

// RecomputeAll rebuilds the 1099-B for every taxable account for the given
// tax year. Accounts are processed concurrently; the per-account lock keeps
// each rebuild serialized against live sales on that account.
func (s *Form1099BService) RecomputeAll(ctx context.Context, taxYear int) error {
	accounts, err := s.accountRepo.List()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, account := range accounts {
		g.Go(func() error {
			if _, err := s.CalculateTotals(ctx, account.ID, taxYear); err != nil {
				log.Printf("1099-B recompute failed for account %s year %d: %v", account.ID, taxYear, err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
