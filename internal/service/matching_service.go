package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/model"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
)

// MatchingService is the disposition matching engine. Given a SELL
// transaction it selects which open lots to draw down under the account's
// cost basis method, emits one disposition per lot touched, classifies the
// holding period, records realized-gain taxable events, and runs wash-sale
// detection, all inside one database transaction per sale. Either the whole
// unit of work commits or none of it does.
type MatchingService struct {
	db              *sql.DB
	lotRepo         *repository.TaxLotRepository
	dispositionRepo *repository.DispositionRepository
	eventRepo       *repository.EventRepository
	ledger          *LotLedgerService
	washSales       *WashSaleService
	locks           *AccountLockRegistry
}

// NewMatchingService creates a new MatchingService with the provided dependencies.
func NewMatchingService(
	db *sql.DB,
	lotRepo *repository.TaxLotRepository,
	dispositionRepo *repository.DispositionRepository,
	eventRepo *repository.EventRepository,
	ledger *LotLedgerService,
	washSales *WashSaleService,
	locks *AccountLockRegistry,
) *MatchingService {
	return &MatchingService{
		db:              db,
		lotRepo:         lotRepo,
		dispositionRepo: dispositionRepo,
		eventRepo:       eventRepo,
		ledger:          ledger,
		washSales:       washSales,
		locks:           locks,
	}
}

// ProcessSale matches a SELL transaction against the account's open lots.
// specificLotIDs is required when the account uses SPECIFIC identification
// and ignored otherwise. Replaying a sale whose reference ID was already
// processed returns the existing dispositions without touching any lot.
//
// Fails with ErrInsufficientLots when the open lots cannot cover the
// requested quantity; the sale is then not matched at all.
func (s *MatchingService) ProcessSale(ctx context.Context, account model.TaxableAccount, sale model.Transaction, specificLotIDs []string) ([]model.TaxLotDisposition, error) {
	if !sale.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrInvalidQuantity, sale.ReferenceID)
	}

	defer s.locks.Acquire(account.ID)()

	// Idempotent replay: the ledger may redeliver notifications.
	existing, err := s.dispositionRepo.GetBySaleTransaction(sale.ReferenceID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sale transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	dispositions, err := s.matchInTx(ctx, tx, account, sale, specificLotIDs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sale transaction: %w", err)
	}

	return dispositions, nil
}

func (s *MatchingService) matchInTx(ctx context.Context, tx *sql.Tx, account model.TaxableAccount, sale model.Transaction, specificLotIDs []string) ([]model.TaxLotDisposition, error) {
	lotRepo := s.lotRepo.WithTx(tx)
	dispositionRepo := s.dispositionRepo.WithTx(tx)

	candidates, err := lotRepo.GetOpenLots(account.ID, sale.InvestmentID)
	if err != nil {
		return nil, err
	}

	ordered, err := orderCandidates(account.CostBasisMethod, candidates, specificLotIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction %s", err, sale.ReferenceID)
	}

	available := decimal.Zero
	for _, lot := range ordered {
		available = available.Add(lot.RemainingQuantity)
	}
	if available.LessThan(sale.Quantity) {
		return nil, fmt.Errorf("%w: transaction %s requested %s, open %s",
			apperrors.ErrInsufficientLots, sale.ReferenceID, sale.Quantity, available)
	}

	// Net sale proceeds are apportioned proportionally to quantity taken,
	// rounded to the cent, with the residual cent on the last disposition so
	// the total always reconciles exactly.
	saleProceeds := sale.GrossAmount().Sub(sale.Fees)

	dispositions := []model.TaxLotDisposition{}
	var stGain, ltGain decimal.Decimal
	qtyLeft := sale.Quantity
	allocated := decimal.Zero

	for i := range ordered {
		lot := &ordered[i]

		take := decimal.Min(lot.RemainingQuantity, qtyLeft)
		qtyLeft = qtyLeft.Sub(take)

		var proceeds decimal.Decimal
		if qtyLeft.IsZero() {
			proceeds = saleProceeds.Sub(allocated)
		} else {
			proceeds = saleProceeds.Mul(take).Div(sale.Quantity).Round(2)
		}
		allocated = allocated.Add(proceeds)

		disposition := model.TaxLotDisposition{
			ID:                uuid.New().String(),
			TaxLotID:          lot.ID,
			SaleTransactionID: sale.ReferenceID,
			Quantity:          take,
			Proceeds:          proceeds,
			Date:              sale.TransactionDate.UTC(),
			HoldingPeriod:     sale.TransactionDate.Sub(lot.AcquisitionDate),
			CreatedAt:         time.Now().UTC(),
		}

		if err := dispositionRepo.Insert(ctx, &disposition); err != nil {
			return nil, err
		}
		if err := s.ledger.Decrement(ctx, lotRepo, lot, take); err != nil {
			return nil, err
		}

		gain := proceeds.Sub(take.Mul(lot.CostBasisPerShare())).Round(2)
		if gain.IsPositive() {
			if disposition.IsLongTerm() {
				ltGain = ltGain.Add(gain)
			} else {
				stGain = stGain.Add(gain)
			}
		}

		if err := s.washSales.processDispositionInTx(ctx, tx, account, disposition, *lot); err != nil {
			return nil, err
		}

		dispositions = append(dispositions, disposition)

		if qtyLeft.IsZero() {
			break
		}
	}

	if err := s.recordGainEvents(ctx, tx, account, sale, stGain, ltGain); err != nil {
		return nil, err
	}

	return dispositions, nil
}

// recordGainEvents writes the sale's realized gain classification as taxable
// events, at most one short-term and one long-term event per sale.
func (s *MatchingService) recordGainEvents(ctx context.Context, tx *sql.Tx, account model.TaxableAccount, sale model.Transaction, stGain, ltGain decimal.Decimal) error {
	eventRepo := s.eventRepo.WithTx(tx)

	for _, e := range []struct {
		eventType model.TaxableEventType
		amount    decimal.Decimal
	}{
		{model.EventShortTermGain, stGain},
		{model.EventLongTermGain, ltGain},
	} {
		if !e.amount.IsPositive() {
			continue
		}
		event := &model.TaxableEvent{
			ID:            uuid.New().String(),
			AccountID:     account.ID,
			TransactionID: sale.ReferenceID,
			EventType:     e.eventType,
			Amount:        e.amount,
			Date:          sale.TransactionDate.UTC(),
		}
		if err := eventRepo.Insert(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

// orderCandidates arranges the open lots in the order the method draws them
// down. Candidates arrive sorted by acquisition date then lot creation order,
// and every reorder is stable, so equal keys keep ascending creation order as
// the deterministic tie-break.
func orderCandidates(method model.CostBasisMethod, candidates []model.TaxLot, specificLotIDs []string) ([]model.TaxLot, error) {
	ordered := make([]model.TaxLot, len(candidates))
	copy(ordered, candidates)

	switch method {
	case model.CostBasisFIFO:
		// Already in ascending acquisition order.
	case model.CostBasisLIFO:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].AcquisitionDate.After(ordered[j].AcquisitionDate)
		})
	case model.CostBasisHIFO:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].AdjustedBasisPerShare().GreaterThan(ordered[j].AdjustedBasisPerShare())
		})
	case model.CostBasisSpecific:
		return selectSpecific(ordered, specificLotIDs)
	default:
		return nil, fmt.Errorf("unknown cost basis method: %q", method)
	}

	return ordered, nil
}

// selectSpecific resolves caller-designated lots in the order given. The
// engine only validates that every designated lot is open; sufficiency is
// checked by the caller against the combined remaining quantity.
func selectSpecific(candidates []model.TaxLot, specificLotIDs []string) ([]model.TaxLot, error) {
	if len(specificLotIDs) == 0 {
		return nil, apperrors.ErrSpecificLotsRequired
	}

	byID := make(map[string]model.TaxLot, len(candidates))
	for _, lot := range candidates {
		byID[lot.ID] = lot
	}

	ordered := make([]model.TaxLot, 0, len(specificLotIDs))
	for _, id := range specificLotIDs {
		lot, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: lot %s is not an open lot of this investment",
				apperrors.ErrInsufficientLots, id)
		}
		ordered = append(ordered, lot)
	}

	return ordered, nil
}

// GetDisposition retrieves a single disposition by its ID.
func (s *MatchingService) GetDisposition(dispositionID string) (model.TaxLotDisposition, error) {
	return s.dispositionRepo.GetByID(dispositionID)
}

// GetDispositionsByAccount retrieves all dispositions for an account, or all
// dispositions when accountID is empty.
func (s *MatchingService) GetDispositionsByAccount(accountID string) ([]model.TaxLotDisposition, error) {
	return s.dispositionRepo.GetByAccount(accountID)
}
