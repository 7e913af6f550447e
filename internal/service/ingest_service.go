package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/model"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
)

// Ingest outcome statuses.
const (
	IngestLotOpened      = "lot_opened"
	IngestSaleMatched    = "sale_matched"
	IngestEventRecorded  = "event_recorded"
	IngestAlreadyApplied = "already_applied"
	IngestIgnored        = "ignored"
	IngestUntracked      = "untracked"
)

// IngestResult describes what a single ingested transaction produced.
type IngestResult struct {
	Status       string                    `json:"status"`
	Lot          *model.TaxLot             `json:"lot,omitempty"`
	Dispositions []model.TaxLotDisposition `json:"dispositions,omitempty"`
	Event        *model.TaxableEvent       `json:"event,omitempty"`
}

// IngestService routes portfolio transactions into the tax engine. Each
// transaction is dispatched on its type: purchases open lots, sales run the
// matching engine, dividends record taxable events, and everything else is
// acknowledged but ignored. Transactions for portfolios without a taxable
// account are a no-op so callers can feed a full transaction stream without
// filtering first.
type IngestService struct {
	accountRepo *repository.AccountRepository
	lotRepo     *repository.TaxLotRepository
	ledger      *LotLedgerService
	matching    *MatchingService
	events      *EventService
}

// NewIngestService creates a new IngestService with the provided dependencies.
func NewIngestService(
	accountRepo *repository.AccountRepository,
	lotRepo *repository.TaxLotRepository,
	ledger *LotLedgerService,
	matching *MatchingService,
	events *EventService,
) *IngestService {
	return &IngestService{
		accountRepo: accountRepo,
		lotRepo:     lotRepo,
		ledger:      ledger,
		matching:    matching,
		events:      events,
	}
}

// ProcessTransaction applies one portfolio transaction to the tax engine.
// The transaction's AccountID refers to the owning portfolio; the taxable
// account is resolved from it. Replaying a transaction that was already
// applied returns IngestAlreadyApplied without side effects.
func (s *IngestService) ProcessTransaction(ctx context.Context, transaction model.Transaction, specificLotIDs []string) (IngestResult, error) {
	account, err := s.accountRepo.GetByPortfolioID(transaction.AccountID)
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		return IngestResult{Status: IngestUntracked}, nil
	}
	if err != nil {
		return IngestResult{}, err
	}

	switch transaction.Type {
	case model.TransactionBuy:
		return s.ingestBuy(ctx, account, transaction)
	case model.TransactionSell:
		return s.ingestSell(ctx, account, transaction, specificLotIDs)
	case model.TransactionDividend:
		return s.ingestDividend(ctx, account, transaction)
	case model.TransactionSplit, model.TransactionTransfer, model.TransactionFee, model.TransactionOther:
		return IngestResult{Status: IngestIgnored}, nil
	default:
		return IngestResult{}, fmt.Errorf("unknown transaction type: %q", transaction.Type)
	}
}

func (s *IngestService) ingestBuy(ctx context.Context, account model.TaxableAccount, transaction model.Transaction) (IngestResult, error) {
	existing, err := s.lotRepo.GetByTransactionID(transaction.ReferenceID)
	if err == nil {
		return IngestResult{Status: IngestAlreadyApplied, Lot: &existing}, nil
	}
	if !errors.Is(err, apperrors.ErrLotNotFound) {
		return IngestResult{}, err
	}

	costBasis := transaction.GrossAmount().Add(transaction.Fees)
	lot, err := s.ledger.OpenLot(ctx, account.ID, transaction.ReferenceID, transaction.InvestmentID,
		transaction.Quantity, costBasis, transaction.TransactionDate)
	if err != nil {
		return IngestResult{}, err
	}
	return IngestResult{Status: IngestLotOpened, Lot: lot}, nil
}

func (s *IngestService) ingestSell(ctx context.Context, account model.TaxableAccount, transaction model.Transaction, specificLotIDs []string) (IngestResult, error) {
	dispositions, err := s.matching.ProcessSale(ctx, account, transaction, specificLotIDs)
	if err != nil {
		return IngestResult{}, err
	}
	return IngestResult{Status: IngestSaleMatched, Dispositions: dispositions}, nil
}

func (s *IngestService) ingestDividend(ctx context.Context, account model.TaxableAccount, transaction model.Transaction) (IngestResult, error) {
	amount := transaction.GrossAmount()
	event, err := s.events.RecordEvent(ctx, account.ID, transaction, model.EventOrdinaryDividend, amount)
	if err != nil {
		return IngestResult{}, err
	}
	return IngestResult{Status: IngestEventRecorded, Event: &event}, nil
}
