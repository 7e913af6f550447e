package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/JohnPierce/PersonalFinance/internal/repository"
	"github.com/JohnPierce/PersonalFinance/internal/service"
)

func NewTestAccountService(t *testing.T, db *sql.DB) *service.AccountService {
	t.Helper()

	accountRepo := repository.NewAccountRepository(db)

	return service.NewAccountService(accountRepo)
}

func NewTestLotLedgerService(t *testing.T, db *sql.DB) *service.LotLedgerService {
	t.Helper()

	lotRepo := repository.NewTaxLotRepository(db)

	return service.NewLotLedgerService(lotRepo)
}

func NewTestWashSaleService(t *testing.T, db *sql.DB) *service.WashSaleService {
	t.Helper()

	lotRepo := repository.NewTaxLotRepository(db)
	dispositionRepo := repository.NewDispositionRepository(db)
	washSaleRepo := repository.NewWashSaleRepository(db)

	return service.NewWashSaleService(
		db,
		lotRepo,
		dispositionRepo,
		washSaleRepo,
		service.NewAccountLockRegistry(),
	)
}

func NewTestMatchingService(t *testing.T, db *sql.DB) *service.MatchingService {
	t.Helper()

	lotRepo := repository.NewTaxLotRepository(db)
	dispositionRepo := repository.NewDispositionRepository(db)
	washSaleRepo := repository.NewWashSaleRepository(db)
	eventRepo := repository.NewEventRepository(db)
	locks := service.NewAccountLockRegistry()

	ledger := service.NewLotLedgerService(lotRepo)
	washSaleService := service.NewWashSaleService(db, lotRepo, dispositionRepo, washSaleRepo, locks)

	return service.NewMatchingService(
		db,
		lotRepo,
		dispositionRepo,
		eventRepo,
		ledger,
		washSaleService,
		locks,
	)
}

func NewTestEventService(t *testing.T, db *sql.DB) *service.EventService {
	t.Helper()

	accountRepo := repository.NewAccountRepository(db)
	eventRepo := repository.NewEventRepository(db)

	return service.NewEventService(accountRepo, eventRepo)
}

func NewTestForm1099BService(t *testing.T, db *sql.DB) *service.Form1099BService {
	t.Helper()

	accountRepo := repository.NewAccountRepository(db)
	lotRepo := repository.NewTaxLotRepository(db)
	dispositionRepo := repository.NewDispositionRepository(db)
	washSaleRepo := repository.NewWashSaleRepository(db)
	formRepo := repository.NewForm1099BRepository(db)

	return service.NewForm1099BService(
		db,
		accountRepo,
		lotRepo,
		dispositionRepo,
		washSaleRepo,
		formRepo,
		service.NewAccountLockRegistry(),
	)
}

func NewTestIngestService(t *testing.T, db *sql.DB) *service.IngestService {
	t.Helper()

	accountRepo := repository.NewAccountRepository(db)
	lotRepo := repository.NewTaxLotRepository(db)
	ledger := service.NewLotLedgerService(lotRepo)
	matching := NewTestMatchingService(t, db)
	events := service.NewEventService(accountRepo, repository.NewEventRepository(db))

	return service.NewIngestService(
		accountRepo,
		lotRepo,
		ledger,
		matching,
		events,
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}
