package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JohnPierce/PersonalFinance/internal/model"
	"github.com/JohnPierce/PersonalFinance/internal/service"
	"github.com/JohnPierce/PersonalFinance/internal/testutil"
)

func ingestTransaction(portfolioID, investmentID string, txType model.TransactionType, quantity, price, fees string, date time.Time) model.Transaction {
	return model.Transaction{
		ReferenceID:     testutil.MakeID(),
		AccountID:       portfolioID,
		InvestmentID:    investmentID,
		Type:            txType,
		Quantity:        decimal.RequireFromString(quantity),
		Price:           decimal.RequireFromString(price),
		Fees:            decimal.RequireFromString(fees),
		TransactionDate: date,
	}
}

func TestProcessTransactionBuy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestIngestService(t, db)
	ctx := context.Background()

	account := testutil.NewAccount().Build(t, db)
	buy := ingestTransaction(account.PortfolioID, testutil.MakeID(), model.TransactionBuy,
		"10", "150", "7.50", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	result, err := svc.ProcessTransaction(ctx, buy, nil)
	if err != nil {
		t.Fatalf("ProcessTransaction failed: %v", err)
	}

	if result.Status != service.IngestLotOpened {
		t.Fatalf("Expected status %q, got %q", service.IngestLotOpened, result.Status)
	}
	if result.Lot == nil {
		t.Fatal("Expected a lot in the result")
	}

	// Cost basis includes fees: 10 x 150 + 7.50.
	if result.Lot.CostBasis.String() != "1507.5" {
		t.Errorf("Expected cost basis 1507.5, got %s", result.Lot.CostBasis)
	}
	if !result.Lot.RemainingQuantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected remaining 10, got %s", result.Lot.RemainingQuantity)
	}

	t.Run("replay returns the existing lot", func(t *testing.T) {
		replay, err := svc.ProcessTransaction(ctx, buy, nil)
		if err != nil {
			t.Fatalf("Replayed ProcessTransaction failed: %v", err)
		}
		if replay.Status != service.IngestAlreadyApplied {
			t.Errorf("Expected status %q, got %q", service.IngestAlreadyApplied, replay.Status)
		}
		if replay.Lot == nil || replay.Lot.ID != result.Lot.ID {
			t.Errorf("Expected the original lot back on replay")
		}
	})
}

func TestProcessTransactionSell(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestIngestService(t, db)
	ctx := context.Background()

	account := testutil.NewAccount().Build(t, db)
	investmentID := testutil.MakeID()

	buy := ingestTransaction(account.PortfolioID, investmentID, model.TransactionBuy,
		"10", "150", "0", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if _, err := svc.ProcessTransaction(ctx, buy, nil); err != nil {
		t.Fatalf("Failed to ingest buy: %v", err)
	}

	sell := ingestTransaction(account.PortfolioID, investmentID, model.TransactionSell,
		"4", "175", "0", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))

	result, err := svc.ProcessTransaction(ctx, sell, nil)
	if err != nil {
		t.Fatalf("ProcessTransaction failed: %v", err)
	}

	if result.Status != service.IngestSaleMatched {
		t.Fatalf("Expected status %q, got %q", service.IngestSaleMatched, result.Status)
	}
	if len(result.Dispositions) != 1 {
		t.Fatalf("Expected 1 disposition, got %d", len(result.Dispositions))
	}
	if !result.Dispositions[0].Quantity.Equal(decimal.NewFromInt(4)) {
		t.Errorf("Expected disposed quantity 4, got %s", result.Dispositions[0].Quantity)
	}
	if result.Dispositions[0].Proceeds.String() != "700" {
		t.Errorf("Expected proceeds 700, got %s", result.Dispositions[0].Proceeds)
	}
}

func TestProcessTransactionDividend(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestIngestService(t, db)
	ctx := context.Background()

	account := testutil.NewAccount().Build(t, db)
	dividend := ingestTransaction(account.PortfolioID, testutil.MakeID(), model.TransactionDividend,
		"1", "32.50", "0", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))

	result, err := svc.ProcessTransaction(ctx, dividend, nil)
	if err != nil {
		t.Fatalf("ProcessTransaction failed: %v", err)
	}

	if result.Status != service.IngestEventRecorded {
		t.Fatalf("Expected status %q, got %q", service.IngestEventRecorded, result.Status)
	}
	if result.Event == nil {
		t.Fatal("Expected an event in the result")
	}
	if result.Event.EventType != model.EventOrdinaryDividend {
		t.Errorf("Expected DIV_ORDINARY, got %s", result.Event.EventType)
	}
	if result.Event.Amount.String() != "32.5" {
		t.Errorf("Expected amount 32.5, got %s", result.Event.Amount)
	}

	t.Run("replay returns the existing event", func(t *testing.T) {
		replay, err := svc.ProcessTransaction(ctx, dividend, nil)
		if err != nil {
			t.Fatalf("Replayed ProcessTransaction failed: %v", err)
		}
		if replay.Status != service.IngestEventRecorded {
			t.Errorf("Expected status %q, got %q", service.IngestEventRecorded, replay.Status)
		}
		if replay.Event == nil || replay.Event.ID != result.Event.ID {
			t.Errorf("Expected the original event back on replay")
		}
	})
}

func TestProcessTransactionIgnoredTypes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestIngestService(t, db)
	ctx := context.Background()

	account := testutil.NewAccount().Build(t, db)

	for _, txType := range []model.TransactionType{
		model.TransactionSplit,
		model.TransactionTransfer,
		model.TransactionFee,
		model.TransactionOther,
	} {
		t.Run(string(txType), func(t *testing.T) {
			tx := ingestTransaction(account.PortfolioID, testutil.MakeID(), txType,
				"1", "1", "0", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))

			result, err := svc.ProcessTransaction(ctx, tx, nil)
			if err != nil {
				t.Fatalf("ProcessTransaction failed: %v", err)
			}
			if result.Status != service.IngestIgnored {
				t.Errorf("Expected status %q, got %q", service.IngestIgnored, result.Status)
			}
		})
	}
}

func TestProcessTransactionUntrackedPortfolio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestIngestService(t, db)

	tx := ingestTransaction(testutil.MakeID(), testutil.MakeID(), model.TransactionBuy,
		"10", "150", "0", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	result, err := svc.ProcessTransaction(context.Background(), tx, nil)
	if err != nil {
		t.Fatalf("ProcessTransaction failed: %v", err)
	}
	if result.Status != service.IngestUntracked {
		t.Errorf("Expected status %q, got %q", service.IngestUntracked, result.Status)
	}
	if result.Lot != nil {
		t.Error("Expected no lot for an untracked portfolio")
	}
}
