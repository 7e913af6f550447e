package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
	"github.com/JohnPierce/PersonalFinance/internal/testutil"
)

func TestOpenLot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestLotLedgerService(t, db)
	ctx := context.Background()

	account := testutil.NewAccount().Build(t, db)
	acquired := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("opens a lot with full remaining quantity", func(t *testing.T) {
		lot, err := svc.OpenLot(ctx, account.ID, testutil.MakeID(), testutil.MakeID(),
			decimal.NewFromInt(100), decimal.RequireFromString("1507.50"), acquired)
		if err != nil {
			t.Fatalf("OpenLot failed: %v", err)
		}

		if !lot.RemainingQuantity.Equal(lot.Quantity) {
			t.Errorf("Expected remaining equal to quantity, got %s of %s", lot.RemainingQuantity, lot.Quantity)
		}
		if !lot.AdjustedBasis.Equal(lot.CostBasis) {
			t.Errorf("Expected adjusted basis equal to cost basis, got %s of %s", lot.AdjustedBasis, lot.CostBasis)
		}

		stored, err := svc.GetLot(lot.ID)
		if err != nil {
			t.Fatalf("GetLot failed: %v", err)
		}
		if !stored.CostBasis.Equal(decimal.RequireFromString("1507.50")) {
			t.Errorf("Expected cost basis 1507.50, got %s", stored.CostBasis)
		}
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := svc.OpenLot(ctx, account.ID, testutil.MakeID(), testutil.MakeID(),
			decimal.Zero, decimal.NewFromInt(100), acquired)
		if !errors.Is(err, apperrors.ErrInvalidQuantity) {
			t.Errorf("Expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := svc.OpenLot(ctx, account.ID, testutil.MakeID(), testutil.MakeID(),
			decimal.NewFromInt(-5), decimal.NewFromInt(100), acquired)
		if !errors.Is(err, apperrors.ErrInvalidQuantity) {
			t.Errorf("Expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("rejects negative cost basis", func(t *testing.T) {
		_, err := svc.OpenLot(ctx, account.ID, testutil.MakeID(), testutil.MakeID(),
			decimal.NewFromInt(10), decimal.NewFromInt(-100), acquired)
		if !errors.Is(err, apperrors.ErrInvalidQuantity) {
			t.Errorf("Expected ErrInvalidQuantity, got %v", err)
		}
	})
}

func TestDecrement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestLotLedgerService(t, db)
	lotRepo := repository.NewTaxLotRepository(db)
	ctx := context.Background()

	account := testutil.NewAccount().Build(t, db)

	t.Run("reduces remaining quantity", func(t *testing.T) {
		lot := testutil.NewLot(account.ID).WithQuantity("100").Build(t, db)

		if err := svc.Decrement(ctx, lotRepo, &lot, decimal.NewFromInt(40)); err != nil {
			t.Fatalf("Decrement failed: %v", err)
		}
		if !lot.RemainingQuantity.Equal(decimal.NewFromInt(60)) {
			t.Errorf("Expected remaining 60, got %s", lot.RemainingQuantity)
		}

		stored, err := lotRepo.GetByID(lot.ID)
		if err != nil {
			t.Fatalf("Failed to reload lot: %v", err)
		}
		if !stored.RemainingQuantity.Equal(decimal.NewFromInt(60)) {
			t.Errorf("Expected stored remaining 60, got %s", stored.RemainingQuantity)
		}
	})

	t.Run("allows exact depletion", func(t *testing.T) {
		lot := testutil.NewLot(account.ID).WithQuantity("25").Build(t, db)

		if err := svc.Decrement(ctx, lotRepo, &lot, decimal.NewFromInt(25)); err != nil {
			t.Fatalf("Decrement failed: %v", err)
		}
		if !lot.RemainingQuantity.IsZero() {
			t.Errorf("Expected remaining 0, got %s", lot.RemainingQuantity)
		}
	})

	t.Run("rejects overdisposal", func(t *testing.T) {
		lot := testutil.NewLot(account.ID).WithQuantity("10").Build(t, db)

		err := svc.Decrement(ctx, lotRepo, &lot, decimal.NewFromInt(11))
		if !errors.Is(err, apperrors.ErrOverdisposal) {
			t.Errorf("Expected ErrOverdisposal, got %v", err)
		}
		if !lot.RemainingQuantity.Equal(decimal.NewFromInt(10)) {
			t.Errorf("Expected remaining unchanged at 10, got %s", lot.RemainingQuantity)
		}
	})

	t.Run("rejects non-positive decrement", func(t *testing.T) {
		lot := testutil.NewLot(account.ID).WithQuantity("10").Build(t, db)

		err := svc.Decrement(ctx, lotRepo, &lot, decimal.Zero)
		if !errors.Is(err, apperrors.ErrInvalidQuantity) {
			t.Errorf("Expected ErrInvalidQuantity, got %v", err)
		}
	})
}
