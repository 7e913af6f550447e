package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
	"github.com/JohnPierce/PersonalFinance/internal/testutil"
)

func TestCalculateTotals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestForm1099BService(t, db)
	ctx := context.Background()

	account := testutil.NewAccount().Build(t, db)

	// One short-term and one long-term disposition in 2024, one disposition
	// in 2023 that must stay out of the 2024 form.
	shortLot := testutil.NewLot(account.ID).
		WithQuantity("1").
		WithCostBasis("100").
		WithRemaining("0").
		Build(t, db)
	shortDisposition := testutil.NewDisposition(shortLot.ID).
		WithQuantity("1").
		WithProceeds("120").
		OnDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).
		WithHoldingPeriod(100 * 24 * time.Hour).
		Build(t, db)

	longLot := testutil.NewLot(account.ID).
		WithQuantity("1").
		WithCostBasis("250").
		WithRemaining("0").
		Build(t, db)
	testutil.NewDisposition(longLot.ID).
		WithQuantity("1").
		WithProceeds("300").
		OnDate(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)).
		WithHoldingPeriod(400 * 24 * time.Hour).
		Build(t, db)

	priorLot := testutil.NewLot(account.ID).
		WithQuantity("1").
		WithCostBasis("50").
		WithRemaining("0").
		Build(t, db)
	testutil.NewDisposition(priorLot.ID).
		WithQuantity("1").
		WithProceeds("75").
		OnDate(time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)).
		Build(t, db)

	// Wash sale attached to the short-term disposition.
	replacement := testutil.NewLot(account.ID).Build(t, db)
	testutil.CreateWashSale(t, db, shortDisposition.ID, replacement.ID, "15.50",
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	form, err := svc.CalculateTotals(ctx, account.ID, 2024)
	if err != nil {
		t.Fatalf("CalculateTotals failed: %v", err)
	}

	if form.TaxYear != 2024 {
		t.Errorf("Expected tax year 2024, got %d", form.TaxYear)
	}
	if form.STCoveredProceeds.String() != "120" {
		t.Errorf("Expected ST proceeds 120, got %s", form.STCoveredProceeds)
	}
	if form.STCoveredBasis.String() != "100" {
		t.Errorf("Expected ST basis 100, got %s", form.STCoveredBasis)
	}
	if form.LTCoveredProceeds.String() != "300" {
		t.Errorf("Expected LT proceeds 300, got %s", form.LTCoveredProceeds)
	}
	if form.LTCoveredBasis.String() != "250" {
		t.Errorf("Expected LT basis 250, got %s", form.LTCoveredBasis)
	}
	if form.WashSaleAdjustments.String() != "15.5" {
		t.Errorf("Expected wash sale adjustments 15.5, got %s", form.WashSaleAdjustments)
	}
	if form.ComputedAt.IsZero() {
		t.Error("Expected ComputedAt to be set")
	}

	formRepo := repository.NewForm1099BRepository(db)
	linked, err := formRepo.GetLinkedDispositionIDs(form.ID)
	if err != nil {
		t.Fatalf("Failed to query form links: %v", err)
	}
	if len(linked) != 2 {
		t.Errorf("Expected 2 linked dispositions, got %d", len(linked))
	}
}

func TestCalculateTotalsUsesAdjustedBasis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestForm1099BService(t, db)
	washSvc := testutil.NewTestWashSaleService(t, db)
	ctx := context.Background()

	account := testutil.NewAccount().Build(t, db)
	investmentID := testutil.MakeID()

	// A loss sale with a replacement purchase: the disallowed loss lands in
	// the replacement lot's adjusted basis, and a later sale of the
	// replacement must report the adjusted figure.
	sold := testutil.NewLot(account.ID).
		WithInvestmentID(investmentID).
		WithQuantity("1").
		WithCostBasis("200").
		WithRemaining("0").
		Build(t, db)
	lossDisposition := testutil.NewDisposition(sold.ID).
		WithQuantity("1").
		WithProceeds("150").
		OnDate(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)).
		Build(t, db)

	replacement := testutil.NewLot(account.ID).
		WithInvestmentID(investmentID).
		WithQuantity("1").
		WithCostBasis("180").
		AcquiredOn(time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)).
		Build(t, db)

	if err := washSvc.ProcessDisposition(ctx, account, lossDisposition.ID); err != nil {
		t.Fatalf("ProcessDisposition failed: %v", err)
	}

	// Sell the replacement later in the year.
	testutil.NewDisposition(replacement.ID).
		WithQuantity("1").
		WithProceeds("260").
		OnDate(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)).
		Build(t, db)

	form, err := svc.CalculateTotals(ctx, account.ID, 2024)
	if err != nil {
		t.Fatalf("CalculateTotals failed: %v", err)
	}

	// ST basis: 200 from the loss sale plus 230 adjusted (180 + 50 loss).
	if form.STCoveredBasis.String() != "430" {
		t.Errorf("Expected ST basis 430, got %s", form.STCoveredBasis)
	}
	if form.WashSaleAdjustments.String() != "50" {
		t.Errorf("Expected wash sale adjustments 50, got %s", form.WashSaleAdjustments)
	}
}

func TestCalculateTotalsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestForm1099BService(t, db)
	ctx := context.Background()

	account := testutil.NewAccount().Build(t, db)
	lot := testutil.NewLot(account.ID).
		WithQuantity("1").
		WithCostBasis("100").
		WithRemaining("0").
		Build(t, db)
	testutil.NewDisposition(lot.ID).
		WithQuantity("1").
		WithProceeds("120").
		OnDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).
		Build(t, db)

	first, err := svc.CalculateTotals(ctx, account.ID, 2024)
	if err != nil {
		t.Fatalf("CalculateTotals failed: %v", err)
	}
	second, err := svc.CalculateTotals(ctx, account.ID, 2024)
	if err != nil {
		t.Fatalf("Repeated CalculateTotals failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Expected the same form row on recompute, got %s and %s", first.ID, second.ID)
	}
	if !second.STCoveredProceeds.Equal(first.STCoveredProceeds) {
		t.Errorf("Expected identical totals, got %s and %s", first.STCoveredProceeds, second.STCoveredProceeds)
	}

	formRepo := repository.NewForm1099BRepository(db)
	linked, err := formRepo.GetLinkedDispositionIDs(first.ID)
	if err != nil {
		t.Fatalf("Failed to query form links: %v", err)
	}
	if len(linked) != 1 {
		t.Errorf("Expected 1 linked disposition after recompute, got %d", len(linked))
	}
}

func TestCalculateTotalsValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestForm1099BService(t, db)
	ctx := context.Background()

	account := testutil.NewAccount().Build(t, db)

	t.Run("rejects out-of-range tax year", func(t *testing.T) {
		_, err := svc.CalculateTotals(ctx, account.ID, 1899)
		if !errors.Is(err, apperrors.ErrInvalidTaxYear) {
			t.Errorf("Expected ErrInvalidTaxYear, got %v", err)
		}
	})

	t.Run("rejects unknown account", func(t *testing.T) {
		_, err := svc.CalculateTotals(ctx, testutil.MakeID(), 2024)
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			t.Errorf("Expected ErrAccountNotFound, got %v", err)
		}
	})
}

func TestGetForm(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestForm1099BService(t, db)
	ctx := context.Background()

	account := testutil.NewAccount().Build(t, db)

	t.Run("not found before first calculation", func(t *testing.T) {
		_, err := svc.GetForm(account.ID, 2024)
		if !errors.Is(err, apperrors.ErrForm1099BNotFound) {
			t.Errorf("Expected ErrForm1099BNotFound, got %v", err)
		}
	})

	t.Run("returns the stored form after calculation", func(t *testing.T) {
		computed, err := svc.CalculateTotals(ctx, account.ID, 2024)
		if err != nil {
			t.Fatalf("CalculateTotals failed: %v", err)
		}

		form, err := svc.GetForm(account.ID, 2024)
		if err != nil {
			t.Fatalf("GetForm failed: %v", err)
		}
		if form.ID != computed.ID {
			t.Errorf("Expected form %s, got %s", computed.ID, form.ID)
		}
	})
}

func TestRecomputeAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestForm1099BService(t, db)
	ctx := context.Background()

	first := testutil.NewAccount().Build(t, db)
	second := testutil.NewAccount().Build(t, db)

	lot := testutil.NewLot(first.ID).
		WithQuantity("1").
		WithCostBasis("100").
		WithRemaining("0").
		Build(t, db)
	testutil.NewDisposition(lot.ID).
		WithQuantity("1").
		WithProceeds("120").
		OnDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).
		Build(t, db)

	if err := svc.RecomputeAll(ctx, 2024); err != nil {
		t.Fatalf("RecomputeAll failed: %v", err)
	}

	firstForm, err := svc.GetForm(first.ID, 2024)
	if err != nil {
		t.Fatalf("GetForm failed for account with activity: %v", err)
	}
	if firstForm.STCoveredProceeds.String() != "120" {
		t.Errorf("Expected ST proceeds 120, got %s", firstForm.STCoveredProceeds)
	}

	secondForm, err := svc.GetForm(second.ID, 2024)
	if err != nil {
		t.Fatalf("GetForm failed for idle account: %v", err)
	}
	if !secondForm.STCoveredProceeds.IsZero() {
		t.Errorf("Expected zero proceeds on idle account, got %s", secondForm.STCoveredProceeds)
	}
}
