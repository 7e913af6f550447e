package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JohnPierce/PersonalFinance/internal/api/handlers"
	"github.com/JohnPierce/PersonalFinance/internal/model"
	"github.com/JohnPierce/PersonalFinance/internal/testutil"
)

// TestForm1099BHandler_Calculate tests the POST /api/form1099b/account/{uuid}/{year} endpoint.
//
// WHY: The 1099-B is the engine's year-end deliverable. Recalculation must be
// safe to repeat, and the error mapping matters: a bad year is a client
// mistake (400), an unknown account is 404, never a 500.
func TestForm1099BHandler_Calculate(t *testing.T) {
	t.Run("calculates and returns the form", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestForm1099BService(t, db)
		handler := handlers.NewForm1099BHandler(svc)

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

		req := testutil.NewRequestWithURLParams(http.MethodPost,
			"/api/form1099b/account/"+account.ID+"/2024",
			map[string]string{"uuid": account.ID, "year": "2024"})
		w := httptest.NewRecorder()

		// Execute
		handler.Calculate(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var form model.Form1099B
		if err := json.NewDecoder(w.Body).Decode(&form); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if form.TaxYear != 2024 {
			t.Errorf("Expected tax year 2024, got %d", form.TaxYear)
		}
		if form.STCoveredProceeds.String() != "120" {
			t.Errorf("Expected ST proceeds 120, got %s", form.STCoveredProceeds)
		}
	})

	t.Run("out-of-range year returns 400", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestForm1099BService(t, db)
		handler := handlers.NewForm1099BHandler(svc)

		account := testutil.NewAccount().Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodPost,
			"/api/form1099b/account/"+account.ID+"/1850",
			map[string]string{"uuid": account.ID, "year": "1850"})
		w := httptest.NewRecorder()

		// Execute
		handler.Calculate(w, req)

		// Assert
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown account returns 404", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestForm1099BService(t, db)
		handler := handlers.NewForm1099BHandler(svc)

		unknown := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodPost,
			"/api/form1099b/account/"+unknown+"/2024",
			map[string]string{"uuid": unknown, "year": "2024"})
		w := httptest.NewRecorder()

		// Execute
		handler.Calculate(w, req)

		// Assert
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

// TestForm1099BHandler_GetForm tests the GET /api/form1099b/account/{uuid}/{year} endpoint.
func TestForm1099BHandler_GetForm(t *testing.T) {
	t.Run("returns 404 before the first calculation", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestForm1099BService(t, db)
		handler := handlers.NewForm1099BHandler(svc)

		account := testutil.NewAccount().Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/form1099b/account/"+account.ID+"/2024",
			map[string]string{"uuid": account.ID, "year": "2024"})
		w := httptest.NewRecorder()

		// Execute
		handler.GetForm(w, req)

		// Assert
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("returns the stored form after calculation", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestForm1099BService(t, db)
		handler := handlers.NewForm1099BHandler(svc)

		account := testutil.NewAccount().Build(t, db)

		calcReq := testutil.NewRequestWithURLParams(http.MethodPost,
			"/api/form1099b/account/"+account.ID+"/2024",
			map[string]string{"uuid": account.ID, "year": "2024"})
		calcW := httptest.NewRecorder()
		handler.Calculate(calcW, calcReq)
		if calcW.Code != http.StatusOK {
			t.Fatalf("Calculate failed with status %d", calcW.Code)
		}

		req := testutil.NewRequestWithURLParams(http.MethodGet,
			"/api/form1099b/account/"+account.ID+"/2024",
			map[string]string{"uuid": account.ID, "year": "2024"})
		w := httptest.NewRecorder()

		// Execute
		handler.GetForm(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var form model.Form1099B
		if err := json.NewDecoder(w.Body).Decode(&form); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if form.AccountID != account.ID {
			t.Errorf("Expected account %s, got %s", account.ID, form.AccountID)
		}
	})
}
