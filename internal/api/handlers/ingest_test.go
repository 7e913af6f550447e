package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JohnPierce/PersonalFinance/internal/api/handlers"
	"github.com/JohnPierce/PersonalFinance/internal/service"
	"github.com/JohnPierce/PersonalFinance/internal/testutil"
)

// TestIngestHandler_IngestTransaction tests the POST /api/ingest/transaction endpoint.
//
// WHY: This is the write path of the whole engine. The portfolio ledger posts
// every transaction here and relies on the status codes to decide whether to
// retry: 200 means applied (or already applied), 400 means the transaction is
// malformed and must not be retried, 409 means the sale cannot be covered by
// the open lots.
func TestIngestHandler_IngestTransaction(t *testing.T) {
	postBody := func(t *testing.T, handler *handlers.IngestHandler, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/ingest/transaction", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.IngestTransaction(w, req)
		return w
	}

	t.Run("BUY opens a tax lot", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIngestService(t, db)
		handler := handlers.NewIngestHandler(svc)

		account := testutil.NewAccount().Build(t, db)
		body := `{
			"referenceId": "` + testutil.MakeID() + `",
			"portfolioId": "` + account.PortfolioID + `",
			"investmentId": "` + testutil.MakeID() + `",
			"type": "BUY",
			"quantity": "10",
			"price": "150",
			"fees": "7.50",
			"date": "2024-01-15"
		}`

		// Execute
		w := postBody(t, handler, body)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var result service.IngestResult
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if result.Status != service.IngestLotOpened {
			t.Errorf("Expected status %q, got %q", service.IngestLotOpened, result.Status)
		}
		if result.Lot == nil {
			t.Fatal("Expected a lot in the result")
		}
		if result.Lot.CostBasis.String() != "1507.5" {
			t.Errorf("Expected cost basis 1507.5, got %s", result.Lot.CostBasis)
		}
	})

	t.Run("SELL returns the matched dispositions", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIngestService(t, db)
		handler := handlers.NewIngestHandler(svc)

		account := testutil.NewAccount().Build(t, db)
		investmentID := testutil.MakeID()
		testutil.NewLot(account.ID).
			WithInvestmentID(investmentID).
			WithQuantity("10").
			AcquiredOn(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		body := `{
			"referenceId": "` + testutil.MakeID() + `",
			"portfolioId": "` + account.PortfolioID + `",
			"investmentId": "` + investmentID + `",
			"type": "SELL",
			"quantity": "4",
			"price": "175",
			"fees": "0",
			"date": "2024-06-03"
		}`

		// Execute
		w := postBody(t, handler, body)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var result service.IngestResult
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if result.Status != service.IngestSaleMatched {
			t.Errorf("Expected status %q, got %q", service.IngestSaleMatched, result.Status)
		}
		if len(result.Dispositions) != 1 {
			t.Errorf("Expected 1 disposition, got %d", len(result.Dispositions))
		}
	})

	t.Run("SELL beyond open lots returns 409", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIngestService(t, db)
		handler := handlers.NewIngestHandler(svc)

		account := testutil.NewAccount().Build(t, db)
		investmentID := testutil.MakeID()
		testutil.NewLot(account.ID).
			WithInvestmentID(investmentID).
			WithQuantity("10").
			Build(t, db)

		body := `{
			"referenceId": "` + testutil.MakeID() + `",
			"portfolioId": "` + account.PortfolioID + `",
			"investmentId": "` + investmentID + `",
			"type": "SELL",
			"quantity": "11",
			"price": "175",
			"fees": "0",
			"date": "2024-06-03"
		}`

		// Execute
		w := postBody(t, handler, body)

		// Assert
		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("invalid transaction type returns 400", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIngestService(t, db)
		handler := handlers.NewIngestHandler(svc)

		account := testutil.NewAccount().Build(t, db)
		body := `{
			"referenceId": "` + testutil.MakeID() + `",
			"portfolioId": "` + account.PortfolioID + `",
			"investmentId": "` + testutil.MakeID() + `",
			"type": "SHORT",
			"quantity": "1",
			"price": "1",
			"fees": "0",
			"date": "2024-06-03"
		}`

		// Execute
		w := postBody(t, handler, body)

		// Assert
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("untracked portfolio returns 200 with untracked status", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestIngestService(t, db)
		handler := handlers.NewIngestHandler(svc)

		body := `{
			"referenceId": "` + testutil.MakeID() + `",
			"portfolioId": "` + testutil.MakeID() + `",
			"investmentId": "` + testutil.MakeID() + `",
			"type": "BUY",
			"quantity": "10",
			"price": "150",
			"fees": "0",
			"date": "2024-01-15"
		}`

		// Execute
		w := postBody(t, handler, body)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var result service.IngestResult
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if result.Status != service.IngestUntracked {
			t.Errorf("Expected status %q, got %q", service.IngestUntracked, result.Status)
		}
	})
}
