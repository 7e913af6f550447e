package validation

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/JohnPierce/PersonalFinance/internal/api/request"
	"github.com/JohnPierce/PersonalFinance/internal/testutil"
)

func validIngestRequest() request.IngestTransactionRequest {
	return request.IngestTransactionRequest{
		ReferenceID:  testutil.MakeID(),
		PortfolioID:  testutil.MakeID(),
		InvestmentID: testutil.MakeID(),
		Type:         "BUY",
		Quantity:     decimal.NewFromInt(10),
		Price:        decimal.NewFromInt(150),
		Fees:         decimal.Zero,
		Date:         "2024-01-15",
	}
}

func TestValidateIngestTransaction(t *testing.T) {
	t.Run("accepts a valid request", func(t *testing.T) {
		if err := ValidateIngestTransaction(validIngestRequest()); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*request.IngestTransactionRequest)
		wantKey string
	}{
		{
			name:    "missing reference ID",
			mutate:  func(r *request.IngestTransactionRequest) { r.ReferenceID = "" },
			wantKey: "referenceId",
		},
		{
			name:    "malformed portfolio ID",
			mutate:  func(r *request.IngestTransactionRequest) { r.PortfolioID = "not-a-uuid" },
			wantKey: "portfolioId",
		},
		{
			name:    "missing investment ID",
			mutate:  func(r *request.IngestTransactionRequest) { r.InvestmentID = "  " },
			wantKey: "investmentId",
		},
		{
			name:    "unknown transaction type",
			mutate:  func(r *request.IngestTransactionRequest) { r.Type = "SHORT" },
			wantKey: "type",
		},
		{
			name:    "negative quantity",
			mutate:  func(r *request.IngestTransactionRequest) { r.Quantity = decimal.NewFromInt(-1) },
			wantKey: "quantity",
		},
		{
			name:    "negative fees",
			mutate:  func(r *request.IngestTransactionRequest) { r.Fees = decimal.NewFromInt(-1) },
			wantKey: "fees",
		},
		{
			name:    "unparseable date",
			mutate:  func(r *request.IngestTransactionRequest) { r.Date = "15/01/2024" },
			wantKey: "date",
		},
		{
			name: "specific lots on a non-sale",
			mutate: func(r *request.IngestTransactionRequest) {
				r.SpecificLotIDs = []string{testutil.MakeID()}
			},
			wantKey: "specificLotIds",
		},
		{
			name: "malformed specific lot ID",
			mutate: func(r *request.IngestTransactionRequest) {
				r.Type = "SELL"
				r.SpecificLotIDs = []string{"not-a-uuid"}
			},
			wantKey: "specificLotIds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validIngestRequest()
			tt.mutate(&req)

			err := ValidateIngestTransaction(req)
			if err == nil {
				t.Fatal("Expected a validation error")
			}

			vErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("Expected *validation.Error, got %T", err)
			}
			if _, found := vErr.Fields[tt.wantKey]; !found {
				t.Errorf("Expected error on field %q, got %v", tt.wantKey, vErr.Fields)
			}
		})
	}
}

func TestValidateCreateAccount(t *testing.T) {
	t.Run("accepts a valid request", func(t *testing.T) {
		req := request.CreateAccountRequest{
			PortfolioID:     testutil.MakeID(),
			CostBasisMethod: "FIFO",
			AccountType:     "Taxable",
		}
		if err := ValidateCreateAccount(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("account type is optional", func(t *testing.T) {
		req := request.CreateAccountRequest{
			PortfolioID:     testutil.MakeID(),
			CostBasisMethod: "SPECIFIC",
		}
		if err := ValidateCreateAccount(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("rejects an unknown cost basis method", func(t *testing.T) {
		req := request.CreateAccountRequest{
			PortfolioID:     testutil.MakeID(),
			CostBasisMethod: "AVERAGE",
		}
		err := ValidateCreateAccount(req)
		if err == nil {
			t.Fatal("Expected a validation error")
		}
		if _, found := err.(*Error).Fields["costBasisMethod"]; !found {
			t.Errorf("Expected error on costBasisMethod, got %v", err)
		}
	})

	t.Run("rejects an unknown account type", func(t *testing.T) {
		req := request.CreateAccountRequest{
			PortfolioID:     testutil.MakeID(),
			CostBasisMethod: "FIFO",
			AccountType:     "Margin",
		}
		err := ValidateCreateAccount(req)
		if err == nil {
			t.Fatal("Expected a validation error")
		}
		if _, found := err.(*Error).Fields["accountType"]; !found {
			t.Errorf("Expected error on accountType, got %v", err)
		}
	})
}

func TestValidateWashSaleScan(t *testing.T) {
	t.Run("accepts a valid range", func(t *testing.T) {
		req := request.WashSaleScanRequest{StartDate: "2024-06-01", EndDate: "2024-06-30"}
		if err := ValidateWashSaleScan(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("rejects a missing end date", func(t *testing.T) {
		req := request.WashSaleScanRequest{StartDate: "2024-06-01"}
		err := ValidateWashSaleScan(req)
		if err == nil {
			t.Fatal("Expected a validation error")
		}
		if _, found := err.(*Error).Fields["endDate"]; !found {
			t.Errorf("Expected error on endDate, got %v", err)
		}
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		req := request.WashSaleScanRequest{StartDate: "2024-06-30", EndDate: "2024-06-01"}
		err := ValidateWashSaleScan(req)
		if err == nil {
			t.Fatal("Expected a validation error")
		}
		if _, found := err.(*Error).Fields["endDate"]; !found {
			t.Errorf("Expected error on endDate, got %v", err)
		}
	})
}
