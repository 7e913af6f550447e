package validation

import (
	"strings"

	"github.com/JohnPierce/PersonalFinance/internal/api/request"
	"github.com/JohnPierce/PersonalFinance/internal/model"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
)

func ValidateIngestTransaction(req request.IngestTransactionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.ReferenceID) == "" {
		errors["referenceId"] = "referenceId is required"
	} else if err := ValidateUUID(req.ReferenceID); err != nil {
		errors["referenceId"] = "referenceId must be a valid UUID"
	}

	if strings.TrimSpace(req.PortfolioID) == "" {
		errors["portfolioId"] = "portfolioId is required"
	} else if err := ValidateUUID(req.PortfolioID); err != nil {
		errors["portfolioId"] = "portfolioId must be a valid UUID"
	}

	if strings.TrimSpace(req.InvestmentID) == "" {
		errors["investmentId"] = "investmentId is required"
	}

	transactionType, err := model.ParseTransactionType(req.Type)
	if err != nil {
		errors["type"] = "unknown transaction type"
	}

	if req.Quantity.IsNegative() {
		errors["quantity"] = "quantity cannot be negative"
	}
	if req.Price.IsNegative() {
		errors["price"] = "price cannot be negative"
	}
	if req.Fees.IsNegative() {
		errors["fees"] = "fees cannot be negative"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := repository.ParseTime(req.Date); err != nil {
		errors["date"] = "date must be YYYY-MM-DD or RFC 3339"
	}

	if req.SettlementDate != nil {
		if _, err := repository.ParseTime(*req.SettlementDate); err != nil {
			errors["settlementDate"] = "settlementDate must be YYYY-MM-DD or RFC 3339"
		}
	}

	// Specific lot selection only applies to sales.
	if len(req.SpecificLotIDs) > 0 {
		if transactionType != model.TransactionSell {
			errors["specificLotIds"] = "specificLotIds is only valid for SELL transactions"
		} else if err := ValidateUUIDs(req.SpecificLotIDs); err != nil {
			errors["specificLotIds"] = "specificLotIds must all be valid UUIDs"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
