package validation

import (
	"fmt"
	"strings"

	"github.com/JohnPierce/PersonalFinance/internal/api/request"
	"github.com/JohnPierce/PersonalFinance/internal/model"
)

type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}

func ValidateCreateAccount(req request.CreateAccountRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.PortfolioID) == "" {
		errors["portfolioId"] = "portfolioId is required"
	} else if err := ValidateUUID(req.PortfolioID); err != nil {
		errors["portfolioId"] = "portfolioId must be a valid UUID"
	}

	if _, err := model.ParseCostBasisMethod(req.CostBasisMethod); err != nil {
		errors["costBasisMethod"] = "costBasisMethod must be one of FIFO, LIFO, HIFO, SPECIFIC"
	}

	// Optional
	if req.AccountType != "" {
		if _, err := model.ParseAccountType(req.AccountType); err != nil {
			errors["accountType"] = "unknown account type"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateUpdateAccountSettings(req request.UpdateAccountSettingsRequest) error {
	errors := make(map[string]string)

	if _, err := model.ParseCostBasisMethod(req.CostBasisMethod); err != nil {
		errors["costBasisMethod"] = "costBasisMethod must be one of FIFO, LIFO, HIFO, SPECIFIC"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
