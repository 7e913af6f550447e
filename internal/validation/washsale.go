package validation

import (
	"strings"

	"github.com/JohnPierce/PersonalFinance/internal/api/request"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
)

func ValidateWashSaleScan(req request.WashSaleScanRequest) error {
	errors := make(map[string]string)

	var start, end bool
	if strings.TrimSpace(req.StartDate) == "" {
		errors["startDate"] = "startDate is required"
	} else if _, err := repository.ParseTime(req.StartDate); err != nil {
		errors["startDate"] = "startDate must be YYYY-MM-DD or RFC 3339"
	} else {
		start = true
	}

	if strings.TrimSpace(req.EndDate) == "" {
		errors["endDate"] = "endDate is required"
	} else if _, err := repository.ParseTime(req.EndDate); err != nil {
		errors["endDate"] = "endDate must be YYYY-MM-DD or RFC 3339"
	} else {
		end = true
	}

	if start && end {
		startDate, _ := repository.ParseTime(req.StartDate)
		endDate, _ := repository.ParseTime(req.EndDate)
		if endDate.Before(startDate) {
			errors["endDate"] = "endDate cannot be before startDate"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
