package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JohnPierce/PersonalFinance/internal/api/request"
	"github.com/JohnPierce/PersonalFinance/internal/api/response"
	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
	"github.com/JohnPierce/PersonalFinance/internal/service"
	"github.com/JohnPierce/PersonalFinance/internal/validation"
)

// WashSaleHandler handles HTTP requests for wash sale endpoints.
type WashSaleHandler struct {
	washSaleService *service.WashSaleService
	accountService  *service.AccountService
}

// NewWashSaleHandler creates a new WashSaleHandler with the provided service dependencies.
func NewWashSaleHandler(washSaleService *service.WashSaleService, accountService *service.AccountService) *WashSaleHandler {
	return &WashSaleHandler{
		washSaleService: washSaleService,
		accountService:  accountService,
	}
}

// WashSalesPerAccount handles GET requests to retrieve all wash sale records for an account.
//
// Endpoint: GET /api/washsale/account/{uuid}
// Response: 200 OK with array of WashSale
// Error: 400 Bad Request if account ID is invalid (validated by middleware)
// Error: 500 Internal Server Error if retrieval fails
func (h *WashSaleHandler) WashSalesPerAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	washSales, err := h.washSaleService.GetWashSalesByAccount(accountID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveWashSales.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, washSales)
}

// Scan handles POST requests to run retroactive wash sale detection over a
// date range. The scan is idempotent; per-disposition failures are reported
// in the result without aborting the scan.
//
// Endpoint: POST /api/washsale/account/{uuid}/scan
// Request Body: WashSaleScanRequest (startDate, endDate)
// Response: 200 OK with ScanResult
// Error: 400 Bad Request if account ID is invalid (validated by middleware) or validation fails
// Error: 404 Not Found if account not found
// Error: 500 Internal Server Error if the scan fails
func (h *WashSaleHandler) Scan(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.WashSaleScanRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateWashSaleScan(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account, err := h.accountService.GetAccount(accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToScanWashSales.Error(), err.Error())
		return
	}

	startDate, _ := repository.ParseTime(req.StartDate)
	endDate, _ := repository.ParseTime(req.EndDate)

	result, err := h.washSaleService.DetectWashSalesForPeriod(r.Context(), account, startDate, endDate)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToScanWashSales.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Summary handles GET requests to retrieve an account's wash sale summary for
// one tax year.
//
// Endpoint: GET /api/washsale/account/{uuid}/summary/{year}
// Response: 200 OK with WashSaleSummary
// Error: 400 Bad Request if account ID or year is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *WashSaleHandler) Summary(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	taxYear, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidTaxYear.Error(), err.Error())
		return
	}

	summary, err := h.washSaleService.GetWashSaleSummary(accountID, taxYear)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveWashSales.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
