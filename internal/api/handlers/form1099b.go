package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JohnPierce/PersonalFinance/internal/api/response"
	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/service"
)

// Form1099BHandler handles HTTP requests for 1099-B endpoints.
type Form1099BHandler struct {
	formService *service.Form1099BService
}

// NewForm1099BHandler creates a new Form1099BHandler with the provided service dependency.
func NewForm1099BHandler(formService *service.Form1099BService) *Form1099BHandler {
	return &Form1099BHandler{
		formService: formService,
	}
}

// Calculate handles POST requests to rebuild the 1099-B totals for an account
// and tax year. Recalculation replaces the form's linked dispositions and
// totals; repeating the request converges on the same numbers.
//
// Endpoint: POST /api/form1099b/account/{uuid}/{year}
// Response: 200 OK with Form1099B
// Error: 400 Bad Request if account ID or year is invalid
// Error: 404 Not Found if account not found
// Error: 500 Internal Server Error if calculation fails
func (h *Form1099BHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	taxYear, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidTaxYear.Error(), err.Error())
		return
	}

	form, err := h.formService.CalculateTotals(r.Context(), accountID, taxYear)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidTaxYear):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidTaxYear.Error(), err.Error())
		case errors.Is(err, apperrors.ErrAccountNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCalculateTotals.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, form)
}

// GetForm handles GET requests to retrieve the stored 1099-B for an account
// and tax year without recomputing it.
//
// Endpoint: GET /api/form1099b/account/{uuid}/{year}
// Response: 200 OK with Form1099B
// Error: 400 Bad Request if account ID or year is invalid
// Error: 404 Not Found if account or form not found
// Error: 500 Internal Server Error if retrieval fails
func (h *Form1099BHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	taxYear, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidTaxYear.Error(), err.Error())
		return
	}

	form, err := h.formService.GetForm(accountID, taxYear)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidTaxYear):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidTaxYear.Error(), err.Error())
		case errors.Is(err, apperrors.ErrAccountNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrForm1099BNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrForm1099BNotFound.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveForm1099B.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, form)
}
