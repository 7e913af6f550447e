package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JohnPierce/PersonalFinance/internal/api/response"
	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/service"
)

// DispositionHandler handles HTTP requests for disposition endpoints.
type DispositionHandler struct {
	matchingService *service.MatchingService
}

// NewDispositionHandler creates a new DispositionHandler with the provided service dependency.
func NewDispositionHandler(matchingService *service.MatchingService) *DispositionHandler {
	return &DispositionHandler{
		matchingService: matchingService,
	}
}

// GetDisposition handles GET requests to retrieve a single disposition by ID.
// Returns the matched quantity, apportioned proceeds, and holding period.
//
// Endpoint: GET /api/disposition/{uuid}
// Response: 200 OK with TaxLotDisposition
// Error: 400 Bad Request if disposition ID is invalid (validated by middleware)
// Error: 404 Not Found if disposition not found
// Error: 500 Internal Server Error if retrieval fails
func (h *DispositionHandler) GetDisposition(w http.ResponseWriter, r *http.Request) {
	dispositionID := chi.URLParam(r, "uuid")

	disposition, err := h.matchingService.GetDisposition(dispositionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDispositionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrDispositionNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDispositions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, disposition)
}

// DispositionsPerAccount handles GET requests to retrieve all dispositions for an account.
//
// Endpoint: GET /api/disposition/account/{uuid}
// Response: 200 OK with array of TaxLotDisposition
// Error: 400 Bad Request if account ID is invalid (validated by middleware)
// Error: 500 Internal Server Error if retrieval fails
func (h *DispositionHandler) DispositionsPerAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	dispositions, err := h.matchingService.GetDispositionsByAccount(accountID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDispositions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, dispositions)
}
