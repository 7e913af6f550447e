package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JohnPierce/PersonalFinance/internal/api/response"
	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/service"
)

// LotHandler handles HTTP requests for tax lot endpoints.
type LotHandler struct {
	ledgerService *service.LotLedgerService
}

// NewLotHandler creates a new LotHandler with the provided service dependency.
func NewLotHandler(ledgerService *service.LotLedgerService) *LotHandler {
	return &LotHandler{
		ledgerService: ledgerService,
	}
}

// GetLot handles GET requests to retrieve a single tax lot by ID.
// Returns lot details including remaining quantity and adjusted basis.
//
// Endpoint: GET /api/lot/{uuid}
// Response: 200 OK with TaxLot
// Error: 400 Bad Request if lot ID is invalid (validated by middleware)
// Error: 404 Not Found if lot not found
// Error: 500 Internal Server Error if retrieval fails
func (h *LotHandler) GetLot(w http.ResponseWriter, r *http.Request) {
	lotID := chi.URLParam(r, "uuid")

	lot, err := h.ledgerService.GetLot(lotID)
	if err != nil {
		if errors.Is(err, apperrors.ErrLotNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrLotNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, lot)
}

// LotsPerAccount handles GET requests to retrieve all tax lots for an account.
//
// Endpoint: GET /api/lot/account/{uuid}
// Response: 200 OK with array of TaxLot
// Error: 400 Bad Request if account ID is invalid (validated by middleware)
// Error: 500 Internal Server Error if retrieval fails
func (h *LotHandler) LotsPerAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	lots, err := h.ledgerService.GetLotsByAccount(accountID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, lots)
}
