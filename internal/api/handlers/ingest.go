package handlers

import (
	"errors"
	"net/http"

	"github.com/JohnPierce/PersonalFinance/internal/api/request"
	"github.com/JohnPierce/PersonalFinance/internal/api/response"
	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/model"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
	"github.com/JohnPierce/PersonalFinance/internal/service"
	"github.com/JohnPierce/PersonalFinance/internal/validation"
)

// IngestHandler handles HTTP requests for the transaction ingest endpoint.
// The upstream portfolio ledger posts "transaction created" notifications
// here; the handler translates them into the engine's transaction model and
// delegates to the ingestService.
type IngestHandler struct {
	ingestService *service.IngestService
}

// NewIngestHandler creates a new IngestHandler with the provided service dependency.
func NewIngestHandler(ingestService *service.IngestService) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
	}
}

// IngestTransaction handles POST requests to apply one ledger transaction.
// Replays of an already-applied transaction return 200 with status
// already_applied and cause no side effects.
//
// Endpoint: POST /api/ingest/transaction
// Request Body: IngestTransactionRequest
// Response: 200 OK with IngestResult
// Error: 400 Bad Request if validation fails or the transaction violates a business rule
// Error: 409 Conflict if a sale requests more shares than the open lots hold
// Error: 500 Internal Server Error if processing fails
func (h *IngestHandler) IngestTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.IngestTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateIngestTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	transactionType, _ := model.ParseTransactionType(req.Type)
	transactionDate, _ := repository.ParseTime(req.Date)

	transaction := model.Transaction{
		ReferenceID:     req.ReferenceID,
		AccountID:       req.PortfolioID,
		InvestmentID:    req.InvestmentID,
		Type:            transactionType,
		Quantity:        req.Quantity,
		Price:           req.Price,
		Fees:            req.Fees,
		TransactionDate: transactionDate,
	}
	if req.SettlementDate != nil {
		settlementDate, _ := repository.ParseTime(*req.SettlementDate)
		transaction.SettlementDate = &settlementDate
	}

	result, err := h.ingestService.ProcessTransaction(r.Context(), transaction, req.SpecificLotIDs)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInsufficientLots):
			response.RespondError(w, http.StatusConflict, apperrors.ErrInsufficientLots.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInvalidQuantity),
			errors.Is(err, apperrors.ErrSpecificLotsRequired):
			response.RespondError(w, http.StatusBadRequest, "transaction rejected", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToProcessTransaction.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
