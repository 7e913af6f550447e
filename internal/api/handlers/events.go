package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JohnPierce/PersonalFinance/internal/api/response"
	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/service"
)

// EventHandler handles HTTP requests for taxable event endpoints.
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new EventHandler with the provided service dependency.
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// GetEvent handles GET requests to retrieve a single taxable event by ID.
//
// Endpoint: GET /api/event/{uuid}
// Response: 200 OK with TaxableEvent
// Error: 400 Bad Request if event ID is invalid (validated by middleware)
// Error: 404 Not Found if event not found
// Error: 500 Internal Server Error if retrieval fails
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "uuid")

	event, err := h.eventService.GetEvent(eventID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTaxableEventNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTaxableEventNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveEvents.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, event)
}

// EventsPerAccount handles GET requests to retrieve all taxable events for an account.
//
// Endpoint: GET /api/event/account/{uuid}
// Response: 200 OK with array of TaxableEvent
// Error: 400 Bad Request if account ID is invalid (validated by middleware)
// Error: 404 Not Found if account not found
// Error: 500 Internal Server Error if retrieval fails
func (h *EventHandler) EventsPerAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	events, err := h.eventService.GetEventsByAccount(accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveEvents.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, events)
}
