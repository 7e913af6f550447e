package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JohnPierce/PersonalFinance/internal/api/request"
	"github.com/JohnPierce/PersonalFinance/internal/api/response"
	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/model"
	"github.com/JohnPierce/PersonalFinance/internal/service"
	"github.com/JohnPierce/PersonalFinance/internal/validation"
)

// AccountHandler handles HTTP requests for taxable account endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the accountService.
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler with the provided service dependency.
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// CreateAccount handles POST requests to enable tax tracking on a portfolio.
//
// Endpoint: POST /api/account
// Request Body: CreateAccountRequest (portfolioId, costBasisMethod, washSaleTracking, accountType)
// Response: 201 Created with TaxableAccount
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if the portfolio already has a taxable account
// Error: 500 Internal Server Error if creation fails
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateAccountRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateAccount(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	method, _ := model.ParseCostBasisMethod(req.CostBasisMethod)
	accountType := model.AccountType(req.AccountType)

	account, err := h.accountService.CreateAccount(r.Context(), req.PortfolioID, method, req.WashSaleTracking, accountType)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateTaxableAccount) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateTaxableAccount.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to create taxable account", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, account)
}

// Accounts handles GET requests to retrieve all taxable accounts.
//
// Endpoint: GET /api/account
// Response: 200 OK with array of TaxableAccount
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) Accounts(w http.ResponseWriter, _ *http.Request) {
	accounts, err := h.accountService.ListAccounts()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAccounts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, accounts)
}

// GetAccount handles GET requests to retrieve a single taxable account by ID.
//
// Endpoint: GET /api/account/{uuid}
// Response: 200 OK with TaxableAccount
// Error: 400 Bad Request if account ID is invalid (validated by middleware)
// Error: 404 Not Found if account not found
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	account, err := h.accountService.GetAccount(accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAccounts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// GetAccountByPortfolio handles GET requests to retrieve the taxable account
// tracking a given portfolio.
//
// Endpoint: GET /api/account/portfolio/{uuid}
// Response: 200 OK with TaxableAccount
// Error: 400 Bad Request if portfolio ID is invalid (validated by middleware)
// Error: 404 Not Found if the portfolio has no taxable account
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) GetAccountByPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	account, err := h.accountService.GetAccountByPortfolio(portfolioID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAccounts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// UpdateSettings handles PUT requests to change an account's cost basis
// method or wash sale tracking flag. The method applies to future sales only.
//
// Endpoint: PUT /api/account/{uuid}/settings
// Request Body: UpdateAccountSettingsRequest (costBasisMethod, washSaleTracking)
// Response: 200 OK with updated TaxableAccount
// Error: 400 Bad Request if account ID is invalid (validated by middleware) or validation fails
// Error: 404 Not Found if account not found
// Error: 500 Internal Server Error if update fails
func (h *AccountHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdateAccountSettingsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateAccountSettings(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	method, _ := model.ParseCostBasisMethod(req.CostBasisMethod)

	account, err := h.accountService.UpdateSettings(r.Context(), accountID, method, req.WashSaleTracking)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to update account settings", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}
