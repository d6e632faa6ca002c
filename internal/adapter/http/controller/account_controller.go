package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/api-sage/core-banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/internal/commons"
	"github.com/api-sage/core-banking-ledger/internal/domain"
)

type AccountService interface {
	CreateCustomer(ctx context.Context, req models.CreateCustomerRequest) (commons.Response[models.CustomerResponse], error)
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
	GetAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountResponse], error)
	GetBalance(ctx context.Context, accountNumber string) (commons.Response[models.BalanceResponse], error)
	ListAccounts(ctx context.Context, customerID string) (commons.Response[[]models.AccountResponse], error)
	FreezeAccount(ctx context.Context, req models.AccountStatusRequest) (commons.Response[models.AccountResponse], error)
	UnfreezeAccount(ctx context.Context, req models.AccountStatusRequest) (commons.Response[models.AccountResponse], error)
	CloseAccount(ctx context.Context, req models.AccountStatusRequest) (commons.Response[models.AccountResponse], error)
	ResetWithdrawalPeriod(ctx context.Context, req models.AccountStatusRequest) (commons.Response[models.AccountResponse], error)
	QuoteInterest(ctx context.Context, req models.InterestQuoteRequest) (commons.Response[models.InterestQuoteResponse], error)
	ApplyInterest(ctx context.Context, req models.InterestQuoteRequest) (commons.Response[models.TransactionResponse], error)
}

type AccountController struct {
	service AccountService
}

func NewAccountController(service AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(r chi.Router) {
	r.Post("/customers", c.createCustomer)
	r.Get("/customers/{customerID}/accounts", c.listAccounts)
	r.Post("/accounts", c.createAccount)
	r.Get("/accounts/{accountNumber}", c.getAccount)
	r.Get("/accounts/{accountNumber}/balance", c.getBalance)
	r.Post("/accounts/{accountNumber}/freeze", c.statusHandler(c.service.FreezeAccount))
	r.Post("/accounts/{accountNumber}/unfreeze", c.statusHandler(c.service.UnfreezeAccount))
	r.Post("/accounts/{accountNumber}/close", c.statusHandler(c.service.CloseAccount))
	r.Post("/accounts/{accountNumber}/reset-withdrawals", c.statusHandler(c.service.ResetWithdrawalPeriod))
	r.Post("/accounts/interest/quote", c.quoteInterest)
	r.Post("/accounts/interest/apply", c.applyInterest)
}

func (c *AccountController) createCustomer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.CustomerResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateCustomer(r.Context(), req)
	if err != nil {
		status := statusForError(err, response.Message)
		logResponse(r, status, response, start)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusCreated, response, start)
	writeJSON(w, http.StatusCreated, response)
}

func (c *AccountController) createAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateAccount(r.Context(), req)
	if err != nil {
		status := statusForError(err, response.Message)
		logResponse(r, status, response, start)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusCreated, response, start)
	writeJSON(w, http.StatusCreated, response)
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	accountNumber := chi.URLParam(r, "accountNumber")
	logRequest(r, nil)

	response, err := c.service.GetAccount(r.Context(), accountNumber)
	if err != nil {
		status := statusForError(err, response.Message)
		logResponse(r, status, response, start)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusOK, response, start)
	writeJSON(w, http.StatusOK, response)
}

func (c *AccountController) getBalance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	accountNumber := chi.URLParam(r, "accountNumber")
	logRequest(r, nil)

	response, err := c.service.GetBalance(r.Context(), accountNumber)
	if err != nil {
		status := statusForError(err, response.Message)
		logResponse(r, status, response, start)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusOK, response, start)
	writeJSON(w, http.StatusOK, response)
}

func (c *AccountController) listAccounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	customerID := chi.URLParam(r, "customerID")
	logRequest(r, nil)

	response, err := c.service.ListAccounts(r.Context(), customerID)
	if err != nil {
		status := statusForError(err, response.Message)
		logResponse(r, status, response, start)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusOK, response, start)
	writeJSON(w, http.StatusOK, response)
}

func (c *AccountController) statusHandler(operation func(ctx context.Context, req models.AccountStatusRequest) (commons.Response[models.AccountResponse], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		req := models.AccountStatusRequest{AccountNumber: chi.URLParam(r, "accountNumber")}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()))
				return
			}
			req.AccountNumber = chi.URLParam(r, "accountNumber")
		}
		logRequest(r, req)

		response, err := operation(r.Context(), req)
		if err != nil {
			status := statusForError(err, response.Message)
			logResponse(r, status, response, start)
			writeJSON(w, status, response)
			return
		}

		logResponse(r, http.StatusOK, response, start)
		writeJSON(w, http.StatusOK, response)
	}
}

func (c *AccountController) quoteInterest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.InterestQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.InterestQuoteResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	response, err := c.service.QuoteInterest(r.Context(), req)
	if err != nil {
		status := statusForError(err, response.Message)
		logResponse(r, status, response, start)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusOK, response, start)
	writeJSON(w, http.StatusOK, response)
}

func (c *AccountController) applyInterest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.InterestQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	response, err := c.service.ApplyInterest(r.Context(), req)
	if err != nil {
		status := statusForError(err, response.Message)
		logResponse(r, status, response, start)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusOK, response, start)
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusForError maps domain errors to HTTP status codes. Validation
// failures arrive without a sentinel, flagged by the response message.
func statusForError(err error, message string) int {
	if message == "validation failed" {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrSameAccountTransfer),
		errors.Is(err, domain.ErrBelowMinimumDeposit):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrWithdrawalLimitExceeded),
		errors.Is(err, domain.ErrDailyLimitExceeded),
		errors.Is(err, domain.ErrAccountNotActive),
		errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrNonZeroBalance),
		errors.Is(err, domain.ErrTransactionNotReversible),
		errors.Is(err, domain.ErrInterestNotApplicable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrLockTimeout):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
