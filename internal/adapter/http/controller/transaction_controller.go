package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/api-sage/core-banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/internal/commons"
	"github.com/api-sage/core-banking-ledger/internal/domain"
)

type TransactionService interface {
	Deposit(ctx context.Context, req models.MovementRequest) (commons.Response[models.TransactionResponse], error)
	Withdraw(ctx context.Context, req models.MovementRequest) (commons.Response[models.TransactionResponse], error)
	Transfer(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransactionResponse], error)
	Reverse(ctx context.Context, req models.ReverseTransactionRequest) (commons.Response[models.TransactionResponse], error)
	GetTransaction(ctx context.Context, transactionID string) (commons.Response[models.TransactionResponse], error)
	GetHistory(ctx context.Context, accountNumber string, filter domain.TransactionFilter) (commons.Response[models.TransactionHistoryResponse], error)
}

type TransactionController struct {
	service TransactionService
}

func NewTransactionController(service TransactionService) *TransactionController {
	return &TransactionController{service: service}
}

func (c *TransactionController) RegisterRoutes(r chi.Router) {
	r.Post("/transactions/deposit", c.movementHandler(c.service.Deposit))
	r.Post("/transactions/withdraw", c.movementHandler(c.service.Withdraw))
	r.Post("/transactions/transfer", c.transfer)
	r.Post("/transactions/reverse", c.reverse)
	r.Post("/transactions/{transactionID}/reverse", c.reverse)
	r.Get("/transactions/{transactionID}", c.getTransaction)
	r.Get("/accounts/{accountNumber}/transactions", c.getHistory)
}

func (c *TransactionController) movementHandler(operation func(ctx context.Context, req models.MovementRequest) (commons.Response[models.TransactionResponse], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req models.MovementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error()))
			return
		}
		logRequest(r, req)

		response, err := operation(r.Context(), req)
		if err != nil {
			status := statusForError(err, response.Message)
			logResponse(r, status, response, start)
			writeJSON(w, status, response)
			return
		}

		logResponse(r, http.StatusCreated, response, start)
		writeJSON(w, http.StatusCreated, response)
	}
}

func (c *TransactionController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	response, err := c.service.Transfer(r.Context(), req)
	if err != nil {
		status := statusForError(err, response.Message)
		logResponse(r, status, response, start)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusCreated, response, start)
	writeJSON(w, http.StatusCreated, response)
}

func (c *TransactionController) reverse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ReverseTransactionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error()))
			return
		}
	}
	if transactionID := chi.URLParam(r, "transactionID"); transactionID != "" {
		req.TransactionID = transactionID
	}
	logRequest(r, req)

	response, err := c.service.Reverse(r.Context(), req)
	if err != nil {
		status := statusForError(err, response.Message)
		logResponse(r, status, response, start)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusCreated, response, start)
	writeJSON(w, http.StatusCreated, response)
}

func (c *TransactionController) getTransaction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	transactionID := chi.URLParam(r, "transactionID")
	logRequest(r, nil)

	response, err := c.service.GetTransaction(r.Context(), transactionID)
	if err != nil {
		status := statusForError(err, response.Message)
		logResponse(r, status, response, start)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusOK, response, start)
	writeJSON(w, http.StatusOK, response)
}

func (c *TransactionController) getHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	accountNumber := chi.URLParam(r, "accountNumber")
	logRequest(r, nil)

	filter := historyFilter(r)
	response, err := c.service.GetHistory(r.Context(), accountNumber, filter)
	if err != nil {
		status := statusForError(err, response.Message)
		logResponse(r, status, response, start)
		writeJSON(w, status, response)
		return
	}

	logResponse(r, http.StatusOK, response, start)
	writeJSON(w, http.StatusOK, response)
}

func historyFilter(r *http.Request) domain.TransactionFilter {
	var filter domain.TransactionFilter
	query := r.URL.Query()

	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}
	if raw := query.Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			filter.Offset = offset
		}
	}
	if raw := query.Get("from"); raw != "" {
		if from, err := time.Parse(time.DateOnly, raw); err == nil {
			filter.From = from
		}
	}
	if raw := query.Get("to"); raw != "" {
		if to, err := time.Parse(time.DateOnly, raw); err == nil {
			// Inclusive through end of the named day.
			filter.To = to.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return filter
}
