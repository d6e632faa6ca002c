package services

import (
	"context"
	"time"

	"github.com/api-sage/core-banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/internal/commons"
	"github.com/api-sage/core-banking-ledger/internal/domain"
	"github.com/api-sage/core-banking-ledger/internal/logger"
)

const defaultHistoryLimit = 50
const maxHistoryLimit = 200

// TransactionService is the request-facing front of the Processor: it
// parses and validates payloads, delegates the financial work and maps
// results into response envelopes.
type TransactionService struct {
	accounts     domain.AccountRepository
	transactions domain.TransactionRepository
	processor    *Processor
}

func NewTransactionService(
	accounts domain.AccountRepository,
	transactions domain.TransactionRepository,
	processor *Processor,
) *TransactionService {
	return &TransactionService{
		accounts:     accounts,
		transactions: transactions,
		processor:    processor,
	}
}

func (s *TransactionService) Deposit(ctx context.Context, req models.MovementRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("transaction service deposit request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	amount, resp, err := parseMovement(req)
	if err != nil {
		return resp, err
	}

	tx, err := s.processor.ProcessDeposit(ctx, req.AccountNumber, amount, req.Description)
	if err != nil {
		return failure[models.TransactionResponse]("deposit failed", err), err
	}
	return commons.SuccessResponse("deposit completed", mapTransactionToResponse(tx)), nil
}

func (s *TransactionService) Withdraw(ctx context.Context, req models.MovementRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("transaction service withdrawal request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	amount, resp, err := parseMovement(req)
	if err != nil {
		return resp, err
	}

	tx, err := s.processor.ProcessWithdrawal(ctx, req.AccountNumber, amount, req.Description)
	if err != nil {
		return failure[models.TransactionResponse]("withdrawal failed", err), err
	}
	return commons.SuccessResponse("withdrawal completed", mapTransactionToResponse(tx)), nil
}

func (s *TransactionService) Transfer(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("transaction service transfer request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}
	amount, err := domain.NewMoneyFromString(req.Amount, currency)
	if err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	tx, err := s.processor.ProcessTransfer(ctx, req.SourceAccountNumber, req.DestinationAccountNumber, amount, req.Description)
	if err != nil {
		return failure[models.TransactionResponse]("transfer failed", err), err
	}
	return commons.SuccessResponse("transfer completed", mapTransactionToResponse(tx)), nil
}

func (s *TransactionService) Reverse(ctx context.Context, req models.ReverseTransactionRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("transaction service reversal request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	tx, err := s.processor.ReverseTransaction(ctx, req.TransactionID, req.Reason)
	if err != nil {
		return failure[models.TransactionResponse]("reversal failed", err), err
	}
	return commons.SuccessResponse("transaction reversed", mapTransactionToResponse(tx)), nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, transactionID string) (commons.Response[models.TransactionResponse], error) {
	tx, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return failure[models.TransactionResponse]("transaction not found", err), err
	}
	return commons.SuccessResponse("transaction retrieved", mapTransactionToResponse(tx)), nil
}

// GetHistory lists an account's transactions newest first. NextOffset is
// set only when the page came back full, so callers page until it is
// absent.
func (s *TransactionService) GetHistory(ctx context.Context, accountNumber string, filter domain.TransactionFilter) (commons.Response[models.TransactionHistoryResponse], error) {
	account, err := s.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return failure[models.TransactionHistoryResponse]("account not found", err), err
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	transactions, err := s.transactions.ListByAccount(ctx, account.AccountID, filter)
	if err != nil {
		return failure[models.TransactionHistoryResponse]("failed to list transactions", err), err
	}

	responses := make([]models.TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		responses = append(responses, mapTransactionToResponse(tx))
	}

	history := models.TransactionHistoryResponse{
		AccountNumber: account.AccountNumber,
		Transactions:  responses,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	}
	if len(transactions) == filter.Limit {
		history.NextOffset = filter.Offset + filter.Limit
	}
	return commons.SuccessResponse("transactions retrieved", history), nil
}

func parseMovement(req models.MovementRequest) (domain.Money, commons.Response[models.TransactionResponse], error) {
	if err := req.Validate(); err != nil {
		return domain.Money{}, commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}
	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return domain.Money{}, commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}
	amount, err := domain.NewMoneyFromString(req.Amount, currency)
	if err != nil {
		return domain.Money{}, commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}
	return amount, commons.Response[models.TransactionResponse]{}, nil
}

func mapTransactionToResponse(tx domain.LedgerTransaction) models.TransactionResponse {
	return models.TransactionResponse{
		TransactionID:        tx.TransactionID,
		Type:                 string(tx.Type),
		Amount:               tx.Amount.Amount.StringFixed(2),
		Currency:             string(tx.Amount.Currency),
		Fees:                 tx.Fees.Amount.StringFixed(2),
		Timestamp:            tx.Timestamp.Format(time.RFC3339),
		Status:               string(tx.Status),
		SourceAccountID:      tx.SourceAccountID,
		DestinationAccountID: tx.DestinationAccountID,
		CorrelationID:        tx.CorrelationID,
		RelatedTransactionID: tx.RelatedTransactionID,
		Reversed:             tx.Reversed,
		Description:          tx.Description,
	}
}
