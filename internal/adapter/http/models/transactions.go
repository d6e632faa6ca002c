package models

import (
	"errors"
	"strings"
)

type MovementRequest struct {
	AccountNumber string `json:"accountNumber"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Description   string `json:"description"`
}

func (r MovementRequest) Validate() error {
	var errs []string
	validateAccountNumber(r.AccountNumber, "accountNumber", &errs)
	validateAmount(r.Amount, &errs)
	if strings.TrimSpace(r.Currency) == "" {
		errs = append(errs, "currency is required")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type TransferRequest struct {
	SourceAccountNumber      string `json:"sourceAccountNumber"`
	DestinationAccountNumber string `json:"destinationAccountNumber"`
	Amount                   string `json:"amount"`
	Currency                 string `json:"currency"`
	Description              string `json:"description"`
}

func (r TransferRequest) Validate() error {
	var errs []string
	validateAccountNumber(r.SourceAccountNumber, "sourceAccountNumber", &errs)
	validateAccountNumber(r.DestinationAccountNumber, "destinationAccountNumber", &errs)
	if strings.TrimSpace(r.SourceAccountNumber) == strings.TrimSpace(r.DestinationAccountNumber) {
		errs = append(errs, "sourceAccountNumber and destinationAccountNumber cannot be the same")
	}
	validateAmount(r.Amount, &errs)
	if strings.TrimSpace(r.Currency) == "" {
		errs = append(errs, "currency is required")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type ReverseTransactionRequest struct {
	TransactionID string `json:"transactionId"`
	Reason        string `json:"reason"`
}

func (r ReverseTransactionRequest) Validate() error {
	var errs []string
	if strings.TrimSpace(r.TransactionID) == "" {
		errs = append(errs, "transactionId is required")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type TransactionResponse struct {
	TransactionID        string `json:"transactionId"`
	Type                 string `json:"type"`
	Amount               string `json:"amount"`
	Currency             string `json:"currency"`
	Fees                 string `json:"fees"`
	Timestamp            string `json:"timestamp"`
	Status               string `json:"status"`
	SourceAccountID      string `json:"sourceAccountId,omitempty"`
	DestinationAccountID string `json:"destinationAccountId,omitempty"`
	CorrelationID        string `json:"correlationId,omitempty"`
	RelatedTransactionID string `json:"relatedTransactionId,omitempty"`
	Reversed             bool   `json:"reversed"`
	Description          string `json:"description,omitempty"`
}

type TransactionHistoryResponse struct {
	AccountNumber string                `json:"accountNumber"`
	Transactions  []TransactionResponse `json:"transactions"`
	Limit         int                   `json:"limit"`
	Offset        int                   `json:"offset"`
	NextOffset    int                   `json:"nextOffset,omitempty"`
}
