package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/api-sage/core-banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/internal/domain"
)

func TestDepositThroughService(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "BASIC")
	accountNumber := f.createAccount(t, customerID, "CHECKING", "100")

	resp, err := f.transactionService.Deposit(context.Background(), models.MovementRequest{
		AccountNumber: accountNumber,
		Amount:        "49.50",
		Currency:      "USD",
		Description:   "payroll",
	})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if resp.Data.Type != string(domain.TransactionTypeDeposit) {
		t.Fatalf("unexpected type %s", resp.Data.Type)
	}
	if resp.Data.Amount != "49.50" {
		t.Fatalf("unexpected amount %s", resp.Data.Amount)
	}
	if got := f.balance(t, accountNumber); got != "149.50" {
		t.Fatalf("expected 149.50, got %s", got)
	}
}

func TestDepositRejectsMalformedAmount(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "BASIC")
	accountNumber := f.createAccount(t, customerID, "CHECKING", "100")

	cases := []string{"", "abc", "-5", "0"}
	for _, amount := range cases {
		resp, err := f.transactionService.Deposit(context.Background(), models.MovementRequest{
			AccountNumber: accountNumber,
			Amount:        amount,
			Currency:      "USD",
		})
		if err == nil {
			t.Fatalf("amount %q: expected error", amount)
		}
		if resp.Success {
			t.Fatalf("amount %q: expected failure response", amount)
		}
	}
	if got := f.balance(t, accountNumber); got != "100.00" {
		t.Fatalf("rejected deposits moved the balance: %s", got)
	}
}

func TestTransferThroughServiceReturnsOutgoingLeg(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "PREMIUM")
	source := f.createAccount(t, customerID, "CHECKING", "500")
	destination := f.createAccount(t, customerID, "CHECKING", "500")

	resp, err := f.transactionService.Transfer(context.Background(), models.TransferRequest{
		SourceAccountNumber:      source,
		DestinationAccountNumber: destination,
		Amount:                   "125",
		Currency:                 "USD",
		Description:              "rent",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if resp.Data.Type != string(domain.TransactionTypeTransferOut) {
		t.Fatalf("expected outgoing leg, got %s", resp.Data.Type)
	}
	if resp.Data.CorrelationID == "" {
		t.Fatal("expected a correlation id on the outgoing leg")
	}
}

func TestGetUnknownTransaction(t *testing.T) {
	f := newFixture(t)

	resp, err := f.transactionService.GetTransaction(context.Background(), "b5f8c9a0-0000-0000-0000-000000000001")
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected transaction not found, got %v", err)
	}
	if resp.Code != "TRANSACTION_NOT_FOUND" {
		t.Fatalf("unexpected code %q", resp.Code)
	}
}

func TestHistoryPagination(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "BASIC")
	accountNumber := f.createAccount(t, customerID, "CHECKING", "100")

	for i := 0; i < 5; i++ {
		if _, err := f.processor.ProcessDeposit(context.Background(), accountNumber, usd(t, "10"), fmt.Sprintf("deposit %d", i+1)); err != nil {
			t.Fatalf("deposit %d: %v", i+1, err)
		}
	}

	// 6 transactions total including the opening deposit.
	first, err := f.transactionService.GetHistory(context.Background(), accountNumber, domain.TransactionFilter{Limit: 4})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Data.Transactions) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(first.Data.Transactions))
	}
	if first.Data.Transactions[0].Description != "deposit 5" {
		t.Fatalf("expected newest first, got %q", first.Data.Transactions[0].Description)
	}
	if first.Data.NextOffset != 4 {
		t.Fatalf("expected next offset 4, got %d", first.Data.NextOffset)
	}

	second, err := f.transactionService.GetHistory(context.Background(), accountNumber, domain.TransactionFilter{Limit: 4, Offset: first.Data.NextOffset})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Data.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(second.Data.Transactions))
	}
	if second.Data.Transactions[1].Description != "Opening deposit" {
		t.Fatalf("expected the opening deposit last, got %q", second.Data.Transactions[1].Description)
	}
}

func TestHistoryClampsLimit(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "BASIC")
	accountNumber := f.createAccount(t, customerID, "CHECKING", "100")

	resp, err := f.transactionService.GetHistory(context.Background(), accountNumber, domain.TransactionFilter{Limit: 10000})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if resp.Data.Limit != 200 {
		t.Fatalf("expected limit clamped to 200, got %d", resp.Data.Limit)
	}
}
