package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/api-sage/core-banking-ledger/internal/domain"
)

func TestDepositCreditsBalanceAndRecordsTransaction(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "BASIC")
	accountNumber := f.createAccount(t, customerID, "CHECKING", "100")

	tx, err := f.processor.ProcessDeposit(context.Background(), accountNumber, usd(t, "50.25"), "payroll")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if got := f.balance(t, accountNumber); got != "150.25" {
		t.Fatalf("expected balance 150.25, got %s", got)
	}
	if tx.Status != domain.TransactionStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", tx.Status)
	}
	if tx.Type != domain.TransactionTypeDeposit {
		t.Fatalf("expected DEPOSIT, got %s", tx.Type)
	}

	stored, err := f.store.Transactions().GetByID(context.Background(), tx.TransactionID)
	if err != nil {
		t.Fatalf("stored transaction: %v", err)
	}
	if stored.Amount.String() != "50.25 USD" {
		t.Fatalf("expected 50.25 USD, got %s", stored.Amount)
	}
}

func TestConcurrentDepositsLoseNoUpdates(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "BASIC")
	accountNumber := f.createAccount(t, customerID, "CHECKING", "100")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.processor.ProcessDeposit(context.Background(), accountNumber, usd(t, "10"), ""); err != nil {
				t.Errorf("concurrent deposit: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := f.balance(t, accountNumber); got != "300.00" {
		t.Fatalf("lost update: expected 300.00, got %s", got)
	}
}

func TestWithdrawalRejectionRecordsFailedTransaction(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "BASIC")
	accountNumber := f.createAccount(t, customerID, "CHECKING", "100")

	_, err := f.processor.ProcessWithdrawal(context.Background(), accountNumber, usd(t, "250"), "rent")
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	if got := f.balance(t, accountNumber); got != "100.00" {
		t.Fatalf("balance changed on rejected withdrawal: %s", got)
	}

	var failed int
	for _, tx := range f.history(t, accountNumber) {
		if tx.Status == domain.TransactionStatusFailed && tx.Type == domain.TransactionTypeWithdrawal {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("expected one FAILED withdrawal record, found %d", failed)
	}
}

func TestFrozenAccountDepositFailsAndIsRecorded(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "BASIC")
	accountNumber := f.createAccount(t, customerID, "CHECKING", "100")

	account := f.account(t, accountNumber)
	frozen := account.Clone()
	if err := frozen.Freeze("fraud review"); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	if err := f.store.Commit(context.Background(), domain.LedgerMutation{
		Accounts: []domain.AccountChange{{Account: frozen, ExpectedVersion: account.Version}},
	}); err != nil {
		t.Fatalf("persist frozen account: %v", err)
	}

	_, err := f.processor.ProcessDeposit(context.Background(), accountNumber, usd(t, "10"), "")
	if !errors.Is(err, domain.ErrAccountNotActive) {
		t.Fatalf("expected account not active, got %v", err)
	}

	var failed int
	for _, tx := range f.history(t, accountNumber) {
		if tx.Status == domain.TransactionStatusFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("expected one FAILED record, found %d", failed)
	}
}

func TestTransferConservesTotalBalance(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "PREMIUM")
	source := f.createAccount(t, customerID, "CHECKING", "1000")
	destination := f.createAccount(t, customerID, "CHECKING", "500")

	out, err := f.processor.ProcessTransfer(context.Background(), source, destination, usd(t, "250"), "savings sweep")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := f.balance(t, source); got != "750.00" {
		t.Fatalf("expected source 750.00, got %s", got)
	}
	if got := f.balance(t, destination); got != "750.00" {
		t.Fatalf("expected destination 750.00, got %s", got)
	}

	if out.Type != domain.TransactionTypeTransferOut {
		t.Fatalf("expected TRANSFER_OUT, got %s", out.Type)
	}
	legs, err := f.store.Transactions().GetByCorrelationID(context.Background(), out.CorrelationID)
	if err != nil {
		t.Fatalf("legs: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(legs))
	}
	types := map[domain.TransactionType]bool{}
	for _, leg := range legs {
		types[leg.Type] = true
		if leg.Status != domain.TransactionStatusCompleted {
			t.Fatalf("leg %s not COMPLETED", leg.TransactionID)
		}
	}
	if !types[domain.TransactionTypeTransferOut] || !types[domain.TransactionTypeTransferIn] {
		t.Fatalf("expected both legs, got %v", types)
	}
}

func TestTransferToSameAccountRejected(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "BASIC")
	accountNumber := f.createAccount(t, customerID, "CHECKING", "100")

	_, err := f.processor.ProcessTransfer(context.Background(), accountNumber, accountNumber, usd(t, "10"), "")
	if !errors.Is(err, domain.ErrSameAccountTransfer) {
		t.Fatalf("expected same account transfer, got %v", err)
	}
}

func TestTransferDailyLimitByCustomerTier(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "BASIC")
	source := f.createAccount(t, customerID, "CHECKING", "5000")
	destination := f.createAccount(t, customerID, "CHECKING", "100")

	// BASIC tier allows 500 per day.
	if _, err := f.processor.ProcessTransfer(context.Background(), source, destination, usd(t, "400"), ""); err != nil {
		t.Fatalf("first transfer: %v", err)
	}

	_, err := f.processor.ProcessTransfer(context.Background(), source, destination, usd(t, "200"), "")
	if !errors.Is(err, domain.ErrDailyLimitExceeded) {
		t.Fatalf("expected daily limit exceeded, got %v", err)
	}

	if got := f.balance(t, source); got != "4600.00" {
		t.Fatalf("rejected transfer moved funds: %s", got)
	}

	// A 100 transfer still fits under the remaining allowance.
	if _, err := f.processor.ProcessTransfer(context.Background(), source, destination, usd(t, "100"), ""); err != nil {
		t.Fatalf("transfer within remaining allowance: %v", err)
	}
}

func TestSavingsTransferConsumesWithdrawalAllowance(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "VIP")
	savings := f.createAccount(t, customerID, "SAVINGS", "5000")
	checking := f.createAccount(t, customerID, "CHECKING", "100")

	if _, err := f.processor.ProcessTransfer(context.Background(), savings, checking, usd(t, "300"), ""); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	account := f.account(t, savings)
	if account.Savings.WithdrawalsThisPeriod != 1 {
		t.Fatalf("expected 1 period withdrawal consumed, got %d", account.Savings.WithdrawalsThisPeriod)
	}
}

func TestOverdraftLifecycle(t *testing.T) {
	f := newFixture(t)
	customerID := f.createCustomer(t, "Ada", "PREMIUM")
	accountNumber := f.createAccount(t, customerID, "CHECKING", "500")

	// PREMIUM overdraft limit is 500.
	if _, err := f.processor.ProcessWithdrawal(context.Background(), accountNumber, usd(t, "650"), ""); err != nil {
		t.Fatalf("withdraw into overdraft: %v", err)
	}

	account := f.account(t, accountNumber)
	if account.Status != domain.AccountStatusOverdrawn {
		t.Fatalf("expected OVERDRAWN, got %s", account.Status)
	}
	if got := account.Balance.Amount.StringFixed(2); got != "-150.00" {
		t.Fatalf("expected -150.00, got %s", got)
	}

	_, err := f.processor.ProcessWithdrawal(context.Background(), accountNumber, usd(t, "400"), "")
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds past overdraft limit, got %v", err)
	}

	if _, err := f.processor.ProcessDeposit(context.Background(), accountNumber, usd(t, "200"), ""); err != nil {
		t.Fatalf("restoring deposit: %v", err)
	}
	account = f.account(t, accountNumber)
	if account.Status != domain.AccountStatusActive {
		t.Fatalf("expected ACTIVE after restoring deposit, got %s", account.Status)
	}
}

func TestCommitFailureLeavesStateUntouched(t *testing.T) {
	boom := errors.New("storage unavailable")
	f := newFixtureWithUow(t, func(inner domain.UnitOfWork) domain.UnitOfWork {
		return &failingUnitOfWork{inner: inner, err: boom}
	})

	// Seed directly; the failing unit of work rejects account commits.
	account := domain.Account{
		AccountID:     "acc-1",
		AccountNumber: "ACC-0000000001",
		OwnerID:       "cust-1",
		Type:          domain.AccountTypeChecking,
		Balance:       usd(t, "100"),
		Status:        domain.AccountStatusActive,
		Checking:      &domain.CheckingTerms{OverdraftLimit: usd(t, "0"), MonthlyFee: usd(t, "12")},
		Version:       1,
	}
	if err := f.store.Commit(context.Background(), domain.LedgerMutation{
		Accounts: []domain.AccountChange{{Account: account, ExpectedVersion: 0}},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := f.processor.ProcessDeposit(context.Background(), "ACC-0000000001", usd(t, "50"), "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}

	if got := f.balance(t, "ACC-0000000001"); got != "100.00" {
		t.Fatalf("failed commit changed balance: %s", got)
	}
	history := f.history(t, "ACC-0000000001")
	for _, tx := range history {
		if tx.Status == domain.TransactionStatusCompleted && tx.Type == domain.TransactionTypeDeposit {
			t.Fatal("completed deposit recorded despite commit failure")
		}
	}
}
