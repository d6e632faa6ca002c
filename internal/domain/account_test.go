package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func checkingAccount(t *testing.T, balance, overdraftLimit string) *Account {
	t.Helper()
	return &Account{
		AccountID:     "acc-1",
		AccountNumber: "ACC-0000000001",
		OwnerID:       "cust-1",
		Type:          AccountTypeChecking,
		Balance:       usd(t, balance),
		Status:        AccountStatusActive,
		Checking: &CheckingTerms{
			OverdraftLimit: usd(t, overdraftLimit),
			MonthlyFee:     usd(t, "12"),
		},
		Version: 1,
	}
}

func savingsAccount(t *testing.T, balance string, withdrawalLimit int) *Account {
	t.Helper()
	return &Account{
		AccountID:     "acc-2",
		AccountNumber: "ACC-0000000002",
		OwnerID:       "cust-1",
		Type:          AccountTypeSavings,
		Balance:       usd(t, balance),
		Status:        AccountStatusActive,
		Savings: &SavingsTerms{
			InterestRate:    decimal.RequireFromString("0.025"),
			MinimumBalance:  usd(t, "100"),
			WithdrawalLimit: withdrawalLimit,
		},
		Version: 1,
	}
}

func TestCheckingWithdrawIntoOverdraft(t *testing.T) {
	account := checkingAccount(t, "500", "500")
	now := time.Now()

	if err := account.Withdraw(usd(t, "650"), now); err != nil {
		t.Fatalf("withdraw into overdraft: %v", err)
	}
	if got := account.Balance.String(); got != "-150.00 USD" {
		t.Fatalf("expected -150.00 USD, got %s", got)
	}
	if account.Status != AccountStatusOverdrawn {
		t.Fatalf("expected OVERDRAWN, got %s", account.Status)
	}
}

func TestCheckingWithdrawBeyondOverdraftLimit(t *testing.T) {
	account := checkingAccount(t, "500", "500")

	err := account.Withdraw(usd(t, "1000.01"), time.Now())
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if got := account.Balance.String(); got != "500.00 USD" {
		t.Fatalf("balance changed on rejected withdrawal: %s", got)
	}
}

func TestOverdrawnAccountRecoversOnDeposit(t *testing.T) {
	account := checkingAccount(t, "500", "500")
	now := time.Now()

	if err := account.Withdraw(usd(t, "650"), now); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if err := account.Deposit(usd(t, "200"), now); err != nil {
		t.Fatalf("deposit while overdrawn: %v", err)
	}
	if account.Status != AccountStatusActive {
		t.Fatalf("expected ACTIVE after recovery, got %s", account.Status)
	}
	if got := account.Balance.String(); got != "50.00 USD" {
		t.Fatalf("expected 50.00 USD, got %s", got)
	}
}

func TestSavingsWithdrawBelowMinimumBalance(t *testing.T) {
	account := savingsAccount(t, "150", 6)

	err := account.Withdraw(usd(t, "60"), time.Now())
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestSavingsWithdrawalLimitPerPeriod(t *testing.T) {
	account := savingsAccount(t, "10000", 2)
	now := time.Now()

	for i := 0; i < 2; i++ {
		if err := account.Withdraw(usd(t, "100"), now); err != nil {
			t.Fatalf("withdrawal %d: %v", i+1, err)
		}
	}

	err := account.Withdraw(usd(t, "100"), now)
	if !errors.Is(err, ErrWithdrawalLimitExceeded) {
		t.Fatalf("expected withdrawal limit exceeded, got %v", err)
	}
	if account.Savings.WithdrawalsThisPeriod != 2 {
		t.Fatalf("counter advanced on rejected withdrawal: %d", account.Savings.WithdrawalsThisPeriod)
	}

	account.ResetWithdrawalPeriod()
	if err := account.Withdraw(usd(t, "100"), now); err != nil {
		t.Fatalf("withdrawal after reset: %v", err)
	}
}

func TestFrozenAccountRejectsMovements(t *testing.T) {
	account := checkingAccount(t, "500", "0")

	if err := account.Freeze("suspicious activity"); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	if err := account.Deposit(usd(t, "10"), time.Now()); !errors.Is(err, ErrAccountNotActive) {
		t.Fatalf("expected account not active on deposit, got %v", err)
	}
	if err := account.Withdraw(usd(t, "10"), time.Now()); !errors.Is(err, ErrAccountNotActive) {
		t.Fatalf("expected account not active on withdrawal, got %v", err)
	}

	if err := account.Unfreeze("resolved"); err != nil {
		t.Fatalf("unfreeze: %v", err)
	}
	if err := account.Deposit(usd(t, "10"), time.Now()); err != nil {
		t.Fatalf("deposit after unfreeze: %v", err)
	}
}

func TestFreezeRequiresActiveOrOverdrawn(t *testing.T) {
	account := checkingAccount(t, "0", "0")
	account.Status = AccountStatusClosed

	if err := account.Freeze("test"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected invalid state transition, got %v", err)
	}
}

func TestCloseRequiresZeroBalance(t *testing.T) {
	account := checkingAccount(t, "25", "0")

	if err := account.Close(); !errors.Is(err, ErrNonZeroBalance) {
		t.Fatalf("expected non zero balance, got %v", err)
	}

	if err := account.Withdraw(usd(t, "25"), time.Now()); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if err := account.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if account.Status != AccountStatusClosed {
		t.Fatalf("expected CLOSED, got %s", account.Status)
	}

	if err := account.Deposit(usd(t, "10"), time.Now()); !errors.Is(err, ErrAccountNotActive) {
		t.Fatalf("expected account not active after close, got %v", err)
	}
}

func TestReversalCreditBypassesSavingsFloor(t *testing.T) {
	account := savingsAccount(t, "10000", 1)
	now := time.Now()

	if err := account.Withdraw(usd(t, "500"), now); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	// Returning debited funds must not consume a period withdrawal.
	if err := account.ApplyReversalCredit(usd(t, "500"), now); err != nil {
		t.Fatalf("reversal credit: %v", err)
	}
	if account.Savings.WithdrawalsThisPeriod != 1 {
		t.Fatalf("reversal credit touched withdrawal counter: %d", account.Savings.WithdrawalsThisPeriod)
	}
}

func TestReversalDebitHonorsFloor(t *testing.T) {
	account := savingsAccount(t, "120", 6)

	err := account.ApplyReversalDebit(usd(t, "50"), time.Now())
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestCloneDeepCopiesVariantTerms(t *testing.T) {
	account := savingsAccount(t, "10000", 6)

	clone := account.Clone()
	if err := clone.Withdraw(usd(t, "100"), time.Now()); err != nil {
		t.Fatalf("withdraw on clone: %v", err)
	}

	if account.Savings.WithdrawalsThisPeriod != 0 {
		t.Fatal("mutating clone leaked into original savings terms")
	}
	if got := account.Balance.String(); got != "10000.00 USD" {
		t.Fatalf("mutating clone changed original balance: %s", got)
	}
}
