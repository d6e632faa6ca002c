package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive              AccountStatus = "ACTIVE"
	AccountStatusInactive            AccountStatus = "INACTIVE"
	AccountStatusFrozen              AccountStatus = "FROZEN"
	AccountStatusClosed              AccountStatus = "CLOSED"
	AccountStatusSuspended           AccountStatus = "SUSPENDED"
	AccountStatusPendingVerification AccountStatus = "PENDING_VERIFICATION"
	AccountStatusOverdrawn           AccountStatus = "OVERDRAWN"
)

func (s AccountStatus) CanPerformTransactions() bool {
	return s == AccountStatusActive
}

// AllowsBalanceMutation reports whether balance-affecting operations may
// run against an account in this status. OVERDRAWN accounts stay open for
// restoring credits and for withdrawals inside the overdraft bound.
func (s AccountStatus) AllowsBalanceMutation() bool {
	return s == AccountStatusActive || s == AccountStatusOverdrawn
}

type AccountType string

const (
	AccountTypeChecking AccountType = "CHECKING"
	AccountTypeSavings  AccountType = "SAVINGS"
)

// CheckingTerms is the variant payload for checking accounts.
type CheckingTerms struct {
	OverdraftLimit        Money
	MonthlyFee            Money
	FreeTransactionsLimit int
}

// SavingsTerms is the variant payload for savings accounts.
type SavingsTerms struct {
	InterestRate          decimal.Decimal
	MinimumBalance        Money
	WithdrawalLimit       int
	WithdrawalsThisPeriod int
}

// Account is the balance-holding aggregate. Exactly one of Checking or
// Savings is set, matching Type; all invariants are enforced through the
// methods below, never by writing fields directly.
type Account struct {
	AccountID           string
	AccountNumber       string
	OwnerID             string
	Type                AccountType
	Balance             Money
	Status              AccountStatus
	OpenDate            time.Time
	LastTransactionDate time.Time
	Checking            *CheckingTerms
	Savings             *SavingsTerms
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Clone returns a deep copy safe to mutate without touching the original.
func (a Account) Clone() Account {
	copied := a
	if a.Checking != nil {
		terms := *a.Checking
		copied.Checking = &terms
	}
	if a.Savings != nil {
		terms := *a.Savings
		copied.Savings = &terms
	}
	return copied
}

// Deposit credits the account. Deposits are never rejected for balance
// reasons; only the account status can refuse them.
func (a *Account) Deposit(amount Money, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !a.Status.AllowsBalanceMutation() {
		return ErrAccountNotActive
	}

	next, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}

	a.Balance = next
	a.LastTransactionDate = now
	a.refreshOverdrawn()
	return nil
}

// Withdraw debits the account, dispatching on the variant policy. On a
// savings account a successful withdrawal consumes one period withdrawal.
func (a *Account) Withdraw(amount Money, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !a.Status.AllowsBalanceMutation() {
		return ErrAccountNotActive
	}

	next, err := a.Balance.Subtract(amount)
	if err != nil {
		return err
	}

	switch a.Type {
	case AccountTypeChecking:
		floor := a.Checking.OverdraftLimit.Negate()
		cmp, err := next.Compare(floor)
		if err != nil {
			return err
		}
		if cmp < 0 {
			return ErrInsufficientFunds
		}
	case AccountTypeSavings:
		cmp, err := next.Compare(a.Savings.MinimumBalance)
		if err != nil {
			return err
		}
		if cmp < 0 {
			return ErrInsufficientFunds
		}
		if a.Savings.WithdrawalsThisPeriod >= a.Savings.WithdrawalLimit {
			return ErrWithdrawalLimitExceeded
		}
		a.Savings.WithdrawalsThisPeriod++
	}

	a.Balance = next
	a.LastTransactionDate = now
	a.refreshOverdrawn()
	return nil
}

// ApplyReversalCredit returns previously debited funds. It bypasses the
// savings withdrawal counter and minimum-balance floor; the money was
// already accounted for by the original transaction.
func (a *Account) ApplyReversalCredit(amount Money, now time.Time) error {
	if !a.Status.AllowsBalanceMutation() {
		return ErrAccountNotActive
	}

	next, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}

	a.Balance = next
	a.LastTransactionDate = now
	a.refreshOverdrawn()
	return nil
}

// ApplyReversalDebit claws back previously credited funds. The balance
// floor for the variant still holds: a reversal never overdraws an
// account past its limit. The savings withdrawal counter is untouched.
func (a *Account) ApplyReversalDebit(amount Money, now time.Time) error {
	if !a.Status.AllowsBalanceMutation() {
		return ErrAccountNotActive
	}

	next, err := a.Balance.Subtract(amount)
	if err != nil {
		return err
	}

	floor := ZeroMoney(a.Balance.Currency)
	if a.Type == AccountTypeChecking {
		floor = a.Checking.OverdraftLimit.Negate()
	} else if a.Type == AccountTypeSavings {
		floor = a.Savings.MinimumBalance
	}
	cmp, err := next.Compare(floor)
	if err != nil {
		return err
	}
	if cmp < 0 {
		return ErrInsufficientFunds
	}

	a.Balance = next
	a.LastTransactionDate = now
	a.refreshOverdrawn()
	return nil
}

func (a *Account) Freeze(reason string) error {
	if a.Status != AccountStatusActive && a.Status != AccountStatusOverdrawn {
		return ErrInvalidStateTransition
	}
	a.Status = AccountStatusFrozen
	return nil
}

func (a *Account) Unfreeze(reason string) error {
	if a.Status != AccountStatusFrozen {
		return ErrInvalidStateTransition
	}
	a.Status = AccountStatusActive
	a.refreshOverdrawn()
	return nil
}

// Close is terminal. The balance must already be zero or transferred out.
func (a *Account) Close() error {
	if !a.Status.AllowsBalanceMutation() {
		return ErrInvalidStateTransition
	}
	if !a.Balance.IsZero() {
		return ErrNonZeroBalance
	}
	a.Status = AccountStatusClosed
	return nil
}

// ResetWithdrawalPeriod starts a fresh withdrawal period on a savings
// account. No-op for checking.
func (a *Account) ResetWithdrawalPeriod() {
	if a.Savings != nil {
		a.Savings.WithdrawalsThisPeriod = 0
	}
}

// refreshOverdrawn flips ACTIVE <-> OVERDRAWN from the balance sign.
// Only checking accounts can legally hold a negative balance.
func (a *Account) refreshOverdrawn() {
	if a.Type != AccountTypeChecking {
		return
	}
	switch {
	case a.Balance.IsNegative() && a.Status == AccountStatusActive:
		a.Status = AccountStatusOverdrawn
	case !a.Balance.IsNegative() && a.Status == AccountStatusOverdrawn:
		a.Status = AccountStatusActive
	}
}
