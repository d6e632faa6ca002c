package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionFilter narrows a history listing. Zero time bounds mean
// unbounded; Limit 0 means the repository default page size.
type TransactionFilter struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

type TransactionRepository interface {
	GetByID(ctx context.Context, transactionID string) (LedgerTransaction, error)
	GetByCorrelationID(ctx context.Context, correlationID string) ([]LedgerTransaction, error)
	ListByAccount(ctx context.Context, accountID string, filter TransactionFilter) ([]LedgerTransaction, error)
	// SumCompletedAmountSince totals COMPLETED, unreversed transactions of
	// the given balance-decreasing types where the account is the source.
	// Used for daily-limit accounting.
	SumCompletedAmountSince(ctx context.Context, accountID string, types []TransactionType, since time.Time) (decimal.Decimal, error)
}
