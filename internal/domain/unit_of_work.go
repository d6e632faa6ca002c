package domain

import "context"

// AccountChange is one account snapshot to persist. ExpectedVersion 0
// means insert; any other value is an optimistic guard and the commit
// fails with ErrVersionConflict when the stored version differs.
type AccountChange struct {
	Account         Account
	ExpectedVersion int64
}

// LedgerMutation is the all-or-nothing unit the processor hands to the
// store: account snapshots, appended transactions and reversal flags
// commit together or not at all. It is the explicit replacement for a
// framework-managed transaction scope.
type LedgerMutation struct {
	Accounts     []AccountChange
	Transactions []LedgerTransaction
	MarkReversed []string
}

type UnitOfWork interface {
	Commit(ctx context.Context, mutation LedgerMutation) error
}
