// Package memory is the in-process storage backend. It backs the test
// suite and STORAGE_BACKEND=memory deployments, and enforces the same
// optimistic versioning contract as the postgres backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/core-banking-ledger/internal/domain"
)

const defaultPageSize = 50

// Store holds the shared state. The per-entity repositories returned by
// Accounts, Customers and Transactions are views over it; Store itself
// is the unit of work.
type Store struct {
	mu               sync.RWMutex
	accounts         map[string]domain.Account
	accountsByNumber map[string]string
	customers        map[string]domain.Customer
	transactions     map[string]domain.LedgerTransaction
	order            []string
}

func NewStore() *Store {
	return &Store{
		accounts:         make(map[string]domain.Account),
		accountsByNumber: make(map[string]string),
		customers:        make(map[string]domain.Customer),
		transactions:     make(map[string]domain.LedgerTransaction),
	}
}

func (s *Store) Accounts() *AccountRepository         { return &AccountRepository{store: s} }
func (s *Store) Customers() *CustomerRepository       { return &CustomerRepository{store: s} }
func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{store: s} }

type AccountRepository struct {
	store *Store
}

func (r *AccountRepository) GetByID(ctx context.Context, accountID string) (domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, ok := r.store.accounts[accountID]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accountID, ok := r.store.accountsByNumber[accountNumber]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return r.store.accounts[accountID].Clone(), nil
}

func (r *AccountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.accountsByNumber[accountNumber]
	return ok, nil
}

func (r *AccountRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var accounts []domain.Account
	for _, account := range r.store.accounts {
		if account.OwnerID == customerID {
			accounts = append(accounts, account.Clone())
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].AccountNumber < accounts[j].AccountNumber
	})
	return accounts, nil
}

type CustomerRepository struct {
	store *Store
}

func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.customers[customer.CustomerID] = customer
	return customer, nil
}

func (r *CustomerRepository) GetByCustomerID(ctx context.Context, customerID string) (domain.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	customer, ok := r.store.customers[customerID]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

type TransactionRepository struct {
	store *Store
}

func (r *TransactionRepository) GetByID(ctx context.Context, transactionID string) (domain.LedgerTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tx, ok := r.store.transactions[transactionID]
	if !ok {
		return domain.LedgerTransaction{}, domain.ErrTransactionNotFound
	}
	return tx, nil
}

func (r *TransactionRepository) GetByCorrelationID(ctx context.Context, correlationID string) ([]domain.LedgerTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var legs []domain.LedgerTransaction
	for _, id := range r.store.order {
		tx := r.store.transactions[id]
		if tx.CorrelationID == correlationID {
			legs = append(legs, tx)
		}
	}
	return legs, nil
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, filter domain.TransactionFilter) ([]domain.LedgerTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []domain.LedgerTransaction
	for _, id := range r.store.order {
		tx := r.store.transactions[id]
		if tx.SourceAccountID != accountID && tx.DestinationAccountID != accountID {
			continue
		}
		if !filter.From.IsZero() && tx.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && tx.Timestamp.After(filter.To) {
			continue
		}
		matched = append(matched, tx)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := filter.Offset
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *TransactionRepository) SumCompletedAmountSince(ctx context.Context, accountID string, types []domain.TransactionType, since time.Time) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	wanted := make(map[domain.TransactionType]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}

	total := decimal.Zero
	for _, tx := range r.store.transactions {
		if tx.SourceAccountID != accountID {
			continue
		}
		if tx.Status != domain.TransactionStatusCompleted || tx.Reversed {
			continue
		}
		if _, ok := wanted[tx.Type]; !ok {
			continue
		}
		if tx.Timestamp.Before(since) {
			continue
		}
		total = total.Add(tx.Amount.Amount)
	}
	return total, nil
}

// Commit applies the mutation atomically. Every version guard is checked
// before anything is written, so a conflicting snapshot leaves the store
// untouched.
func (s *Store) Commit(ctx context.Context, mutation domain.LedgerMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, change := range mutation.Accounts {
		stored, exists := s.accounts[change.Account.AccountID]
		if change.ExpectedVersion == 0 {
			if exists {
				return domain.ErrVersionConflict
			}
			if _, taken := s.accountsByNumber[change.Account.AccountNumber]; taken {
				return domain.ErrVersionConflict
			}
			continue
		}
		if !exists || stored.Version != change.ExpectedVersion {
			return domain.ErrVersionConflict
		}
	}
	for _, transactionID := range mutation.MarkReversed {
		if _, ok := s.transactions[transactionID]; !ok {
			return domain.ErrTransactionNotFound
		}
	}

	for _, change := range mutation.Accounts {
		account := change.Account.Clone()
		if change.ExpectedVersion == 0 {
			if account.Version == 0 {
				account.Version = 1
			}
		} else {
			account.Version = change.ExpectedVersion + 1
		}
		s.accounts[account.AccountID] = account
		s.accountsByNumber[account.AccountNumber] = account.AccountID
	}
	for _, tx := range mutation.Transactions {
		s.transactions[tx.TransactionID] = tx
		s.order = append(s.order, tx.TransactionID)
	}
	for _, transactionID := range mutation.MarkReversed {
		tx := s.transactions[transactionID]
		tx.Reversed = true
		s.transactions[transactionID] = tx
	}
	return nil
}
