package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/api-sage/core-banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/internal/adapter/repository/memory"
	"github.com/api-sage/core-banking-ledger/internal/config"
	"github.com/api-sage/core-banking-ledger/internal/domain"
	"github.com/api-sage/core-banking-ledger/internal/usecase/locks"
	"github.com/api-sage/core-banking-ledger/internal/usecase/services"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []domain.LedgerEvent
}

func (p *capturingPublisher) Publish(event domain.LedgerEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturingPublisher) kinds() []domain.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]domain.EventKind, 0, len(p.events))
	for _, event := range p.events {
		kinds = append(kinds, event.Kind)
	}
	return kinds
}

type fixture struct {
	store              *memory.Store
	policy             config.Policy
	publisher          *capturingPublisher
	processor          *services.Processor
	accountService     *services.AccountService
	transactionService *services.TransactionService
}

// failingUnitOfWork rejects every commit that touches an account, so
// tests can verify that nothing is half-applied when persistence fails.
type failingUnitOfWork struct {
	inner domain.UnitOfWork
	err   error
}

func (f *failingUnitOfWork) Commit(ctx context.Context, mutation domain.LedgerMutation) error {
	if len(mutation.Accounts) > 0 {
		return f.err
	}
	return f.inner.Commit(ctx, mutation)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithUow(t, nil)
}

func newFixtureWithUow(t *testing.T, wrap func(domain.UnitOfWork) domain.UnitOfWork) *fixture {
	t.Helper()

	store := memory.NewStore()
	policy := config.DefaultPolicy()
	publisher := &capturingPublisher{}

	var uow domain.UnitOfWork = store
	if wrap != nil {
		uow = wrap(store)
	}

	lockManager := locks.NewManager(policy.LockWait())
	processor := services.NewProcessor(store.Accounts(), store.Customers(), store.Transactions(), uow, lockManager, publisher, policy)
	generator := services.NewAccountNumberGenerator(store.Accounts())
	accountService := services.NewAccountService(store.Accounts(), store.Customers(), uow, generator, lockManager, processor, publisher, policy)
	transactionService := services.NewTransactionService(store.Accounts(), store.Transactions(), processor)

	return &fixture{
		store:              store,
		policy:             policy,
		publisher:          publisher,
		processor:          processor,
		accountService:     accountService,
		transactionService: transactionService,
	}
}

func (f *fixture) createCustomer(t *testing.T, name, customerType string) string {
	t.Helper()
	resp, err := f.accountService.CreateCustomer(context.Background(), models.CreateCustomerRequest{
		Name:         name,
		CustomerType: customerType,
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return resp.Data.CustomerID
}

func (f *fixture) createAccount(t *testing.T, customerID, accountType, initialDeposit string) string {
	t.Helper()
	resp, err := f.accountService.CreateAccount(context.Background(), models.CreateAccountRequest{
		CustomerID:     customerID,
		AccountType:    accountType,
		Currency:       "USD",
		InitialDeposit: initialDeposit,
	})
	if err != nil {
		t.Fatalf("create %s account: %v", accountType, err)
	}
	return resp.Data.AccountNumber
}

func (f *fixture) balance(t *testing.T, accountNumber string) string {
	t.Helper()
	account, err := f.store.Accounts().GetByAccountNumber(context.Background(), accountNumber)
	if err != nil {
		t.Fatalf("get account %s: %v", accountNumber, err)
	}
	return account.Balance.Amount.StringFixed(2)
}

func (f *fixture) account(t *testing.T, accountNumber string) domain.Account {
	t.Helper()
	account, err := f.store.Accounts().GetByAccountNumber(context.Background(), accountNumber)
	if err != nil {
		t.Fatalf("get account %s: %v", accountNumber, err)
	}
	return account
}

func (f *fixture) history(t *testing.T, accountNumber string) []domain.LedgerTransaction {
	t.Helper()
	account := f.account(t, accountNumber)
	transactions, err := f.store.Transactions().ListByAccount(context.Background(), account.AccountID, domain.TransactionFilter{Limit: 100})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	return transactions
}

func usd(t *testing.T, amount string) domain.Money {
	t.Helper()
	m, err := domain.NewMoneyFromString(amount, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("parse %q: %v", amount, err)
	}
	return m
}
