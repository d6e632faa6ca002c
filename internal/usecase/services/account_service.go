package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/api-sage/core-banking-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-banking-ledger/internal/commons"
	"github.com/api-sage/core-banking-ledger/internal/config"
	"github.com/api-sage/core-banking-ledger/internal/domain"
	"github.com/api-sage/core-banking-ledger/internal/logger"
	"github.com/api-sage/core-banking-ledger/internal/usecase/locks"
)

// AccountService owns the customer and account lifecycle: opening,
// freezing, closing, interest quoting. Balance movements live on the
// Processor; this service delegates to it for interest posting.
type AccountService struct {
	accounts  domain.AccountRepository
	customers domain.CustomerRepository
	uow       domain.UnitOfWork
	generator *AccountNumberGenerator
	locks     *locks.Manager
	processor *Processor
	publisher EventPublisher
	policy    config.Policy
	now       func() time.Time
}

func NewAccountService(
	accounts domain.AccountRepository,
	customers domain.CustomerRepository,
	uow domain.UnitOfWork,
	generator *AccountNumberGenerator,
	lockManager *locks.Manager,
	processor *Processor,
	publisher EventPublisher,
	policy config.Policy,
) *AccountService {
	return &AccountService{
		accounts:  accounts,
		customers: customers,
		uow:       uow,
		generator: generator,
		locks:     lockManager,
		processor: processor,
		publisher: publisher,
		policy:    policy,
		now:       time.Now,
	}
}

func (s *AccountService) CreateCustomer(ctx context.Context, req models.CreateCustomerRequest) (commons.Response[models.CustomerResponse], error) {
	logger.Info("account service create customer request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.CustomerResponse]("validation failed", err.Error()), err
	}

	customer := domain.Customer{
		CustomerID: uuid.NewString(),
		Name:       req.Name,
		Type:       domain.CustomerType(req.CustomerType),
		CreatedAt:  s.now(),
	}

	created, err := s.customers.Create(ctx, customer)
	if err != nil {
		logger.Error("account service create customer failed", err, logger.Fields{"name": req.Name})
		return failure[models.CustomerResponse]("failed to create customer", err), err
	}

	return commons.SuccessResponse("customer created", models.CustomerResponse{
		CustomerID:   created.CustomerID,
		Name:         created.Name,
		CustomerType: string(created.Type),
		CreatedAt:    created.CreatedAt.Format(time.RFC3339),
	}), nil
}

// CreateAccount opens an account for an existing customer. The opening
// deposit must meet the variant minimum and is recorded as the account's
// first DEPOSIT transaction, committed together with the account row.
func (s *AccountService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service create account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	customer, err := s.customers.GetByCustomerID(ctx, req.CustomerID)
	if err != nil {
		return failure[models.AccountResponse]("customer not found", domain.ErrCustomerNotFound), domain.ErrCustomerNotFound
	}

	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	deposit, err := domain.NewMoneyFromString(req.InitialDeposit, currency)
	if err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	accountType := domain.AccountType(req.AccountType)
	if deposit.Amount.LessThan(s.policy.MinimumDeposit(accountType)) {
		err := domain.ErrBelowMinimumDeposit
		return failure[models.AccountResponse]("initial deposit below minimum", err), err
	}

	accountNumber, err := s.generator.Next(ctx, accountType)
	if err != nil {
		return failure[models.AccountResponse]("failed to create account", err), err
	}

	now := s.now()
	account := domain.Account{
		AccountID:           uuid.NewString(),
		AccountNumber:       accountNumber,
		OwnerID:             customer.CustomerID,
		Type:                accountType,
		Balance:             deposit,
		Status:              domain.AccountStatusActive,
		OpenDate:            now,
		LastTransactionDate: now,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	switch accountType {
	case domain.AccountTypeChecking:
		account.Checking = &domain.CheckingTerms{
			OverdraftLimit:        domain.NewMoney(s.policy.OverdraftLimit(customer.Type), currency),
			MonthlyFee:            domain.NewMoney(s.policy.CheckingMonthlyFee, currency),
			FreeTransactionsLimit: s.policy.CheckingFreeTransactions,
		}
	case domain.AccountTypeSavings:
		account.Savings = &domain.SavingsTerms{
			InterestRate:    s.policy.SavingsInterestRate,
			MinimumBalance:  domain.NewMoney(s.policy.SavingsMinimumBalance, currency),
			WithdrawalLimit: s.policy.SavingsWithdrawalLimit,
		}
	}

	opening := domain.LedgerTransaction{
		TransactionID:   uuid.NewString(),
		Type:            domain.TransactionTypeDeposit,
		Amount:          deposit,
		Fees:            domain.ZeroMoney(currency),
		Timestamp:       now,
		Status:          domain.TransactionStatusCompleted,
		SourceAccountID: account.AccountID,
		Description:     "Opening deposit",
	}

	if err := s.uow.Commit(ctx, domain.LedgerMutation{
		Accounts:     []domain.AccountChange{{Account: account, ExpectedVersion: 0}},
		Transactions: []domain.LedgerTransaction{opening},
	}); err != nil {
		logger.Error("account service create account failed", err, logger.Fields{"accountNumber": accountNumber})
		return failure[models.AccountResponse]("failed to create account", err), err
	}

	s.publisher.Publish(domain.LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          domain.EventAccountCreated,
		AccountNumber: accountNumber,
		TransactionID: opening.TransactionID,
		Amount:        deposit.String(),
		Detail:        string(accountType),
		OccurredAt:    s.now(),
	})

	logger.Info("account created", logger.Fields{
		"accountNumber": accountNumber,
		"accountType":   string(accountType),
	})
	return commons.SuccessResponse("account created", mapAccountToResponse(account)), nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountResponse], error) {
	account, err := s.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return failure[models.AccountResponse]("account not found", err), err
	}
	return commons.SuccessResponse("account retrieved", mapAccountToResponse(account)), nil
}

func (s *AccountService) GetBalance(ctx context.Context, accountNumber string) (commons.Response[models.BalanceResponse], error) {
	account, err := s.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return failure[models.BalanceResponse]("account not found", err), err
	}
	return commons.SuccessResponse("balance retrieved", models.BalanceResponse{
		AccountNumber: account.AccountNumber,
		Currency:      string(account.Balance.Currency),
		Balance:       account.Balance.Amount.StringFixed(2),
		Status:        string(account.Status),
		AsOf:          s.now().Format(time.RFC3339),
	}), nil
}

func (s *AccountService) ListAccounts(ctx context.Context, customerID string) (commons.Response[[]models.AccountResponse], error) {
	if _, err := s.customers.GetByCustomerID(ctx, customerID); err != nil {
		return failure[[]models.AccountResponse]("customer not found", domain.ErrCustomerNotFound), domain.ErrCustomerNotFound
	}
	accounts, err := s.accounts.ListByCustomer(ctx, customerID)
	if err != nil {
		return failure[[]models.AccountResponse]("failed to list accounts", err), err
	}
	responses := make([]models.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, mapAccountToResponse(account))
	}
	return commons.SuccessResponse("accounts retrieved", responses), nil
}

func (s *AccountService) FreezeAccount(ctx context.Context, req models.AccountStatusRequest) (commons.Response[models.AccountResponse], error) {
	return s.changeStatus(ctx, req, "freeze", func(account *domain.Account) error {
		return account.Freeze(req.Reason)
	})
}

func (s *AccountService) UnfreezeAccount(ctx context.Context, req models.AccountStatusRequest) (commons.Response[models.AccountResponse], error) {
	return s.changeStatus(ctx, req, "unfreeze", func(account *domain.Account) error {
		return account.Unfreeze(req.Reason)
	})
}

// CloseAccount is terminal; the balance must already be zero.
func (s *AccountService) CloseAccount(ctx context.Context, req models.AccountStatusRequest) (commons.Response[models.AccountResponse], error) {
	return s.changeStatus(ctx, req, "close", func(account *domain.Account) error {
		return account.Close()
	})
}

// ResetWithdrawalPeriod starts a fresh savings withdrawal period. There
// is no scheduler; the operator or a cron-driven caller invokes this at
// period boundaries.
func (s *AccountService) ResetWithdrawalPeriod(ctx context.Context, req models.AccountStatusRequest) (commons.Response[models.AccountResponse], error) {
	return s.changeStatus(ctx, req, "reset withdrawal period", func(account *domain.Account) error {
		account.ResetWithdrawalPeriod()
		return nil
	})
}

func (s *AccountService) changeStatus(ctx context.Context, req models.AccountStatusRequest, operation string, apply func(account *domain.Account) error) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service "+operation+" request", logger.Fields{
		"accountNumber": req.AccountNumber,
		"reason":        req.Reason,
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	account, err := s.accounts.GetByAccountNumber(ctx, req.AccountNumber)
	if err != nil {
		return failure[models.AccountResponse]("account not found", err), err
	}

	unlock, err := s.locks.Acquire(ctx, account.AccountID)
	if err != nil {
		return failure[models.AccountResponse]("failed to "+operation, err), err
	}
	defer unlock()

	var updated domain.Account
	err = retryOnConflict(ctx, operation, s.policy.MaxWriteRetries+1, func(ctx context.Context) error {
		current, err := s.accounts.GetByID(ctx, account.AccountID)
		if err != nil {
			return err
		}
		next := current.Clone()
		if err := apply(&next); err != nil {
			return err
		}
		next.UpdatedAt = s.now()
		if err := s.uow.Commit(ctx, domain.LedgerMutation{
			Accounts: []domain.AccountChange{{Account: next, ExpectedVersion: current.Version}},
		}); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		logger.Error("account service "+operation+" failed", err, logger.Fields{"accountNumber": req.AccountNumber})
		return failure[models.AccountResponse]("failed to "+operation, err), err
	}

	s.publisher.Publish(domain.LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          domain.EventAccountStatusChanged,
		AccountNumber: updated.AccountNumber,
		Detail:        string(updated.Status),
		OccurredAt:    s.now(),
	})

	return commons.SuccessResponse("account updated", mapAccountToResponse(updated)), nil
}

// QuoteInterest computes accrued interest for the period without posting
// anything. Works for both variants: compound for savings, simple for
// checking at the policy rate.
func (s *AccountService) QuoteInterest(ctx context.Context, req models.InterestQuoteRequest) (commons.Response[models.InterestQuoteResponse], error) {
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.InterestQuoteResponse]("validation failed", err.Error()), err
	}

	account, err := s.accounts.GetByAccountNumber(ctx, req.AccountNumber)
	if err != nil {
		return failure[models.InterestQuoteResponse]("account not found", err), err
	}

	rate := s.policy.CheckingInterestRate
	if account.Type == domain.AccountTypeSavings {
		rate = account.Savings.InterestRate
	}

	from, to := req.Period()
	calc := CalculatorFor(account)
	interest, err := calc.Calculate(account.Balance, rate, from, to)
	if err != nil {
		return commons.ErrorResponse[models.InterestQuoteResponse]("failed to calculate interest", err.Error()), err
	}

	return commons.SuccessResponse("interest calculated", models.InterestQuoteResponse{
		AccountNumber:        account.AccountNumber,
		AccountType:          string(account.Type),
		Principal:            account.Balance.Amount.StringFixed(2),
		AnnualRate:           rate.String(),
		CompoundingFrequency: calc.CompoundingFrequency(),
		FromDate:             req.FromDate,
		ToDate:               req.ToDate,
		Interest:             interest.Amount.StringFixed(2),
	}), nil
}

// ApplyInterest posts accrued interest to a savings account as an
// INTEREST_EARNED credit.
func (s *AccountService) ApplyInterest(ctx context.Context, req models.InterestQuoteRequest) (commons.Response[models.TransactionResponse], error) {
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	from, to := req.Period()
	tx, err := s.processor.ProcessInterest(ctx, req.AccountNumber, from, to)
	if err != nil {
		return failure[models.TransactionResponse]("failed to apply interest", err), err
	}
	return commons.SuccessResponse("interest applied", mapTransactionToResponse(tx)), nil
}

// failure builds the coded error envelope for a domain error.
func failure[T any](message string, err error) commons.Response[T] {
	return commons.CodedErrorResponse[T](domain.ErrorCode(err), message, err.Error())
}

func mapAccountToResponse(account domain.Account) models.AccountResponse {
	resp := models.AccountResponse{
		AccountID:     account.AccountID,
		AccountNumber: account.AccountNumber,
		CustomerID:    account.OwnerID,
		AccountType:   string(account.Type),
		Currency:      string(account.Balance.Currency),
		Balance:       account.Balance.Amount.StringFixed(2),
		Status:        string(account.Status),
		OpenDate:      account.OpenDate.Format(time.RFC3339),
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     account.UpdatedAt.Format(time.RFC3339),
	}
	if !account.LastTransactionDate.IsZero() {
		resp.LastTransactionDate = account.LastTransactionDate.Format(time.RFC3339)
	}
	if account.Checking != nil {
		resp.OverdraftLimit = account.Checking.OverdraftLimit.Amount.StringFixed(2)
		resp.MonthlyFee = account.Checking.MonthlyFee.Amount.StringFixed(2)
	}
	if account.Savings != nil {
		resp.InterestRate = account.Savings.InterestRate.String()
		resp.MinimumBalance = account.Savings.MinimumBalance.Amount.StringFixed(2)
		resp.WithdrawalLimit = account.Savings.WithdrawalLimit
		resp.WithdrawalsThisPeriod = account.Savings.WithdrawalsThisPeriod
	}
	return resp
}
