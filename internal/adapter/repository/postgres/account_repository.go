package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/core-banking-ledger/internal/domain"
	"github.com/api-sage/core-banking-ledger/internal/logger"
)

const accountColumns = `
	id, account_number, owner_id, account_type, currency, balance, status,
	open_date, last_transaction_date,
	overdraft_limit, monthly_fee, free_transactions_limit,
	interest_rate, minimum_balance, withdrawal_limit, withdrawals_this_period,
	version, created_at, updated_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, accountID string) (domain.Account, error) {
	const query = `
SELECT` + accountColumns + `
FROM accounts
WHERE id = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		logger.Error("account repository get by id failed", err, logger.Fields{
			"accountId": accountID,
		})
		return domain.Account{}, fmt.Errorf("get account by id: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	const query = `
SELECT` + accountColumns + `
FROM accounts
WHERE account_number = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("account repository record not found", logger.Fields{
				"accountNumber": accountNumber,
			})
			return domain.Account{}, domain.ErrAccountNotFound
		}
		logger.Error("account repository get by account number failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return domain.Account{}, fmt.Errorf("get account by account number: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1
	FROM accounts
	WHERE account_number = $1
)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(&exists); err != nil {
		logger.Error("account repository exists by account number failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return false, fmt.Errorf("check account by account number: %w", err)
	}

	return exists, nil
}

func (r *AccountRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Account, error) {
	const query = `
SELECT` + accountColumns + `
FROM accounts
WHERE owner_id = $1
ORDER BY account_number`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		logger.Error("account repository list by customer failed", err, logger.Fields{
			"customerId": customerID,
		})
		return nil, fmt.Errorf("list accounts by customer: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}

	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		account               domain.Account
		accountType           string
		currency              string
		balance               decimal.Decimal
		status                string
		lastTransactionDate   sql.NullTime
		overdraftLimit        decimal.NullDecimal
		monthlyFee            decimal.NullDecimal
		freeTransactionsLimit sql.NullInt64
		interestRate          decimal.NullDecimal
		minimumBalance        decimal.NullDecimal
		withdrawalLimit       sql.NullInt64
		withdrawalsThisPeriod sql.NullInt64
	)

	if err := row.Scan(
		&account.AccountID,
		&account.AccountNumber,
		&account.OwnerID,
		&accountType,
		&currency,
		&balance,
		&status,
		&account.OpenDate,
		&lastTransactionDate,
		&overdraftLimit,
		&monthlyFee,
		&freeTransactionsLimit,
		&interestRate,
		&minimumBalance,
		&withdrawalLimit,
		&withdrawalsThisPeriod,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return domain.Account{}, err
	}

	account.Type = domain.AccountType(accountType)
	account.Status = domain.AccountStatus(status)
	account.Balance = domain.Money{Amount: balance, Currency: domain.Currency(currency)}
	if lastTransactionDate.Valid {
		account.LastTransactionDate = lastTransactionDate.Time
	}

	switch account.Type {
	case domain.AccountTypeChecking:
		account.Checking = &domain.CheckingTerms{
			OverdraftLimit:        domain.Money{Amount: overdraftLimit.Decimal, Currency: account.Balance.Currency},
			MonthlyFee:            domain.Money{Amount: monthlyFee.Decimal, Currency: account.Balance.Currency},
			FreeTransactionsLimit: int(freeTransactionsLimit.Int64),
		}
	case domain.AccountTypeSavings:
		account.Savings = &domain.SavingsTerms{
			InterestRate:          interestRate.Decimal,
			MinimumBalance:        domain.Money{Amount: minimumBalance.Decimal, Currency: account.Balance.Currency},
			WithdrawalLimit:       int(withdrawalLimit.Int64),
			WithdrawalsThisPeriod: int(withdrawalsThisPeriod.Int64),
		}
	}

	return account, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
