package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/api-sage/core-banking-ledger/internal/domain"
	"github.com/api-sage/core-banking-ledger/internal/logger"
)

// UnitOfWork commits a LedgerMutation inside one database transaction.
// Account updates carry a version guard in the WHERE clause; zero rows
// affected means another writer won and the whole commit rolls back with
// ErrVersionConflict.
type UnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Commit(ctx context.Context, mutation domain.LedgerMutation) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger commit: %w", err)
	}

	if err := u.apply(ctx, tx, mutation); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger mutation: %w", err)
	}
	return nil
}

func (u *UnitOfWork) apply(ctx context.Context, tx *sql.Tx, mutation domain.LedgerMutation) error {
	for _, change := range mutation.Accounts {
		if change.ExpectedVersion == 0 {
			if err := insertAccount(ctx, tx, change.Account); err != nil {
				return err
			}
			continue
		}
		if err := updateAccount(ctx, tx, change.Account, change.ExpectedVersion); err != nil {
			return err
		}
	}

	for _, record := range mutation.Transactions {
		if err := insertTransaction(ctx, tx, record); err != nil {
			return err
		}
	}

	for _, transactionID := range mutation.MarkReversed {
		if err := markReversed(ctx, tx, transactionID); err != nil {
			return err
		}
	}

	return nil
}

func insertAccount(ctx context.Context, tx *sql.Tx, account domain.Account) error {
	const query = `
INSERT INTO accounts (
	id, account_number, owner_id, account_type, currency, balance, status,
	open_date, last_transaction_date,
	overdraft_limit, monthly_fee, free_transactions_limit,
	interest_rate, minimum_balance, withdrawal_limit, withdrawals_this_period,
	version, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	version := account.Version
	if version == 0 {
		version = 1
	}

	args := accountArgs(account)
	if _, err := tx.ExecContext(ctx, query,
		account.AccountID,
		account.AccountNumber,
		account.OwnerID,
		string(account.Type),
		string(account.Balance.Currency),
		account.Balance.Amount,
		string(account.Status),
		account.OpenDate,
		nullTime(account.LastTransactionDate),
		args.overdraftLimit,
		args.monthlyFee,
		args.freeTransactionsLimit,
		args.interestRate,
		args.minimumBalance,
		args.withdrawalLimit,
		args.withdrawalsThisPeriod,
		version,
		account.CreatedAt,
		account.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			logger.Info("account insert collided", logger.Fields{
				"accountNumber": account.AccountNumber,
			})
			return domain.ErrVersionConflict
		}
		logger.Error("unit of work insert account failed", err, logger.Fields{
			"accountId": account.AccountID,
		})
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func updateAccount(ctx context.Context, tx *sql.Tx, account domain.Account, expectedVersion int64) error {
	const query = `
UPDATE accounts
SET balance = $2,
    status = $3,
    last_transaction_date = $4,
    overdraft_limit = $5,
    monthly_fee = $6,
    free_transactions_limit = $7,
    interest_rate = $8,
    minimum_balance = $9,
    withdrawal_limit = $10,
    withdrawals_this_period = $11,
    version = $12,
    updated_at = NOW()
WHERE id = $1
  AND version = $13`

	args := accountArgs(account)
	result, err := tx.ExecContext(ctx, query,
		account.AccountID,
		account.Balance.Amount,
		string(account.Status),
		nullTime(account.LastTransactionDate),
		args.overdraftLimit,
		args.monthlyFee,
		args.freeTransactionsLimit,
		args.interestRate,
		args.minimumBalance,
		args.withdrawalLimit,
		args.withdrawalsThisPeriod,
		expectedVersion+1,
		expectedVersion,
	)
	if err != nil {
		logger.Error("unit of work update account failed", err, logger.Fields{
			"accountId": account.AccountID,
		})
		return fmt.Errorf("update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, record domain.LedgerTransaction) error {
	const query = `
INSERT INTO transactions (
	id, tx_type, amount, currency, fees, occurred_at, status,
	source_account_id, destination_account_id,
	correlation_id, related_transaction_id, reversed, description
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	if _, err := tx.ExecContext(ctx, query,
		record.TransactionID,
		string(record.Type),
		record.Amount.Amount,
		string(record.Amount.Currency),
		record.Fees.Amount,
		record.Timestamp,
		string(record.Status),
		nullString(record.SourceAccountID),
		nullString(record.DestinationAccountID),
		nullString(record.CorrelationID),
		nullString(record.RelatedTransactionID),
		record.Reversed,
		nullString(record.Description),
	); err != nil {
		logger.Error("unit of work insert transaction failed", err, logger.Fields{
			"transactionId": record.TransactionID,
		})
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func markReversed(ctx context.Context, tx *sql.Tx, transactionID string) error {
	const query = `
UPDATE transactions
SET reversed = TRUE
WHERE id = $1
  AND reversed = FALSE`

	result, err := tx.ExecContext(ctx, query, transactionID)
	if err != nil {
		logger.Error("unit of work mark reversed failed", err, logger.Fields{
			"transactionId": transactionID,
		})
		return fmt.Errorf("mark transaction reversed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark reversed rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrTransactionNotReversible
	}
	return nil
}

type variantArgs struct {
	overdraftLimit        any
	monthlyFee            any
	freeTransactionsLimit any
	interestRate          any
	minimumBalance        any
	withdrawalLimit       any
	withdrawalsThisPeriod any
}

func accountArgs(account domain.Account) variantArgs {
	var args variantArgs
	if account.Checking != nil {
		args.overdraftLimit = account.Checking.OverdraftLimit.Amount
		args.monthlyFee = account.Checking.MonthlyFee.Amount
		args.freeTransactionsLimit = account.Checking.FreeTransactionsLimit
	}
	if account.Savings != nil {
		args.interestRate = account.Savings.InterestRate
		args.minimumBalance = account.Savings.MinimumBalance.Amount
		args.withdrawalLimit = account.Savings.WithdrawalLimit
		args.withdrawalsThisPeriod = account.Savings.WithdrawalsThisPeriod
	}
	return args
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
