package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/api-sage/core-banking-ledger/internal/domain"
	"github.com/api-sage/core-banking-ledger/internal/logger"
)

const transactionColumns = `
	id, tx_type, amount, currency, fees, occurred_at, status,
	source_account_id, destination_account_id,
	correlation_id, related_transaction_id, reversed, description`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) GetByID(ctx context.Context, transactionID string) (domain.LedgerTransaction, error) {
	const query = `
SELECT` + transactionColumns + `
FROM transactions
WHERE id = $1`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.LedgerTransaction{}, domain.ErrTransactionNotFound
		}
		logger.Error("transaction repository get by id failed", err, logger.Fields{
			"transactionId": transactionID,
		})
		return domain.LedgerTransaction{}, fmt.Errorf("get transaction by id: %w", err)
	}

	return tx, nil
}

func (r *TransactionRepository) GetByCorrelationID(ctx context.Context, correlationID string) ([]domain.LedgerTransaction, error) {
	const query = `
SELECT` + transactionColumns + `
FROM transactions
WHERE correlation_id = $1
ORDER BY occurred_at, id`

	rows, err := r.db.QueryContext(ctx, query, correlationID)
	if err != nil {
		logger.Error("transaction repository get by correlation id failed", err, logger.Fields{
			"correlationId": correlationID,
		})
		return nil, fmt.Errorf("get transactions by correlation id: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, filter domain.TransactionFilter) ([]domain.LedgerTransaction, error) {
	const query = `
SELECT` + transactionColumns + `
FROM transactions
WHERE (source_account_id = $1 OR destination_account_id = $1)
  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
  AND ($3::timestamptz IS NULL OR occurred_at <= $3)
ORDER BY occurred_at DESC, id DESC
LIMIT $4 OFFSET $5`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, query,
		accountID,
		nullTime(filter.From),
		nullTime(filter.To),
		limit,
		filter.Offset,
	)
	if err != nil {
		logger.Error("transaction repository list by account failed", err, logger.Fields{
			"accountId": accountID,
		})
		return nil, fmt.Errorf("list transactions by account: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (r *TransactionRepository) SumCompletedAmountSince(ctx context.Context, accountID string, types []domain.TransactionType, since time.Time) (decimal.Decimal, error) {
	const query = `
SELECT COALESCE(SUM(amount), 0)
FROM transactions
WHERE source_account_id = $1
  AND tx_type = ANY($2)
  AND status = 'COMPLETED'
  AND reversed = FALSE
  AND occurred_at >= $3`

	typeNames := make([]string, 0, len(types))
	for _, t := range types {
		typeNames = append(typeNames, string(t))
	}

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, accountID, pq.Array(typeNames), since).Scan(&total); err != nil {
		logger.Error("transaction repository sum completed amount failed", err, logger.Fields{
			"accountId": accountID,
		})
		return decimal.Zero, fmt.Errorf("sum completed transactions: %w", err)
	}

	return total, nil
}

func scanTransaction(row rowScanner) (domain.LedgerTransaction, error) {
	var (
		tx                   domain.LedgerTransaction
		txType               string
		amount               decimal.Decimal
		currency             string
		fees                 decimal.Decimal
		status               string
		sourceAccountID      sql.NullString
		destinationAccountID sql.NullString
		correlationID        sql.NullString
		relatedTransactionID sql.NullString
		description          sql.NullString
	)

	if err := row.Scan(
		&tx.TransactionID,
		&txType,
		&amount,
		&currency,
		&fees,
		&tx.Timestamp,
		&status,
		&sourceAccountID,
		&destinationAccountID,
		&correlationID,
		&relatedTransactionID,
		&tx.Reversed,
		&description,
	); err != nil {
		return domain.LedgerTransaction{}, err
	}

	tx.Type = domain.TransactionType(txType)
	tx.Status = domain.TransactionStatus(status)
	tx.Amount = domain.Money{Amount: amount, Currency: domain.Currency(currency)}
	tx.Fees = domain.Money{Amount: fees, Currency: domain.Currency(currency)}
	tx.SourceAccountID = sourceAccountID.String
	tx.DestinationAccountID = destinationAccountID.String
	tx.CorrelationID = correlationID.String
	tx.RelatedTransactionID = relatedTransactionID.String
	tx.Description = description.String

	return tx, nil
}

func collectTransactions(rows *sql.Rows) ([]domain.LedgerTransaction, error) {
	var transactions []domain.LedgerTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return transactions, nil
}
