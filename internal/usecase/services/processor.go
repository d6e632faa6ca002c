package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/api-sage/core-banking-ledger/internal/config"
	"github.com/api-sage/core-banking-ledger/internal/domain"
	"github.com/api-sage/core-banking-ledger/internal/logger"
	"github.com/api-sage/core-banking-ledger/internal/metrics"
	"github.com/api-sage/core-banking-ledger/internal/usecase/locks"
)

// EventPublisher hands committed-mutation events to the async sinks.
type EventPublisher interface {
	Publish(event domain.LedgerEvent)
}

// Processor owns every balance-affecting operation. Each operation runs
// under the per-account lock, applies the change to a cloned snapshot and
// commits the snapshot together with its transaction records in a single
// unit of work, retrying on version conflict.
type Processor struct {
	accounts     domain.AccountRepository
	customers    domain.CustomerRepository
	transactions domain.TransactionRepository
	uow          domain.UnitOfWork
	locks        *locks.Manager
	publisher    EventPublisher
	policy       config.Policy
	now          func() time.Time
}

func NewProcessor(
	accounts domain.AccountRepository,
	customers domain.CustomerRepository,
	transactions domain.TransactionRepository,
	uow domain.UnitOfWork,
	lockManager *locks.Manager,
	publisher EventPublisher,
	policy config.Policy,
) *Processor {
	return &Processor{
		accounts:     accounts,
		customers:    customers,
		transactions: transactions,
		uow:          uow,
		locks:        lockManager,
		publisher:    publisher,
		policy:       policy,
		now:          time.Now,
	}
}

// ProcessDeposit credits the account identified by accountNumber and
// records a COMPLETED DEPOSIT transaction.
func (p *Processor) ProcessDeposit(ctx context.Context, accountNumber string, amount domain.Money, description string) (domain.LedgerTransaction, error) {
	return p.processSingleAccount(ctx, "deposit", accountNumber, amount, domain.TransactionTypeDeposit, description,
		func(account *domain.Account, amount domain.Money, now time.Time) error {
			return account.Deposit(amount, now)
		})
}

// ProcessWithdrawal debits the account, enforcing the variant floor and
// the savings period withdrawal limit.
func (p *Processor) ProcessWithdrawal(ctx context.Context, accountNumber string, amount domain.Money, description string) (domain.LedgerTransaction, error) {
	return p.processSingleAccount(ctx, "withdrawal", accountNumber, amount, domain.TransactionTypeWithdrawal, description,
		func(account *domain.Account, amount domain.Money, now time.Time) error {
			return account.Withdraw(amount, now)
		})
}

func (p *Processor) processSingleAccount(
	ctx context.Context,
	operation string,
	accountNumber string,
	amount domain.Money,
	txType domain.TransactionType,
	description string,
	apply func(account *domain.Account, amount domain.Money, now time.Time) error,
) (domain.LedgerTransaction, error) {
	started := p.now()
	defer func() {
		metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	}()

	logger.Info("processing "+operation, logger.Fields{
		"accountNumber": accountNumber,
		"amount":        amount.String(),
	})

	if !amount.IsPositive() {
		return domain.LedgerTransaction{}, domain.ErrInvalidAmount
	}

	account, err := p.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		logger.Error("account lookup failed", err, logger.Fields{"accountNumber": accountNumber})
		return domain.LedgerTransaction{}, err
	}

	unlock, err := p.acquireLock(ctx, account.AccountID)
	if err != nil {
		return domain.LedgerTransaction{}, err
	}
	defer unlock()

	var committed domain.LedgerTransaction
	err = p.withRetries(ctx, operation, func(ctx context.Context) error {
		current, err := p.accounts.GetByID(ctx, account.AccountID)
		if err != nil {
			return err
		}
		if amount.Currency != current.Balance.Currency {
			return domain.ErrCurrencyMismatch
		}

		next := current.Clone()
		if err := apply(&next, amount, p.now()); err != nil {
			p.recordFailed(ctx, txType, amount, current.AccountID, "", err.Error())
			return err
		}

		tx := p.newTransaction(txType, amount, current.AccountID, "", description)
		if err := p.uow.Commit(ctx, domain.LedgerMutation{
			Accounts:     []domain.AccountChange{{Account: next, ExpectedVersion: current.Version}},
			Transactions: []domain.LedgerTransaction{tx},
		}); err != nil {
			return err
		}
		committed = tx
		return nil
	})
	if err != nil {
		metrics.TransactionsProcessed.WithLabelValues(string(txType), string(domain.TransactionStatusFailed)).Inc()
		return domain.LedgerTransaction{}, err
	}

	metrics.TransactionsProcessed.WithLabelValues(string(txType), string(domain.TransactionStatusCompleted)).Inc()
	p.publisher.Publish(domain.LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          domain.EventTransactionCompleted,
		AccountNumber: accountNumber,
		TransactionID: committed.TransactionID,
		Amount:        amount.String(),
		Detail:        string(txType),
		OccurredAt:    p.now(),
	})

	logger.Info(operation+" completed", logger.Fields{
		"accountNumber": accountNumber,
		"transactionId": committed.TransactionID,
	})
	return committed, nil
}

// ProcessTransfer moves funds between two accounts atomically: one
// TRANSFER_OUT and one TRANSFER_IN leg sharing a correlation identifier,
// committed in the same unit of work as both account snapshots. The
// returned transaction is the outgoing leg.
func (p *Processor) ProcessTransfer(ctx context.Context, sourceNumber, destinationNumber string, amount domain.Money, description string) (domain.LedgerTransaction, error) {
	started := p.now()
	defer func() {
		metrics.OperationDuration.WithLabelValues("transfer").Observe(time.Since(started).Seconds())
	}()

	logger.Info("processing transfer", logger.Fields{
		"sourceAccountNumber":      sourceNumber,
		"destinationAccountNumber": destinationNumber,
		"amount":                   amount.String(),
	})

	if !amount.IsPositive() {
		return domain.LedgerTransaction{}, domain.ErrInvalidAmount
	}

	source, err := p.accounts.GetByAccountNumber(ctx, sourceNumber)
	if err != nil {
		return domain.LedgerTransaction{}, err
	}
	destination, err := p.accounts.GetByAccountNumber(ctx, destinationNumber)
	if err != nil {
		return domain.LedgerTransaction{}, err
	}
	if source.AccountID == destination.AccountID {
		return domain.LedgerTransaction{}, domain.ErrSameAccountTransfer
	}

	unlock, err := p.acquireOrderedLocks(ctx, source.AccountID, destination.AccountID)
	if err != nil {
		return domain.LedgerTransaction{}, err
	}
	defer unlock()

	var outLeg domain.LedgerTransaction
	err = p.withRetries(ctx, "transfer", func(ctx context.Context) error {
		src, err := p.accounts.GetByID(ctx, source.AccountID)
		if err != nil {
			return err
		}
		dst, err := p.accounts.GetByID(ctx, destination.AccountID)
		if err != nil {
			return err
		}
		if amount.Currency != src.Balance.Currency || src.Balance.Currency != dst.Balance.Currency {
			return domain.ErrCurrencyMismatch
		}

		if err := p.checkDailyTransferLimit(ctx, src, amount); err != nil {
			p.recordFailed(ctx, domain.TransactionTypeTransferOut, amount, src.AccountID, dst.AccountID, err.Error())
			return err
		}

		now := p.now()
		nextSrc := src.Clone()
		if err := nextSrc.Withdraw(amount, now); err != nil {
			p.recordFailed(ctx, domain.TransactionTypeTransferOut, amount, src.AccountID, dst.AccountID, err.Error())
			return err
		}
		nextDst := dst.Clone()
		if err := nextDst.Deposit(amount, now); err != nil {
			p.recordFailed(ctx, domain.TransactionTypeTransferOut, amount, src.AccountID, dst.AccountID, err.Error())
			return err
		}

		correlationID := uuid.NewString()
		out := p.newTransaction(domain.TransactionTypeTransferOut, amount, src.AccountID, dst.AccountID, description)
		out.CorrelationID = correlationID
		in := p.newTransaction(domain.TransactionTypeTransferIn, amount, src.AccountID, dst.AccountID, description)
		in.CorrelationID = correlationID

		if err := p.uow.Commit(ctx, domain.LedgerMutation{
			Accounts: []domain.AccountChange{
				{Account: nextSrc, ExpectedVersion: src.Version},
				{Account: nextDst, ExpectedVersion: dst.Version},
			},
			Transactions: []domain.LedgerTransaction{out, in},
		}); err != nil {
			return err
		}
		outLeg = out
		return nil
	})
	if err != nil {
		metrics.TransactionsProcessed.WithLabelValues(string(domain.TransactionTypeTransferOut), string(domain.TransactionStatusFailed)).Inc()
		return domain.LedgerTransaction{}, err
	}

	metrics.TransactionsProcessed.WithLabelValues(string(domain.TransactionTypeTransferOut), string(domain.TransactionStatusCompleted)).Inc()
	metrics.TransactionsProcessed.WithLabelValues(string(domain.TransactionTypeTransferIn), string(domain.TransactionStatusCompleted)).Inc()
	p.publisher.Publish(domain.LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          domain.EventTransactionCompleted,
		AccountNumber: sourceNumber,
		TransactionID: outLeg.TransactionID,
		Amount:        amount.String(),
		Detail:        fmt.Sprintf("transfer to %s", destinationNumber),
		OccurredAt:    p.now(),
	})

	logger.Info("transfer completed", logger.Fields{
		"sourceAccountNumber":      sourceNumber,
		"destinationAccountNumber": destinationNumber,
		"correlationId":            outLeg.CorrelationID,
	})
	return outLeg, nil
}

// ReverseTransaction undoes a COMPLETED transaction inside the reversal
// window by posting compensating REVERSAL transactions and marking the
// originals reversed, all in one commit. Reversing either leg of a
// transfer reverses the whole transfer.
func (p *Processor) ReverseTransaction(ctx context.Context, transactionID, reason string) (domain.LedgerTransaction, error) {
	started := p.now()
	defer func() {
		metrics.OperationDuration.WithLabelValues("reversal").Observe(time.Since(started).Seconds())
	}()

	logger.Info("processing reversal", logger.Fields{"transactionId": transactionID, "reason": reason})

	original, err := p.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return domain.LedgerTransaction{}, err
	}
	if err := p.checkReversible(original); err != nil {
		return domain.LedgerTransaction{}, err
	}

	legs := []domain.LedgerTransaction{original}
	if original.CorrelationID != "" {
		legs, err = p.transactions.GetByCorrelationID(ctx, original.CorrelationID)
		if err != nil {
			return domain.LedgerTransaction{}, err
		}
	}

	accountIDs := affectedAccountIDs(legs)
	var unlock func()
	if len(accountIDs) == 2 {
		unlock, err = p.acquireOrderedLocks(ctx, accountIDs[0], accountIDs[1])
	} else {
		unlock, err = p.acquireLock(ctx, accountIDs[0])
	}
	if err != nil {
		return domain.LedgerTransaction{}, err
	}
	defer unlock()

	var reversal domain.LedgerTransaction
	err = p.withRetries(ctx, "reversal", func(ctx context.Context) error {
		// Re-verify under the lock; a concurrent reversal may have won.
		head, err := p.transactions.GetByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if err := p.checkReversible(head); err != nil {
			return err
		}

		loaded := make(map[string]domain.Account, len(accountIDs))
		versions := make(map[string]int64, len(accountIDs))
		for _, id := range accountIDs {
			account, err := p.accounts.GetByID(ctx, id)
			if err != nil {
				return err
			}
			versions[id] = account.Version
			loaded[id] = account.Clone()
		}

		now := p.now()
		correlationID := uuid.NewString()
		reversals := make([]domain.LedgerTransaction, 0, len(legs))
		markReversed := make([]string, 0, len(legs))
		for _, leg := range legs {
			affectedID := leg.AffectedAccountID()
			account := loaded[affectedID]
			switch {
			case leg.Type.IncreasesBalance():
				if err := account.ApplyReversalDebit(leg.Amount, now); err != nil {
					return err
				}
			case leg.Type.DecreasesBalance():
				if err := account.ApplyReversalCredit(leg.Amount, now); err != nil {
					return err
				}
			default:
				return domain.ErrTransactionNotReversible
			}
			loaded[affectedID] = account

			rev := p.newTransaction(domain.TransactionTypeReversal, leg.Amount, affectedID, "", reason)
			rev.CorrelationID = correlationID
			rev.RelatedTransactionID = leg.TransactionID
			reversals = append(reversals, rev)
			markReversed = append(markReversed, leg.TransactionID)
			if leg.TransactionID == transactionID {
				reversal = rev
			}
		}

		changes := make([]domain.AccountChange, 0, len(accountIDs))
		for _, id := range accountIDs {
			changes = append(changes, domain.AccountChange{Account: loaded[id], ExpectedVersion: versions[id]})
		}
		return p.uow.Commit(ctx, domain.LedgerMutation{
			Accounts:     changes,
			Transactions: reversals,
			MarkReversed: markReversed,
		})
	})
	if err != nil {
		metrics.TransactionsProcessed.WithLabelValues(string(domain.TransactionTypeReversal), string(domain.TransactionStatusFailed)).Inc()
		return domain.LedgerTransaction{}, err
	}

	metrics.TransactionsProcessed.WithLabelValues(string(domain.TransactionTypeReversal), string(domain.TransactionStatusCompleted)).Inc()
	p.publisher.Publish(domain.LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          domain.EventTransactionReversed,
		TransactionID: transactionID,
		Amount:        original.Amount.String(),
		Detail:        reason,
		OccurredAt:    p.now(),
	})

	logger.Info("reversal completed", logger.Fields{
		"transactionId":         transactionID,
		"reversalTransactionId": reversal.TransactionID,
	})
	return reversal, nil
}

// ProcessInterest accrues interest for the period and posts it as an
// INTEREST_EARNED credit. Only savings accounts earn posted interest;
// CalculateInterest on AccountService quotes either variant.
func (p *Processor) ProcessInterest(ctx context.Context, accountNumber string, from, to time.Time) (domain.LedgerTransaction, error) {
	started := p.now()
	defer func() {
		metrics.OperationDuration.WithLabelValues("interest").Observe(time.Since(started).Seconds())
	}()

	account, err := p.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return domain.LedgerTransaction{}, err
	}
	if account.Type != domain.AccountTypeSavings {
		return domain.LedgerTransaction{}, domain.ErrInterestNotApplicable
	}

	unlock, err := p.acquireLock(ctx, account.AccountID)
	if err != nil {
		return domain.LedgerTransaction{}, err
	}
	defer unlock()

	var committed domain.LedgerTransaction
	err = p.withRetries(ctx, "interest", func(ctx context.Context) error {
		current, err := p.accounts.GetByID(ctx, account.AccountID)
		if err != nil {
			return err
		}

		calc := CalculatorFor(current)
		interest, err := calc.Calculate(current.Balance, current.Savings.InterestRate, from, to)
		if err != nil {
			return err
		}
		if !interest.IsPositive() {
			return domain.ErrInvalidAmount
		}

		next := current.Clone()
		if err := next.Deposit(interest, p.now()); err != nil {
			p.recordFailed(ctx, domain.TransactionTypeInterestEarned, interest, current.AccountID, "", err.Error())
			return err
		}

		description := fmt.Sprintf("Interest %s to %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
		tx := p.newTransaction(domain.TransactionTypeInterestEarned, interest, current.AccountID, "", description)
		if err := p.uow.Commit(ctx, domain.LedgerMutation{
			Accounts:     []domain.AccountChange{{Account: next, ExpectedVersion: current.Version}},
			Transactions: []domain.LedgerTransaction{tx},
		}); err != nil {
			return err
		}
		committed = tx
		return nil
	})
	if err != nil {
		metrics.TransactionsProcessed.WithLabelValues(string(domain.TransactionTypeInterestEarned), string(domain.TransactionStatusFailed)).Inc()
		return domain.LedgerTransaction{}, err
	}

	metrics.TransactionsProcessed.WithLabelValues(string(domain.TransactionTypeInterestEarned), string(domain.TransactionStatusCompleted)).Inc()
	p.publisher.Publish(domain.LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          domain.EventTransactionCompleted,
		AccountNumber: accountNumber,
		TransactionID: committed.TransactionID,
		Amount:        committed.Amount.String(),
		Detail:        string(domain.TransactionTypeInterestEarned),
		OccurredAt:    p.now(),
	})

	logger.Info("interest posted", logger.Fields{
		"accountNumber": accountNumber,
		"amount":        committed.Amount.String(),
	})
	return committed, nil
}

func (p *Processor) checkReversible(tx domain.LedgerTransaction) error {
	if tx.Status != domain.TransactionStatusCompleted {
		return domain.ErrTransactionNotReversible
	}
	if tx.Reversed {
		return domain.ErrTransactionNotReversible
	}
	if tx.Type == domain.TransactionTypeReversal {
		return domain.ErrTransactionNotReversible
	}
	if p.now().Sub(tx.Timestamp) > p.policy.ReversalWindow() {
		return domain.ErrTransactionNotReversible
	}
	return nil
}

// checkDailyTransferLimit sums today's completed outgoing transfers and
// rejects the transfer that would push the total past the owner's tier
// limit. An owner without a customer record gets the BASIC limit.
func (p *Processor) checkDailyTransferLimit(ctx context.Context, source domain.Account, amount domain.Money) error {
	tier := domain.CustomerTypeBasic
	customer, err := p.customers.GetByCustomerID(ctx, source.OwnerID)
	if err == nil {
		tier = customer.Type
	} else if !errors.Is(err, domain.ErrCustomerNotFound) && !errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}

	transferred, err := p.transactions.SumCompletedAmountSince(ctx, source.AccountID,
		[]domain.TransactionType{domain.TransactionTypeTransferOut, domain.TransactionTypeWireTransferOut},
		startOfDay(p.now()))
	if err != nil {
		return err
	}

	limit := p.policy.DailyTransferLimit(tier)
	if transferred.Add(amount.Amount).GreaterThan(limit) {
		logger.Info("daily transfer limit reached", logger.Fields{
			"accountId":          source.AccountID,
			"customerType":       string(tier),
			"transferredToday":   transferred.String(),
			"requestedAmount":    amount.String(),
			"dailyTransferLimit": limit.String(),
		})
		return domain.ErrDailyLimitExceeded
	}
	return nil
}

// recordFailed persists a FAILED transaction for a business rejection so
// the history shows the attempt. Best effort; the rejection itself is
// already decided.
func (p *Processor) recordFailed(ctx context.Context, txType domain.TransactionType, amount domain.Money, sourceID, destinationID, detail string) {
	tx := p.newTransaction(txType, amount, sourceID, destinationID, detail)
	tx.Status = domain.TransactionStatusFailed
	if err := p.uow.Commit(ctx, domain.LedgerMutation{Transactions: []domain.LedgerTransaction{tx}}); err != nil {
		logger.Error("persist failed transaction", err, logger.Fields{"transactionId": tx.TransactionID})
	}
	p.publisher.Publish(domain.LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          domain.EventTransactionFailed,
		TransactionID: tx.TransactionID,
		Amount:        amount.String(),
		Detail:        detail,
		OccurredAt:    p.now(),
	})
}

func (p *Processor) newTransaction(txType domain.TransactionType, amount domain.Money, sourceID, destinationID, description string) domain.LedgerTransaction {
	return domain.LedgerTransaction{
		TransactionID:        uuid.NewString(),
		Type:                 txType,
		Amount:               amount,
		Fees:                 domain.ZeroMoney(amount.Currency),
		Timestamp:            p.now(),
		Status:               domain.TransactionStatusCompleted,
		SourceAccountID:      sourceID,
		DestinationAccountID: destinationID,
		Description:          description,
	}
}

func (p *Processor) withRetries(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	return retryOnConflict(ctx, operation, p.policy.MaxWriteRetries+1, fn)
}

// retryOnConflict runs fn, reloading and retrying on optimistic conflicts
// up to the attempt bound. Any other error passes through unchanged; an
// exhausted retry budget is wrapped as a processing failure.
func retryOnConflict(ctx context.Context, operation string, attempts int, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrVersionConflict) {
			metrics.VersionConflicts.Inc()
			logger.Info("version conflict, retrying", logger.Fields{
				"operation": operation,
				"attempt":   attempt + 1,
			})
			lastErr = err
			continue
		}
		return err
	}
	logger.Error("retries exhausted", lastErr, logger.Fields{"operation": operation})
	return fmt.Errorf("%w: %s: %v", domain.ErrProcessingFailed, operation, lastErr)
}

func (p *Processor) acquireLock(ctx context.Context, accountID string) (func(), error) {
	unlock, err := p.locks.Acquire(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrLockTimeout) {
			metrics.LockTimeouts.Inc()
		}
		return nil, err
	}
	return unlock, nil
}

func (p *Processor) acquireOrderedLocks(ctx context.Context, a, b string) (func(), error) {
	unlock, err := p.locks.AcquireOrdered(ctx, a, b)
	if err != nil {
		if errors.Is(err, domain.ErrLockTimeout) {
			metrics.LockTimeouts.Inc()
		}
		return nil, err
	}
	return unlock, nil
}

func affectedAccountIDs(legs []domain.LedgerTransaction) []string {
	seen := make(map[string]struct{}, 2)
	ids := make([]string, 0, 2)
	for _, leg := range legs {
		id := leg.AffectedAccountID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
