package domain

import "errors"

var (
	ErrRecordNotFound           = errors.New("record not found")
	ErrAccountNotFound          = errors.New("account not found")
	ErrCustomerNotFound         = errors.New("customer not found")
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrCurrencyMismatch         = errors.New("currency mismatch")
	ErrInvalidAmount            = errors.New("amount must be greater than zero")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrWithdrawalLimitExceeded  = errors.New("withdrawal limit exceeded for period")
	ErrDailyLimitExceeded       = errors.New("daily transfer limit exceeded")
	ErrAccountNotActive         = errors.New("account cannot perform transactions")
	ErrInvalidStateTransition   = errors.New("invalid account state transition")
	ErrNonZeroBalance           = errors.New("account balance must be zero")
	ErrSameAccountTransfer      = errors.New("source and destination accounts are the same")
	ErrTransactionNotReversible = errors.New("transaction cannot be reversed")
	ErrBelowMinimumDeposit      = errors.New("initial deposit below minimum for account type")
	ErrGenerationExhausted      = errors.New("unable to generate unique account number")
	ErrInterestNotApplicable    = errors.New("interest cannot be applied to this account type")
	ErrVersionConflict          = errors.New("account version conflict")
	ErrLockTimeout              = errors.New("timed out waiting for account lock")
	ErrProcessingFailed         = errors.New("processing failed")
)

// ErrorCode maps a ledger error to its stable machine code. Unknown errors
// map to PROCESSING_FAILED so internal details never reach callers.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return "ACCOUNT_NOT_FOUND"
	case errors.Is(err, ErrCustomerNotFound):
		return "CUSTOMER_NOT_FOUND"
	case errors.Is(err, ErrTransactionNotFound):
		return "TRANSACTION_NOT_FOUND"
	case errors.Is(err, ErrRecordNotFound):
		return "RECORD_NOT_FOUND"
	case errors.Is(err, ErrCurrencyMismatch):
		return "CURRENCY_MISMATCH"
	case errors.Is(err, ErrInvalidAmount):
		return "INVALID_AMOUNT"
	case errors.Is(err, ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, ErrWithdrawalLimitExceeded):
		return "WITHDRAWAL_LIMIT_EXCEEDED"
	case errors.Is(err, ErrDailyLimitExceeded):
		return "DAILY_LIMIT_EXCEEDED"
	case errors.Is(err, ErrAccountNotActive):
		return "ACCOUNT_NOT_ACTIVE"
	case errors.Is(err, ErrInvalidStateTransition):
		return "INVALID_STATE_TRANSITION"
	case errors.Is(err, ErrNonZeroBalance):
		return "NON_ZERO_BALANCE"
	case errors.Is(err, ErrSameAccountTransfer):
		return "SAME_ACCOUNT_TRANSFER"
	case errors.Is(err, ErrTransactionNotReversible):
		return "TRANSACTION_NOT_REVERSIBLE"
	case errors.Is(err, ErrBelowMinimumDeposit):
		return "BELOW_MINIMUM_DEPOSIT"
	case errors.Is(err, ErrGenerationExhausted):
		return "GENERATION_EXHAUSTED"
	case errors.Is(err, ErrInterestNotApplicable):
		return "INTEREST_NOT_APPLICABLE"
	case errors.Is(err, ErrVersionConflict):
		return "VERSION_CONFLICT"
	case errors.Is(err, ErrLockTimeout):
		return "LOCK_TIMEOUT"
	default:
		return "PROCESSING_FAILED"
	}
}
