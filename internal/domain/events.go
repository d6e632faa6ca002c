package domain

import "time"

type EventKind string

const (
	EventAccountCreated       EventKind = "ACCOUNT_CREATED"
	EventAccountStatusChanged EventKind = "ACCOUNT_STATUS_CHANGED"
	EventTransactionCompleted EventKind = "TRANSACTION_COMPLETED"
	EventTransactionFailed    EventKind = "TRANSACTION_FAILED"
	EventTransactionReversed  EventKind = "TRANSACTION_REVERSED"
)

// LedgerEvent is the payload handed to the audit and notification sinks
// after a financial mutation commits. Sinks run off the critical path;
// nothing here may be required to complete an operation.
type LedgerEvent struct {
	EventID       string
	Kind          EventKind
	AccountNumber string
	TransactionID string
	Amount        string
	Detail        string
	OccurredAt    time.Time
}

// AuditSink records ledger events for compliance. Best effort; a failing
// sink never rolls back the mutation it describes.
type AuditSink interface {
	Record(event LedgerEvent)
}

// NotificationSink delivers customer-facing alerts. Same contract as
// AuditSink: asynchronous, non-blocking, best effort.
type NotificationSink interface {
	Notify(event LedgerEvent)
}
