// Package sink holds the default audit and notification sinks, which
// emit structured log lines. Deployments with a real compliance pipeline
// or messaging fabric substitute their own implementations.
package sink

import (
	"github.com/api-sage/core-banking-ledger/internal/domain"
	"github.com/api-sage/core-banking-ledger/internal/logger"
)

type LogAuditSink struct{}

func NewLogAuditSink() *LogAuditSink { return &LogAuditSink{} }

func (s *LogAuditSink) Record(event domain.LedgerEvent) {
	logger.Info("audit event", logger.Fields{
		"eventId":       event.EventID,
		"kind":          string(event.Kind),
		"accountNumber": event.AccountNumber,
		"transactionId": event.TransactionID,
		"amount":        event.Amount,
		"detail":        event.Detail,
		"occurredAt":    event.OccurredAt,
	})
}

type LogNotificationSink struct{}

func NewLogNotificationSink() *LogNotificationSink { return &LogNotificationSink{} }

func (s *LogNotificationSink) Notify(event domain.LedgerEvent) {
	logger.Info("notification event", logger.Fields{
		"eventId":       event.EventID,
		"kind":          string(event.Kind),
		"accountNumber": event.AccountNumber,
		"transactionId": event.TransactionID,
		"detail":        event.Detail,
	})
}
