// Package dispatch moves audit and notification delivery off the
// transactional critical path. Events are queued after the financial
// mutation commits and drained by independent workers; a slow or failing
// sink can never block or roll back a committed ledger write.
package dispatch

import (
	"sync"

	"github.com/api-sage/core-banking-ledger/internal/domain"
	"github.com/api-sage/core-banking-ledger/internal/logger"
	"github.com/api-sage/core-banking-ledger/internal/metrics"
)

type Dispatcher struct {
	audit        domain.AuditSink
	notification domain.NotificationSink
	queue        chan domain.LedgerEvent
	wg           sync.WaitGroup
	closeOnce    sync.Once

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(audit domain.AuditSink, notification domain.NotificationSink, queueSize int, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if workers <= 0 {
		workers = 1
	}

	d := &Dispatcher{
		audit:        audit,
		notification: notification,
		queue:        make(chan domain.LedgerEvent, queueSize),
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}

	return d
}

// Publish enqueues an event without ever blocking the caller. When the
// queue is full, or the dispatcher has been closed, the event is dropped
// and counted; losing a best-effort notification is acceptable, stalling
// a financial operation is not.
func (d *Dispatcher) Publish(event domain.LedgerEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.EventsDropped.Inc()
		logger.Error("dispatcher closed, event dropped", nil, logger.Fields{
			"eventId": event.EventID,
			"kind":    string(event.Kind),
		})
		return
	}

	select {
	case d.queue <- event:
	default:
		metrics.EventsDropped.Inc()
		logger.Error("dispatcher queue full, event dropped", nil, logger.Fields{
			"eventId": event.EventID,
			"kind":    string(event.Kind),
		})
	}
}

// Close stops intake, drains queued events and waits for the workers.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event domain.LedgerEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("dispatcher sink panicked", nil, logger.Fields{
				"eventId": event.EventID,
				"panic":   r,
			})
		}
	}()

	if d.audit != nil {
		d.audit.Record(event)
	}
	if d.notification != nil {
		d.notification.Notify(event)
	}
}
