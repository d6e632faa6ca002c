package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/api-sage/core-banking-ledger/internal/domain"
)

type recordingSink struct {
	mu     sync.Mutex
	events []domain.LedgerEvent
}

func (s *recordingSink) Record(event domain.LedgerEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Notify(event domain.LedgerEvent) {
	s.Record(event)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type panickingSink struct{}

func (panickingSink) Record(domain.LedgerEvent) { panic("sink failure") }
func (panickingSink) Notify(domain.LedgerEvent) { panic("sink failure") }

func TestDispatcherDeliversToBothSinks(t *testing.T) {
	audit := &recordingSink{}
	notification := &recordingSink{}
	dispatcher := NewDispatcher(audit, notification, 16, 2)

	for i := 0; i < 5; i++ {
		dispatcher.Publish(domain.LedgerEvent{EventID: "evt", Kind: domain.EventTransactionCompleted})
	}
	dispatcher.Close()

	if audit.count() != 5 {
		t.Fatalf("audit sink received %d events, expected 5", audit.count())
	}
	if notification.count() != 5 {
		t.Fatalf("notification sink received %d events, expected 5", notification.count())
	}
}

func TestPublishNeverBlocksOnFullQueue(t *testing.T) {
	// No workers draining fast enough: queue size 1, slow sink.
	slow := &slowSink{delay: 200 * time.Millisecond}
	dispatcher := NewDispatcher(slow, nil, 1, 1)
	defer dispatcher.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			dispatcher.Publish(domain.LedgerEvent{EventID: "evt"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on full queue")
	}
}

func TestSinkPanicDoesNotKillWorker(t *testing.T) {
	audit := panickingSink{}
	notification := &recordingSink{}
	dispatcher := NewDispatcher(audit, notification, 16, 1)

	dispatcher.Publish(domain.LedgerEvent{EventID: "evt-1"})
	dispatcher.Publish(domain.LedgerEvent{EventID: "evt-2"})
	dispatcher.Close()
}

func TestPublishAfterCloseDropsEvent(t *testing.T) {
	audit := &recordingSink{}
	dispatcher := NewDispatcher(audit, nil, 16, 1)

	dispatcher.Publish(domain.LedgerEvent{EventID: "evt-1"})
	dispatcher.Close()

	dispatcher.Publish(domain.LedgerEvent{EventID: "evt-2"})
	dispatcher.Close()

	if audit.count() != 1 {
		t.Fatalf("audit sink received %d events, expected 1", audit.count())
	}
}

type slowSink struct {
	delay time.Duration
}

func (s *slowSink) Record(domain.LedgerEvent) { time.Sleep(s.delay) }
