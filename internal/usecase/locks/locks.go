// Package locks serializes balance-mutating operations per account.
// At most one writer holds an account at a time; two-account operations
// take both locks in lexicographic key order so that opposite-direction
// transfers cannot deadlock each other.
package locks

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/core-banking-ledger/internal/domain"
)

type Manager struct {
	mu    sync.Mutex
	wait  time.Duration
	locks map[string]*accountLock
}

type accountLock struct {
	sem  chan struct{}
	refs int
}

// NewManager bounds every acquisition by wait; a writer that cannot get
// the lock in time receives domain.ErrLockTimeout instead of piling up.
func NewManager(wait time.Duration) *Manager {
	return &Manager{
		wait:  wait,
		locks: make(map[string]*accountLock),
	}
}

// Acquire takes the exclusive lock for key. The returned release
// function must be called exactly once.
func (m *Manager) Acquire(ctx context.Context, key string) (func(), error) {
	lock := m.retain(key)

	timer := time.NewTimer(m.wait)
	defer timer.Stop()

	select {
	case lock.sem <- struct{}{}:
		return func() {
			<-lock.sem
			m.release(key)
		}, nil
	case <-timer.C:
		m.release(key)
		return nil, domain.ErrLockTimeout
	case <-ctx.Done():
		m.release(key)
		return nil, ctx.Err()
	}
}

// AcquireOrdered takes both locks in lexicographic key order and
// releases them in reverse on the returned function.
func (m *Manager) AcquireOrdered(ctx context.Context, keyA, keyB string) (func(), error) {
	first, second := keyA, keyB
	if second < first {
		first, second = second, first
	}

	releaseFirst, err := m.Acquire(ctx, first)
	if err != nil {
		return nil, err
	}

	releaseSecond, err := m.Acquire(ctx, second)
	if err != nil {
		releaseFirst()
		return nil, err
	}

	return func() {
		releaseSecond()
		releaseFirst()
	}, nil
}

func (m *Manager) retain(key string) *accountLock {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[key]
	if !ok {
		lock = &accountLock{sem: make(chan struct{}, 1)}
		m.locks[key] = lock
	}
	lock.refs++
	return lock
}

func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[key]
	if !ok {
		return
	}
	lock.refs--
	if lock.refs == 0 {
		delete(m.locks, key)
	}
}
