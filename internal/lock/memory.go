package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	token   string
	expires time.Time
}

// Memory is an in-process Locker.
type Memory struct {
	mu    sync.Mutex
	held  map[string]entry
	clock func() time.Time
}

// NewMemory creates an empty in-process locker.
func NewMemory() *Memory {
	return &Memory{held: make(map[string]entry), clock: time.Now}
}

// Acquire takes the lock on key for ttl.
func (m *Memory) Acquire(_ context.Context, key string, ttl time.Duration) (Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	if e, ok := m.held[key]; ok && now.Before(e.expires) {
		return nil, ErrLocked
	}

	token := uuid.NewString()
	m.held[key] = entry{token: token, expires: now.Add(ttl)}

	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if e, ok := m.held[key]; ok && e.token == token {
			delete(m.held, key)
		}
		return nil
	}, nil
}

var _ Locker = (*Memory)(nil)
