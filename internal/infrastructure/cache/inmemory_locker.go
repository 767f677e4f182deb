package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
)

type lease struct {
	token     string
	expiresAt time.Time
}

// InMemoryLocker implements shared.Locker with a process-local map.
// WARNING: leases are not shared across process instances.
type InMemoryLocker struct {
	mu     sync.Mutex
	leases map[string]lease
	now    func() time.Time
}

// NewInMemoryLocker creates an empty in-memory locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{
		leases: make(map[string]lease),
		now:    time.Now,
	}
}

// Obtain takes key for ttl unless an unexpired lease already holds it
func (l *InMemoryLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, held := l.leases[key]; held && now.Before(cur.expiresAt) {
		return nil, shared.ErrLockNotObtained
	}

	token := uuid.NewString()
	l.leases[key] = lease{token: token, expiresAt: now.Add(ttl)}

	return &memoryLock{locker: l, key: key, token: token}, nil
}

// Held reports whether key currently has an unexpired lease
func (l *InMemoryLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, held := l.leases[key]
	return held && l.now().Before(cur.expiresAt)
}

func (l *InMemoryLocker) release(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// A lease that expired and was re-taken belongs to someone else now
	if cur, held := l.leases[key]; held && cur.token == token {
		delete(l.leases, key)
	}
}

type memoryLock struct {
	locker *InMemoryLocker
	key    string
	token  string
	once   sync.Once
}

func (m *memoryLock) Release(ctx context.Context) error {
	m.once.Do(func() {
		m.locker.release(m.key, m.token)
	})
	return nil
}
