package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker keeps leases in process memory. It serves single-process runs
// such as the CLI.
type LocalLocker struct {
	mu     sync.Mutex
	leases map[string]localLease
	now    func() time.Time
	seq    uint64
}

type localLease struct {
	id      uint64
	expires time.Time
}

// NewLocalLocker creates an empty in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		leases: make(map[string]localLease),
		now:    time.Now,
	}
}

// TryLock acquires key for ttl without waiting.
func (l *LocalLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if lease, held := l.leases[key]; held && now.Before(lease.expires) {
		return nil, false, nil
	}

	l.seq++
	id := l.seq
	l.leases[key] = localLease{id: id, expires: now.Add(ttl)}

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if lease, ok := l.leases[key]; ok && lease.id == id {
			delete(l.leases, key)
		}
		return nil
	}
	return release, true, nil
}
