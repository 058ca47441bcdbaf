// Package lock guards batch jobs against concurrent runs.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrHeld is returned when the lock is already held elsewhere
var ErrHeld = errors.New("lock is held")

// Locker obtains a named lock. The returned function releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// Local is an in-process Locker, used when no Redis is configured
type Local struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocal() *Local {
	return &Local{held: make(map[string]bool)}
}

func (l *Local) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, ErrHeld
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, nil
}
