package application

import "sync"

// keyedLocks serializes read-decide-commit sequences per grouping key (the
// task pool, one account type, one agent). Operations on disjoint keys run
// in parallel.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: map[string]*sync.Mutex{}}
}

func (l *keyedLocks) lock(key string) func() {
	l.mu.Lock()
	mu, ok := l.locks[key]
	if !ok {
		mu = &sync.Mutex{}
		l.locks[key] = mu
	}
	l.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}
