package application

import (
	"math/rand/v2"

	"github.com/isnadmansour/IsnadTasks/internal/ports"
)

const (
	// DefaultAccountQuota is how many target accounts one dispense hands out.
	DefaultAccountQuota = 4

	// maxConflictRetries bounds re-selection after an optimistic-conflict
	// failure so contention cannot livelock a request.
	maxConflictRetries = 3

	taskPoolKey      = "tasks"
	accountKeyPrefix = "accounts:"
	accountGlobalKey = "accounts:*"
	taskPoolLabel    = "tasks"
	accountPoolLabel = "accounts"
)

// Engine is the allocation composition root. It owns the in-memory tracker
// and session state and serializes every read-decide-commit sequence per
// grouping key.
type Engine struct {
	tasks    ports.TaskRepository
	accounts ports.AccountRepository
	tracker  *Tracker
	sessions *SessionStore
	locks    *keyedLocks
	metrics  *Metrics
	quota    int
	randIntN func(n int) int
}

func NewEngine(tasks ports.TaskRepository, accounts ports.AccountRepository, metrics *Metrics, quota int) *Engine {
	if quota <= 0 {
		quota = DefaultAccountQuota
	}

	return &Engine{
		tasks:    tasks,
		accounts: accounts,
		tracker:  NewTracker(),
		sessions: NewSessionStore(),
		locks:    newKeyedLocks(),
		metrics:  metrics,
		quota:    quota,
		randIntN: rand.IntN,
	}
}

func accountLockKey(accountType string) string {
	if accountType == "" {
		// Empty type selects and resets across the whole pool.
		return accountGlobalKey
	}
	return accountKeyPrefix + accountType
}
