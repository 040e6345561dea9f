package application

import (
	"sync"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

// Tracker remembers which tasks each agent has already received within its
// current batch. It is process-local: the durable used flag drives
// pool-wide recycling, the tracker drives per-agent dedup.
type Tracker struct {
	mu      sync.Mutex
	entries map[string][]domain.AllocationEntry
}

func NewTracker() *Tracker {
	return &Tracker{entries: map[string][]domain.AllocationEntry{}}
}

// History returns a copy of the agent's delivery record, oldest first.
func (t *Tracker) History(agentID string) []domain.AllocationEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.entries[agentID]
	out := make([]domain.AllocationEntry, len(entries))
	copy(out, entries)
	return out
}

func (t *Tracker) Append(agentID string, entry domain.AllocationEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[agentID] = append(t.entries[agentID], entry)
}

// Reset drops the agent's history. Called when the agent crosses into a new
// batch, which invalidates everything remembered about the old one.
func (t *Tracker) Reset(agentID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, agentID)
}
