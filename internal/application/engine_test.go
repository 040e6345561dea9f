package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

func TestNextTaskReturnsNilOnEmptyPool(t *testing.T) {
	t.Parallel()

	repo := &fakeTaskRepo{}
	engine := newTestEngine(repo, &fakeAccountRepo{})

	task, err := engine.NextTask(context.Background(), "agent-1")
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Zero(t, repo.resets)
}

func TestNextTaskNeverRepeatsWithinBatch(t *testing.T) {
	t.Parallel()

	repo := &fakeTaskRepo{tasks: []domain.Task{
		{ID: 1, URL: "u1", Batch: "B1"},
		{ID: 2, URL: "u2", Batch: "B1"},
		{ID: 3, URL: "u3", Batch: "B1"},
	}}
	engine := newTestEngine(repo, &fakeAccountRepo{})

	seen := map[int64]bool{}
	for i := 0; i < 3; i++ {
		task, err := engine.NextTask(context.Background(), "agent-1")
		require.NoError(t, err)
		require.NotNil(t, task)
		assert.False(t, seen[task.ID], "task %d delivered twice", task.ID)
		seen[task.ID] = true
	}

	// Batch exhausted for this agent: no recycled duplicate is handed out.
	task, err := engine.NextTask(context.Background(), "agent-1")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestNextTaskBacklogServeDoesNotFlipUsed(t *testing.T) {
	t.Parallel()

	repo := &fakeTaskRepo{tasks: []domain.Task{
		{ID: 1, URL: "u1", Batch: "B1"},
		{ID: 2, URL: "u2", Batch: "B1"},
	}}
	engine := newTestEngine(repo, &fakeAccountRepo{})

	first, err := engine.NextTask(context.Background(), "agent-1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, repo.usedCount())

	// The second call is served from the agent's in-batch backlog.
	second, err := engine.NextTask(context.Background(), "agent-1")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.usedCount())
}

func TestNextTaskDistinctAcrossAgents(t *testing.T) {
	t.Parallel()

	repo := &fakeTaskRepo{tasks: []domain.Task{
		{ID: 1, URL: "u1", Batch: "B1"},
		{ID: 2, URL: "u2", Batch: "B1"},
		{ID: 3, URL: "u3", Batch: "B1"},
	}}
	engine := newTestEngine(repo, &fakeAccountRepo{})

	got := make([]int64, 0, 3)
	for _, agent := range []string{"a", "b", "c"} {
		task, err := engine.NextTask(context.Background(), agent)
		require.NoError(t, err)
		require.NotNil(t, task)
		got = append(got, task.ID)
	}

	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	assert.Equal(t, []int64{1, 2, 3}, got)
	assert.Equal(t, 3, repo.usedCount())
}

func TestNextTaskRecyclesExhaustedPool(t *testing.T) {
	t.Parallel()

	repo := &fakeTaskRepo{tasks: []domain.Task{
		{ID: 1, URL: "u1", Batch: "B1", Used: true},
		{ID: 2, URL: "u2", Batch: "B1", Used: true},
	}}
	engine := newTestEngine(repo, &fakeAccountRepo{})

	// Fresh agent, nothing unused: the pool is recycled on its behalf.
	task, err := engine.NextTask(context.Background(), "agent-1")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, 1, repo.resets)
	assert.Equal(t, 1, repo.usedCount())
}

func TestNextTaskBatchRolloverClearsTracker(t *testing.T) {
	t.Parallel()

	repo := &fakeTaskRepo{tasks: []domain.Task{
		{ID: 1, URL: "u1", Batch: "B1"},
	}}
	engine := newTestEngine(repo, &fakeAccountRepo{})

	task, err := engine.NextTask(context.Background(), "agent-1")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, domain.BatchID("B1"), task.Batch)

	// The pool is replaced mid-session.
	require.NoError(t, repo.ReplaceBatch(context.Background(), "B2", []domain.TaskRow{
		{URL: "u10"}, {URL: "u11"},
	}))

	next, err := engine.NextTask(context.Background(), "agent-1")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, domain.BatchID("B2"), next.Batch)

	history := engine.tracker.History("agent-1")
	require.Len(t, history, 1)
	assert.Equal(t, domain.BatchID("B2"), history[0].Batch)
}

func TestNextTaskRetriesOnConflict(t *testing.T) {
	t.Parallel()

	repo := &fakeTaskRepo{
		tasks: []domain.Task{
			{ID: 1, URL: "u1", Batch: "B1"},
			{ID: 2, URL: "u2", Batch: "B1"},
		},
		conflictsBeforeSuccess: 1,
	}
	engine := newTestEngine(repo, &fakeAccountRepo{})

	task, err := engine.NextTask(context.Background(), "agent-1")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, 1, repo.usedCount())
}

func TestNextTaskRecordsSessionTargetType(t *testing.T) {
	t.Parallel()

	repo := &fakeTaskRepo{tasks: []domain.Task{
		{ID: 1, URL: "u1", TargetType: "2", Batch: "B1"},
	}}
	engine := newTestEngine(repo, &fakeAccountRepo{})

	_, err := engine.NextTask(context.Background(), "agent-1")
	require.NoError(t, err)

	targetType, ok := engine.sessions.Get("agent-1")
	require.True(t, ok)
	assert.Equal(t, "2", targetType)
}

func newTestEngine(tasks *fakeTaskRepo, accounts *fakeAccountRepo) *Engine {
	engine := NewEngine(tasks, accounts, nil, DefaultAccountQuota)
	engine.randIntN = func(int) int { return 0 }
	return engine
}

type fakeTaskRepo struct {
	mu                     sync.Mutex
	tasks                  []domain.Task
	resets                 int
	conflictsBeforeSuccess int
	nextID                 int64
}

func (r *fakeTaskRepo) List(_ context.Context) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Task, len(r.tasks))
	copy(out, r.tasks)
	return out, nil
}

func (r *fakeTaskRepo) CurrentBatch(_ context.Context) (domain.BatchID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.tasks) == 0 {
		return "", nil
	}
	return r.tasks[0].Batch, nil
}

func (r *fakeTaskRepo) MarkUsed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflictsBeforeSuccess > 0 {
		r.conflictsBeforeSuccess--
		return domain.ErrConflict
	}

	for i := range r.tasks {
		if r.tasks[i].ID != id {
			continue
		}
		if r.tasks[i].Used {
			return domain.ErrConflict
		}
		r.tasks[i].Used = true
		return nil
	}
	return domain.ErrConflict
}

func (r *fakeTaskRepo) ResetUsed(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resets++
	for i := range r.tasks {
		r.tasks[i].Used = false
	}
	return nil
}

func (r *fakeTaskRepo) ReplaceBatch(_ context.Context, batch domain.BatchID, rows []domain.TaskRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nextID == 0 {
		for _, task := range r.tasks {
			if task.ID > r.nextID {
				r.nextID = task.ID
			}
		}
	}

	r.tasks = r.tasks[:0]
	for _, row := range rows {
		r.nextID++
		r.tasks = append(r.tasks, domain.Task{
			ID:         r.nextID,
			URL:        row.URL,
			TargetType: row.TargetType,
			Batch:      batch,
		})
	}
	return nil
}

func (r *fakeTaskRepo) usedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	used := 0
	for _, task := range r.tasks {
		if task.Used {
			used++
		}
	}
	return used
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts []domain.TargetAccount
	resets   []string
	nextID   int64
}

func (r *fakeAccountRepo) PickUnused(_ context.Context, accountType string, limit int) ([]domain.TargetAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	picked := make([]domain.TargetAccount, 0, limit)
	for _, account := range r.accounts {
		if account.Used {
			continue
		}
		if accountType != "" && account.Type != accountType {
			continue
		}
		picked = append(picked, account)
	}

	sort.Slice(picked, func(i, j int) bool {
		if picked[i].PublishingLevel != picked[j].PublishingLevel {
			return picked[i].PublishingLevel < picked[j].PublishingLevel
		}
		return picked[i].AccessLevel < picked[j].AccessLevel
	})

	if len(picked) > limit {
		picked = picked[:limit]
	}
	return picked, nil
}

func (r *fakeAccountRepo) MarkUsed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.accounts {
		if r.accounts[i].ID != id {
			continue
		}
		if r.accounts[i].Used {
			return domain.ErrConflict
		}
		r.accounts[i].Used = true
		return nil
	}
	return domain.ErrConflict
}

func (r *fakeAccountRepo) ResetUsed(_ context.Context, accountType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resets = append(r.resets, accountType)
	for i := range r.accounts {
		if accountType == "" || r.accounts[i].Type == accountType {
			r.accounts[i].Used = false
		}
	}
	return nil
}

func (r *fakeAccountRepo) Upsert(_ context.Context, row domain.AccountRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.accounts {
		if r.accounts[i].Name != row.Name {
			continue
		}
		id := r.accounts[i].ID
		r.accounts[i] = accountFromRow(id, row)
		return nil
	}

	r.nextID++
	r.accounts = append(r.accounts, accountFromRow(r.nextID, row))
	return nil
}

func (r *fakeAccountRepo) GetByName(_ context.Context, name string) (domain.TargetAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if strings.EqualFold(account.Name, name) {
			return account, nil
		}
	}
	return domain.TargetAccount{}, domain.ErrAccountNotFound
}

func (r *fakeAccountRepo) List(_ context.Context) ([]domain.TargetAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.TargetAccount, len(r.accounts))
	copy(out, r.accounts)
	return out, nil
}

func accountFromRow(id int64, row domain.AccountRow) domain.TargetAccount {
	return domain.TargetAccount{
		ID:              id,
		Name:            row.Name,
		AccountID:       row.AccountID,
		Link:            row.Link,
		Status:          row.Status,
		Category:        row.Category,
		Type:            row.Type,
		PublishingLevel: row.PublishingLevel,
		AccessLevel:     row.AccessLevel,
	}
}
