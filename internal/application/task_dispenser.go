package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

// NextTask selects the next unseen task for the agent. It drains the
// agent's current batch without duplicates, falls back to a global draw,
// and recycles the pool when every task has been used. A nil task with a
// nil error means the agent has nothing left to receive right now.
func (e *Engine) NextTask(ctx context.Context, agentID string) (*domain.Task, error) {
	unlock := e.locks.lock(taskPoolKey)
	defer unlock()

	task, err := e.nextTaskLocked(ctx, agentID)
	if err != nil || task == nil {
		return task, err
	}

	history := e.tracker.History(agentID)
	if len(history) > 0 && history[len(history)-1].Batch != task.Batch {
		// Batch rollover invalidates everything remembered about the agent.
		e.tracker.Reset(agentID)
	}
	e.tracker.Append(agentID, domain.AllocationEntry{TaskID: task.ID, Batch: task.Batch})
	e.sessions.Set(agentID, task.TargetType)
	e.metrics.taskDispensed()

	return task, nil
}

func (e *Engine) nextTaskLocked(ctx context.Context, agentID string) (*domain.Task, error) {
	all, err := e.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}

	currentBatch, err := e.tasks.CurrentBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve current batch: %w", err)
	}

	history := e.tracker.History(agentID)

	var lastBatch domain.BatchID
	if len(history) > 0 {
		lastBatch = history[len(history)-1].Batch

		delivered := make(map[int64]struct{}, len(history))
		for _, entry := range history {
			delivered[entry.TaskID] = struct{}{}
		}

		candidates := make([]domain.Task, 0, len(all))
		for _, task := range all {
			if task.Used || task.Batch != lastBatch {
				continue
			}
			if _, ok := delivered[task.ID]; ok {
				continue
			}
			candidates = append(candidates, task)
		}

		if len(candidates) > 0 {
			// Backlog serve: the agent keeps draining its batch without
			// flipping the used flag.
			picked := candidates[e.randIntN(len(candidates))]
			return &picked, nil
		}

		if currentBatch == lastBatch {
			// The agent has seen the whole active batch. Handing out a
			// recycled duplicate would break the no-duplicate guarantee.
			return nil, nil
		}
	}

	return e.drawGlobal(ctx, all)
}

// drawGlobal picks a random unused task and commits its used flip,
// recycling the pool first when it is exhausted.
func (e *Engine) drawGlobal(ctx context.Context, all []domain.Task) (*domain.Task, error) {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		available := make([]domain.Task, 0, len(all))
		for _, task := range all {
			if !task.Used {
				available = append(available, task)
			}
		}

		if len(available) == 0 {
			if err := e.tasks.ResetUsed(ctx); err != nil {
				return nil, fmt.Errorf("recycle task pool: %w", err)
			}
			e.metrics.poolRecycled(taskPoolLabel)

			refreshed, err := e.tasks.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("list tasks after recycle: %w", err)
			}
			if len(refreshed) == 0 {
				return nil, nil
			}
			all = refreshed
			available = refreshed
		}

		picked := available[e.randIntN(len(available))]
		err := e.tasks.MarkUsed(ctx, picked.ID)
		if errors.Is(err, domain.ErrConflict) {
			refreshed, listErr := e.tasks.List(ctx)
			if listErr != nil {
				return nil, fmt.Errorf("list tasks after conflict: %w", listErr)
			}
			all = refreshed
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("mark task used: %w", err)
		}

		picked.Used = true
		return &picked, nil
	}

	return nil, fmt.Errorf("draw task: %w", domain.ErrConflict)
}
