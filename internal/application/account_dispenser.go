package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

// NextAccounts dispenses up to the quota of unused, highest-priority
// accounts matching the task's target type. Dispensing is destructive:
// every returned account has its used flag committed before return.
func (e *Engine) NextAccounts(ctx context.Context, task domain.Task) ([]domain.TargetAccount, error) {
	return e.dispenseAccounts(ctx, task.TargetType)
}

// RepeatAccounts re-runs the account dispense for the agent's most recent
// task without re-supplying it. Returns domain.ErrNoActiveTask when the
// agent has not received a task yet.
func (e *Engine) RepeatAccounts(ctx context.Context, agentID string) ([]domain.TargetAccount, error) {
	targetType, ok := e.sessions.Get(agentID)
	if !ok {
		return nil, domain.ErrNoActiveTask
	}

	return e.dispenseAccounts(ctx, targetType)
}

func (e *Engine) dispenseAccounts(ctx context.Context, accountType string) ([]domain.TargetAccount, error) {
	unlock := e.locks.lock(accountLockKey(accountType))
	defer unlock()

	picked, err := e.accounts.PickUnused(ctx, accountType, e.quota)
	if err != nil {
		return nil, fmt.Errorf("pick unused accounts: %w", err)
	}

	if len(picked) == 0 {
		// Exhausted subset: recycle it inside the same critical section so
		// a concurrent observer cannot double-reset and double-serve.
		if err := e.accounts.ResetUsed(ctx, accountType); err != nil {
			return nil, fmt.Errorf("recycle account pool: %w", err)
		}
		e.metrics.poolRecycled(accountPoolLabel)

		picked, err = e.accounts.PickUnused(ctx, accountType, e.quota)
		if err != nil {
			return nil, fmt.Errorf("pick unused accounts after recycle: %w", err)
		}
	}

	dispensed := make([]domain.TargetAccount, 0, len(picked))
	for _, account := range picked {
		err := e.accounts.MarkUsed(ctx, account.ID)
		if errors.Is(err, domain.ErrConflict) {
			// A concurrent writer owns this row; its slot is spent either way.
			continue
		}
		if err != nil {
			return dispensed, fmt.Errorf("mark account used: %w", err)
		}

		account.Used = true
		dispensed = append(dispensed, account)
		e.metrics.accountDispensed()
	}

	return dispensed, nil
}
