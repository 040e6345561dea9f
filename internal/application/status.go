package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

type TypeStatus struct {
	Type  string
	Total int
	Used  int
}

type PoolStatus struct {
	Batch     domain.BatchID
	TaskTotal int
	TaskUsed  int
	Accounts  []TypeStatus
}

// PoolStatus summarizes both pools for the status renderer.
func (s *IngestService) PoolStatus(ctx context.Context) (PoolStatus, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return PoolStatus{}, fmt.Errorf("list tasks: %w", err)
	}

	status := PoolStatus{TaskTotal: len(tasks)}
	for _, task := range tasks {
		status.Batch = task.Batch
		if task.Used {
			status.TaskUsed++
		}
	}

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return PoolStatus{}, fmt.Errorf("list accounts: %w", err)
	}

	byType := map[string]*TypeStatus{}
	for _, account := range accounts {
		entry, ok := byType[account.Type]
		if !ok {
			entry = &TypeStatus{Type: account.Type}
			byType[account.Type] = entry
		}
		entry.Total++
		if account.Used {
			entry.Used++
		}
	}

	status.Accounts = make([]TypeStatus, 0, len(byType))
	for _, entry := range byType {
		status.Accounts = append(status.Accounts, *entry)
	}
	sort.Slice(status.Accounts, func(i, j int) bool {
		return status.Accounts[i].Type < status.Accounts[j].Type
	})

	return status, nil
}
