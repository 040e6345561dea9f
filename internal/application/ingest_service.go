package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
	"github.com/isnadmansour/IsnadTasks/internal/ports"
)

const batchIDLength = 6

// IngestService is the boundary the upload surfaces call with validated
// rows. It never parses raw files.
type IngestService struct {
	tasks      ports.TaskRepository
	accounts   ports.AccountRepository
	metrics    *Metrics
	newBatchID func() domain.BatchID
}

func NewIngestService(tasks ports.TaskRepository, accounts ports.AccountRepository, metrics *Metrics) *IngestService {
	return &IngestService{
		tasks:      tasks,
		accounts:   accounts,
		metrics:    metrics,
		newBatchID: mintBatchID,
	}
}

// ReplaceTaskBatch swaps the entire task pool for the given rows under a
// fresh batch id and returns the id with the number of rows stored.
func (s *IngestService) ReplaceTaskBatch(ctx context.Context, rows []domain.TaskRow) (domain.BatchID, int, error) {
	accepted := make([]domain.TaskRow, 0, len(rows))
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			continue
		}
		accepted = append(accepted, row)
	}

	batch := s.newBatchID()
	if err := s.tasks.ReplaceBatch(ctx, batch, accepted); err != nil {
		return "", 0, fmt.Errorf("replace task batch: %w", err)
	}
	s.metrics.rowsIngested("tasks", len(accepted))

	return batch, len(accepted), nil
}

// UpsertTargetAccounts merges the rows into the cumulative account pool,
// overwriting existing records by name. Returns the number of rows applied.
func (s *IngestService) UpsertTargetAccounts(ctx context.Context, rows []domain.AccountRow) (int, error) {
	applied := 0
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			continue
		}
		if err := s.accounts.Upsert(ctx, row); err != nil {
			return applied, fmt.Errorf("upsert account %q: %w", row.Name, err)
		}
		applied++
	}
	s.metrics.rowsIngested("accounts", applied)

	return applied, nil
}

func (s *IngestService) AccountDetails(ctx context.Context, name string) (domain.TargetAccount, error) {
	account, err := s.accounts.GetByName(ctx, name)
	if err != nil {
		return domain.TargetAccount{}, fmt.Errorf("get account by name: %w", err)
	}

	return account, nil
}

func mintBatchID() domain.BatchID {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return domain.BatchID(raw[:batchIDLength])
}
