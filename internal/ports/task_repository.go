package ports

import (
	"context"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

type TaskRepository interface {
	// List returns every stored task, used or not.
	List(ctx context.Context) ([]domain.Task, error)
	// CurrentBatch resolves the batch id of the stored rows, or "" when the
	// pool is empty. The store holds at most one batch at a time.
	CurrentBatch(ctx context.Context) (domain.BatchID, error)
	// MarkUsed flips a task to used. Returns domain.ErrConflict when the row
	// was already flipped by a concurrent writer.
	MarkUsed(ctx context.Context, id int64) error
	// ResetUsed returns every task to the unused state.
	ResetUsed(ctx context.Context) error
	// ReplaceBatch atomically swaps the whole pool for the given rows.
	ReplaceBatch(ctx context.Context, batch domain.BatchID, rows []domain.TaskRow) error
}
