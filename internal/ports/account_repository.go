package ports

import (
	"context"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

type AccountRepository interface {
	// PickUnused returns up to limit unused accounts ordered ascending by
	// (publishing level, access level). An empty accountType matches the
	// whole pool.
	PickUnused(ctx context.Context, accountType string, limit int) ([]domain.TargetAccount, error)
	// MarkUsed flips an account to used. Returns domain.ErrConflict when the
	// row was already flipped by a concurrent writer.
	MarkUsed(ctx context.Context, id int64) error
	// ResetUsed returns accounts of the given type to the unused state; an
	// empty accountType resets the whole pool.
	ResetUsed(ctx context.Context, accountType string) error
	// Upsert inserts the row or overwrites the existing record with the
	// same name field by field.
	Upsert(ctx context.Context, row domain.AccountRow) error
	GetByName(ctx context.Context, name string) (domain.TargetAccount, error)
	List(ctx context.Context) ([]domain.TargetAccount, error)
}
