package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
	"github.com/isnadmansour/IsnadTasks/internal/ports"
)

type TaskRepository struct {
	db *sql.DB
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, task_url, task_target_type, batch_id, is_used FROM isnad_tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var task domain.Task
		var batch string
		if err := rows.Scan(&task.ID, &task.URL, &task.TargetType, &batch, &task.Used); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		task.Batch = domain.BatchID(batch)
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func (r *TaskRepository) CurrentBatch(ctx context.Context) (domain.BatchID, error) {
	var batch string
	err := r.db.QueryRowContext(ctx,
		`SELECT DISTINCT batch_id FROM isnad_tasks LIMIT 1`).Scan(&batch)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve current batch: %w", err)
	}

	return domain.BatchID(batch), nil
}

func (r *TaskRepository) MarkUsed(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE isnad_tasks SET is_used = 1 WHERE id = ? AND is_used = 0`, id)
	if err != nil {
		return fmt.Errorf("mark task used: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark task used rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrConflict
	}

	return nil
}

func (r *TaskRepository) ResetUsed(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE isnad_tasks SET is_used = 0`); err != nil {
		return fmt.Errorf("reset tasks: %w", err)
	}
	return nil
}

func (r *TaskRepository) ReplaceBatch(ctx context.Context, batch domain.BatchID, taskRows []domain.TaskRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM isnad_tasks`); err != nil {
		return fmt.Errorf("clear task pool: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO isnad_tasks (task_url, task_target_type, batch_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare task insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range taskRows {
		if _, err := stmt.ExecContext(ctx, row.URL, row.TargetType, string(batch)); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace batch: %w", err)
	}

	return nil
}
