package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
	"github.com/isnadmansour/IsnadTasks/internal/ports"
)

const accountColumns = `id, account_name, account_id, account_link, account_status,
	account_category, account_type, publishing_level, access_level, is_used`

type AccountRepository struct {
	db *sql.DB
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) PickUnused(ctx context.Context, accountType string, limit int) ([]domain.TargetAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM target_accounts WHERE is_used = 0`
	args := []any{}
	if accountType != "" {
		query += ` AND account_type = ?`
		args = append(args, accountType)
	}
	query += ` ORDER BY publishing_level ASC, access_level ASC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pick unused accounts: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

func (r *AccountRepository) MarkUsed(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE target_accounts SET is_used = 1 WHERE id = ? AND is_used = 0`, id)
	if err != nil {
		return fmt.Errorf("mark account used: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark account used rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrConflict
	}

	return nil
}

func (r *AccountRepository) ResetUsed(ctx context.Context, accountType string) error {
	query := `UPDATE target_accounts SET is_used = 0`
	args := []any{}
	if accountType != "" {
		query += ` WHERE account_type = ?`
		args = append(args, accountType)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reset accounts: %w", err)
	}

	return nil
}

func (r *AccountRepository) Upsert(ctx context.Context, row domain.AccountRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO target_accounts
			(account_name, account_id, account_link, account_status,
			 account_category, account_type, publishing_level, access_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_name) DO UPDATE SET
			account_id = excluded.account_id,
			account_link = excluded.account_link,
			account_status = excluded.account_status,
			account_category = excluded.account_category,
			account_type = excluded.account_type,
			publishing_level = excluded.publishing_level,
			access_level = excluded.access_level`,
		row.Name, row.AccountID, row.Link, row.Status,
		row.Category, row.Type, row.PublishingLevel, row.AccessLevel)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}

	return nil
}

func (r *AccountRepository) GetByName(ctx context.Context, name string) (domain.TargetAccount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM target_accounts WHERE account_name = ?`,
		strings.TrimSpace(name))

	account, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TargetAccount{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.TargetAccount{}, fmt.Errorf("get account by name: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.TargetAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM target_accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

func scanAccounts(rows *sql.Rows) ([]domain.TargetAccount, error) {
	var accounts []domain.TargetAccount
	for rows.Next() {
		account, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(scan func(...any) error) (domain.TargetAccount, error) {
	var account domain.TargetAccount
	err := scan(&account.ID, &account.Name, &account.AccountID, &account.Link,
		&account.Status, &account.Category, &account.Type,
		&account.PublishingLevel, &account.AccessLevel, &account.Used)
	return account, err
}
