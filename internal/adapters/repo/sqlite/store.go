package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS isnad_tasks (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	task_url         TEXT NOT NULL,
	task_target_type TEXT NOT NULL DEFAULT '',
	batch_id         TEXT NOT NULL,
	is_used          INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tasks_target_type ON isnad_tasks(task_target_type);
CREATE INDEX IF NOT EXISTS idx_tasks_batch ON isnad_tasks(batch_id);
CREATE INDEX IF NOT EXISTS idx_tasks_used ON isnad_tasks(is_used);

CREATE TABLE IF NOT EXISTS target_accounts (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	account_name     TEXT NOT NULL UNIQUE,
	account_id       TEXT NOT NULL DEFAULT '',
	account_link     TEXT NOT NULL DEFAULT '',
	account_status   TEXT NOT NULL DEFAULT '',
	account_category TEXT NOT NULL DEFAULT '',
	account_type     TEXT NOT NULL DEFAULT '',
	publishing_level TEXT NOT NULL DEFAULT '',
	access_level     TEXT NOT NULL DEFAULT '',
	is_used          INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_accounts_type ON target_accounts(account_type);
CREATE INDEX IF NOT EXISTS idx_accounts_category ON target_accounts(account_category);
CREATE INDEX IF NOT EXISTS idx_accounts_used ON target_accounts(is_used);
`

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite item store at path. ":memory:"
// is honored for tests.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite3: %w", err)
	}

	// Single connection: sqlite serializes writers anyway, and a lone
	// connection keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Tasks() *TaskRepository {
	return &TaskRepository{db: s.db}
}

func (s *Store) Accounts() *AccountRepository {
	return &AccountRepository{db: s.db}
}
