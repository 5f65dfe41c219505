package auth

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// =============================================================================
// SQLITE STORE - Own database file, apart from the workflow store
// =============================================================================

// SQLiteStore keeps credentials in their own SQLite database. The file is
// intentionally separate from the vacation store so backups and access
// control can treat identity data differently.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open credential database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS credentials (
		employee_id TEXT PRIMARY KEY,
		password_hash BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate credential database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveCredential(ctx context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (employee_id, password_hash, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			password_hash = excluded.password_hash,
			updated_at = excluded.updated_at
	`, cred.EmployeeID, cred.PasswordHash, cred.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCredential(ctx context.Context, employeeID string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cred Credential
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT employee_id, password_hash, updated_at
		FROM credentials WHERE employee_id = ?
	`, employeeID).Scan(&cred.EmployeeID, &cred.PasswordHash, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	cred.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &cred, nil
}
