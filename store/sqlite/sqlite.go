/*
Package sqlite provides the SQLite-backed implementation of vacation.Store.

PURPOSE:
  Implements EmployeeStore, BalanceStore, and RequestStore using SQLite.
  The same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  employees: Named users with role and hire date
  balances:  One row per employee (assigned/used/anniversary)
  requests:  Vacation requests with lifecycle state

  Decimal balances are stored as TEXT and parsed with shopspring/decimal,
  never as REAL - float storage is where day-balance bugs come from.

ORDERING CONTRACT:
  requests queries order by start_date DESC (report order) except
  ListByState, which orders ASC (approver queue, oldest first).

CONCURRENCY:
  Uses sync.RWMutex for thread-safety in-process. The workflow adds
  per-employee serialization on top.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/vacations.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). Use ":memory:" for tests.

SEE ALSO:
  - vacation/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/vacation-tracker/vacation"
)

// Store implements vacation.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS balances (
		employee_id TEXT PRIMARY KEY REFERENCES employees(id),
		assigned TEXT NOT NULL,
		used TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		last_anniversary TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days INTEGER NOT NULL,
		comment TEXT,
		state TEXT NOT NULL,
		resolution TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Overlap check: one employee's active requests
	CREATE INDEX IF NOT EXISTS idx_requests_employee_state
		ON requests(employee_id, state);

	-- Report/listing order (hot path)
	CREATE INDEX IF NOT EXISTS idx_requests_start_date
		ON requests(start_date DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES (vacation.EmployeeStore)
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp vacation.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := emp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, role, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			hire_date = excluded.hire_date
	`, emp.ID, emp.Name, emp.Email, emp.Role, emp.HireDate.String(), createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, hire_date, created_at
		FROM employees WHERE id = ?
	`, id)

	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployees(ctx, `
		SELECT id, name, email, role, hire_date, created_at
		FROM employees ORDER BY name ASC
	`)
}

func (s *Store) ListApprovers(ctx context.Context) ([]vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployees(ctx, `
		SELECT id, name, email, role, hire_date, created_at
		FROM employees WHERE role = ? ORDER BY name ASC
	`, vacation.RoleApprover)
}

func (s *Store) queryEmployees(ctx context.Context, query string, args ...any) ([]vacation.Employee, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var result []vacation.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *emp)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*vacation.Employee, error) {
	var emp vacation.Employee
	var role, hireDate, createdAt string
	if err := row.Scan(&emp.ID, &emp.Name, &emp.Email, &role, &hireDate, &createdAt); err != nil {
		return nil, err
	}
	emp.Role = vacation.Role(role)

	var err error
	if emp.HireDate, err = vacation.ParseDate(hireDate); err != nil {
		return nil, fmt.Errorf("bad hire_date %q: %w", hireDate, err)
	}
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

// =============================================================================
// BALANCES (vacation.BalanceStore)
// =============================================================================

func (s *Store) SaveBalance(ctx context.Context, rec vacation.BalanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO balances (employee_id, assigned, used, hire_date, last_anniversary)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			assigned = excluded.assigned,
			used = excluded.used,
			hire_date = excluded.hire_date,
			last_anniversary = excluded.last_anniversary
	`, rec.EmployeeID, rec.Assigned.String(), rec.Used.String(),
		rec.HireDate.String(), rec.LastAnniversary.String())
	if err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	return nil
}

func (s *Store) GetBalance(ctx context.Context, employeeID string) (*vacation.BalanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT employee_id, assigned, used, hire_date, last_anniversary
		FROM balances WHERE employee_id = ?
	`, employeeID)

	rec, err := scanBalance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return rec, nil
}

func (s *Store) ListBalances(ctx context.Context) ([]vacation.BalanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, assigned, used, hire_date, last_anniversary
		FROM balances ORDER BY employee_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	var result []vacation.BalanceRecord
	for rows.Next() {
		rec, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

func scanBalance(row rowScanner) (*vacation.BalanceRecord, error) {
	var rec vacation.BalanceRecord
	var assigned, used, hireDate, lastAnniversary string
	if err := row.Scan(&rec.EmployeeID, &assigned, &used, &hireDate, &lastAnniversary); err != nil {
		return nil, err
	}

	var err error
	if rec.Assigned, err = decimal.NewFromString(assigned); err != nil {
		return nil, fmt.Errorf("bad assigned %q: %w", assigned, err)
	}
	if rec.Used, err = decimal.NewFromString(used); err != nil {
		return nil, fmt.Errorf("bad used %q: %w", used, err)
	}
	if rec.HireDate, err = vacation.ParseDate(hireDate); err != nil {
		return nil, fmt.Errorf("bad hire_date %q: %w", hireDate, err)
	}
	if rec.LastAnniversary, err = vacation.ParseDate(lastAnniversary); err != nil {
		return nil, fmt.Errorf("bad last_anniversary %q: %w", lastAnniversary, err)
	}
	return &rec, nil
}

// =============================================================================
// REQUESTS (vacation.RequestStore)
// =============================================================================

const requestColumns = `id, employee_id, start_date, end_date, days, comment, state, resolution, created_at, updated_at`

func (s *Store) SaveRequest(ctx context.Context, req vacation.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			resolution = excluded.resolution,
			updated_at = excluded.updated_at
	`, req.ID, req.EmployeeID, req.Start.String(), req.End.String(), req.Days,
		req.Comment, req.State, req.Resolution,
		req.CreatedAt.UTC().Format(time.RFC3339), req.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (*vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)

	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	return nil
}

func (s *Store) ListRequests(ctx context.Context) ([]vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM requests ORDER BY start_date DESC, created_at DESC`)
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID string) ([]vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE employee_id = ? ORDER BY start_date DESC, created_at DESC`,
		employeeID)
}

func (s *Store) ListActiveByEmployee(ctx context.Context, employeeID string) ([]vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM requests
		 WHERE employee_id = ? AND state IN (?, ?)
		 ORDER BY start_date DESC`,
		employeeID, vacation.StatePending, vacation.StateApproved)
}

func (s *Store) ListByState(ctx context.Context, state vacation.RequestState) ([]vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE state = ? ORDER BY start_date ASC`,
		state)
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]vacation.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var result []vacation.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func scanRequest(row rowScanner) (*vacation.Request, error) {
	var req vacation.Request
	var start, end, state, createdAt, updatedAt string
	var comment, resolution sql.NullString
	if err := row.Scan(&req.ID, &req.EmployeeID, &start, &end, &req.Days,
		&comment, &state, &resolution, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	req.Comment = comment.String
	req.Resolution = resolution.String
	req.State = vacation.RequestState(state)

	var err error
	if req.Start, err = vacation.ParseDate(start); err != nil {
		return nil, fmt.Errorf("bad start_date %q: %w", start, err)
	}
	if req.End, err = vacation.ParseDate(end); err != nil {
		return nil, fmt.Errorf("bad end_date %q: %w", end, err)
	}
	req.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	req.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &req, nil
}
