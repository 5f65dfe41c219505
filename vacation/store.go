/*
store.go - Persistence interfaces for the vacation core

PURPOSE:
  Defines the interface between the domain logic and the database. The
  workflow, ledger, and checker only see these interfaces; implementations
  live in store/sqlite (production) and store/memory (tests/dev).

KEY INTERFACES:
  EmployeeStore: Employee records and approver lookup
  BalanceStore:  One BalanceRecord per employee
  RequestStore:  Vacation requests, including the hard delete used by the
                 workflow's Delete and Cancel operations
  Store:         All of the above, as wired into the Workflow

LOOKUP CONVENTION:
  Get* methods return (nil, nil) when the record does not exist. Callers
  translate that into vacation.ErrNotFound; stores never import the error
  taxonomy for lookups.

ORDERING:
  ListRequests returns start-date descending - the order the reporter and
  the request list in the UI consume. ListActiveByEmployee feeds the overlap
  check and therefore excludes rejected requests.

SEE ALSO:
  - store/sqlite/sqlite.go: Production implementation
  - store/memory/memory.go: In-memory implementation
*/
package vacation

import "context"

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeStore interface {
	// SaveEmployee inserts or updates an employee record.
	SaveEmployee(ctx context.Context, emp Employee) error

	// GetEmployee returns (nil, nil) when the id is unknown.
	GetEmployee(ctx context.Context, id string) (*Employee, error)

	// ListEmployees returns all employees ordered by name.
	ListEmployees(ctx context.Context) ([]Employee, error)

	// ListApprovers returns the employees holding the approver role.
	ListApprovers(ctx context.Context) ([]Employee, error)
}

// =============================================================================
// BALANCES
// =============================================================================

type BalanceStore interface {
	// SaveBalance inserts or updates the employee's balance record.
	SaveBalance(ctx context.Context, rec BalanceRecord) error

	// GetBalance returns (nil, nil) when no record exists for the employee.
	GetBalance(ctx context.Context, employeeID string) (*BalanceRecord, error)

	// ListBalances returns all balance records ordered by employee id.
	ListBalances(ctx context.Context) ([]BalanceRecord, error)
}

// =============================================================================
// REQUESTS
// =============================================================================

type RequestStore interface {
	// SaveRequest inserts or updates a request.
	SaveRequest(ctx context.Context, req Request) error

	// GetRequest returns (nil, nil) when the id is unknown.
	GetRequest(ctx context.Context, id string) (*Request, error)

	// DeleteRequest removes a request permanently. Deleting an unknown id is
	// not an error; the workflow checks existence first.
	DeleteRequest(ctx context.Context, id string) error

	// ListRequests returns all requests ordered by start date descending.
	ListRequests(ctx context.Context) ([]Request, error)

	// ListByEmployee returns one employee's requests, start date descending.
	ListByEmployee(ctx context.Context, employeeID string) ([]Request, error)

	// ListActiveByEmployee returns the employee's pending and approved
	// requests. This is the conflict set for the overlap check.
	ListActiveByEmployee(ctx context.Context, employeeID string) ([]Request, error)

	// ListByState returns all requests in the given state, start date
	// ascending (oldest pending first, the approver queue order).
	ListByState(ctx context.Context, state RequestState) ([]Request, error)
}

// Store is the full persistence surface the workflow depends on.
type Store interface {
	EmployeeStore
	BalanceStore
	RequestStore
}
