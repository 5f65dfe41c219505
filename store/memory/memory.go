// Package memory provides an in-memory vacation.Store for tests and dev mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/vacation-tracker/vacation"
)

// =============================================================================
// MEMORY STORE - Mutex-guarded maps, same contract as store/sqlite
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	employees map[string]vacation.Employee
	balances  map[string]vacation.BalanceRecord
	requests  map[string]vacation.Request
}

func New() *Store {
	return &Store{
		employees: make(map[string]vacation.Employee),
		balances:  make(map[string]vacation.BalanceRecord),
		requests:  make(map[string]vacation.Request),
	}
}

// -----------------------------------------------------------------------------
// Employees
// -----------------------------------------------------------------------------

func (s *Store) SaveEmployee(_ context.Context, emp vacation.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[emp.ID] = emp
	return nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (*vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.employees[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]vacation.Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) ListApprovers(ctx context.Context) ([]vacation.Employee, error) {
	all, err := s.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	var result []vacation.Employee
	for _, emp := range all {
		if emp.Role == vacation.RoleApprover {
			result = append(result, emp)
		}
	}
	return result, nil
}

// -----------------------------------------------------------------------------
// Balances
// -----------------------------------------------------------------------------

func (s *Store) SaveBalance(_ context.Context, rec vacation.BalanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[rec.EmployeeID] = rec
	return nil
}

func (s *Store) GetBalance(_ context.Context, employeeID string) (*vacation.BalanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.balances[employeeID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *Store) ListBalances(_ context.Context) ([]vacation.BalanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]vacation.BalanceRecord, 0, len(s.balances))
	for _, rec := range s.balances {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, nil
}

// -----------------------------------------------------------------------------
// Requests
// -----------------------------------------------------------------------------

func (s *Store) SaveRequest(_ context.Context, req vacation.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = req
	return nil
}

func (s *Store) GetRequest(_ context.Context, id string) (*vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (s *Store) DeleteRequest(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, id)
	return nil
}

func (s *Store) ListRequests(_ context.Context) ([]vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := s.collect(func(vacation.Request) bool { return true })
	sortByStartDesc(result)
	return result, nil
}

func (s *Store) ListByEmployee(_ context.Context, employeeID string) ([]vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := s.collect(func(r vacation.Request) bool { return r.EmployeeID == employeeID })
	sortByStartDesc(result)
	return result, nil
}

func (s *Store) ListActiveByEmployee(_ context.Context, employeeID string) ([]vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := s.collect(func(r vacation.Request) bool {
		return r.EmployeeID == employeeID && r.IsActive()
	})
	sortByStartDesc(result)
	return result, nil
}

func (s *Store) ListByState(_ context.Context, state vacation.RequestState) ([]vacation.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := s.collect(func(r vacation.Request) bool { return r.State == state })
	// Approver queue order: oldest start first.
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result, nil
}

func (s *Store) collect(keep func(vacation.Request) bool) []vacation.Request {
	var result []vacation.Request
	for _, req := range s.requests {
		if keep(req) {
			result = append(result, req)
		}
	}
	return result
}

func sortByStartDesc(reqs []vacation.Request) {
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Start.After(reqs[j].Start) })
}
