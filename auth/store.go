package auth

import (
	"context"
	"sync"
	"time"
)

// Credential is one employee's stored password hash. Created lazily on
// first password set; replaced on change or recovery.
type Credential struct {
	EmployeeID   string
	PasswordHash []byte
	UpdatedAt    time.Time
}

// CredentialStore persists credentials. Kept separate from vacation.Store
// so identity data never mixes with workflow data.
type CredentialStore interface {
	// SaveCredential inserts or replaces the employee's credential.
	SaveCredential(ctx context.Context, cred Credential) error

	// GetCredential returns (nil, nil) when the employee has no credential.
	GetCredential(ctx context.Context, employeeID string) (*Credential, error)
}

// =============================================================================
// MEMORY STORE - For tests and dev mode
// =============================================================================

type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]Credential)}
}

func (m *MemoryStore) SaveCredential(_ context.Context, cred Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[cred.EmployeeID] = cred
	return nil
}

func (m *MemoryStore) GetCredential(_ context.Context, employeeID string) (*Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cred, ok := m.creds[employeeID]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}
