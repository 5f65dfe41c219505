package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vacation-tracker/auth"
	"github.com/warp/vacation-tracker/store/memory"
	"github.com/warp/vacation-tracker/vacation"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type capturingNotifier struct {
	mu     sync.Mutex
	bodies []string
}

func (n *capturingNotifier) Send(_ context.Context, _ vacation.Employee, _, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bodies = append(n.bodies, body)
	return nil
}

func newTestService(t *testing.T) (*auth.Service, *capturingNotifier) {
	t.Helper()
	employees := memory.New()
	require.NoError(t, employees.SaveEmployee(context.Background(), vacation.Employee{
		ID:       "emp-1",
		Name:     "Eva Marin",
		Email:    "eva@example.com",
		Role:     vacation.RoleRequester,
		HireDate: vacation.NewDate(2016, time.October, 1),
	}))
	notifier := &capturingNotifier{}
	svc := auth.NewService(auth.NewMemoryStore(), employees, notifier, []byte("test-secret"), nil)
	return svc, notifier
}

// =============================================================================
// PASSWORD LIFECYCLE
// =============================================================================

func TestService_SetInitialPasswordAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetInitialPassword(ctx, "emp-1", "hunter2!"))

	token, err := svc.Login(ctx, "emp-1", "hunter2!")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestService_SetInitialPassword_AlreadySet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetInitialPassword(ctx, "emp-1", "hunter2!"))

	err := svc.SetInitialPassword(ctx, "emp-1", "other")
	assert.ErrorIs(t, err, auth.ErrPasswordAlreadySet)
}

func TestService_SetInitialPassword_UnknownEmployee(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.SetInitialPassword(context.Background(), "ghost", "pw")
	assert.ErrorIs(t, err, vacation.ErrNotFound)
}

func TestService_Login_WrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetInitialPassword(ctx, "emp-1", "hunter2!"))

	_, err := svc.Login(ctx, "emp-1", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestService_Login_PasswordNotSet(t *testing.T) {
	// First-login flow: the employee exists but never set a password.
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "emp-1", "anything")
	assert.ErrorIs(t, err, auth.ErrPasswordNotSet)
}

func TestService_Login_UnknownEmployee(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "ghost", "anything")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestService_ChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetInitialPassword(ctx, "emp-1", "old-pw"))

	require.NoError(t, svc.ChangePassword(ctx, "emp-1", "old-pw", "new-pw"))

	_, err := svc.Login(ctx, "emp-1", "old-pw")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "emp-1", "new-pw")
	assert.NoError(t, err)
}

func TestService_ChangePassword_WrongCurrent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetInitialPassword(ctx, "emp-1", "old-pw"))

	err := svc.ChangePassword(ctx, "emp-1", "not-it", "new-pw")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// Old password still works.
	_, err = svc.Login(ctx, "emp-1", "old-pw")
	assert.NoError(t, err)
}

// =============================================================================
// RECOVERY
// =============================================================================

func TestService_Recover(t *testing.T) {
	// GIVEN: an employee with a known password
	// WHEN: recovering
	// THEN: the old password stops working and the mailed temporary one works

	svc, notifier := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetInitialPassword(ctx, "emp-1", "old-pw"))

	require.NoError(t, svc.Recover(ctx, "emp-1"))

	_, err := svc.Login(ctx, "emp-1", "old-pw")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.Len(t, notifier.bodies, 1)
	temp := extractTempPassword(t, notifier.bodies[0])
	_, err = svc.Login(ctx, "emp-1", temp)
	assert.NoError(t, err)
}

func TestService_Recover_UnknownEmployee(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Recover(context.Background(), "ghost")
	assert.ErrorIs(t, err, vacation.ErrNotFound)
}

func extractTempPassword(t *testing.T, body string) string {
	t.Helper()
	const marker = "temporary password is: "
	idx := strings.Index(body, marker)
	require.GreaterOrEqual(t, idx, 0, "mail body carries the temporary password")
	rest := body[idx+len(marker):]
	return strings.Fields(rest)[0]
}

// =============================================================================
// SESSION TOKENS
// =============================================================================

func TestService_TokenRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetInitialPassword(ctx, "emp-1", "hunter2!"))

	token, err := svc.Login(ctx, "emp-1", "hunter2!")
	require.NoError(t, err)

	actor, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", actor.EmployeeID)
	assert.Equal(t, vacation.RoleRequester, actor.Role)
}

func TestService_ParseToken_Garbage(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ParseToken("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestService_ParseToken_WrongSecret(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetInitialPassword(ctx, "emp-1", "hunter2!"))
	token, err := svc.Login(ctx, "emp-1", "hunter2!")
	require.NoError(t, err)

	other := auth.NewService(auth.NewMemoryStore(), memory.New(), nil, []byte("different-secret"), nil)
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
