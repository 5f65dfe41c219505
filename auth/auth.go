/*
Package auth is the credential bounded context for the vacation tracker.

PURPOSE:
  Password and session handling, deliberately kept apart from the vacation
  workflow: credentials live in their own store and the core never sees
  them. The API layer turns a session token into a vacation.Actor and the
  core trusts that identity.

PASSWORD LIFECYCLE:
  - Created lazily: an employee exists without a credential until their
    first SetInitialPassword
  - ChangePassword verifies the current password first
  - Recover replaces the credential with a random temporary password and
    mails it to the employee (best-effort, via the Notifier)

  Hashes are bcrypt; nothing stores or logs the cleartext.

SESSIONS:
  Login issues an HS256 JWT carrying the employee id (subject) and role.
  ParseToken validates signature and expiry and returns the Actor.

SEE ALSO:
  - auth/store.go: Credential persistence
  - api/middleware.go: Bearer-token extraction
*/
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/warp/vacation-tracker/vacation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for a wrong password or unknown
	// employee. Deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPasswordNotSet signals the first-login flow: the employee exists
	// but has never set a password.
	ErrPasswordNotSet = errors.New("password not set")

	// ErrPasswordAlreadySet is returned when SetInitialPassword is called
	// for an employee who already has a credential.
	ErrPasswordAlreadySet = errors.New("password already set")

	// ErrInvalidToken is returned for malformed, forged, or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Service handles credentials and session tokens.
type Service struct {
	creds     CredentialStore
	employees vacation.EmployeeStore
	notifier  vacation.Notifier
	secret    []byte
	tokenTTL  time.Duration
	log       *zap.Logger
}

func NewService(creds CredentialStore, employees vacation.EmployeeStore, notifier vacation.Notifier, secret []byte, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		creds:     creds,
		employees: employees,
		notifier:  notifier,
		secret:    secret,
		tokenTTL:  12 * time.Hour,
		log:       log,
	}
}

// =============================================================================
// PASSWORDS
// =============================================================================

// Login verifies the password and returns a session token.
func (s *Service) Login(ctx context.Context, employeeID, password string) (string, error) {
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}
	if emp == nil {
		return "", ErrInvalidCredentials
	}

	cred, err := s.creds.GetCredential(ctx, employeeID)
	if err != nil {
		return "", err
	}
	if cred == nil {
		return "", ErrPasswordNotSet
	}
	if bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(*emp)
}

// SetInitialPassword creates the credential on first use. Fails when one
// already exists; use ChangePassword after that.
func (s *Service) SetInitialPassword(ctx context.Context, employeeID, password string) error {
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return fmt.Errorf("employee %s: %w", employeeID, vacation.ErrNotFound)
	}

	existing, err := s.creds.GetCredential(ctx, employeeID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrPasswordAlreadySet
	}
	return s.storePassword(ctx, employeeID, password)
}

// ChangePassword replaces the credential after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, employeeID, current, next string) error {
	cred, err := s.creds.GetCredential(ctx, employeeID)
	if err != nil {
		return err
	}
	if cred == nil {
		return ErrPasswordNotSet
	}
	if bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	return s.storePassword(ctx, employeeID, next)
}

// Recover replaces the credential with a random temporary password and
// mails it to the employee. Mail failure does not undo the reset - the old
// password is already gone, which is the point of recovery.
func (s *Service) Recover(ctx context.Context, employeeID string) error {
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return fmt.Errorf("employee %s: %w", employeeID, vacation.ErrNotFound)
	}

	temp, err := randomPassword()
	if err != nil {
		return err
	}
	if err := s.storePassword(ctx, employeeID, temp); err != nil {
		return err
	}

	if s.notifier != nil {
		body := fmt.Sprintf("Hello %s,\n\nYour temporary password is: %s\nLog in and change it right away.", emp.Name, temp)
		if err := s.notifier.Send(ctx, *emp, "Password recovery", body); err != nil {
			s.log.Warn("recovery mail failed",
				zap.String("employee_id", employeeID), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) storePassword(ctx context.Context, employeeID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.creds.SaveCredential(ctx, Credential{
		EmployeeID:   employeeID,
		PasswordHash: hash,
		UpdatedAt:    time.Now().UTC(),
	})
}

func randomPassword() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// =============================================================================
// SESSION TOKENS
// =============================================================================

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(emp vacation.Employee) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(emp.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   emp.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	return token.SignedString(s.secret)
}

// ParseToken validates a session token and returns the acting identity.
func (s *Service) ParseToken(tokenString string) (vacation.Actor, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return vacation.Actor{}, ErrInvalidToken
	}
	return vacation.Actor{EmployeeID: c.Subject, Role: vacation.Role(c.Role)}, nil
}
