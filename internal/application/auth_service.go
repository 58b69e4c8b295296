package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/event-checkin/internal/persistence"
)

// StaffStore exposes back-office account lookups.
type StaffStore interface {
	CreateStaff(ctx context.Context, staff persistence.Staff) error
	GetStaffByEmail(ctx context.Context, email string) (persistence.Staff, error)
}

// SessionStore captures the persistence interactions for issued sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error)
	GetSession(ctx context.Context, token string) (persistence.Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService authenticates staff accounts and manages their sessions.
type AuthService struct {
	staff          StaffStore
	sessions       SessionStore
	verifyPassword PasswordVerifier
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService wires dependencies for staff authentication.
func NewAuthService(staff StaffStore, sessions SessionStore, verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		staff:          staff,
		sessions:       sessions,
		verifyPassword: verify,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

// Authenticate validates staff credentials and issues a session token.
// Unknown accounts and wrong passwords are indistinguishable to callers.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("AuthService is nil")
	}
	email = strings.TrimSpace(strings.ToLower(email))
	logger := serviceLogger(ctx, s.logger, "auth", "authenticate", "email", email)

	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	account, err := s.staff.GetStaffByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.Warn("authentication failed", "error_kind", ErrorKind(ErrInvalidCredentials))
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("failed to load staff account: %w", err)
	}

	if err := s.verifyPassword(account.PasswordHash, password); err != nil {
		logger.Warn("authentication failed", "error_kind", ErrorKind(ErrInvalidCredentials))
		return Session{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return Session{}, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	session := persistence.Session{
		ID:        s.tokenGenerator(),
		StaffID:   account.ID,
		Token:     s.tokenGenerator(),
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if session.Token == "" {
		session.Token = session.ID
	}

	persisted, err := s.sessions.CreateSession(ctx, session)
	if err != nil {
		return Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	logger.Info("staff authenticated", "staff_id", account.ID, "session_id", persisted.ID)
	return Session{Token: persisted.Token, StaffID: persisted.StaffID, ExpiresAt: persisted.ExpiresAt}, nil
}

// ValidateSession resolves a presented token to its staff identity,
// rejecting expired and revoked sessions.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("AuthService is nil")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrInvalidCredentials
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	now := s.now().UTC()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		return Session{}, ErrSessionRevoked
	}
	if !session.ExpiresAt.After(now) {
		return Session{}, ErrSessionExpired
	}

	return Session{Token: session.Token, StaffID: session.StaffID, ExpiresAt: session.ExpiresAt}, nil
}

// RevokeSession invalidates a session token. Revoking an unknown token is
// reported as an invalid credential rather than a not-found.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidCredentials
	}
	logger := serviceLogger(ctx, s.logger, "auth", "revoke_session")

	if _, err := s.sessions.RevokeSession(ctx, token, s.now().UTC()); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrInvalidCredentials
		}
		logger.Error("failed to revoke session", "error", err)
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	logger.Info("session revoked")
	return nil
}

// EnsureStaff creates the named account when it does not exist yet. It runs
// at startup so a configured bootstrap account is always available.
func (s *AuthService) EnsureStaff(ctx context.Context, email, password, displayName string, idGenerator func() string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	logger := serviceLogger(ctx, s.logger, "auth", "ensure_staff", "email", email)

	if _, err := s.staff.GetStaffByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("failed to look up staff account: %w", err)
	}

	hash, err := CreatePasswordHash(password, DefaultArgon2idParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	account := persistence.Staff{
		ID:           idGenerator(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.staff.CreateStaff(ctx, account); err != nil {
		// A concurrent bootstrap may have won the race; the account exists
		// either way.
		if errors.Is(err, persistence.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("failed to create staff account: %w", err)
	}

	logger.Info("staff account created", "staff_id", account.ID)
	return nil
}
