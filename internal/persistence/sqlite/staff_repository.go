package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/event-checkin/internal/persistence"
)

// StaffRepository implements persistence.StaffRepository and
// persistence.SessionRepository using SQLite.
type StaffRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewStaffRepository creates a new SQLite staff repository.
func NewStaffRepository(pool *ConnectionPool) *StaffRepository {
	return &StaffRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateStaff inserts a new staff account.
func (r *StaffRepository) CreateStaff(ctx context.Context, staff persistence.Staff) error {
	if staff.ID == "" || staff.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	email := normalizeEmail(staff.Email)
	if email == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	query := `
		INSERT INTO staff (id, email, display_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		staff.ID,
		email,
		staff.DisplayName,
		staff.PasswordHash,
		staff.CreatedAt.Format(time.RFC3339),
		staff.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if containsAny(err.Error(), []string{"UNIQUE constraint failed"}) {
			return persistence.ErrDuplicate
		}
		return r.mapper.MapError(err)
	}
	return nil
}

// GetStaffByEmail retrieves a staff account by email address.
func (r *StaffRepository) GetStaffByEmail(ctx context.Context, email string) (persistence.Staff, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.Staff{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, email, display_name, password_hash, created_at, updated_at
		FROM staff
		WHERE email = ?
	`

	var staff persistence.Staff
	var createdAtStr, updatedAtStr string

	err := r.helper.QueryRow(ctx, query, normalized).Scan(
		&staff.ID,
		&staff.Email,
		&staff.DisplayName,
		&staff.PasswordHash,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Staff{}, persistence.ErrNotFound
		}
		return persistence.Staff{}, r.mapper.MapError(err)
	}

	if staff.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Staff{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if staff.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Staff{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return staff, nil
}

// CreateSession stores a new session token for a staff account.
func (r *StaffRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.StaffID == "" || strings.TrimSpace(session.Token) == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	session.Token = strings.TrimSpace(session.Token)
	session.CreatedAt = time.Now().UTC()
	session.ExpiresAt = session.ExpiresAt.UTC()

	query := `
		INSERT INTO sessions (id, staff_id, token, expires_at, created_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		session.ID,
		session.StaffID,
		session.Token,
		session.ExpiresAt.Format(time.RFC3339),
		session.CreatedAt.Format(time.RFC3339),
		formatTimePtr(session.RevokedAt),
	)
	if err != nil {
		if containsAny(err.Error(), []string{"UNIQUE constraint failed"}) {
			return persistence.Session{}, persistence.ErrDuplicate
		}
		if containsAny(err.Error(), []string{"FOREIGN KEY constraint failed"}) {
			return persistence.Session{}, persistence.ErrForeignKeyViolation
		}
		return persistence.Session{}, r.mapper.MapError(err)
	}

	return session, nil
}

// GetSession retrieves a session by its token value.
func (r *StaffRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	normalized := strings.TrimSpace(token)
	if normalized == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, staff_id, token, expires_at, created_at, revoked_at
		FROM sessions
		WHERE token = ?
	`

	var session persistence.Session
	var expiresAtStr, createdAtStr string
	var revokedAt sql.NullString

	err := r.helper.QueryRow(ctx, query, normalized).Scan(
		&session.ID,
		&session.StaffID,
		&session.Token,
		&expiresAtStr,
		&createdAtStr,
		&revokedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, r.mapper.MapError(err)
	}

	if revokedAt.Valid {
		if session.RevokedAt, err = parseTimePtr(revokedAt.String); err != nil {
			return persistence.Session{}, fmt.Errorf("failed to parse revoked_at: %w", err)
		}
	}
	if session.ExpiresAt, err = time.Parse(time.RFC3339, expiresAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return session, nil
}

// RevokeSession marks a session revoked based on its token value.
func (r *StaffRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	normalized := strings.TrimSpace(token)
	if normalized == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx,
		"UPDATE sessions SET revoked_at = ? WHERE token = ?",
		revokedAt.UTC().Format(time.RFC3339), normalized)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.Session{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.Session{}, persistence.ErrNotFound
	}

	return r.GetSession(ctx, normalized)
}

// DeleteExpiredSessions removes sessions that expired on or before the
// provided timestamp.
func (r *StaffRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.helper.Exec(ctx,
		"DELETE FROM sessions WHERE expires_at <= ?",
		reference.UTC().Format(time.RFC3339))
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// normalizeEmail normalizes email addresses for consistent storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
