package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/event-checkin/internal/persistence"
)

// AttendeeRepository implements persistence.AttendeeRepository using SQLite.
type AttendeeRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAttendeeRepository creates a new SQLite attendee repository.
func NewAttendeeRepository(pool *ConnectionPool) *AttendeeRepository {
	return &AttendeeRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateAttendee inserts a new attendee with their initial sub-record sets.
func (r *AttendeeRepository) CreateAttendee(ctx context.Context, attendee persistence.Attendee) error {
	if attendee.ID == "" || attendee.Token == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if attendee.CreatedAt.IsZero() {
		attendee.CreatedAt = now
	}
	if attendee.UpdatedAt.IsZero() {
		attendee.UpdatedAt = now
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO attendees (id, token, salt, name, company, email, phone, badge_code, signed_in, signed_in_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		_, err := r.helper.ExecTx(tx, query,
			attendee.ID,
			attendee.Token,
			attendee.Salt,
			attendee.Name,
			attendee.Company,
			attendee.Email,
			attendee.Phone,
			nullString(attendee.BadgeCode),
			attendee.SignedIn,
			formatTimePtr(attendee.SignedInAt),
			attendee.CreatedAt.Format(time.RFC3339),
			attendee.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return r.mapAttendeeError(err)
		}

		if err := r.insertSkills(tx, attendee.ID, attendee.Skills); err != nil {
			return err
		}
		return r.insertScans(tx, attendee.ID, attendee.Scans)
	})
}

// GetAttendee retrieves an attendee by ID with their sub-records attached.
func (r *AttendeeRepository) GetAttendee(ctx context.Context, id string) (persistence.Attendee, error) {
	if id == "" {
		return persistence.Attendee{}, persistence.ErrNotFound
	}
	return r.getAttendeeWhere(ctx, "id = ?", id)
}

// GetAttendeeByToken retrieves an attendee by identity token.
func (r *AttendeeRepository) GetAttendeeByToken(ctx context.Context, token string) (persistence.Attendee, error) {
	if token == "" {
		return persistence.Attendee{}, persistence.ErrNotFound
	}
	return r.getAttendeeWhere(ctx, "token = ?", token)
}

// ListAttendees returns all attendees ordered by creation timestamp then ID.
func (r *AttendeeRepository) ListAttendees(ctx context.Context) ([]persistence.Attendee, error) {
	query := attendeeSelect + " ORDER BY created_at ASC, id ASC"

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var attendees []persistence.Attendee
	for rows.Next() {
		attendee, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, attendee)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	for i := range attendees {
		if err := r.loadSubRecords(ctx, &attendees[i]); err != nil {
			return nil, err
		}
	}

	return attendees, nil
}

// UpdateAttendee overwrites scalar fields and replaces the flagged
// sub-record sets inside one transaction, so concurrent readers never see a
// partially replaced set.
func (r *AttendeeRepository) UpdateAttendee(ctx context.Context, attendee persistence.Attendee, replace persistence.SubRecordReplacement) error {
	if attendee.ID == "" {
		return persistence.ErrConstraintViolation
	}

	attendee.UpdatedAt = time.Now().UTC()

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE attendees
			SET name = ?, company = ?, email = ?, phone = ?, updated_at = ?
			WHERE id = ?
		`

		result, err := r.helper.ExecTx(tx, query,
			attendee.Name,
			attendee.Company,
			attendee.Email,
			attendee.Phone,
			attendee.UpdatedAt.Format(time.RFC3339),
			attendee.ID,
		)
		if err != nil {
			return r.mapAttendeeError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return persistence.ErrNotFound
		}

		if replace.Skills {
			if _, err := r.helper.ExecTx(tx, "DELETE FROM skills WHERE attendee_id = ?", attendee.ID); err != nil {
				return r.mapper.MapError(err)
			}
			if err := r.insertSkills(tx, attendee.ID, attendee.Skills); err != nil {
				return err
			}
		}

		if replace.Scans {
			if _, err := r.helper.ExecTx(tx, "DELETE FROM scans WHERE attendee_id = ?", attendee.ID); err != nil {
				return r.mapper.MapError(err)
			}
			if err := r.insertScans(tx, attendee.ID, attendee.Scans); err != nil {
				return err
			}
		}

		return nil
	})
}

// AddScan appends a scan and touches the owner's updated-at stamp.
func (r *AttendeeRepository) AddScan(ctx context.Context, scan persistence.Scan, at time.Time) error {
	if scan.AttendeeID == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := r.helper.ExecTx(tx,
			"UPDATE attendees SET updated_at = ? WHERE id = ?",
			at.UTC().Format(time.RFC3339), scan.AttendeeID)
		if err != nil {
			return r.mapper.MapError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return persistence.ErrNotFound
		}

		_, err = r.helper.ExecTx(tx,
			"INSERT INTO scans (attendee_id, activity_name, activity_category, scanned_at) VALUES (?, ?, ?, ?)",
			scan.AttendeeID, scan.ActivityName, scan.ActivityCategory, scan.ScannedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return r.mapAttendeeError(err)
		}
		return nil
	})
}

// SignIn marks the attendee signed in, recording at as the sign-in instant.
// A second sign-in is a no-op; the conditional update keeps the original
// timestamp even under concurrent calls.
func (r *AttendeeRepository) SignIn(ctx context.Context, token string, at time.Time) (persistence.Attendee, error) {
	if token == "" {
		return persistence.Attendee{}, persistence.ErrNotFound
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var id string
		err := r.helper.QueryRowTx(tx, "SELECT id FROM attendees WHERE token = ?", token).Scan(&id)
		if err != nil {
			if err == sql.ErrNoRows {
				return persistence.ErrNotFound
			}
			return r.mapper.MapError(err)
		}

		stamp := at.UTC().Format(time.RFC3339)
		_, err = r.helper.ExecTx(tx,
			"UPDATE attendees SET signed_in = 1, signed_in_at = ?, updated_at = ? WHERE token = ? AND signed_in = 0",
			stamp, stamp, token)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
	if err != nil {
		return persistence.Attendee{}, err
	}

	return r.GetAttendeeByToken(ctx, token)
}

// SignOut clears the signed-in state unconditionally.
func (r *AttendeeRepository) SignOut(ctx context.Context, token string) (persistence.Attendee, error) {
	if token == "" {
		return persistence.Attendee{}, persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx,
		"UPDATE attendees SET signed_in = 0, signed_in_at = NULL, updated_at = ? WHERE token = ?",
		time.Now().UTC().Format(time.RFC3339), token)
	if err != nil {
		return persistence.Attendee{}, r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.Attendee{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.Attendee{}, persistence.ErrNotFound
	}

	return r.GetAttendeeByToken(ctx, token)
}

const attendeeSelect = `
	SELECT id, token, salt, name, company, email, phone, badge_code, signed_in, signed_in_at, created_at, updated_at
	FROM attendees
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendee(row rowScanner) (persistence.Attendee, error) {
	var attendee persistence.Attendee
	var badgeCode, signedInAt sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&attendee.ID,
		&attendee.Token,
		&attendee.Salt,
		&attendee.Name,
		&attendee.Company,
		&attendee.Email,
		&attendee.Phone,
		&badgeCode,
		&attendee.SignedIn,
		&signedInAt,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Attendee{}, err
	}

	attendee.BadgeCode = badgeCode.String
	if signedInAt.Valid {
		if attendee.SignedInAt, err = parseTimePtr(signedInAt.String); err != nil {
			return persistence.Attendee{}, fmt.Errorf("failed to parse signed_in_at: %w", err)
		}
	}
	if attendee.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Attendee{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if attendee.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Attendee{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return attendee, nil
}

func (r *AttendeeRepository) getAttendeeWhere(ctx context.Context, where string, arg any) (persistence.Attendee, error) {
	row := r.helper.QueryRow(ctx, attendeeSelect+" WHERE "+where, arg)

	attendee, err := scanAttendee(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Attendee{}, persistence.ErrNotFound
		}
		return persistence.Attendee{}, r.mapper.MapError(err)
	}

	if err := r.loadSubRecords(ctx, &attendee); err != nil {
		return persistence.Attendee{}, err
	}
	return attendee, nil
}

func (r *AttendeeRepository) loadSubRecords(ctx context.Context, attendee *persistence.Attendee) error {
	skills, err := r.loadSkills(ctx, attendee.ID)
	if err != nil {
		return err
	}
	attendee.Skills = skills

	scans, err := r.loadScans(ctx, attendee.ID)
	if err != nil {
		return err
	}
	attendee.Scans = scans
	return nil
}

func (r *AttendeeRepository) loadSkills(ctx context.Context, attendeeID string) ([]persistence.Skill, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT attendee_id, name, rating FROM skills WHERE attendee_id = ? ORDER BY rowid ASC", attendeeID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var skills []persistence.Skill
	for rows.Next() {
		var skill persistence.Skill
		if err := rows.Scan(&skill.AttendeeID, &skill.Name, &skill.Rating); err != nil {
			return nil, r.mapper.MapError(err)
		}
		skills = append(skills, skill)
	}
	return skills, rows.Err()
}

func (r *AttendeeRepository) loadScans(ctx context.Context, attendeeID string) ([]persistence.Scan, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT attendee_id, activity_name, activity_category, scanned_at FROM scans WHERE attendee_id = ? ORDER BY scanned_at ASC, activity_name ASC", attendeeID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var scans []persistence.Scan
	for rows.Next() {
		var scan persistence.Scan
		var scannedAtStr string
		if err := rows.Scan(&scan.AttendeeID, &scan.ActivityName, &scan.ActivityCategory, &scannedAtStr); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if scan.ScannedAt, err = time.Parse(time.RFC3339, scannedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse scanned_at: %w", err)
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

func (r *AttendeeRepository) insertSkills(tx *sql.Tx, attendeeID string, skills []persistence.Skill) error {
	for _, skill := range skills {
		_, err := r.helper.ExecTx(tx,
			"INSERT INTO skills (attendee_id, name, rating) VALUES (?, ?, ?)",
			attendeeID, skill.Name, skill.Rating)
		if err != nil {
			return r.mapAttendeeError(err)
		}
	}
	return nil
}

func (r *AttendeeRepository) insertScans(tx *sql.Tx, attendeeID string, scans []persistence.Scan) error {
	for _, scan := range scans {
		_, err := r.helper.ExecTx(tx,
			"INSERT INTO scans (attendee_id, activity_name, activity_category, scanned_at) VALUES (?, ?, ?, ?)",
			attendeeID, scan.ActivityName, scan.ActivityCategory, scan.ScannedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return r.mapAttendeeError(err)
		}
	}
	return nil
}

// mapAttendeeError maps SQLite errors to persistence errors for attendee
// operations.
func (r *AttendeeRepository) mapAttendeeError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if containsAny(errStr, []string{"UNIQUE constraint failed"}) {
		return persistence.ErrDuplicate
	}
	if containsAny(errStr, []string{"FOREIGN KEY constraint failed"}) {
		return persistence.ErrForeignKeyViolation
	}
	if containsAny(errStr, []string{"CHECK constraint failed"}) {
		return persistence.ErrConstraintViolation
	}

	return r.mapper.MapError(err)
}

func formatTimePtr(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: value.UTC().Format(time.RFC3339), Valid: true}
}

// nullString stores empty strings as NULL so unique columns tolerate
// records that omit the value.
func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
