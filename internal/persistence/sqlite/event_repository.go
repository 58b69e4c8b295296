package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/event-checkin/internal/persistence"
)

// EventRepository implements persistence.EventRepository and
// persistence.AttendanceRepository using SQLite.
type EventRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateEvent inserts a reference event.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.Name == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, "INSERT INTO events (name) VALUES (?)", event.Name)
	if err != nil {
		if containsAny(err.Error(), []string{"UNIQUE constraint failed"}) {
			return persistence.ErrDuplicate
		}
		return r.mapper.MapError(err)
	}
	return nil
}

// GetEvent retrieves an event by name.
func (r *EventRepository) GetEvent(ctx context.Context, name string) (persistence.Event, error) {
	if name == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	var event persistence.Event
	err := r.helper.QueryRow(ctx, "SELECT name FROM events WHERE name = ?", name).Scan(&event.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Event{}, persistence.ErrNotFound
		}
		return persistence.Event{}, r.mapper.MapError(err)
	}
	return event, nil
}

// ListEvents returns all reference events ordered by name.
func (r *EventRepository) ListEvents(ctx context.Context) ([]persistence.Event, error) {
	rows, err := r.helper.Query(ctx, "SELECT name FROM events ORDER BY name ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		var event persistence.Event
		if err := rows.Scan(&event.Name); err != nil {
			return nil, r.mapper.MapError(err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// UpsertAttendance records a per-event sign-in; re-recording an existing
// association is a no-op.
func (r *EventRepository) UpsertAttendance(ctx context.Context, attendance persistence.Attendance) error {
	if attendance.Token == "" || attendance.Event == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO attendance (token, event) VALUES (?, ?)
		ON CONFLICT (token, event) DO NOTHING
	`

	_, err := r.helper.Exec(ctx, query, attendance.Token, attendance.Event)
	if err != nil {
		if containsAny(err.Error(), []string{"FOREIGN KEY constraint failed"}) {
			return persistence.ErrForeignKeyViolation
		}
		return r.mapper.MapError(err)
	}
	return nil
}

// DeleteAttendance removes a per-event sign-in; a missing row is not an
// error.
func (r *EventRepository) DeleteAttendance(ctx context.Context, token, event string) error {
	_, err := r.helper.Exec(ctx, "DELETE FROM attendance WHERE token = ? AND event = ?", token, event)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// ListAttendanceByToken returns the events the attendee has signed into.
func (r *EventRepository) ListAttendanceByToken(ctx context.Context, token string) ([]persistence.Attendance, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT token, event FROM attendance WHERE token = ? ORDER BY event ASC", token)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var records []persistence.Attendance
	for rows.Next() {
		var record persistence.Attendance
		if err := rows.Scan(&record.Token, &record.Event); err != nil {
			return nil, r.mapper.MapError(err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
