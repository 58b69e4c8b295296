package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/event-checkin/internal/metrics"
	"github.com/example/event-checkin/internal/persistence"
)

// CheckinStore captures the attendee state transitions needed by the service.
type CheckinStore interface {
	GetAttendeeByToken(ctx context.Context, token string) (persistence.Attendee, error)
	SignIn(ctx context.Context, token string, at time.Time) (persistence.Attendee, error)
	SignOut(ctx context.Context, token string) (persistence.Attendee, error)
}

// EventCatalog exposes the event reference set.
type EventCatalog interface {
	GetEvent(ctx context.Context, name string) (persistence.Event, error)
	ListEvents(ctx context.Context) ([]persistence.Event, error)
}

// AttendanceStore tracks which events an attendee signed into.
type AttendanceStore interface {
	UpsertAttendance(ctx context.Context, attendance persistence.Attendance) error
	DeleteAttendance(ctx context.Context, token, event string) error
	ListAttendanceByToken(ctx context.Context, token string) ([]persistence.Attendance, error)
}

// CheckinService drives the venue and per-event sign-in state machines.
type CheckinService struct {
	attendees  CheckinStore
	events     EventCatalog
	attendance AttendanceStore
	now        func() time.Time
	logger     *slog.Logger
}

// NewCheckinService wires dependencies for check-in operations.
func NewCheckinService(attendees CheckinStore, events EventCatalog, attendance AttendanceStore, now func() time.Time, logger *slog.Logger) *CheckinService {
	if now == nil {
		now = time.Now
	}
	return &CheckinService{
		attendees:  attendees,
		events:     events,
		attendance: attendance,
		now:        now,
		logger:     logger,
	}
}

// SignIn marks the attendee as present at the venue. Signing in an already
// signed-in attendee succeeds without touching their original sign-in
// timestamp, so repeated badge scans at the door are harmless.
func (s *CheckinService) SignIn(ctx context.Context, token string) (Attendee, error) {
	if s == nil {
		return Attendee{}, fmt.Errorf("CheckinService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "checkin", "sign_in")

	record, err := s.attendees.SignIn(ctx, token, s.now().UTC())
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.Warn("sign-in for unknown token")
			return Attendee{}, ErrNotFound
		}
		logger.Error("failed to sign in attendee", "error", err)
		return Attendee{}, fmt.Errorf("failed to sign in attendee: %w", err)
	}

	metrics.RecordSignIn()
	logger.Info("attendee signed in", "attendee_id", record.ID)
	return toApplicationAttendee(record), nil
}

// SignOut clears the attendee's presence. Signing out an attendee who is
// not signed in succeeds and leaves them signed out.
func (s *CheckinService) SignOut(ctx context.Context, token string) (Attendee, error) {
	if s == nil {
		return Attendee{}, fmt.Errorf("CheckinService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "checkin", "sign_out")

	record, err := s.attendees.SignOut(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.Warn("sign-out for unknown token")
			return Attendee{}, ErrNotFound
		}
		logger.Error("failed to sign out attendee", "error", err)
		return Attendee{}, fmt.Errorf("failed to sign out attendee: %w", err)
	}

	metrics.RecordSignOut()
	logger.Info("attendee signed out", "attendee_id", record.ID)
	return toApplicationAttendee(record), nil
}

// EventSignIn records that the attendee entered the named event. The
// attendee is resolved first, so an unknown token reports ErrNotFound even
// when the event is also unknown. Re-entering an event is a no-op.
func (s *CheckinService) EventSignIn(ctx context.Context, token, eventName string) (Attendee, error) {
	if s == nil {
		return Attendee{}, fmt.Errorf("CheckinService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "checkin", "event_sign_in", "event", eventName)

	record, err := s.attendees.GetAttendeeByToken(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.Warn("event sign-in for unknown token")
			return Attendee{}, ErrNotFound
		}
		return Attendee{}, fmt.Errorf("failed to load attendee: %w", err)
	}

	if _, err := s.events.GetEvent(ctx, eventName); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.Warn("sign-in for unknown event")
			return Attendee{}, ErrUnknownEvent
		}
		return Attendee{}, fmt.Errorf("failed to load event: %w", err)
	}

	if err := s.attendance.UpsertAttendance(ctx, persistence.Attendance{Token: token, Event: eventName}); err != nil {
		logger.Error("failed to record attendance", "error", err)
		return Attendee{}, fmt.Errorf("failed to record attendance: %w", err)
	}

	metrics.RecordEventSignIn()
	logger.Info("attendee signed into event", "attendee_id", record.ID)
	return toApplicationAttendee(record), nil
}

// EventSignOut removes the attendee's association with the named event.
// Leaving an event the attendee never entered succeeds.
func (s *CheckinService) EventSignOut(ctx context.Context, token, eventName string) (Attendee, error) {
	if s == nil {
		return Attendee{}, fmt.Errorf("CheckinService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "checkin", "event_sign_out", "event", eventName)

	record, err := s.attendees.GetAttendeeByToken(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.Warn("event sign-out for unknown token")
			return Attendee{}, ErrNotFound
		}
		return Attendee{}, fmt.Errorf("failed to load attendee: %w", err)
	}

	if _, err := s.events.GetEvent(ctx, eventName); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.Warn("sign-out for unknown event")
			return Attendee{}, ErrUnknownEvent
		}
		return Attendee{}, fmt.Errorf("failed to load event: %w", err)
	}

	if err := s.attendance.DeleteAttendance(ctx, token, eventName); err != nil {
		logger.Error("failed to delete attendance", "error", err)
		return Attendee{}, fmt.Errorf("failed to delete attendance: %w", err)
	}

	metrics.RecordEventSignOut()
	logger.Info("attendee signed out of event", "attendee_id", record.ID)
	return toApplicationAttendee(record), nil
}

// ListEvents returns the event reference set.
func (s *CheckinService) ListEvents(ctx context.Context) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("CheckinService is nil")
	}
	records, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	events := make([]Event, 0, len(records))
	for _, record := range records {
		events = append(events, Event{Name: record.Name})
	}
	return events, nil
}

// EventsForAttendee lists the events the attendee has signed into.
func (s *CheckinService) EventsForAttendee(ctx context.Context, token string) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("CheckinService is nil")
	}
	if _, err := s.attendees.GetAttendeeByToken(ctx, token); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load attendee: %w", err)
	}
	rows, err := s.attendance.ListAttendanceByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, Event{Name: row.Event})
	}
	return events, nil
}
