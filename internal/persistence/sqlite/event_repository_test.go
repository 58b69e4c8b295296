package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/example/event-checkin/internal/persistence"
)

func TestEventRepository_CreateAndGet(t *testing.T) {
	repo := NewEventRepository(newTestPool(t))
	ctx := context.Background()

	if err := repo.CreateEvent(ctx, persistence.Event{Name: "keynote"}); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}
	if err := repo.CreateEvent(ctx, persistence.Event{Name: "keynote"}); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	event, err := repo.GetEvent(ctx, "keynote")
	if err != nil {
		t.Fatalf("GetEvent returned error: %v", err)
	}
	if event.Name != "keynote" {
		t.Fatalf("expected keynote, got %q", event.Name)
	}

	if _, err := repo.GetEvent(ctx, "afterparty"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventRepository_Attendance(t *testing.T) {
	pool := newTestPool(t)
	events := NewEventRepository(pool)
	attendees := NewAttendeeRepository(pool)
	ctx := context.Background()

	attendee := testAttendee("attendance")
	if err := attendees.CreateAttendee(ctx, attendee); err != nil {
		t.Fatalf("CreateAttendee returned error: %v", err)
	}
	if err := events.CreateEvent(ctx, persistence.Event{Name: "keynote"}); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}

	record := persistence.Attendance{Token: attendee.Token, Event: "keynote"}
	if err := events.UpsertAttendance(ctx, record); err != nil {
		t.Fatalf("UpsertAttendance returned error: %v", err)
	}
	// Re-recording the same association succeeds and stays single.
	if err := events.UpsertAttendance(ctx, record); err != nil {
		t.Fatalf("repeated UpsertAttendance returned error: %v", err)
	}

	rows, err := events.ListAttendanceByToken(ctx, attendee.Token)
	if err != nil {
		t.Fatalf("ListAttendanceByToken returned error: %v", err)
	}
	if len(rows) != 1 || rows[0].Event != "keynote" {
		t.Fatalf("expected one keynote row, got %+v", rows)
	}

	if err := events.DeleteAttendance(ctx, attendee.Token, "keynote"); err != nil {
		t.Fatalf("DeleteAttendance returned error: %v", err)
	}
	// Deleting a missing row is not an error.
	if err := events.DeleteAttendance(ctx, attendee.Token, "keynote"); err != nil {
		t.Fatalf("repeated DeleteAttendance returned error: %v", err)
	}

	rows, err = events.ListAttendanceByToken(ctx, attendee.Token)
	if err != nil {
		t.Fatalf("ListAttendanceByToken returned error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
}
