package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/event-checkin/internal/persistence"
)

func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	path := filepath.Join(t.TempDir(), "checkin.db")
	pool, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate storage: %v", err)
	}
	return pool
}

var testAttendeeCounter int

func testAttendee(suffix string) persistence.Attendee {
	testAttendeeCounter++
	created := time.Date(2025, time.February, 28, 12, 0, 0, 0, time.UTC).
		Add(time.Duration(testAttendeeCounter) * time.Minute)
	id := fmt.Sprintf("attendee-%s", suffix)
	return persistence.Attendee{
		ID:        id,
		Token:     fmt.Sprintf("token-%s", suffix),
		Salt:      fmt.Sprintf("salt-%s", suffix),
		Name:      fmt.Sprintf("Attendee %s", suffix),
		Company:   "Jackson Ltd",
		Email:     fmt.Sprintf("%s@example.net", id),
		Phone:     "+16106960391",
		BadgeCode: fmt.Sprintf("badge-%s", suffix),
		CreatedAt: created,
		UpdatedAt: created,
	}
}
