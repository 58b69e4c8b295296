package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/event-checkin/internal/persistence"
	"github.com/example/event-checkin/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Attendees  persistence.AttendeeRepository
	Events     persistence.EventRepository
	Attendance persistence.AttendanceRepository
	Stats      persistence.StatsRepository
	Staff      persistence.StaffRepository
	Sessions   persistence.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "checkin.db")

	pool, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	events := sqlite.NewEventRepository(pool)
	staff := sqlite.NewStaffRepository(pool)

	harness := &SQLiteHarness{
		Attendees:  sqlite.NewAttendeeRepository(pool),
		Events:     events,
		Attendance: events,
		Stats:      sqlite.NewStatsRepository(pool),
		Staff:      staff,
		Sessions:   staff,
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
