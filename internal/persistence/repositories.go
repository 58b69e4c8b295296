package persistence

import (
	"context"
	"time"
)

// AttendeeRepository exposes storage operations for attendees and their
// owned sub-records.
type AttendeeRepository interface {
	CreateAttendee(ctx context.Context, attendee Attendee) error
	GetAttendee(ctx context.Context, id string) (Attendee, error)
	GetAttendeeByToken(ctx context.Context, token string) (Attendee, error)
	ListAttendees(ctx context.Context) ([]Attendee, error)

	// UpdateAttendee overwrites the attendee's scalar fields and, for each
	// set flag in replace, deletes the stored sub-record set and inserts
	// the one supplied on the attendee. The whole update is a single
	// transaction; concurrent readers never observe a partially replaced
	// set.
	UpdateAttendee(ctx context.Context, attendee Attendee, replace SubRecordReplacement) error

	// AddScan appends one scan and touches the owner's updated-at stamp.
	AddScan(ctx context.Context, scan Scan, at time.Time) error

	// SignIn transitions the attendee to signed-in recording the supplied
	// instant. Already signed-in attendees are returned unchanged; their
	// original sign-in timestamp is kept.
	SignIn(ctx context.Context, token string, at time.Time) (Attendee, error)

	// SignOut clears the signed-in state regardless of the current state.
	SignOut(ctx context.Context, token string) (Attendee, error)
}

// EventRepository stores the read-only event reference set.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, name string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
}

// AttendanceRepository stores per-event sign-in associations.
type AttendanceRepository interface {
	// UpsertAttendance creates the association when absent and is a no-op
	// when it already exists.
	UpsertAttendance(ctx context.Context, attendance Attendance) error
	// DeleteAttendance removes the association; deleting a missing row is
	// not an error.
	DeleteAttendance(ctx context.Context, token, event string) error
	ListAttendanceByToken(ctx context.Context, token string) ([]Attendance, error)
}

// StatsRepository answers grouped-count queries. The storage layer offers
// no HAVING support; bound filtering is the caller's responsibility.
type StatsRepository interface {
	SkillCounts(ctx context.Context) ([]SkillCount, error)
	ScanCounts(ctx context.Context) ([]ScanCount, error)
	// SignInCountsByHour buckets signed-in attendees whose sign-in instant
	// falls within [start, end] by UTC hour of day. Empty buckets are
	// omitted.
	SignInCountsByHour(ctx context.Context, start, end time.Time) ([]HourCount, error)
}

// StaffRepository stores back-office accounts.
type StaffRepository interface {
	CreateStaff(ctx context.Context, staff Staff) error
	GetStaffByEmail(ctx context.Context, email string) (Staff, error)
}

// SessionRepository stores staff authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
