package persistence

import "time"

// Attendee represents a tracked participant with their owned sub-records.
type Attendee struct {
	ID        string
	Token     string
	Salt      string
	Name      string
	Company   string
	Email     string
	Phone     string
	BadgeCode string
	SignedIn  bool
	// SignedInAt is non-nil exactly when SignedIn is true.
	SignedInAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Skills []Skill
	Scans  []Scan
}

// Skill is a named, rated sub-record owned by exactly one attendee. At most
// one row exists per (attendee, name).
type Skill struct {
	AttendeeID string
	Name       string
	Rating     int
}

// Scan records one activity check at a point in time. Repeated activity at
// different times is a distinct event; rows are unique per
// (attendee, activity name, scanned-at).
type Scan struct {
	AttendeeID       string
	ActivityName     string
	ActivityCategory string
	ScannedAt        time.Time
}

// Event is a named activity descriptor used as a validation reference.
type Event struct {
	Name string
}

// Attendance associates an attendee token with an event they signed into.
type Attendance struct {
	Token string
	Event string
}

// Staff represents a back-office account allowed to call mutations.
type Staff struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents a staff authentication session.
type Session struct {
	ID        string
	StaffID   string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// SubRecordReplacement flags which sub-record sets an update replaces.
// A false flag leaves the stored set untouched.
type SubRecordReplacement struct {
	Skills bool
	Scans  bool
}

// SkillCount is one row of the skill frequency aggregate.
type SkillCount struct {
	Name  string
	Count int
}

// ScanCount is one row of the activity frequency aggregate.
type ScanCount struct {
	ActivityName     string
	ActivityCategory string
	Count            int
}

// HourCount is one non-empty bucket of the sign-in histogram. Hour is the
// zero-padded UTC hour of day, "00" through "23".
type HourCount struct {
	Hour  string
	Count int
}
