package application

import "time"

// Attendee represents a tracked participant exposed by the services.
type Attendee struct {
	ID         string
	Token      string
	Salt       string
	Name       string
	Company    string
	Email      string
	Phone      string
	BadgeCode  string
	SignedIn   bool
	SignedInAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Skills []Skill
	Scans  []Scan
}

// Skill is a named, rated sub-record owned by one attendee.
type Skill struct {
	Name   string
	Rating int
}

// Scan records one activity check at a point in time.
type Scan struct {
	ActivityName     string
	ActivityCategory string
	ScannedAt        time.Time
}

// Event is a named activity descriptor from the reference set.
type Event struct {
	Name string
}

// SkillInput captures one caller supplied skill.
type SkillInput struct {
	Name   string
	Rating int
}

// ScanInput captures one caller supplied scan.
type ScanInput struct {
	ActivityName     string
	ActivityCategory string
	ScannedAt        time.Time
}

// CreateAttendeeInput captures the fields required to register an attendee.
type CreateAttendeeInput struct {
	Name      string
	Company   string
	Email     string
	Phone     string
	BadgeCode string
	Skills    []SkillInput
	Scans     []ScanInput
}

// AttendeePatch is a merge-patch: nil pointers leave the stored field
// unchanged. The sub-record slices carry three-way semantics: nil leaves
// the stored set untouched, an empty slice deletes it, and a non-empty
// slice becomes the new complete set.
type AttendeePatch struct {
	Name    *string
	Company *string
	Email   *string
	Phone   *string
	Skills  *[]SkillInput
	Scans   *[]ScanInput
}

// SkillFrequency is one row of the skill frequency aggregation.
type SkillFrequency struct {
	Skill string
	Count int
}

// ScanFrequency is one row of the activity frequency aggregation.
type ScanFrequency struct {
	ActivityName     string
	ActivityCategory string
	Count            int
}

// FrequencyFilter bounds aggregation rows by their count, and optionally by
// activity category for the scan variant. Nil means unbounded.
type FrequencyFilter struct {
	Min      *int
	Max      *int
	Category *string
}

// HistogramBucket is one non-empty hour bucket of the sign-in histogram.
// Hour is the zero-padded UTC hour of day, "00" through "23".
type HistogramBucket struct {
	Hour  string
	Count int
}

// Staff represents an authenticated back-office account.
type Staff struct {
	ID          string
	Email       string
	DisplayName string
}

// Session represents an issued staff session.
type Session struct {
	Token     string
	StaffID   string
	ExpiresAt time.Time
}
