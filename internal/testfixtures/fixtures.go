package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/event-checkin/internal/persistence"
)

var attendeeCounter uint64

var referenceTime = time.Date(2025, time.February, 28, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// AttendeeOption configures a generated attendee fixture.
type AttendeeOption func(*persistence.Attendee)

// NewAttendeeFixture returns a deterministic attendee record with optional
// overrides. The default record carries two skills, modelled on a typical
// registration export entry.
func NewAttendeeFixture(opts ...AttendeeOption) persistence.Attendee {
	idx := atomic.AddUint64(&attendeeCounter, 1)
	id := fmt.Sprintf("attendee-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	attendee := persistence.Attendee{
		ID:        id,
		Token:     fmt.Sprintf("token-%03d", idx),
		Salt:      fmt.Sprintf("salt-%03d", idx),
		Name:      fmt.Sprintf("Attendee %03d", idx),
		Company:   "Jackson Ltd",
		Email:     fmt.Sprintf("%s@example.net", id),
		Phone:     fmt.Sprintf("+1610696%04d", idx),
		BadgeCode: fmt.Sprintf("badge-%03d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	attendee.Skills = []persistence.Skill{
		{AttendeeID: id, Name: "Swift", Rating: 4},
		{AttendeeID: id, Name: "OpenCV", Rating: 1},
	}
	for _, opt := range opts {
		opt(&attendee)
	}
	return attendee
}

// WithName overrides the fixture name.
func WithName(name string) AttendeeOption {
	return func(a *persistence.Attendee) { a.Name = name }
}

// WithToken overrides the fixture token.
func WithToken(token string) AttendeeOption {
	return func(a *persistence.Attendee) { a.Token = token }
}

// WithSkills replaces the fixture skill set, rewriting owner references.
func WithSkills(skills ...persistence.Skill) AttendeeOption {
	return func(a *persistence.Attendee) {
		for i := range skills {
			skills[i].AttendeeID = a.ID
		}
		a.Skills = skills
	}
}

// WithScans replaces the fixture scan set, rewriting owner references.
func WithScans(scans ...persistence.Scan) AttendeeOption {
	return func(a *persistence.Attendee) {
		for i := range scans {
			scans[i].AttendeeID = a.ID
		}
		a.Scans = scans
	}
}

// WithSignedIn marks the fixture as signed in at the given instant.
func WithSignedIn(at time.Time) AttendeeOption {
	return func(a *persistence.Attendee) {
		a.SignedIn = true
		a.SignedInAt = &at
	}
}
