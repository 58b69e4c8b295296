package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/event-checkin/internal/persistence"
	"github.com/example/event-checkin/internal/testfixtures"
)

func TestAttendeeRepositoryContract(t *testing.T) {
	t.Parallel()

	t.Run("creates and reads attendees through the interface", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		attendee := testfixtures.NewAttendeeFixture(
			testfixtures.WithName("Breanna Dillon"),
			testfixtures.WithSkills(persistence.Skill{Name: "Swift", Rating: 4}),
		)
		if err := harness.Attendees.CreateAttendee(ctx, attendee); err != nil {
			t.Fatalf("CreateAttendee failed: %v", err)
		}

		fetched, err := harness.Attendees.GetAttendee(ctx, attendee.ID)
		if err != nil {
			t.Fatalf("GetAttendee failed: %v", err)
		}
		if fetched.Name != "Breanna Dillon" {
			t.Fatalf("unexpected name %q", fetched.Name)
		}
		if len(fetched.Skills) != 1 || fetched.Skills[0].Name != "Swift" {
			t.Fatalf("unexpected skills %+v", fetched.Skills)
		}

		byToken, err := harness.Attendees.GetAttendeeByToken(ctx, attendee.Token)
		if err != nil {
			t.Fatalf("GetAttendeeByToken failed: %v", err)
		}
		if byToken.ID != attendee.ID {
			t.Fatalf("token lookup returned %q, want %q", byToken.ID, attendee.ID)
		}
	})

	t.Run("sign-in keeps the first recorded instant", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		clock := testfixtures.NewClock(testfixtures.ReferenceTime())

		attendee := testfixtures.NewAttendeeFixture()
		if err := harness.Attendees.CreateAttendee(ctx, attendee); err != nil {
			t.Fatalf("CreateAttendee failed: %v", err)
		}

		first, err := harness.Attendees.SignIn(ctx, attendee.Token, clock.Now())
		if err != nil {
			t.Fatalf("SignIn failed: %v", err)
		}
		if !first.SignedIn || first.SignedInAt == nil {
			t.Fatalf("attendee not signed in: %+v", first)
		}

		clock.Advance(2 * time.Hour)
		second, err := harness.Attendees.SignIn(ctx, attendee.Token, clock.Now())
		if err != nil {
			t.Fatalf("repeated SignIn failed: %v", err)
		}
		if !second.SignedInAt.Equal(*first.SignedInAt) {
			t.Fatalf("sign-in instant moved from %v to %v", *first.SignedInAt, *second.SignedInAt)
		}

		signedOut, err := harness.Attendees.SignOut(ctx, attendee.Token)
		if err != nil {
			t.Fatalf("SignOut failed: %v", err)
		}
		if signedOut.SignedIn || signedOut.SignedInAt != nil {
			t.Fatalf("attendee still signed in: %+v", signedOut)
		}
	})
}

func TestEventAndAttendanceRepositoryContract(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	attendee := testfixtures.NewAttendeeFixture()
	if err := harness.Attendees.CreateAttendee(ctx, attendee); err != nil {
		t.Fatalf("CreateAttendee failed: %v", err)
	}
	if err := harness.Events.CreateEvent(ctx, persistence.Event{Name: "opening_keynote"}); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	if _, err := harness.Events.GetEvent(ctx, "closing_keynote"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown event, got %v", err)
	}

	attendance := persistence.Attendance{Token: attendee.Token, Event: "opening_keynote"}
	if err := harness.Attendance.UpsertAttendance(ctx, attendance); err != nil {
		t.Fatalf("UpsertAttendance failed: %v", err)
	}
	if err := harness.Attendance.UpsertAttendance(ctx, attendance); err != nil {
		t.Fatalf("repeated UpsertAttendance failed: %v", err)
	}

	rows, err := harness.Attendance.ListAttendanceByToken(ctx, attendee.Token)
	if err != nil {
		t.Fatalf("ListAttendanceByToken failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Event != "opening_keynote" {
		t.Fatalf("unexpected attendance rows %+v", rows)
	}

	if err := harness.Attendance.DeleteAttendance(ctx, attendee.Token, "opening_keynote"); err != nil {
		t.Fatalf("DeleteAttendance failed: %v", err)
	}
	if err := harness.Attendance.DeleteAttendance(ctx, attendee.Token, "opening_keynote"); err != nil {
		t.Fatalf("repeated DeleteAttendance failed: %v", err)
	}
}

func TestStatsRepositoryContract(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	signedInAt := testfixtures.ReferenceTime().Add(5 * time.Hour)
	attendee := testfixtures.NewAttendeeFixture(
		testfixtures.WithSkills(
			persistence.Skill{Name: "Swift", Rating: 4},
			persistence.Skill{Name: "Go", Rating: 3},
		),
		testfixtures.WithSignedIn(signedInAt),
	)
	if err := harness.Attendees.CreateAttendee(ctx, attendee); err != nil {
		t.Fatalf("CreateAttendee failed: %v", err)
	}

	skills, err := harness.Stats.SkillCounts(ctx)
	if err != nil {
		t.Fatalf("SkillCounts failed: %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("unexpected skill counts %+v", skills)
	}

	start := testfixtures.ReferenceTime()
	end := start.Add(24 * time.Hour)
	hours, err := harness.Stats.SignInCountsByHour(ctx, start, end)
	if err != nil {
		t.Fatalf("SignInCountsByHour failed: %v", err)
	}
	if len(hours) != 1 || hours[0].Hour != "17" || hours[0].Count != 1 {
		t.Fatalf("unexpected histogram %+v", hours)
	}
}

func TestSessionRepositoryContract(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	ids := testfixtures.NewIDGenerator("session")

	staff := persistence.Staff{
		ID:           "staff-1",
		Email:        "desk@example.com",
		DisplayName:  "Front Desk",
		PasswordHash: "hash",
		CreatedAt:    clock.Now(),
		UpdatedAt:    clock.Now(),
	}
	if err := harness.Staff.CreateStaff(ctx, staff); err != nil {
		t.Fatalf("CreateStaff failed: %v", err)
	}

	session := persistence.Session{
		ID:        ids.Next(),
		StaffID:   staff.ID,
		Token:     "token-contract",
		ExpiresAt: clock.Now().Add(time.Hour),
		CreatedAt: clock.Now(),
	}
	created, err := harness.Sessions.CreateSession(ctx, session)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	fetched, err := harness.Sessions.GetSession(ctx, created.Token)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if fetched.StaffID != staff.ID {
		t.Fatalf("session bound to %q, want %q", fetched.StaffID, staff.ID)
	}

	revoked, err := harness.Sessions.RevokeSession(ctx, created.Token, clock.Now())
	if err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Fatal("revoked session has no revocation instant")
	}

	if err := harness.Sessions.DeleteExpiredSessions(ctx, clock.Now().Add(48*time.Hour)); err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if _, err := harness.Sessions.GetSession(ctx, created.Token); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after pruning, got %v", err)
	}
}
