package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/event-checkin/internal/identity"
	"github.com/example/event-checkin/internal/persistence"
)

type attendeeStoreStub struct {
	attendees map[string]persistence.Attendee
	createErr error
	updateErr error
}

func newAttendeeStoreStub() *attendeeStoreStub {
	return &attendeeStoreStub{attendees: map[string]persistence.Attendee{}}
}

func (s *attendeeStoreStub) CreateAttendee(ctx context.Context, attendee persistence.Attendee) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.attendees {
		if existing.Token == attendee.Token || (attendee.BadgeCode != "" && existing.BadgeCode == attendee.BadgeCode) {
			return persistence.ErrDuplicate
		}
	}
	s.attendees[attendee.ID] = attendee
	return nil
}

func (s *attendeeStoreStub) GetAttendee(ctx context.Context, id string) (persistence.Attendee, error) {
	attendee, ok := s.attendees[id]
	if !ok {
		return persistence.Attendee{}, persistence.ErrNotFound
	}
	return attendee, nil
}

func (s *attendeeStoreStub) GetAttendeeByToken(ctx context.Context, token string) (persistence.Attendee, error) {
	for _, attendee := range s.attendees {
		if attendee.Token == token {
			return attendee, nil
		}
	}
	return persistence.Attendee{}, persistence.ErrNotFound
}

func (s *attendeeStoreStub) ListAttendees(ctx context.Context) ([]persistence.Attendee, error) {
	out := make([]persistence.Attendee, 0, len(s.attendees))
	for _, attendee := range s.attendees {
		out = append(out, attendee)
	}
	return out, nil
}

func (s *attendeeStoreStub) UpdateAttendee(ctx context.Context, attendee persistence.Attendee, replace persistence.SubRecordReplacement) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	stored, ok := s.attendees[attendee.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	stored.Name = attendee.Name
	stored.Company = attendee.Company
	stored.Email = attendee.Email
	stored.Phone = attendee.Phone
	stored.UpdatedAt = attendee.UpdatedAt
	if replace.Skills {
		stored.Skills = attendee.Skills
	}
	if replace.Scans {
		stored.Scans = attendee.Scans
	}
	s.attendees[attendee.ID] = stored
	return nil
}

func (s *attendeeStoreStub) AddScan(ctx context.Context, scan persistence.Scan, at time.Time) error {
	stored, ok := s.attendees[scan.AttendeeID]
	if !ok {
		return persistence.ErrNotFound
	}
	stored.Scans = append(stored.Scans, scan)
	stored.UpdatedAt = at
	s.attendees[scan.AttendeeID] = stored
	return nil
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func newTestAttendeeService(store *attendeeStoreStub) *AttendeeService {
	counter := 0
	idGenerator := func() string {
		counter++
		return fmt.Sprintf("attendee-%d", counter)
	}
	now := func() time.Time {
		return time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	}
	return NewAttendeeService(store, identity.NewIssuer(zeroReader{}), idGenerator, now, nil)
}

func TestCreateAttendee(t *testing.T) {
	t.Parallel()

	t.Run("issues a token and persists sub-records", func(t *testing.T) {
		t.Parallel()
		store := newAttendeeStoreStub()
		service := newTestAttendeeService(store)

		attendee, err := service.CreateAttendee(context.Background(), CreateAttendeeInput{
			Name:      "Breanna Dillon",
			Company:   "Jackson Ltd",
			Email:     "lorettabrown@example.net",
			Phone:     "+16106960391",
			BadgeCode: "badge-1",
			Skills: []SkillInput{
				{Name: "Swift", Rating: 4},
				{Name: "OpenCV", Rating: 1},
			},
		})
		if err != nil {
			t.Fatalf("CreateAttendee returned error: %v", err)
		}
		if len(attendee.Token) != 64 {
			t.Fatalf("expected 64 character token, got %d", len(attendee.Token))
		}
		if attendee.Token != identity.Derive(identity.StableFields{
			Name:  "Breanna Dillon",
			Email: "lorettabrown@example.net",
			Phone: "+16106960391",
		}, attendee.Salt) {
			t.Fatal("token does not derive from stable fields and salt")
		}
		if len(attendee.Skills) != 2 {
			t.Fatalf("expected 2 skills, got %d", len(attendee.Skills))
		}
		stored := store.attendees[attendee.ID]
		if stored.Token != attendee.Token {
			t.Fatal("persisted token mismatch")
		}
	})

	t.Run("keeps the first occurrence of a repeated skill", func(t *testing.T) {
		t.Parallel()
		store := newAttendeeStoreStub()
		service := newTestAttendeeService(store)

		attendee, err := service.CreateAttendee(context.Background(), CreateAttendeeInput{
			Name: "Kai Watanabe",
			Skills: []SkillInput{
				{Name: "Swift", Rating: 4},
				{Name: "Go", Rating: 5},
				{Name: "Swift", Rating: 2},
			},
		})
		if err != nil {
			t.Fatalf("CreateAttendee returned error: %v", err)
		}
		if len(attendee.Skills) != 2 {
			t.Fatalf("expected 2 skills after deduplication, got %d", len(attendee.Skills))
		}
		if attendee.Skills[0].Name != "Swift" || attendee.Skills[0].Rating != 4 {
			t.Fatalf("expected first Swift rating kept, got %+v", attendee.Skills[0])
		}
		if attendee.Skills[1].Name != "Go" {
			t.Fatalf("expected original order preserved, got %+v", attendee.Skills)
		}
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		t.Parallel()
		service := newTestAttendeeService(newAttendeeStoreStub())

		_, err := service.CreateAttendee(context.Background(), CreateAttendeeInput{Name: "   "})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["name"]; !ok {
			t.Fatalf("expected a name field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("maps a duplicate to ErrAlreadyExists", func(t *testing.T) {
		t.Parallel()
		store := newAttendeeStoreStub()
		store.createErr = persistence.ErrDuplicate
		service := newTestAttendeeService(store)

		_, err := service.CreateAttendee(context.Background(), CreateAttendeeInput{Name: "Alex"})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestUpdateAttendee(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) (*attendeeStoreStub, *AttendeeService, Attendee) {
		t.Helper()
		store := newAttendeeStoreStub()
		service := newTestAttendeeService(store)
		attendee, err := service.CreateAttendee(context.Background(), CreateAttendeeInput{
			Name:    "Breanna Dillon",
			Company: "Jackson Ltd",
			Email:   "lorettabrown@example.net",
			Phone:   "+16106960391",
			Skills: []SkillInput{
				{Name: "Swift", Rating: 4},
				{Name: "OpenCV", Rating: 1},
			},
		})
		if err != nil {
			t.Fatalf("seed attendee: %v", err)
		}
		return store, service, attendee
	}

	t.Run("absent fields keep their stored value", func(t *testing.T) {
		t.Parallel()
		_, service, attendee := seed(t)

		company := "Dillon Works"
		updated, err := service.UpdateAttendee(context.Background(), attendee.ID, AttendeePatch{Company: &company})
		if err != nil {
			t.Fatalf("UpdateAttendee returned error: %v", err)
		}
		if updated.Company != "Dillon Works" {
			t.Fatalf("expected company updated, got %q", updated.Company)
		}
		if updated.Name != attendee.Name || updated.Email != attendee.Email || updated.Phone != attendee.Phone {
			t.Fatal("expected untouched fields to keep their stored value")
		}
		if len(updated.Skills) != 2 {
			t.Fatalf("expected skills untouched, got %d", len(updated.Skills))
		}
	})

	t.Run("empty patch changes nothing", func(t *testing.T) {
		t.Parallel()
		_, service, attendee := seed(t)

		updated, err := service.UpdateAttendee(context.Background(), attendee.ID, AttendeePatch{})
		if err != nil {
			t.Fatalf("UpdateAttendee returned error: %v", err)
		}
		if updated.Name != attendee.Name || updated.Company != attendee.Company {
			t.Fatal("expected record unchanged")
		}
		if len(updated.Skills) != len(attendee.Skills) || len(updated.Scans) != len(attendee.Scans) {
			t.Fatal("expected sub-records unchanged")
		}
	})

	t.Run("non-empty skills slice replaces the stored set", func(t *testing.T) {
		t.Parallel()
		_, service, attendee := seed(t)

		skills := []SkillInput{{Name: "Rust", Rating: 3}}
		updated, err := service.UpdateAttendee(context.Background(), attendee.ID, AttendeePatch{Skills: &skills})
		if err != nil {
			t.Fatalf("UpdateAttendee returned error: %v", err)
		}
		if len(updated.Skills) != 1 || updated.Skills[0].Name != "Rust" {
			t.Fatalf("expected skills replaced, got %+v", updated.Skills)
		}
	})

	t.Run("empty skills slice deletes the stored set", func(t *testing.T) {
		t.Parallel()
		_, service, attendee := seed(t)

		skills := []SkillInput{}
		updated, err := service.UpdateAttendee(context.Background(), attendee.ID, AttendeePatch{Skills: &skills})
		if err != nil {
			t.Fatalf("UpdateAttendee returned error: %v", err)
		}
		if len(updated.Skills) != 0 {
			t.Fatalf("expected skills deleted, got %+v", updated.Skills)
		}
	})

	t.Run("changing a derivation field keeps the token", func(t *testing.T) {
		t.Parallel()
		_, service, attendee := seed(t)

		name := "Breanna Smith"
		updated, err := service.UpdateAttendee(context.Background(), attendee.ID, AttendeePatch{Name: &name})
		if err != nil {
			t.Fatalf("UpdateAttendee returned error: %v", err)
		}
		if updated.Token != attendee.Token {
			t.Fatal("expected token to survive a name change")
		}
	})

	t.Run("unknown attendee reports ErrNotFound", func(t *testing.T) {
		t.Parallel()
		_, service, _ := seed(t)

		name := "Nobody"
		_, err := service.UpdateAttendee(context.Background(), "missing", AttendeePatch{Name: &name})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAddScan(t *testing.T) {
	t.Parallel()

	t.Run("appends a scan to the attendee", func(t *testing.T) {
		t.Parallel()
		store := newAttendeeStoreStub()
		service := newTestAttendeeService(store)
		attendee, err := service.CreateAttendee(context.Background(), CreateAttendeeInput{Name: "Alex"})
		if err != nil {
			t.Fatalf("seed attendee: %v", err)
		}

		scannedAt := time.Date(2025, time.March, 1, 12, 30, 0, 0, time.UTC)
		updated, err := service.AddScan(context.Background(), attendee.Token, ScanInput{
			ActivityName:     "lunch",
			ActivityCategory: "meal",
			ScannedAt:        scannedAt,
		})
		if err != nil {
			t.Fatalf("AddScan returned error: %v", err)
		}
		if len(updated.Scans) != 1 {
			t.Fatalf("expected 1 scan, got %d", len(updated.Scans))
		}
		if !updated.Scans[0].ScannedAt.Equal(scannedAt) {
			t.Fatalf("expected scanned-at preserved, got %v", updated.Scans[0].ScannedAt)
		}
	})

	t.Run("unknown token reports ErrNotFound", func(t *testing.T) {
		t.Parallel()
		service := newTestAttendeeService(newAttendeeStoreStub())

		_, err := service.AddScan(context.Background(), "missing", ScanInput{
			ActivityName: "lunch",
			ScannedAt:    time.Date(2025, time.March, 1, 12, 30, 0, 0, time.UTC),
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects a missing activity name", func(t *testing.T) {
		t.Parallel()
		service := newTestAttendeeService(newAttendeeStoreStub())

		_, err := service.AddScan(context.Background(), "token", ScanInput{
			ScannedAt: time.Date(2025, time.March, 1, 12, 30, 0, 0, time.UTC),
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}
