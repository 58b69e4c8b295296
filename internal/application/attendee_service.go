package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/event-checkin/internal/dedupe"
	"github.com/example/event-checkin/internal/identity"
	"github.com/example/event-checkin/internal/metrics"
	"github.com/example/event-checkin/internal/persistence"
)

// AttendeeStore captures the persistence interactions needed by the service.
type AttendeeStore interface {
	CreateAttendee(ctx context.Context, attendee persistence.Attendee) error
	GetAttendee(ctx context.Context, id string) (persistence.Attendee, error)
	GetAttendeeByToken(ctx context.Context, token string) (persistence.Attendee, error)
	ListAttendees(ctx context.Context) ([]persistence.Attendee, error)
	UpdateAttendee(ctx context.Context, attendee persistence.Attendee, replace persistence.SubRecordReplacement) error
	AddScan(ctx context.Context, scan persistence.Scan, at time.Time) error
}

// AttendeeService orchestrates validation, identity issuance and persistence
// for attendee operations.
type AttendeeService struct {
	attendees   AttendeeStore
	issuer      *identity.Issuer
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAttendeeService wires dependencies for attendee operations.
func NewAttendeeService(attendees AttendeeStore, issuer *identity.Issuer, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AttendeeService {
	if issuer == nil {
		issuer = identity.NewIssuer(nil)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AttendeeService{
		attendees:   attendees,
		issuer:      issuer,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// CreateAttendee registers an attendee, issues their identity token and
// persists the supplied sub-records. Duplicate skill names collapse to the
// first occurrence before anything is stored.
func (s *AttendeeService) CreateAttendee(ctx context.Context, input CreateAttendeeInput) (Attendee, error) {
	if s == nil {
		return Attendee{}, fmt.Errorf("AttendeeService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "attendee", "create")

	vErr := &ValidationError{}
	validateAttendeeCore(input.Name, input.Email, vErr)
	validateSkills(input.Skills, vErr)
	validateScans(input.Scans, vErr)
	if vErr.HasErrors() {
		logger.Warn("attendee validation failed", "error_kind", ErrorKind(vErr))
		return Attendee{}, vErr
	}

	credential, err := s.issuer.Issue(identity.StableFields{
		Name:  input.Name,
		Email: input.Email,
		Phone: input.Phone,
	})
	if err != nil {
		logger.Error("failed to issue identity token", "error", err)
		return Attendee{}, fmt.Errorf("failed to issue identity token: %w", err)
	}

	now := s.now().UTC()
	record := persistence.Attendee{
		ID:        s.idGenerator(),
		Token:     credential.Token,
		Salt:      credential.Salt,
		Name:      strings.TrimSpace(input.Name),
		Company:   input.Company,
		Email:     input.Email,
		Phone:     input.Phone,
		BadgeCode: input.BadgeCode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	record.Skills = toPersistenceSkills(record.ID, dedupeSkills(input.Skills))
	record.Scans = toPersistenceScans(record.ID, input.Scans)

	if err := s.attendees.CreateAttendee(ctx, record); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			logger.Warn("attendee already exists", "badge_code", input.BadgeCode)
			return Attendee{}, ErrAlreadyExists
		}
		logger.Error("failed to create attendee", "error", err)
		return Attendee{}, fmt.Errorf("failed to create attendee: %w", err)
	}

	metrics.RecordAttendeeCreated()
	logger.Info("attendee created", "attendee_id", record.ID)
	return toApplicationAttendee(record), nil
}

// GetAttendee fetches one attendee by identifier.
func (s *AttendeeService) GetAttendee(ctx context.Context, id string) (Attendee, error) {
	if s == nil {
		return Attendee{}, fmt.Errorf("AttendeeService is nil")
	}
	record, err := s.attendees.GetAttendee(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Attendee{}, ErrNotFound
		}
		return Attendee{}, fmt.Errorf("failed to load attendee: %w", err)
	}
	return toApplicationAttendee(record), nil
}

// GetAttendeeByToken fetches one attendee by their identity token.
func (s *AttendeeService) GetAttendeeByToken(ctx context.Context, token string) (Attendee, error) {
	if s == nil {
		return Attendee{}, fmt.Errorf("AttendeeService is nil")
	}
	record, err := s.attendees.GetAttendeeByToken(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Attendee{}, ErrNotFound
		}
		return Attendee{}, fmt.Errorf("failed to load attendee: %w", err)
	}
	return toApplicationAttendee(record), nil
}

// ListAttendees returns every stored attendee with their sub-records.
func (s *AttendeeService) ListAttendees(ctx context.Context) ([]Attendee, error) {
	if s == nil {
		return nil, fmt.Errorf("AttendeeService is nil")
	}
	records, err := s.attendees.ListAttendees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	attendees := make([]Attendee, 0, len(records))
	for _, record := range records {
		attendees = append(attendees, toApplicationAttendee(record))
	}
	return attendees, nil
}

// UpdateAttendee applies a merge-patch to the addressed attendee. Absent
// fields keep their stored value. A present sub-record slice replaces the
// stored set in full; an absent one leaves it untouched. The identity token
// is never recomputed, even when a derivation field changes.
func (s *AttendeeService) UpdateAttendee(ctx context.Context, id string, patch AttendeePatch) (Attendee, error) {
	if s == nil {
		return Attendee{}, fmt.Errorf("AttendeeService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "attendee", "update", "attendee_id", id)

	vErr := &ValidationError{}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		vErr.add("name", "name must not be empty")
	}
	if patch.Skills != nil {
		validateSkills(*patch.Skills, vErr)
	}
	if patch.Scans != nil {
		validateScans(*patch.Scans, vErr)
	}
	if vErr.HasErrors() {
		logger.Warn("attendee validation failed", "error_kind", ErrorKind(vErr))
		return Attendee{}, vErr
	}

	record, err := s.attendees.GetAttendee(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Attendee{}, ErrNotFound
		}
		return Attendee{}, fmt.Errorf("failed to load attendee: %w", err)
	}

	if patch.Name != nil {
		record.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Company != nil {
		record.Company = *patch.Company
	}
	if patch.Email != nil {
		record.Email = *patch.Email
	}
	if patch.Phone != nil {
		record.Phone = *patch.Phone
	}

	replace := persistence.SubRecordReplacement{
		Skills: patch.Skills != nil,
		Scans:  patch.Scans != nil,
	}
	if replace.Skills {
		record.Skills = toPersistenceSkills(record.ID, dedupeSkills(*patch.Skills))
	}
	if replace.Scans {
		record.Scans = toPersistenceScans(record.ID, *patch.Scans)
	}
	record.UpdatedAt = s.now().UTC()

	if err := s.attendees.UpdateAttendee(ctx, record, replace); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			return Attendee{}, ErrNotFound
		case errors.Is(err, persistence.ErrDuplicate):
			return Attendee{}, ErrAlreadyExists
		}
		logger.Error("failed to update attendee", "error", err)
		return Attendee{}, fmt.Errorf("failed to update attendee: %w", err)
	}

	updated, err := s.attendees.GetAttendee(ctx, id)
	if err != nil {
		return Attendee{}, fmt.Errorf("failed to reload attendee: %w", err)
	}
	logger.Info("attendee updated")
	return toApplicationAttendee(updated), nil
}

// AddScan appends one activity scan to the attendee addressed by token and
// returns their refreshed record.
func (s *AttendeeService) AddScan(ctx context.Context, token string, input ScanInput) (Attendee, error) {
	if s == nil {
		return Attendee{}, fmt.Errorf("AttendeeService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "attendee", "add_scan", "activity", input.ActivityName)

	vErr := &ValidationError{}
	validateScans([]ScanInput{input}, vErr)
	if vErr.HasErrors() {
		logger.Warn("scan validation failed", "error_kind", ErrorKind(vErr))
		return Attendee{}, vErr
	}

	record, err := s.attendees.GetAttendeeByToken(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Attendee{}, ErrNotFound
		}
		return Attendee{}, fmt.Errorf("failed to load attendee: %w", err)
	}

	scan := persistence.Scan{
		AttendeeID:       record.ID,
		ActivityName:     input.ActivityName,
		ActivityCategory: input.ActivityCategory,
		ScannedAt:        input.ScannedAt.UTC(),
	}
	if err := s.attendees.AddScan(ctx, scan, s.now().UTC()); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return Attendee{}, ErrAlreadyExists
		}
		logger.Error("failed to record scan", "error", err)
		return Attendee{}, fmt.Errorf("failed to record scan: %w", err)
	}

	updated, err := s.attendees.GetAttendee(ctx, record.ID)
	if err != nil {
		return Attendee{}, fmt.Errorf("failed to reload attendee: %w", err)
	}
	metrics.RecordScan()
	logger.Info("scan recorded", "attendee_id", record.ID)
	return toApplicationAttendee(updated), nil
}

func validateAttendeeCore(name, email string, vErr *ValidationError) {
	if strings.TrimSpace(name) == "" {
		vErr.add("name", "name must not be empty")
	}
	if email != "" && !strings.Contains(email, "@") {
		vErr.add("email", "email must contain '@'")
	}
}

func validateSkills(skills []SkillInput, vErr *ValidationError) {
	for _, skill := range skills {
		if strings.TrimSpace(skill.Name) == "" {
			vErr.add("skills", "skill name must not be empty")
			return
		}
	}
}

func validateScans(scans []ScanInput, vErr *ValidationError) {
	for _, scan := range scans {
		if strings.TrimSpace(scan.ActivityName) == "" {
			vErr.add("scans", "activity name must not be empty")
			return
		}
		if scan.ScannedAt.IsZero() {
			vErr.add("scans", "scanned at must be set")
			return
		}
	}
}

func dedupeSkills(skills []SkillInput) []SkillInput {
	return dedupe.FirstSeen(skills, func(s SkillInput) string { return s.Name })
}

func toPersistenceSkills(attendeeID string, skills []SkillInput) []persistence.Skill {
	if len(skills) == 0 {
		return nil
	}
	out := make([]persistence.Skill, 0, len(skills))
	for _, skill := range skills {
		out = append(out, persistence.Skill{
			AttendeeID: attendeeID,
			Name:       skill.Name,
			Rating:     skill.Rating,
		})
	}
	return out
}

func toPersistenceScans(attendeeID string, scans []ScanInput) []persistence.Scan {
	if len(scans) == 0 {
		return nil
	}
	out := make([]persistence.Scan, 0, len(scans))
	for _, scan := range scans {
		out = append(out, persistence.Scan{
			AttendeeID:       attendeeID,
			ActivityName:     scan.ActivityName,
			ActivityCategory: scan.ActivityCategory,
			ScannedAt:        scan.ScannedAt.UTC(),
		})
	}
	return out
}

func toApplicationAttendee(record persistence.Attendee) Attendee {
	attendee := Attendee{
		ID:         record.ID,
		Token:      record.Token,
		Salt:       record.Salt,
		Name:       record.Name,
		Company:    record.Company,
		Email:      record.Email,
		Phone:      record.Phone,
		BadgeCode:  record.BadgeCode,
		SignedIn:   record.SignedIn,
		SignedInAt: record.SignedInAt,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
	for _, skill := range record.Skills {
		attendee.Skills = append(attendee.Skills, Skill{Name: skill.Name, Rating: skill.Rating})
	}
	for _, scan := range record.Scans {
		attendee.Scans = append(attendee.Scans, Scan{
			ActivityName:     scan.ActivityName,
			ActivityCategory: scan.ActivityCategory,
			ScannedAt:        scan.ScannedAt,
		})
	}
	return attendee
}
