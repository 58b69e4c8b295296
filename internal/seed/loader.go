// Package seed bulk-loads attendee records from a JSON export. One bad
// record never aborts the batch; failures are counted and logged so the rest
// of the file still lands.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/example/event-checkin/internal/application"
	"github.com/example/event-checkin/internal/metrics"
)

// AttendeeCreator is the single application operation the loader drives.
// Going through the service keeps identity issuance and skill deduplication
// identical to the live registration path.
type AttendeeCreator interface {
	CreateAttendee(ctx context.Context, input application.CreateAttendeeInput) (application.Attendee, error)
}

// EventCreator registers one event reference record.
type EventCreator interface {
	CreateEvent(ctx context.Context, name string) error
}

// Record mirrors one attendee entry of the JSON export.
type Record struct {
	Name      string        `json:"name"`
	Company   string        `json:"company"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	BadgeCode string        `json:"badge_code"`
	Skills    []SkillRecord `json:"skills"`
	Scans     []ScanRecord  `json:"scans"`
}

// SkillRecord mirrors one skill entry of the JSON export.
type SkillRecord struct {
	Skill  string `json:"skill"`
	Rating int    `json:"rating"`
}

// ScanRecord mirrors one scan entry of the JSON export.
type ScanRecord struct {
	ActivityName     string    `json:"activity_name"`
	ActivityCategory string    `json:"activity_category"`
	ScannedAt        time.Time `json:"scanned_at"`
}

// Summary reports the outcome of a load.
type Summary struct {
	Loaded int
	Failed int
}

// Loader drives attendee creation from an export file.
type Loader struct {
	attendees AttendeeCreator
	events    EventCreator
	logger    *slog.Logger
}

// NewLoader wires the loader dependencies.
func NewLoader(attendees AttendeeCreator, events EventCreator, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{attendees: attendees, events: events, logger: logger}
}

// LoadFile reads the named JSON file and creates one attendee per record.
func (l *Loader) LoadFile(ctx context.Context, path string) (Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer file.Close()
	return l.Load(ctx, file)
}

// Load decodes a JSON array of records and creates each attendee in order.
// A record that fails validation or persistence is logged, counted and
// skipped; only a malformed file aborts the whole load.
func (l *Loader) Load(ctx context.Context, r io.Reader) (Summary, error) {
	if l == nil || l.attendees == nil {
		return Summary{}, fmt.Errorf("loader is not configured")
	}

	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return Summary{}, fmt.Errorf("failed to decode seed file: %w", err)
	}

	var summary Summary
	for i, record := range records {
		input := application.CreateAttendeeInput{
			Name:      record.Name,
			Company:   record.Company,
			Email:     record.Email,
			Phone:     record.Phone,
			BadgeCode: record.BadgeCode,
		}
		for _, skill := range record.Skills {
			input.Skills = append(input.Skills, application.SkillInput{Name: skill.Skill, Rating: skill.Rating})
		}
		for _, scan := range record.Scans {
			input.Scans = append(input.Scans, application.ScanInput{
				ActivityName:     scan.ActivityName,
				ActivityCategory: scan.ActivityCategory,
				ScannedAt:        scan.ScannedAt,
			})
		}

		if _, err := l.attendees.CreateAttendee(ctx, input); err != nil {
			summary.Failed++
			metrics.RecordSeedFailure()
			l.logger.Warn("failed to load attendee record",
				"index", i,
				"name", record.Name,
				"error", err,
				"error_kind", application.ErrorKind(err),
			)
			continue
		}
		summary.Loaded++
	}

	l.logger.Info("seed load finished", "loaded", summary.Loaded, "failed", summary.Failed)
	return summary, nil
}

// LoadEvents registers the event reference set. Events that already exist
// are skipped without failing the load.
func (l *Loader) LoadEvents(ctx context.Context, names []string) (Summary, error) {
	if l == nil || l.events == nil {
		return Summary{}, fmt.Errorf("loader is not configured")
	}

	var summary Summary
	for _, name := range names {
		if err := l.events.CreateEvent(ctx, name); err != nil {
			summary.Failed++
			l.logger.Warn("failed to load event", "event", name, "error", err)
			continue
		}
		summary.Loaded++
	}
	return summary, nil
}
