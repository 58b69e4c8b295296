package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/event-checkin/internal/persistence"
)

// StatsStore answers the grouped-count queries behind the aggregations.
type StatsStore interface {
	SkillCounts(ctx context.Context) ([]persistence.SkillCount, error)
	ScanCounts(ctx context.Context) ([]persistence.ScanCount, error)
	SignInCountsByHour(ctx context.Context, start, end time.Time) ([]persistence.HourCount, error)
}

// StatsService derives frequency and histogram views over attendee data.
// The storage layer returns unfiltered grouped counts; bound and category
// filtering happens here.
type StatsService struct {
	stats  StatsStore
	logger *slog.Logger
}

// NewStatsService wires dependencies for aggregation queries.
func NewStatsService(stats StatsStore, logger *slog.Logger) *StatsService {
	return &StatsService{stats: stats, logger: logger}
}

// SkillFrequencies counts attendees per skill name, keeping rows whose
// count lies within the filter bounds. An unknown skill simply yields no
// row; there is no error case for an empty result.
func (s *StatsService) SkillFrequencies(ctx context.Context, filter FrequencyFilter) ([]SkillFrequency, error) {
	if s == nil {
		return nil, fmt.Errorf("StatsService is nil")
	}
	rows, err := s.stats.SkillCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count skills: %w", err)
	}

	frequencies := make([]SkillFrequency, 0, len(rows))
	for _, row := range rows {
		if !withinBounds(row.Count, filter.Min, filter.Max) {
			continue
		}
		frequencies = append(frequencies, SkillFrequency{Skill: row.Name, Count: row.Count})
	}
	return frequencies, nil
}

// ScanFrequencies counts scans per activity, keeping rows whose count lies
// within the filter bounds and, when a category is given, whose activity
// belongs to it.
func (s *StatsService) ScanFrequencies(ctx context.Context, filter FrequencyFilter) ([]ScanFrequency, error) {
	if s == nil {
		return nil, fmt.Errorf("StatsService is nil")
	}
	rows, err := s.stats.ScanCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count scans: %w", err)
	}

	frequencies := make([]ScanFrequency, 0, len(rows))
	for _, row := range rows {
		if !withinBounds(row.Count, filter.Min, filter.Max) {
			continue
		}
		if filter.Category != nil && row.ActivityCategory != *filter.Category {
			continue
		}
		frequencies = append(frequencies, ScanFrequency{
			ActivityName:     row.ActivityName,
			ActivityCategory: row.ActivityCategory,
			Count:            row.Count,
		})
	}
	return frequencies, nil
}

// SignInHistogram buckets currently signed-in attendees by the UTC hour of
// their sign-in instant, over the inclusive [start, end] window. Hours with
// no sign-ins are omitted rather than reported as zero.
func (s *StatsService) SignInHistogram(ctx context.Context, start, end time.Time) ([]HistogramBucket, error) {
	if s == nil {
		return nil, fmt.Errorf("StatsService is nil")
	}

	vErr := &ValidationError{}
	if start.IsZero() {
		vErr.add("start", "start must be set")
	}
	if end.IsZero() {
		vErr.add("end", "end must be set")
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		vErr.add("end", "end must not precede start")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	rows, err := s.stats.SignInCountsByHour(ctx, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to build sign-in histogram: %w", err)
	}

	buckets := make([]HistogramBucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, HistogramBucket{Hour: row.Hour, Count: row.Count})
	}
	return buckets, nil
}

func withinBounds(count int, min, max *int) bool {
	if min != nil && count < *min {
		return false
	}
	if max != nil && count > *max {
		return false
	}
	return true
}
