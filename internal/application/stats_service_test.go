package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/event-checkin/internal/persistence"
)

type statsStoreStub struct {
	skills []persistence.SkillCount
	scans  []persistence.ScanCount
	hours  []persistence.HourCount
	err    error
}

func (s *statsStoreStub) SkillCounts(ctx context.Context) ([]persistence.SkillCount, error) {
	return s.skills, s.err
}

func (s *statsStoreStub) ScanCounts(ctx context.Context) ([]persistence.ScanCount, error) {
	return s.scans, s.err
}

func (s *statsStoreStub) SignInCountsByHour(ctx context.Context, start, end time.Time) ([]persistence.HourCount, error) {
	return s.hours, s.err
}

func intPtr(v int) *int { return &v }

func TestSkillFrequencies(t *testing.T) {
	t.Parallel()

	store := &statsStoreStub{skills: []persistence.SkillCount{
		{Name: "Swift", Count: 5},
		{Name: "OpenCV", Count: 2},
		{Name: "Go", Count: 8},
	}}
	service := NewStatsService(store, nil)

	t.Run("no filter returns every row", func(t *testing.T) {
		t.Parallel()
		rows, err := service.SkillFrequencies(context.Background(), FrequencyFilter{})
		if err != nil {
			t.Fatalf("SkillFrequencies returned error: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		t.Parallel()
		rows, err := service.SkillFrequencies(context.Background(), FrequencyFilter{Min: intPtr(4), Max: intPtr(6)})
		if err != nil {
			t.Fatalf("SkillFrequencies returned error: %v", err)
		}
		if len(rows) != 1 || rows[0].Skill != "Swift" || rows[0].Count != 5 {
			t.Fatalf("expected only Swift with count 5, got %+v", rows)
		}
	})

	t.Run("a filter matching nothing yields an empty result", func(t *testing.T) {
		t.Parallel()
		rows, err := service.SkillFrequencies(context.Background(), FrequencyFilter{Min: intPtr(100)})
		if err != nil {
			t.Fatalf("SkillFrequencies returned error: %v", err)
		}
		if len(rows) != 0 {
			t.Fatalf("expected no rows, got %+v", rows)
		}
	})
}

func TestScanFrequencies(t *testing.T) {
	t.Parallel()

	store := &statsStoreStub{scans: []persistence.ScanCount{
		{ActivityName: "breakfast", ActivityCategory: "meal", Count: 10},
		{ActivityName: "lunch", ActivityCategory: "meal", Count: 12},
		{ActivityName: "opening_keynote", ActivityCategory: "talk", Count: 9},
	}}
	service := NewStatsService(store, nil)

	t.Run("category filter keeps matching rows", func(t *testing.T) {
		t.Parallel()
		category := "meal"
		rows, err := service.ScanFrequencies(context.Background(), FrequencyFilter{Category: &category})
		if err != nil {
			t.Fatalf("ScanFrequencies returned error: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 meal rows, got %+v", rows)
		}
	})

	t.Run("category and bounds combine", func(t *testing.T) {
		t.Parallel()
		category := "meal"
		rows, err := service.ScanFrequencies(context.Background(), FrequencyFilter{Category: &category, Min: intPtr(11)})
		if err != nil {
			t.Fatalf("ScanFrequencies returned error: %v", err)
		}
		if len(rows) != 1 || rows[0].ActivityName != "lunch" {
			t.Fatalf("expected only lunch, got %+v", rows)
		}
	})
}

func TestSignInHistogram(t *testing.T) {
	t.Parallel()

	t.Run("returns only non-empty buckets", func(t *testing.T) {
		t.Parallel()
		store := &statsStoreStub{hours: []persistence.HourCount{
			{Hour: "19", Count: 1},
			{Hour: "20", Count: 5},
			{Hour: "21", Count: 1},
			{Hour: "22", Count: 1},
			{Hour: "23", Count: 2},
		}}
		service := NewStatsService(store, nil)

		start := time.Date(2025, time.February, 28, 19, 0, 0, 0, time.UTC)
		end := time.Date(2025, time.February, 28, 23, 59, 59, 0, time.UTC)
		buckets, err := service.SignInHistogram(context.Background(), start, end)
		if err != nil {
			t.Fatalf("SignInHistogram returned error: %v", err)
		}
		if len(buckets) != 5 {
			t.Fatalf("expected 5 buckets, got %d", len(buckets))
		}
		if buckets[1].Hour != "20" || buckets[1].Count != 5 {
			t.Fatalf("expected hour 20 with count 5, got %+v", buckets[1])
		}
	})

	t.Run("rejects an inverted window", func(t *testing.T) {
		t.Parallel()
		service := NewStatsService(&statsStoreStub{}, nil)

		start := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
		end := start.Add(-time.Hour)
		_, err := service.SignInHistogram(context.Background(), start, end)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("rejects a missing bound", func(t *testing.T) {
		t.Parallel()
		service := NewStatsService(&statsStoreStub{}, nil)

		_, err := service.SignInHistogram(context.Background(), time.Time{}, time.Now())
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}
