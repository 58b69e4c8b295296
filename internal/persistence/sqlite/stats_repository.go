package sqlite

import (
	"context"
	"time"

	"github.com/example/event-checkin/internal/persistence"
)

// StatsRepository implements persistence.StatsRepository using SQLite.
// Counts are pushed to the database; bound filtering stays with the caller
// because the generic storage contract has no HAVING support.
type StatsRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewStatsRepository creates a new SQLite stats repository.
func NewStatsRepository(pool *ConnectionPool) *StatsRepository {
	return &StatsRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// SkillCounts groups skills by name and counts rows per group.
func (r *StatsRepository) SkillCounts(ctx context.Context) ([]persistence.SkillCount, error) {
	query := `
		SELECT name, COUNT(*) AS frequency
		FROM skills
		GROUP BY name
		ORDER BY name ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var counts []persistence.SkillCount
	for rows.Next() {
		var count persistence.SkillCount
		if err := rows.Scan(&count.Name, &count.Count); err != nil {
			return nil, r.mapper.MapError(err)
		}
		counts = append(counts, count)
	}
	return counts, rows.Err()
}

// ScanCounts groups scans by (activity name, activity category) and counts
// rows per group.
func (r *StatsRepository) ScanCounts(ctx context.Context) ([]persistence.ScanCount, error) {
	query := `
		SELECT activity_name, activity_category, COUNT(*) AS frequency
		FROM scans
		GROUP BY activity_name, activity_category
		ORDER BY activity_name ASC, activity_category ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var counts []persistence.ScanCount
	for rows.Next() {
		var count persistence.ScanCount
		if err := rows.Scan(&count.ActivityName, &count.ActivityCategory, &count.Count); err != nil {
			return nil, r.mapper.MapError(err)
		}
		counts = append(counts, count)
	}
	return counts, rows.Err()
}

// SignInCountsByHour buckets signed-in attendees whose sign-in instant
// falls within [start, end] by UTC hour of day. Timestamps are stored as
// RFC3339 UTC text, so strftime extracts the hour directly and empty
// buckets never appear in the result.
func (r *StatsRepository) SignInCountsByHour(ctx context.Context, start, end time.Time) ([]persistence.HourCount, error) {
	query := `
		SELECT strftime('%H', signed_in_at) AS hour, COUNT(*) AS frequency
		FROM attendees
		WHERE signed_in = 1 AND signed_in_at >= ? AND signed_in_at <= ?
		GROUP BY hour
		ORDER BY hour ASC
	`

	rows, err := r.helper.Query(ctx, query,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var counts []persistence.HourCount
	for rows.Next() {
		var count persistence.HourCount
		if err := rows.Scan(&count.Hour, &count.Count); err != nil {
			return nil, r.mapper.MapError(err)
		}
		counts = append(counts, count)
	}
	return counts, rows.Err()
}
