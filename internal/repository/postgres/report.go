package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
)

// ReportRepository implements repository.ReportRepository for Postgres
type ReportRepository struct {
	db  DB
	log *zap.Logger
}

// NewReportRepository creates a new Postgres reporting repository
func NewReportRepository(db DB, log *zap.Logger) *ReportRepository {
	return &ReportRepository{db: db, log: log}
}

func (r *ReportRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ReportRepository) CountLeads(ctx context.Context) (int64, error) {
	n, err := r.count(ctx, `SELECT count(*) FROM leads`)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return n, nil
}

func (r *ReportRepository) CountLeadsWithMinScore(ctx context.Context, minScore int) (int64, error) {
	n, err := r.count(ctx, `SELECT count(*) FROM leads WHERE lead_score >= $1`, minScore)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads by score: %w", err)
	}
	return n, nil
}

func (r *ReportRepository) CountLeadsWithEmail(ctx context.Context) (int64, error) {
	n, err := r.count(ctx, `SELECT count(*) FROM leads WHERE email IS NOT NULL AND email <> ''`)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads with email: %w", err)
	}
	return n, nil
}

func (r *ReportRepository) AverageLeadScore(ctx context.Context) (float64, error) {
	var avg float64
	if err := r.db.QueryRow(ctx,
		`SELECT COALESCE(avg(lead_score), 0)::float8 FROM leads`,
	).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average lead score: %w", err)
	}
	return avg, nil
}

// SessionTotals returns the session count and the summed duration in raw milliseconds
func (r *ReportRepository) SessionTotals(ctx context.Context) (int64, int64, error) {
	var count, total int64
	if err := r.db.QueryRow(ctx,
		`SELECT count(*), COALESCE(sum(duration_ms), 0)::bigint FROM sessions`,
	).Scan(&count, &total); err != nil {
		return 0, 0, fmt.Errorf("failed to total sessions: %w", err)
	}
	return count, total, nil
}

func (r *ReportRepository) StageDistribution(ctx context.Context) ([]repository.StageCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT COALESCE(stage, 'UNKNOWN') AS stage, count(*) AS total
		 FROM leads
		 GROUP BY stage
		 ORDER BY total DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage distribution: %w", err)
	}
	defer rows.Close()

	result := []repository.StageCount{}
	for rows.Next() {
		var sc repository.StageCount
		if err := rows.Scan(&sc.Stage, &sc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan stage distribution row: %w", err)
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stage distribution rows: %w", err)
	}
	return result, nil
}

// ListLeads returns leads matching filter ordered by score, highest first
func (r *ReportRepository) ListLeads(ctx context.Context, filter repository.LeadFilter, limit int) ([]domain.Lead, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.Stage != "" {
		args = append(args, string(filter.Stage))
		conditions = append(conditions, fmt.Sprintf("stage = $%d", len(args)))
	}
	if filter.MinScore != nil {
		args = append(args, *filter.MinScore)
		conditions = append(conditions, fmt.Sprintf("lead_score >= $%d", len(args)))
	}
	if filter.MaxScore != nil {
		args = append(args, *filter.MaxScore)
		conditions = append(conditions, fmt.Sprintf("lead_score < $%d", len(args)))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY lead_score DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	leads := []domain.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead row: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lead rows: %w", err)
	}
	return leads, nil
}

func (r *ReportRepository) RecentEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id::text, anonymous_id, email, event_type, points, page_url, page_path, referrer,
		        utm_source, utm_medium, utm_campaign, utm_term, utm_content, metadata, created_at
		 FROM events
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(
			&e.ID,
			&e.AnonymousID,
			&e.Email,
			&e.EventType,
			&e.Points,
			&e.PageURL,
			&e.PagePath,
			&e.Referrer,
			&e.UTMSource,
			&e.UTMMedium,
			&e.UTMCampaign,
			&e.UTMTerm,
			&e.UTMContent,
			&e.Metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func (r *ReportRepository) TopEventTypes(ctx context.Context, limit int) ([]repository.EventTypeCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT event_type, count(*) AS total
		 FROM events
		 GROUP BY event_type
		 ORDER BY total DESC, event_type ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query top event types: %w", err)
	}
	defer rows.Close()

	result := []repository.EventTypeCount{}
	for rows.Next() {
		var c repository.EventTypeCount
		if err := rows.Scan(&c.EventType, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan event type row: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event type rows: %w", err)
	}
	return result, nil
}

// DailyEventCounts groups events in [from, to) by UTC day. Days without
// events are absent from the result.
func (r *ReportRepository) DailyEventCounts(ctx context.Context, from, to time.Time) ([]repository.DailyCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, count(*) AS total
		 FROM events
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY day
		 ORDER BY day ASC`,
		from,
		to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily event counts: %w", err)
	}
	defer rows.Close()

	result := []repository.DailyCount{}
	for rows.Next() {
		var c repository.DailyCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily count row: %w", err)
		}
		c.Day = c.Day.UTC()
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily count rows: %w", err)
	}
	return result, nil
}

// SessionSources groups sessions by raw referrer and lowercased utm_medium.
// Hostname normalisation happens in the caller.
func (r *ReportRepository) SessionSources(ctx context.Context) ([]repository.SessionSource, error) {
	rows, err := r.db.Query(ctx,
		`SELECT referrer, lower(utm_medium) AS medium, count(*) AS sessions,
		        COALESCE(sum(duration_ms), 0)::bigint AS duration_ms
		 FROM sessions
		 GROUP BY referrer, lower(utm_medium)`)
	if err != nil {
		return nil, fmt.Errorf("failed to query session sources: %w", err)
	}
	defer rows.Close()

	sources := []repository.SessionSource{}
	for rows.Next() {
		var src repository.SessionSource
		if err := rows.Scan(&src.Referrer, &src.UTMMedium, &src.Sessions, &src.DurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan session source row: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session source rows: %w", err)
	}
	return sources, nil
}
