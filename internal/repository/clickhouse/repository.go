package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
)

const createTrackingEvents = `
CREATE TABLE IF NOT EXISTS tracking_events (
	event_id String,
	anonymous_id String,
	event_type LowCardinality(String),
	points Int64,
	lead_score Int64,
	stage LowCardinality(String),
	utm_source LowCardinality(String),
	page_path String,
	created_at DateTime64(3, 'UTC'),
	version UInt64
) ENGINE = ReplacingMergeTree(version)
PARTITION BY toYYYYMM(created_at)
ORDER BY (event_type, created_at, event_id)
SETTINGS index_granularity = 8192
`

// Repository mirrors scored events into ClickHouse for ad-hoc aggregation
type Repository struct {
	conn driver.Conn
	log  *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		conn: client.Conn(),
		log:  log,
	}
}

// InitSchema creates the tracking_events table if it does not exist
func (r *Repository) InitSchema(ctx context.Context) error {
	if err := r.conn.Exec(ctx, createTrackingEvents); err != nil {
		return fmt.Errorf("failed to create tracking_events table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized")
	return nil
}

// InsertBatch writes events in one native batch. Redelivered events collapse
// on merge through the version column.
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.AnalyticsEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO tracking_events")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, event := range events {
		version := event.Version
		if version == 0 {
			version = uint64(event.CreatedAt.UnixNano())
		}

		if err := batch.Append(
			event.EventID,
			event.AnonymousID,
			event.EventType,
			event.Points,
			event.LeadScore,
			event.Stage,
			event.UTMSource,
			event.PagePath,
			event.CreatedAt,
			version,
		); err != nil {
			_ = batch.Abort()
			return 0, fmt.Errorf("failed to append event %s to batch: %w", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return len(events), nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

func (r *Repository) Close() error {
	return r.conn.Close()
}

// groupExpression returns the select expression and ordering for a group_by value
func groupExpression(groupBy string) (selectExpr, orderBy string, err error) {
	switch groupBy {
	case "stage":
		return "stage", "total_count DESC", nil
	case "hour":
		return "formatDateTime(toStartOfHour(created_at), '%Y-%m-%d %H:00:00')", "group_value ASC", nil
	case "day":
		return "formatDateTime(toStartOfDay(created_at), '%Y-%m-%d')", "group_value ASC", nil
	default:
		return "", "", fmt.Errorf("unsupported group_by value: %s (supported: hour, day, stage)", groupBy)
	}
}

// GetMetrics aggregates mirrored events of one type between two unix
// timestamps, inclusive
func (r *Repository) GetMetrics(ctx context.Context, query repository.MetricsQuery) (*repository.MetricsResult, error) {
	result := &repository.MetricsResult{
		Groups: []repository.MetricsGroupResult{},
	}

	const where = "WHERE event_type = ? AND toUnixTimestamp(created_at) BETWEEN ? AND ?"
	args := []interface{}{query.EventType, query.From, query.To}

	overall := `
		SELECT count() AS total_count, uniq(anonymous_id) AS unique_count, sum(points) AS total_points
		FROM tracking_events FINAL
		` + where

	if err := r.conn.QueryRow(ctx, overall, args...).
		Scan(&result.TotalCount, &result.UniqueCount, &result.TotalPoints); err != nil {
		return nil, fmt.Errorf("failed to query overall metrics: %w", err)
	}

	if query.GroupBy == "" {
		return result, nil
	}

	selectExpr, orderBy, err := groupExpression(query.GroupBy)
	if err != nil {
		return nil, err
	}

	grouped := fmt.Sprintf(`
		SELECT %s AS group_value, count() AS total_count
		FROM tracking_events FINAL
		%s
		GROUP BY group_value
		ORDER BY %s
	`, selectExpr, where, orderBy)

	rows, err := r.conn.Query(ctx, grouped, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouped metrics: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close grouped metrics rows", zap.Error(err))
		}
	}()

	for rows.Next() {
		var group repository.MetricsGroupResult
		if err := rows.Scan(&group.GroupValue, &group.TotalCount); err != nil {
			return nil, fmt.Errorf("failed to scan grouped metrics row: %w", err)
		}
		result.Groups = append(result.Groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grouped metrics rows: %w", err)
	}

	return result, nil
}
