package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// SessionRepository defines storage operations for sessions
type SessionRepository interface {
	// UpsertAttribution inserts or replaces attribution fields and last_seen.
	// first_seen and duration_ms are never touched.
	UpsertAttribution(ctx context.Context, sessionID string, attribution domain.Attribution, email *string, now time.Time) error

	// GetFirstSeen returns ErrNotFound when the session does not exist
	GetFirstSeen(ctx context.Context, sessionID string) (time.Time, error)

	// UpsertHeartbeat writes first_seen, last_seen and duration_ms
	UpsertHeartbeat(ctx context.Context, sessionID string, firstSeen, lastSeen time.Time, durationMs int64) error

	// Get returns ErrNotFound when the session does not exist
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
}

// LeadRepository defines storage operations for leads
type LeadRepository interface {
	// GetByAnonymousID returns ErrNotFound when no lead exists
	GetByAnonymousID(ctx context.Context, anonymousID string) (*domain.Lead, error)

	// CreateIfAbsent inserts a fresh lead. It returns ErrNotFound when a
	// concurrent insert for the same anonymous id won the race.
	CreateIfAbsent(ctx context.Context, lead *domain.Lead) (*domain.Lead, error)

	// Update writes score, stage and email and refreshes last_seen
	Update(ctx context.Context, id string, score int, stage domain.Stage, email *string, lastSeen time.Time) error
}

// EventRepository defines storage operations for events
type EventRepository interface {
	Insert(ctx context.Context, event *domain.Event) error

	// CountSince counts events for the visitor and type created at or after since
	CountSince(ctx context.Context, anonymousID, eventType string, since time.Time) (int, error)
}

// LeadFilter narrows a lead listing. Zero values match everything;
// MaxScore is exclusive.
type LeadFilter struct {
	Stage    domain.Stage
	MinScore *int
	MaxScore *int
}

// StageCount is the number of leads in one stage
type StageCount struct {
	Stage string
	Count int64
}

// EventTypeCount is the number of events of one type
type EventTypeCount struct {
	EventType string
	Count     int64
}

// DailyCount is the number of events on one UTC day
type DailyCount struct {
	Day   time.Time
	Count int64
}

// SessionSource is the number of sessions and their summed duration for one
// raw referrer and lowercased utm_medium pair
type SessionSource struct {
	Referrer   *string
	UTMMedium  *string
	Sessions   int64
	DurationMs int64
}

// ReportRepository defines read-only reporting queries
type ReportRepository interface {
	CountLeads(ctx context.Context) (int64, error)
	CountLeadsWithMinScore(ctx context.Context, minScore int) (int64, error)
	CountLeadsWithEmail(ctx context.Context) (int64, error)
	AverageLeadScore(ctx context.Context) (float64, error)
	SessionTotals(ctx context.Context) (count int64, totalDurationMs int64, err error)
	StageDistribution(ctx context.Context) ([]StageCount, error)
	ListLeads(ctx context.Context, filter LeadFilter, limit int) ([]domain.Lead, error)
	RecentEvents(ctx context.Context, limit int) ([]domain.Event, error)
	TopEventTypes(ctx context.Context, limit int) ([]EventTypeCount, error)
	DailyEventCounts(ctx context.Context, from, to time.Time) ([]DailyCount, error)
	SessionSources(ctx context.Context) ([]SessionSource, error)
}

// MetricsQuery represents analytics query parameters
type MetricsQuery struct {
	EventType string
	From      int64
	To        int64
	GroupBy   string
}

// MetricsGroupResult represents aggregated metrics for a specific group
type MetricsGroupResult struct {
	GroupValue string
	TotalCount uint64
}

// MetricsResult represents the result of an analytics query
type MetricsResult struct {
	TotalCount  uint64
	UniqueCount uint64
	TotalPoints int64
	Groups      []MetricsGroupResult
}

// AnalyticsRepository defines the interface for the analytics mirror
type AnalyticsRepository interface {
	// InsertBatch inserts a batch of events into the storage
	InsertBatch(ctx context.Context, events []*domain.AnalyticsEvent) (int, error)

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error

	// GetMetrics retrieves aggregated metrics based on the query
	GetMetrics(ctx context.Context, query MetricsQuery) (*MetricsResult, error)
}
