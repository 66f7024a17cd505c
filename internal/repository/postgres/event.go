package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
)

// EventRepository implements repository.EventRepository for Postgres
type EventRepository struct {
	db  DB
	log *zap.Logger
}

// NewEventRepository creates a new Postgres event repository
func NewEventRepository(db DB, log *zap.Logger) *EventRepository {
	return &EventRepository{db: db, log: log}
}

// Insert appends an accepted event
func (r *EventRepository) Insert(ctx context.Context, event *domain.Event) error {
	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, anonymous_id, email, event_type, points, page_url, page_path, referrer,
		                     utm_source, utm_medium, utm_campaign, utm_term, utm_content, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		event.ID,
		event.AnonymousID,
		event.Email,
		event.EventType,
		event.Points,
		event.PageURL,
		event.PagePath,
		event.Referrer,
		event.UTMSource,
		event.UTMMedium,
		event.UTMCampaign,
		event.UTMTerm,
		event.UTMContent,
		metadata,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// CountSince counts the visitor's events of one type created at or after since
func (r *EventRepository) CountSince(ctx context.Context, anonymousID, eventType string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM events WHERE anonymous_id = $1 AND event_type = $2 AND created_at >= $3`,
		anonymousID,
		eventType,
		since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
