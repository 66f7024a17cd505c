package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
)

// SessionRepository implements repository.SessionRepository for Postgres
type SessionRepository struct {
	db  DB
	log *zap.Logger
}

// NewSessionRepository creates a new Postgres session repository
func NewSessionRepository(db DB, log *zap.Logger) *SessionRepository {
	return &SessionRepository{db: db, log: log}
}

// UpsertAttribution replaces the attribution columns of the session. A new
// row gets first_seen = now; an existing row keeps its first_seen.
func (r *SessionRepository) UpsertAttribution(ctx context.Context, sessionID string, attribution domain.Attribution, email *string, now time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (session_id, first_seen, last_seen, referrer, utm_source, utm_medium, utm_campaign, utm_term, utm_content, email)
		 VALUES ($1, $2, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (session_id) DO UPDATE
		 SET last_seen = EXCLUDED.last_seen,
		     referrer = EXCLUDED.referrer,
		     utm_source = EXCLUDED.utm_source,
		     utm_medium = EXCLUDED.utm_medium,
		     utm_campaign = EXCLUDED.utm_campaign,
		     utm_term = EXCLUDED.utm_term,
		     utm_content = EXCLUDED.utm_content,
		     email = EXCLUDED.email`,
		sessionID,
		now,
		attribution.Referrer,
		attribution.UTMSource,
		attribution.UTMMedium,
		attribution.UTMCampaign,
		attribution.UTMTerm,
		attribution.UTMContent,
		email,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session attribution: %w", err)
	}
	return nil
}

// GetFirstSeen returns the first_seen timestamp of a session
func (r *SessionRepository) GetFirstSeen(ctx context.Context, sessionID string) (time.Time, error) {
	var firstSeen time.Time
	err := r.db.QueryRow(ctx,
		`SELECT first_seen FROM sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&firstSeen)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, repository.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read session first_seen: %w", err)
	}
	return firstSeen, nil
}

// UpsertHeartbeat writes the engagement timestamps and duration of a session
func (r *SessionRepository) UpsertHeartbeat(ctx context.Context, sessionID string, firstSeen, lastSeen time.Time, durationMs int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (session_id, first_seen, last_seen, duration_ms)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id) DO UPDATE
		 SET first_seen = EXCLUDED.first_seen,
		     last_seen = EXCLUDED.last_seen,
		     duration_ms = EXCLUDED.duration_ms`,
		sessionID,
		firstSeen,
		lastSeen,
		durationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session heartbeat: %w", err)
	}
	return nil
}

// Get returns a full session row
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRow(ctx,
		`SELECT session_id, first_seen, last_seen, duration_ms, referrer, utm_source, utm_medium, utm_campaign, utm_term, utm_content, email
		 FROM sessions WHERE session_id = $1`,
		sessionID,
	).Scan(
		&s.SessionID,
		&s.FirstSeen,
		&s.LastSeen,
		&s.DurationMs,
		&s.Referrer,
		&s.UTMSource,
		&s.UTMMedium,
		&s.UTMCampaign,
		&s.UTMTerm,
		&s.UTMContent,
		&s.Email,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return &s, nil
}
