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

const leadColumns = `id::text, anonymous_id, email, lead_score, stage, created_at, last_seen`

func scanLead(row pgx.Row) (*domain.Lead, error) {
	var (
		lead  domain.Lead
		stage string
	)
	if err := row.Scan(
		&lead.ID,
		&lead.AnonymousID,
		&lead.Email,
		&lead.LeadScore,
		&stage,
		&lead.CreatedAt,
		&lead.LastSeen,
	); err != nil {
		return nil, err
	}
	lead.Stage = domain.Stage(stage)
	return &lead, nil
}

// LeadRepository implements repository.LeadRepository for Postgres
type LeadRepository struct {
	db  DB
	log *zap.Logger
}

// NewLeadRepository creates a new Postgres lead repository
func NewLeadRepository(db DB, log *zap.Logger) *LeadRepository {
	return &LeadRepository{db: db, log: log}
}

// GetByAnonymousID looks a lead up by its external correlation key
func (r *LeadRepository) GetByAnonymousID(ctx context.Context, anonymousID string) (*domain.Lead, error) {
	lead, err := scanLead(r.db.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE anonymous_id = $1`,
		anonymousID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lead: %w", err)
	}
	return lead, nil
}

// CreateIfAbsent inserts the lead unless one already exists for its
// anonymous id, in which case ErrNotFound signals the caller to re-read.
func (r *LeadRepository) CreateIfAbsent(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	created, err := scanLead(r.db.QueryRow(ctx,
		`INSERT INTO leads (id, anonymous_id, email, lead_score, stage, created_at, last_seen)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (anonymous_id) DO NOTHING
		 RETURNING `+leadColumns,
		lead.ID,
		lead.AnonymousID,
		lead.Email,
		lead.LeadScore,
		string(lead.Stage),
		lead.CreatedAt,
		lead.LastSeen,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		r.log.Debug("Lead insert lost a race, existing row kept",
			zap.String("anonymous_id", lead.AnonymousID))
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return created, nil
}

// Update writes the scoring state of a lead
func (r *LeadRepository) Update(ctx context.Context, id string, score int, stage domain.Stage, email *string, lastSeen time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE leads SET lead_score = $2, stage = $3, email = $4, last_seen = $5 WHERE id = $1`,
		id,
		score,
		string(stage),
		email,
		lastSeen,
	)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update lead %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
