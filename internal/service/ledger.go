package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
)

// LeadLedger owns the per-visitor lead record
type LeadLedger struct {
	repository repository.LeadRepository
	log        *zap.Logger
	now        func() time.Time
}

// NewLeadLedger creates a new lead ledger
func NewLeadLedger(repo repository.LeadRepository, log *zap.Logger) *LeadLedger {
	return &LeadLedger{
		repository: repo,
		log:        log,
		now:        time.Now,
	}
}

// FindOrCreate returns the lead for anonymousID, creating a VISITOR lead with
// a zero score when none exists. A concurrent create for the same visitor is
// resolved by reading the winner's row.
func (l *LeadLedger) FindOrCreate(ctx context.Context, anonymousID string, email *string) (*domain.Lead, error) {
	lead, err := l.repository.GetByAnonymousID(ctx, anonymousID)
	if err == nil {
		return lead, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to read lead: %w", err)
	}

	now := l.now().UTC()
	created, err := l.repository.CreateIfAbsent(ctx, &domain.Lead{
		ID:          uuid.NewString(),
		AnonymousID: anonymousID,
		Email:       email,
		LeadScore:   0,
		Stage:       domain.StageVisitor,
		CreatedAt:   now,
		LastSeen:    now,
	})
	if err == nil {
		l.log.Debug("Lead created", zap.String("anonymous_id", anonymousID))
		return created, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	l.log.Debug("Lead created concurrently, re-reading", zap.String("anonymous_id", anonymousID))
	lead, err = l.repository.GetByAnonymousID(ctx, anonymousID)
	if err != nil {
		return nil, fmt.Errorf("failed to read lead after concurrent create: %w", err)
	}
	return lead, nil
}

// ApplyUpdate persists score, stage and email when any of them differ from
// the stored lead, refreshing last_seen. It reports whether a write happened.
func (l *LeadLedger) ApplyUpdate(ctx context.Context, lead *domain.Lead, score int, stage domain.Stage, email *string) (bool, error) {
	if score == lead.LeadScore && stage == lead.Stage && sameEmail(email, lead.Email) {
		return false, nil
	}

	if err := l.repository.Update(ctx, lead.ID, score, stage, email, l.now().UTC()); err != nil {
		return false, fmt.Errorf("failed to update lead: %w", err)
	}

	return true, nil
}

func sameEmail(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
