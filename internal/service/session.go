package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/dto"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
)

// SessionService records attribution and engagement time per session
type SessionService struct {
	repository repository.SessionRepository
	log        *zap.Logger
	now        func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(repo repository.SessionRepository, log *zap.Logger) *SessionService {
	return &SessionService{
		repository: repo,
		log:        log,
		now:        time.Now,
	}
}

// UpsertAttribution replaces the session's attribution fields and refreshes
// last_seen. first_seen and duration are left alone.
func (s *SessionService) UpsertAttribution(ctx context.Context, req *dto.SessionUpsertRequest) error {
	if req.SessionID == "" {
		return fmt.Errorf("%w: missing session_id", ErrValidation)
	}

	return s.RecordAttribution(ctx, req.SessionID, domain.Attribution{
		Referrer:    req.Referrer,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		UTMTerm:     req.UTMTerm,
		UTMContent:  req.UTMContent,
	}, req.Email)
}

// RecordAttribution writes attribution for a session id. Fields passed as
// nil clear the stored value.
func (s *SessionService) RecordAttribution(ctx context.Context, sessionID string, attribution domain.Attribution, email *string) error {
	if err := s.repository.UpsertAttribution(ctx, sessionID, attribution, email, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// Ping records a heartbeat and returns the elapsed time since first_seen in
// milliseconds. An unknown session starts now with a zero duration.
func (s *SessionService) Ping(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("%w: missing session_id", ErrValidation)
	}

	now := s.now().UTC()
	firstSeen, err := s.repository.GetFirstSeen(ctx, sessionID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		firstSeen = now
	case err != nil:
		return 0, fmt.Errorf("failed to read session: %w", err)
	}

	durationMs := now.Sub(firstSeen).Milliseconds()
	if durationMs < 0 {
		durationMs = 0
	}

	if err := s.repository.UpsertHeartbeat(ctx, sessionID, firstSeen, now, durationMs); err != nil {
		return 0, fmt.Errorf("failed to record heartbeat: %w", err)
	}

	return durationMs, nil
}

// Get returns the session snapshot, or nil when the session is unknown
func (s *SessionService) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.repository.Get(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return session, nil
}
