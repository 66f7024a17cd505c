package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/scoring"
)

// FrequencyGuard limits capped event types to one scored occurrence per
// visitor per UTC calendar day
type FrequencyGuard struct {
	events repository.EventRepository
	policy *scoring.Policy
	log    *zap.Logger
	now    func() time.Time
}

// NewFrequencyGuard creates a new frequency guard
func NewFrequencyGuard(events repository.EventRepository, policy *scoring.Policy, log *zap.Logger) *FrequencyGuard {
	return &FrequencyGuard{
		events: events,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
}

// IsAllowed reports whether the event may be scored. Uncapped types are
// always allowed; a failed lookup allows the event.
func (g *FrequencyGuard) IsAllowed(ctx context.Context, anonymousID, eventType string) bool {
	if !g.policy.IsDailyCapped(eventType) {
		return true
	}

	count, err := g.events.CountSince(ctx, anonymousID, eventType, startOfUTCDay(g.now()))
	if err != nil {
		g.log.Warn("Frequency check failed, allowing event",
			zap.String("anonymous_id", anonymousID),
			zap.String("event_type", eventType),
			zap.Error(err))
		return true
	}

	return count < 1
}

func startOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
