package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/crm"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/dto"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/queue"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/scoring"
)

// defaultCRMTimeout bounds a whole sync, which spans several CRM calls
const defaultCRMTimeout = 15 * time.Second

// TrackResult is the outcome of one tracked event
type TrackResult struct {
	Skipped  bool
	NewScore int
	Stage    domain.Stage
}

// TrackingDeps groups the collaborators of the tracking pipeline. Publisher
// may be nil when the analytics mirror is not configured.
type TrackingDeps struct {
	Guard      *FrequencyGuard
	Ledger     *LeadLedger
	Sessions   *SessionService
	Events     repository.EventRepository
	Engine     *scoring.Engine
	Policy     *scoring.Policy
	CRM        CRMSyncer
	Publisher  queue.QueuePublisher
	CRMTimeout time.Duration
}

// TrackingService scores behavioral events and keeps leads in sync
type TrackingService struct {
	deps TrackingDeps
	log  *zap.Logger
	now  func() time.Time
}

// NewTrackingService creates a new tracking service
func NewTrackingService(deps TrackingDeps, log *zap.Logger) *TrackingService {
	if deps.CRMTimeout <= 0 {
		deps.CRMTimeout = defaultCRMTimeout
	}

	return &TrackingService{
		deps: deps,
		log:  log,
		now:  time.Now,
	}
}

// pageContext holds the metadata fields lifted into event columns
type pageContext struct {
	PageURL  *string
	PagePath *string
	domain.Attribution
}

// TrackEvent runs one event through the frequency guard, the lead ledger,
// the scoring engine and, when warranted, the CRM sync. CRM failures are
// logged and never returned.
func (s *TrackingService) TrackEvent(ctx context.Context, req *dto.TrackEventRequest) (*TrackResult, error) {
	if req.AnonymousID == "" {
		return nil, fmt.Errorf("%w: missing anonymous_id", ErrValidation)
	}

	if !s.deps.Guard.IsAllowed(ctx, req.AnonymousID, req.EventType) {
		s.log.Info("Points capped for event",
			zap.String("anonymous_id", req.AnonymousID),
			zap.String("event_type", req.EventType))
		return &TrackResult{Skipped: true}, nil
	}

	email := nonEmpty(req.Email)

	lead, err := s.deps.Ledger.FindOrCreate(ctx, req.AnonymousID, email)
	if err != nil {
		return nil, err
	}

	page := flattenMetadata(req.Metadata)
	now := s.now().UTC()

	event := &domain.Event{
		ID:          uuid.NewString(),
		AnonymousID: req.AnonymousID,
		Email:       email,
		EventType:   req.EventType,
		Points:      req.Points,
		PageURL:     page.PageURL,
		PagePath:    page.PagePath,
		Attribution: page.Attribution,
		Metadata:    req.Metadata,
		CreatedAt:   now,
	}
	if err := s.deps.Events.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record event: %w", err)
	}

	if err := s.deps.Sessions.RecordAttribution(ctx, req.AnonymousID, page.Attribution, email); err != nil {
		s.log.Warn("Failed to record session attribution",
			zap.String("anonymous_id", req.AnonymousID),
			zap.Error(err))
	}

	result := s.deps.Engine.Apply(lead.LeadScore, lead.Stage, req.Points)

	newEmail := lead.Email
	if email != nil && !sameEmail(email, lead.Email) {
		newEmail = email
	}
	emailJustAdded := !lead.HasEmail() && newEmail != nil

	if _, err := s.deps.Ledger.ApplyUpdate(ctx, lead, result.NewScore, result.NewStage, newEmail); err != nil {
		return nil, err
	}

	if newEmail != nil && (result.StageChanged || emailJustAdded || s.deps.Policy.IsIdentify(req.EventType)) {
		s.syncCRM(ctx, crmSync{
			email:         *newEmail,
			anonymousID:   req.AnonymousID,
			eventType:     req.EventType,
			previousStage: lead.Stage,
			result:        result,
			page:          page,
		})
	}

	s.publish(ctx, event, result)

	s.log.Info("Event scored",
		zap.String("anonymous_id", req.AnonymousID),
		zap.String("event_type", req.EventType),
		zap.Int("score", result.NewScore),
		zap.String("stage", string(result.NewStage)))

	return &TrackResult{
		NewScore: result.NewScore,
		Stage:    result.NewStage,
	}, nil
}

type crmSync struct {
	email         string
	anonymousID   string
	eventType     string
	previousStage domain.Stage
	result        scoring.Result
	page          pageContext
}

// syncCRM mirrors the lead into the CRM under its own deadline. The request
// context's cancellation does not abort it.
func (s *TrackingService) syncCRM(parent context.Context, sync crmSync) {
	if s.deps.CRM == nil || !s.deps.CRM.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.deps.CRMTimeout)
	defer cancel()

	logFailure := func(msg string, err error) {
		s.log.Error(msg,
			zap.String("anonymous_id", sync.anonymousID),
			zap.String("stage", string(sync.result.NewStage)),
			zap.Int("score", sync.result.NewScore),
			zap.Error(err))
	}

	session, err := s.deps.Sessions.Get(ctx, sync.anonymousID)
	if err != nil {
		s.log.Warn("CRM session lookup failed",
			zap.String("anonymous_id", sync.anonymousID),
			zap.Error(err))
	}

	attrs := crm.ProfileAttributes{
		Email:       sync.email,
		AnonymousID: sync.anonymousID,
		LeadScore:   sync.result.NewScore,
		Stage:       sync.result.NewStage,
		UTMSource:   sync.page.UTMSource,
		UTMMedium:   sync.page.UTMMedium,
		UTMCampaign: sync.page.UTMCampaign,
		Referrer:    sync.page.Referrer,
	}
	if session != nil {
		attrs.UTMSource = coalesce(attrs.UTMSource, session.UTMSource)
		attrs.UTMMedium = coalesce(attrs.UTMMedium, session.UTMMedium)
		attrs.UTMCampaign = coalesce(attrs.UTMCampaign, session.UTMCampaign)
		attrs.Referrer = coalesce(attrs.Referrer, session.Referrer)
		attrs.FirstSeen = &session.FirstSeen
		attrs.LastSeen = &session.LastSeen
		attrs.DurationMs = &session.DurationMs
	}

	profileID, err := s.deps.CRM.UpsertProfile(ctx, attrs)
	if err != nil {
		logFailure("CRM profile sync failed", err)
		return
	}
	if profileID == "" {
		return
	}

	if err := s.deps.CRM.ApplyStageTag(ctx, profileID, sync.result.NewStage, sync.previousStage); err != nil {
		logFailure("CRM stage tag failed", err)
	}

	if !s.deps.Engine.ReachedMilestone(sync.result) {
		return
	}

	properties := map[string]interface{}{
		"score":        sync.result.NewScore,
		"anonymous_id": sync.anonymousID,
	}
	putOptional(properties, "event_type", nonEmpty(&sync.eventType))
	putOptional(properties, "page_url", sync.page.PageURL)
	putOptional(properties, "page_path", sync.page.PagePath)
	putOptional(properties, "utm_source", sync.page.UTMSource)
	putOptional(properties, "utm_medium", sync.page.UTMMedium)
	putOptional(properties, "utm_campaign", sync.page.UTMCampaign)
	putOptional(properties, "referrer", sync.page.Referrer)

	if err := s.deps.CRM.EmitMilestoneEvent(ctx, profileID, properties); err != nil {
		logFailure("CRM milestone event failed", err)
		return
	}

	s.log.Info("Lead reached milestone stage",
		zap.String("anonymous_id", sync.anonymousID),
		zap.String("stage", string(sync.result.NewStage)),
		zap.Int("score", sync.result.NewScore))
}

// publish mirrors the scored event to the analytics queue, best-effort
func (s *TrackingService) publish(ctx context.Context, event *domain.Event, result scoring.Result) {
	if s.deps.Publisher == nil {
		return
	}

	analytics := &domain.AnalyticsEvent{
		EventID:     event.ID,
		AnonymousID: event.AnonymousID,
		EventType:   event.EventType,
		Points:      int64(event.Points),
		LeadScore:   int64(result.NewScore),
		Stage:       string(result.NewStage),
		UTMSource:   deref(event.UTMSource),
		PagePath:    deref(event.PagePath),
		CreatedAt:   event.CreatedAt,
		Version:     uint64(event.CreatedAt.UnixNano()),
	}

	if err := s.deps.Publisher.PublishEvent(ctx, analytics); err != nil {
		s.log.Warn("Failed to publish event to analytics queue",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

func flattenMetadata(metadata map[string]interface{}) pageContext {
	return pageContext{
		PageURL:  metadataString(metadata, "page_url"),
		PagePath: metadataString(metadata, "page_path"),
		Attribution: domain.Attribution{
			Referrer:    metadataString(metadata, "referrer"),
			UTMSource:   metadataString(metadata, "utm_source"),
			UTMMedium:   metadataString(metadata, "utm_medium"),
			UTMCampaign: metadataString(metadata, "utm_campaign"),
			UTMTerm:     metadataString(metadata, "utm_term"),
			UTMContent:  metadataString(metadata, "utm_content"),
		},
	}
}

func metadataString(metadata map[string]interface{}, key string) *string {
	switch v := metadata[key].(type) {
	case string:
		return nonEmpty(&v)
	case nil, bool:
		return nil
	default:
		s := fmt.Sprint(v)
		return &s
	}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func coalesce(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func putOptional(m map[string]interface{}, key string, value *string) {
	if value != nil {
		m[key] = *value
	}
}
