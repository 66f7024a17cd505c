package service

import (
	"context"
	"errors"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/crm"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/dto"
)

// ErrValidation marks request errors that map to HTTP 400
var ErrValidation = errors.New("validation error")

// ErrUnavailable marks features whose backing store is not configured
var ErrUnavailable = errors.New("not configured")

// SessionServicer defines the interface for session operations
type SessionServicer interface {
	UpsertAttribution(ctx context.Context, req *dto.SessionUpsertRequest) error
	Ping(ctx context.Context, sessionID string) (int64, error)
}

// TrackingServicer defines the interface for the event scoring pipeline
type TrackingServicer interface {
	TrackEvent(ctx context.Context, req *dto.TrackEventRequest) (*TrackResult, error)
}

// ReportServicer defines the interface for dashboard queries
type ReportServicer interface {
	Summary(ctx context.Context) (*dto.SummaryResponse, error)
	StageDistribution(ctx context.Context) ([]dto.StageCount, error)
	Segment(ctx context.Context, segment string) ([]dto.LeadView, error)
	RecentEvents(ctx context.Context, limit int) ([]dto.EventView, error)
	Trends(ctx context.Context) ([]dto.DailyCount, error)
	TopEvents(ctx context.Context) ([]dto.EventTypeCount, error)
	Journey(ctx context.Context) (*dto.JourneyResponse, error)
}

// MetricsServicer defines the interface for analytics mirror queries
type MetricsServicer interface {
	GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error)
}

// CRMSyncer mirrors leads into the marketing platform
type CRMSyncer interface {
	Enabled() bool
	UpsertProfile(ctx context.Context, attrs crm.ProfileAttributes) (string, error)
	ApplyStageTag(ctx context.Context, profileID string, newStage, previousStage domain.Stage) error
	EmitMilestoneEvent(ctx context.Context, profileID string, properties map[string]interface{}) error
}
