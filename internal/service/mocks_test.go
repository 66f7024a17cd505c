package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/crm"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
)

var testNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func strPtr(s string) *string { return &s }

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Insert(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) CountSince(ctx context.Context, anonymousID, eventType string, since time.Time) (int, error) {
	args := m.Called(ctx, anonymousID, eventType, since)
	return args.Int(0), args.Error(1)
}

// MockLeadRepository is a mock implementation of repository.LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) GetByAnonymousID(ctx context.Context, anonymousID string) (*domain.Lead, error) {
	args := m.Called(ctx, anonymousID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) CreateIfAbsent(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, id string, score int, stage domain.Stage, email *string, lastSeen time.Time) error {
	args := m.Called(ctx, id, score, stage, email, lastSeen)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) UpsertAttribution(ctx context.Context, sessionID string, attribution domain.Attribution, email *string, now time.Time) error {
	args := m.Called(ctx, sessionID, attribution, email, now)
	return args.Error(0)
}

func (m *MockSessionRepository) GetFirstSeen(ctx context.Context, sessionID string) (time.Time, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockSessionRepository) UpsertHeartbeat(ctx context.Context, sessionID string, firstSeen, lastSeen time.Time, durationMs int64) error {
	args := m.Called(ctx, sessionID, firstSeen, lastSeen, durationMs)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

// MockReportRepository is a mock implementation of repository.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) CountLeads(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) CountLeadsWithMinScore(ctx context.Context, minScore int) (int64, error) {
	args := m.Called(ctx, minScore)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) CountLeadsWithEmail(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) AverageLeadScore(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockReportRepository) SessionTotals(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportRepository) StageDistribution(ctx context.Context) ([]repository.StageCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.StageCount), args.Error(1)
}

func (m *MockReportRepository) ListLeads(ctx context.Context, filter repository.LeadFilter, limit int) ([]domain.Lead, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Lead), args.Error(1)
}

func (m *MockReportRepository) RecentEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockReportRepository) SessionSources(ctx context.Context) ([]repository.SessionSource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.SessionSource), args.Error(1)
}

func (m *MockReportRepository) TopEventTypes(ctx context.Context, limit int) ([]repository.EventTypeCount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.EventTypeCount), args.Error(1)
}

func (m *MockReportRepository) DailyEventCounts(ctx context.Context, from, to time.Time) ([]repository.DailyCount, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DailyCount), args.Error(1)
}

// MockAnalyticsRepository is a mock implementation of repository.AnalyticsRepository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) InsertBatch(ctx context.Context, events []*domain.AnalyticsEvent) (int, error) {
	args := m.Called(ctx, events)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsRepository) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAnalyticsRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAnalyticsRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockAnalyticsRepository) GetMetrics(ctx context.Context, query repository.MetricsQuery) (*repository.MetricsResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.MetricsResult), args.Error(1)
}

// MockCRM is a mock implementation of CRMSyncer
type MockCRM struct {
	mock.Mock
}

func (m *MockCRM) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockCRM) UpsertProfile(ctx context.Context, attrs crm.ProfileAttributes) (string, error) {
	args := m.Called(ctx, attrs)
	return args.String(0), args.Error(1)
}

func (m *MockCRM) ApplyStageTag(ctx context.Context, profileID string, newStage, previousStage domain.Stage) error {
	args := m.Called(ctx, profileID, newStage, previousStage)
	return args.Error(0)
}

func (m *MockCRM) EmitMilestoneEvent(ctx context.Context, profileID string, properties map[string]interface{}) error {
	args := m.Called(ctx, profileID, properties)
	return args.Error(0)
}

// MockQueuePublisher is a mock implementation of queue.QueuePublisher
type MockQueuePublisher struct {
	mock.Mock
}

func (m *MockQueuePublisher) PublishEvent(ctx context.Context, event *domain.AnalyticsEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
