package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/repository"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/scoring"
)

func newTestReportService(repo *MockReportRepository) *ReportService {
	svc := NewReportService(repo, scoring.DefaultPolicy(), zap.NewNop())
	svc.now = fixedClock
	return svc
}

func TestReportService_Summary(t *testing.T) {
	repo := new(MockReportRepository)
	svc := newTestReportService(repo)

	repo.On("CountLeads", mock.Anything).Return(int64(42), nil)
	repo.On("CountLeadsWithMinScore", mock.Anything, 150).Return(int64(3), nil)
	repo.On("CountLeadsWithEmail", mock.Anything).Return(int64(7), nil)
	repo.On("AverageLeadScore", mock.Anything).Return(37.6, nil)
	repo.On("SessionTotals", mock.Anything).Return(int64(4), int64(10000), nil)

	summary, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), summary.UniqueLeads)
	assert.Equal(t, int64(3), summary.HVPCount)
	assert.Equal(t, int64(7), summary.EmailsCaptured)
	assert.Equal(t, float64(38), summary.AvgLeadScore)
	assert.Equal(t, int64(4), summary.TotalSessions)
	assert.Equal(t, int64(10000), summary.TotalDurationMs)
	assert.Equal(t, 2.5, summary.AvgSessionSeconds)
	repo.AssertExpectations(t)
}

func TestReportService_Summary_NoSessions(t *testing.T) {
	repo := new(MockReportRepository)
	svc := newTestReportService(repo)

	repo.On("CountLeads", mock.Anything).Return(int64(0), nil)
	repo.On("CountLeadsWithMinScore", mock.Anything, 150).Return(int64(0), nil)
	repo.On("CountLeadsWithEmail", mock.Anything).Return(int64(0), nil)
	repo.On("AverageLeadScore", mock.Anything).Return(0.0, nil)
	repo.On("SessionTotals", mock.Anything).Return(int64(0), int64(0), nil)

	summary, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Zero(t, summary.AvgSessionSeconds)
}

func TestReportService_Summary_Error(t *testing.T) {
	repo := new(MockReportRepository)
	svc := newTestReportService(repo)

	repo.On("CountLeads", mock.Anything).Return(int64(0), errors.New("db down"))
	repo.On("CountLeadsWithMinScore", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
	repo.On("CountLeadsWithEmail", mock.Anything).Return(int64(0), nil).Maybe()
	repo.On("AverageLeadScore", mock.Anything).Return(0.0, nil).Maybe()
	repo.On("SessionTotals", mock.Anything).Return(int64(0), int64(0), nil).Maybe()

	summary, err := svc.Summary(context.Background())

	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "failed to load dashboard summary")
}

func TestReportService_StageDistribution_LabelsUnknown(t *testing.T) {
	repo := new(MockReportRepository)
	svc := newTestReportService(repo)

	repo.On("StageDistribution", mock.Anything).Return([]repository.StageCount{
		{Stage: "MQL", Count: 5},
		{Stage: "", Count: 1},
	}, nil)

	groups, err := svc.StageDistribution(context.Background())

	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "MQL", groups[0].Stage)
	assert.Equal(t, "UNKNOWN", groups[1].Stage)
}

func TestReportService_Segment_Filters(t *testing.T) {
	hvp, sql := 150, 100

	tests := []struct {
		segment string
		filter  repository.LeadFilter
	}{
		{segment: "ALL", filter: repository.LeadFilter{}},
		{segment: "", filter: repository.LeadFilter{}},
		{segment: "hvp", filter: repository.LeadFilter{MinScore: &hvp}},
		{segment: "SQL", filter: repository.LeadFilter{Stage: domain.StageSQL, MinScore: &sql, MaxScore: &hvp}},
		{segment: "MQL", filter: repository.LeadFilter{Stage: domain.StageMQL}},
	}

	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			repo := new(MockReportRepository)
			svc := newTestReportService(repo)

			repo.On("ListLeads", mock.Anything, tt.filter, 100).Return([]domain.Lead{
				{ID: "lead-1", AnonymousID: "v1", LeadScore: 120, Stage: domain.StageSQL, CreatedAt: testNow, LastSeen: testNow},
			}, nil)

			leads, err := svc.Segment(context.Background(), tt.segment)

			require.NoError(t, err)
			require.Len(t, leads, 1)
			assert.Equal(t, "SQL", leads[0].Stage)
			repo.AssertExpectations(t)
		})
	}
}

func TestReportService_Segment_Unknown(t *testing.T) {
	svc := newTestReportService(new(MockReportRepository))

	leads, err := svc.Segment(context.Background(), "VIP")

	assert.Nil(t, leads)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReportService_RecentEvents_DefaultLimit(t *testing.T) {
	repo := new(MockReportRepository)
	svc := newTestReportService(repo)

	repo.On("RecentEvents", mock.Anything, 20).Return([]domain.Event{
		{ID: "evt-1", AnonymousID: "v1", EventType: "page_view", Points: 5, PagePath: strPtr("/"), CreatedAt: testNow},
	}, nil)

	events, err := svc.RecentEvents(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "/", *events[0].PagePath)
	repo.AssertExpectations(t)
}

func TestReportService_Trends_FillsMissingDays(t *testing.T) {
	repo := new(MockReportRepository)
	svc := newTestReportService(repo)

	from := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	repo.On("DailyEventCounts", mock.Anything, from, to).Return([]repository.DailyCount{
		{Day: from, Count: 4},
		{Day: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), Count: 9},
	}, nil)

	trends, err := svc.Trends(context.Background())

	require.NoError(t, err)
	require.Len(t, trends, 7)
	assert.Equal(t, "2025-03-08", trends[0].Date)
	assert.Equal(t, int64(4), trends[0].Count)
	assert.Equal(t, int64(0), trends[3].Count)
	assert.Equal(t, "2025-03-14", trends[6].Date)
	assert.Equal(t, int64(9), trends[6].Count)
}

func TestReportService_TopEvents(t *testing.T) {
	repo := new(MockReportRepository)
	svc := newTestReportService(repo)

	repo.On("TopEventTypes", mock.Anything, 15).Return([]repository.EventTypeCount{
		{EventType: "page_view", Count: 120},
	}, nil)

	top, err := svc.TopEvents(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "page_view", top[0].EventType)
	assert.Equal(t, int64(120), top[0].Count)
}
