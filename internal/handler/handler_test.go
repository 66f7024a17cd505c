package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/dto"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/service"
)

var testOrigins = []string{"https://www.lekielectric.com", "https://lekielectric.com"}

// MockSessionService is a mock implementation of service.SessionServicer
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) UpsertAttribution(ctx context.Context, req *dto.SessionUpsertRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockSessionService) Ping(ctx context.Context, sessionID string) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTrackingService is a mock implementation of service.TrackingServicer
type MockTrackingService struct {
	mock.Mock
}

func (m *MockTrackingService) TrackEvent(ctx context.Context, req *dto.TrackEventRequest) (*service.TrackResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TrackResult), args.Error(1)
}

// MockReportService is a mock implementation of service.ReportServicer
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SummaryResponse), args.Error(1)
}

func (m *MockReportService) StageDistribution(ctx context.Context) ([]dto.StageCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.StageCount), args.Error(1)
}

func (m *MockReportService) Segment(ctx context.Context, segment string) ([]dto.LeadView, error) {
	args := m.Called(ctx, segment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.LeadView), args.Error(1)
}

func (m *MockReportService) RecentEvents(ctx context.Context, limit int) ([]dto.EventView, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.EventView), args.Error(1)
}

func (m *MockReportService) Trends(ctx context.Context) ([]dto.DailyCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.DailyCount), args.Error(1)
}

func (m *MockReportService) TopEvents(ctx context.Context) ([]dto.EventTypeCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.EventTypeCount), args.Error(1)
}

func (m *MockReportService) Journey(ctx context.Context) (*dto.JourneyResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JourneyResponse), args.Error(1)
}

// MockMetricsService is a mock implementation of service.MetricsServicer
type MockMetricsService struct {
	mock.Mock
}

func (m *MockMetricsService) GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GetMetricsResponse), args.Error(1)
}

type testMocks struct {
	sessions *MockSessionService
	tracking *MockTrackingService
	reports  *MockReportService
	metrics  *MockMetricsService
}

func newTestHandler() (*Handler, *testMocks) {
	gin.SetMode(gin.TestMode)

	m := &testMocks{
		sessions: new(MockSessionService),
		tracking: new(MockTrackingService),
		reports:  new(MockReportService),
		metrics:  new(MockMetricsService),
	}

	h := NewHandler(Services{
		Sessions: m.sessions,
		Tracking: m.tracking,
		Reports:  m.reports,
		Metrics:  m.metrics,
	}, testOrigins, zap.NewNop())

	return h, m
}

func doJSON(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestHandler_HealthCheck(t *testing.T) {
	handler, _ := newTestHandler()

	w := doJSON(handler, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Leki Scoring API is Live"}`, w.Body.String())
}

func TestHandler_CORSPreflight(t *testing.T) {
	handler, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodOptions, "/event", nil)
	req.Header.Set("Origin", "https://lekielectric.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://lekielectric.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_CORSRejectsUnknownOrigin(t *testing.T) {
	handler, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_UpsertSession_Success(t *testing.T) {
	handler, m := newTestHandler()

	m.sessions.On("UpsertAttribution", mock.Anything, mock.MatchedBy(func(r *dto.SessionUpsertRequest) bool {
		return r.SessionID == "s1" && r.UTMSource != nil && *r.UTMSource == "google" && r.Referrer == nil
	})).Return(nil)

	w := doJSON(handler, http.MethodPost, "/sessions/upsert", `{"session_id":"s1","utm_source":"google"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	m.sessions.AssertExpectations(t)
}

func TestHandler_UpsertSession_MissingID(t *testing.T) {
	handler, m := newTestHandler()

	w := doJSON(handler, http.MethodPost, "/sessions/upsert", `{"utm_source":"google"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Missing session_id"}`, w.Body.String())
	m.sessions.AssertNotCalled(t, "UpsertAttribution", mock.Anything, mock.Anything)
}

func TestHandler_UpsertSession_MalformedJSON(t *testing.T) {
	handler, _ := newTestHandler()

	w := doJSON(handler, http.MethodPost, "/sessions/upsert", `{"session_id":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["ok"])
}

func TestHandler_UpsertSession_StoreError(t *testing.T) {
	handler, m := newTestHandler()

	m.sessions.On("UpsertAttribution", mock.Anything, mock.Anything).Return(errors.New("failed to upsert session: db down"))

	w := doJSON(handler, http.MethodPost, "/sessions/upsert", `{"session_id":"s1"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"failed to upsert session: db down"}`, w.Body.String())
}

func TestHandler_PingSession(t *testing.T) {
	handler, m := newTestHandler()

	m.sessions.On("Ping", mock.Anything, "s1").Return(int64(42000), nil)

	w := doJSON(handler, http.MethodPost, "/sessions/ping", `{"session_id":"s1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"duration_ms":42000}`, w.Body.String())
}

func TestHandler_PingSession_ZeroDuration(t *testing.T) {
	handler, m := newTestHandler()

	m.sessions.On("Ping", mock.Anything, "s1").Return(int64(0), nil)

	w := doJSON(handler, http.MethodPost, "/sessions/ping", `{"session_id":"s1"}`)

	assert.JSONEq(t, `{"ok":true,"duration_ms":0}`, w.Body.String())
}

func TestHandler_PingSession_MissingID(t *testing.T) {
	handler, _ := newTestHandler()

	w := doJSON(handler, http.MethodPost, "/sessions/ping", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Missing session_id"}`, w.Body.String())
}

func TestHandler_TrackEvent_Success(t *testing.T) {
	handler, m := newTestHandler()

	m.tracking.On("TrackEvent", mock.Anything, mock.MatchedBy(func(r *dto.TrackEventRequest) bool {
		return r.AnonymousID == "v1" && r.EventType == "page_view" && r.Points == 60 && r.Metadata["page_path"] == "/far"
	})).Return(&service.TrackResult{NewScore: 60, Stage: domain.StageMQL}, nil)

	w := doJSON(handler, http.MethodPost, "/event",
		`{"anonymous_id":"v1","event_type":"page_view","points":60,"metadata":{"page_path":"/far"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"newScore":60,"stage":"MQL"}`, w.Body.String())
}

func TestHandler_TrackEvent_ZeroScoreIsReported(t *testing.T) {
	handler, m := newTestHandler()

	m.tracking.On("TrackEvent", mock.Anything, mock.Anything).
		Return(&service.TrackResult{NewScore: 0, Stage: domain.StageVisitor}, nil)

	w := doJSON(handler, http.MethodPost, "/event", `{"anonymous_id":"v1","event_type":"page_view"}`)

	assert.JSONEq(t, `{"success":true,"newScore":0,"stage":"VISITOR"}`, w.Body.String())
}

func TestHandler_TrackEvent_Capped(t *testing.T) {
	handler, m := newTestHandler()

	m.tracking.On("TrackEvent", mock.Anything, mock.Anything).Return(&service.TrackResult{Skipped: true}, nil)

	w := doJSON(handler, http.MethodPost, "/event", `{"anonymous_id":"v1","event_type":"view_calculator","points":20}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Points capped for this action today","skipped":true}`, w.Body.String())
}

func TestHandler_TrackEvent_MissingAnonymousID(t *testing.T) {
	handler, m := newTestHandler()

	w := doJSON(handler, http.MethodPost, "/event", `{"event_type":"page_view","points":5}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Missing anonymous_id"}`, w.Body.String())
	m.tracking.AssertNotCalled(t, "TrackEvent", mock.Anything, mock.Anything)
}

func TestHandler_TrackEvent_NonIntegerPoints(t *testing.T) {
	handler, _ := newTestHandler()

	w := doJSON(handler, http.MethodPost, "/event", `{"anonymous_id":"v1","points":"lots"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestHandler_TrackEvent_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "store failure", err: errors.New("failed to record event: db down"), status: http.StatusInternalServerError},
		{name: "validation", err: fmt.Errorf("%w: missing anonymous_id", service.ErrValidation), status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := newTestHandler()
			m.tracking.On("TrackEvent", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doJSON(handler, http.MethodPost, "/event", `{"anonymous_id":"v1","event_type":"page_view"}`)

			assert.Equal(t, tt.status, w.Code)
			response := decode(t, w)
			assert.Equal(t, false, response["success"])
			assert.Equal(t, tt.err.Error(), response["error"])
		})
	}
}

func TestHandler_Dashboard_Summary(t *testing.T) {
	handler, m := newTestHandler()

	m.reports.On("Summary", mock.Anything).Return(&dto.SummaryResponse{UniqueLeads: 42, HVPCount: 3}, nil)

	w := doJSON(handler, http.MethodGet, "/dashboard/summary", "")

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, float64(42), response["unique_leads"])
	assert.Equal(t, float64(3), response["hvp_count"])
}

func TestHandler_Dashboard_SummaryError(t *testing.T) {
	handler, m := newTestHandler()

	m.reports.On("Summary", mock.Anything).Return(nil, errors.New("db down"))

	w := doJSON(handler, http.MethodGet, "/dashboard/summary", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", decode(t, w)["error"])
}

func TestHandler_Dashboard_Leads(t *testing.T) {
	handler, m := newTestHandler()

	m.reports.On("Segment", mock.Anything, "HVP").Return([]dto.LeadView{{ID: "lead-1", LeadScore: 180, Stage: "HVP"}}, nil)

	w := doJSON(handler, http.MethodGet, "/dashboard/leads?segment=HVP", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var leads []dto.LeadView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, 180, leads[0].LeadScore)
}

func TestHandler_Dashboard_LeadsUnknownSegment(t *testing.T) {
	handler, m := newTestHandler()

	m.reports.On("Segment", mock.Anything, "VIP").Return(nil, fmt.Errorf("%w: unknown segment", service.ErrValidation))

	w := doJSON(handler, http.MethodGet, "/dashboard/leads?segment=VIP", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decode(t, w)["error"])
}

func TestHandler_Dashboard_RecentEvents(t *testing.T) {
	handler, m := newTestHandler()

	m.reports.On("RecentEvents", mock.Anything, 5).Return([]dto.EventView{}, nil)
	m.reports.On("RecentEvents", mock.Anything, 0).Return([]dto.EventView{}, nil)

	assert.Equal(t, http.StatusOK, doJSON(handler, http.MethodGet, "/dashboard/events/recent?limit=5", "").Code)
	assert.Equal(t, http.StatusOK, doJSON(handler, http.MethodGet, "/dashboard/events/recent", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(handler, http.MethodGet, "/dashboard/events/recent?limit=abc", "").Code)
	m.reports.AssertExpectations(t)
}

func TestHandler_Dashboard_TrendsAndTop(t *testing.T) {
	handler, m := newTestHandler()

	m.reports.On("StageDistribution", mock.Anything).Return([]dto.StageCount{{Stage: "MQL", Count: 4}}, nil)
	m.reports.On("Trends", mock.Anything).Return([]dto.DailyCount{{Date: "2025-03-14", Count: 9}}, nil)
	m.reports.On("TopEvents", mock.Anything).Return([]dto.EventTypeCount{{EventType: "page_view", Count: 120}}, nil)

	stages := doJSON(handler, http.MethodGet, "/dashboard/stages", "")
	trends := doJSON(handler, http.MethodGet, "/dashboard/events/trends", "")
	top := doJSON(handler, http.MethodGet, "/dashboard/events/top", "")

	assert.JSONEq(t, `[{"stage":"MQL","count":4}]`, stages.Body.String())
	assert.JSONEq(t, `[{"date":"2025-03-14","count":9}]`, trends.Body.String())
	assert.JSONEq(t, `[{"event_type":"page_view","count":120}]`, top.Body.String())
}

func TestHandler_Dashboard_Journey(t *testing.T) {
	handler, m := newTestHandler()

	m.reports.On("Journey", mock.Anything).Return(&dto.JourneyResponse{
		TotalSessions:     12,
		AvgSessionMinutes: 0.42,
		AvgSessionSeconds: 25,
		ReferrerDistribution: []dto.ReferrerShare{
			{Source: "google.com", Count: 6, Percentage: 50},
		},
		TopReferrer:      "google.com",
		PaidTrafficCount: 6,
		PaidPercentage:   50,
	}, nil).Once()

	w := doJSON(handler, http.MethodGet, "/dashboard/journey", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"total_sessions": 12,
		"avg_session_minutes": 0.42,
		"avg_session_seconds": 25,
		"referrer_distribution": [{"source": "google.com", "count": 6, "percentage": 50}],
		"top_referrer": "google.com",
		"paid_traffic_count": 6,
		"paid_percentage": 50
	}`, w.Body.String())
}

func TestHandler_Dashboard_Journey_Error(t *testing.T) {
	handler, m := newTestHandler()

	m.reports.On("Journey", mock.Anything).Return(nil, errors.New("pool closed"))

	w := doJSON(handler, http.MethodGet, "/dashboard/journey", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", decode(t, w)["error"])
}

func TestHandler_SwaggerDocs(t *testing.T) {
	handler, _ := newTestHandler()

	index := doJSON(handler, http.MethodGet, "/docs/index.html", "")
	assert.Equal(t, http.StatusOK, index.Code)

	doc := doJSON(handler, http.MethodGet, "/docs/doc.json", "")
	require.Equal(t, http.StatusOK, doc.Code)

	var spec struct {
		Paths map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(doc.Body.Bytes(), &spec))
	for _, path := range []string{"/event", "/sessions/upsert", "/sessions/ping", "/dashboard/journey", "/metrics"} {
		assert.Contains(t, spec.Paths, path)
	}
}

func TestHandler_GetMetrics_Success(t *testing.T) {
	handler, m := newTestHandler()

	expected := &dto.GetMetricsRequest{EventType: "view_calculator", From: 1741910400, To: 1741996800, GroupBy: "day"}
	m.metrics.On("GetMetrics", mock.Anything, expected).Return(&dto.GetMetricsResponse{
		EventType:   "view_calculator",
		TotalCount:  12,
		UniqueCount: 9,
	}, nil)

	w := doJSON(handler, http.MethodGet, "/metrics?event_type=view_calculator&from=1741910400&to=1741996800&group_by=day", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(12), decode(t, w)["total_count"])
	m.metrics.AssertExpectations(t)
}

func TestHandler_GetMetrics_MissingParams(t *testing.T) {
	handler, m := newTestHandler()

	w := doJSON(handler, http.MethodGet, "/metrics?event_type=view_calculator", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.metrics.AssertNotCalled(t, "GetMetrics", mock.Anything, mock.Anything)
}

func TestHandler_GetMetrics_Unavailable(t *testing.T) {
	handler, m := newTestHandler()

	m.metrics.On("GetMetrics", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: analytics mirror", service.ErrUnavailable))

	w := doJSON(handler, http.MethodGet, "/metrics?event_type=x&from=1&to=2", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unavailable", decode(t, w)["error"])
}
