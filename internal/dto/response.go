package dto

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SessionResponse is returned by the session endpoints
type SessionResponse struct {
	OK         bool   `json:"ok"`
	DurationMs *int64 `json:"duration_ms,omitempty"`
	Error      string `json:"error,omitempty"`
}

// TrackEventResponse is returned by the event endpoint
type TrackEventResponse struct {
	Success  bool   `json:"success"`
	NewScore *int   `json:"newScore,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Message  string `json:"message,omitempty"`
	Skipped  bool   `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HealthResponse is returned by the root endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SummaryResponse holds the headline dashboard counters
type SummaryResponse struct {
	UniqueLeads       int64   `json:"unique_leads"`
	HVPCount          int64   `json:"hvp_count"`
	EmailsCaptured    int64   `json:"emails_captured"`
	AvgLeadScore      float64 `json:"avg_lead_score"`
	TotalSessions     int64   `json:"total_sessions"`
	TotalDurationMs   int64   `json:"total_duration_ms"`
	AvgSessionSeconds float64 `json:"avg_session_seconds"`
}

// StageCount is the number of leads in one stage
type StageCount struct {
	Stage string `json:"stage"`
	Count int64  `json:"count"`
}

// LeadView is a lead as listed on the dashboard
type LeadView struct {
	ID          string    `json:"id"`
	AnonymousID string    `json:"anonymous_id"`
	Email       *string   `json:"email"`
	LeadScore   int       `json:"lead_score"`
	Stage       string    `json:"stage"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// EventView is an event as listed on the dashboard
type EventView struct {
	ID          string    `json:"id"`
	AnonymousID string    `json:"anonymous_id"`
	Email       *string   `json:"email"`
	EventType   string    `json:"event_type"`
	Points      int       `json:"points"`
	PagePath    *string   `json:"page_path"`
	UTMSource   *string   `json:"utm_source"`
	CreatedAt   time.Time `json:"created_at"`
}

// DailyCount is the number of events on one UTC day
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// EventTypeCount is the number of events of one type
type EventTypeCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// ReferrerShare is one traffic source and its share of all sessions
type ReferrerShare struct {
	Source     string `json:"source"`
	Count      int64  `json:"count"`
	Percentage int    `json:"percentage"`
}

// JourneyResponse describes where sessions come from and how long they last
type JourneyResponse struct {
	TotalSessions        int64           `json:"total_sessions"`
	AvgSessionMinutes    float64         `json:"avg_session_minutes"`
	AvgSessionSeconds    float64         `json:"avg_session_seconds"`
	ReferrerDistribution []ReferrerShare `json:"referrer_distribution"`
	TopReferrer          string          `json:"top_referrer"`
	PaidTrafficCount     int64           `json:"paid_traffic_count"`
	PaidPercentage       int             `json:"paid_percentage"`
}

// MetricsGroupData represents aggregated metrics for a specific group
type MetricsGroupData struct {
	GroupValue string `json:"group_value"`
	TotalCount uint64 `json:"total_count"`
}

// GetMetricsResponse represents the metrics query response
type GetMetricsResponse struct {
	EventType   string             `json:"event_type"`
	From        int64              `json:"from"`
	To          int64              `json:"to"`
	TotalCount  uint64             `json:"total_count"`
	UniqueCount uint64             `json:"unique_count"`
	TotalPoints int64              `json:"total_points"`
	GroupBy     string             `json:"group_by,omitempty"`
	Groups      []MetricsGroupData `json:"groups,omitempty"`
}
