package dto

// SessionUpsertRequest carries the attribution captured on landing
type SessionUpsertRequest struct {
	SessionID   string  `json:"session_id"`
	Referrer    *string `json:"referrer"`
	UTMSource   *string `json:"utm_source"`
	UTMMedium   *string `json:"utm_medium"`
	UTMCampaign *string `json:"utm_campaign"`
	UTMTerm     *string `json:"utm_term"`
	UTMContent  *string `json:"utm_content"`
	Email       *string `json:"email"`
}

// SessionPingRequest represents a session heartbeat
type SessionPingRequest struct {
	SessionID string `json:"session_id"`
}

// TrackEventRequest represents one behavioral event from the storefront
type TrackEventRequest struct {
	AnonymousID string                 `json:"anonymous_id"`
	Email       *string                `json:"email"`
	EventType   string                 `json:"event_type"`
	Points      int                    `json:"points"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// GetMetricsRequest represents an analytics mirror query
type GetMetricsRequest struct {
	EventType string `form:"event_type" binding:"required"`
	From      int64  `form:"from" binding:"required"`
	To        int64  `form:"to" binding:"required"`
	GroupBy   string `form:"group_by"`
}

// RecentEventsRequest represents the recent events query
type RecentEventsRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// SegmentRequest represents the lead segment query
type SegmentRequest struct {
	Segment string `form:"segment"`
}
