package domain

import "time"

// Attribution carries the traffic source fields shared by events and sessions
type Attribution struct {
	Referrer    *string
	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	UTMTerm     *string
	UTMContent  *string
}

// Event is one accepted behavioral event. Rows are append-only.
type Event struct {
	ID          string
	AnonymousID string
	Email       *string
	EventType   string
	Points      int
	PageURL     *string
	PagePath    *string
	Attribution
	Metadata  map[string]interface{}
	CreatedAt time.Time
}

// AnalyticsEvent is the scored event snapshot mirrored into ClickHouse
type AnalyticsEvent struct {
	EventID     string    `ch:"event_id" json:"event_id"`
	AnonymousID string    `ch:"anonymous_id" json:"anonymous_id"`
	EventType   string    `ch:"event_type" json:"event_type"`
	Points      int64     `ch:"points" json:"points"`
	LeadScore   int64     `ch:"lead_score" json:"lead_score"`
	Stage       string    `ch:"stage" json:"stage"`
	UTMSource   string    `ch:"utm_source" json:"utm_source"`
	PagePath    string    `ch:"page_path" json:"page_path"`
	CreatedAt   time.Time `ch:"created_at" json:"created_at"`
	Version     uint64    `ch:"version" json:"version"`
}
