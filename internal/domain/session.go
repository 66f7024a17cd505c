package domain

import "time"

// Session holds attribution and engagement time for one browsing session.
// SessionID equals the visitor's anonymous id in this deployment.
type Session struct {
	SessionID  string
	FirstSeen  time.Time
	LastSeen   time.Time
	DurationMs int64
	Attribution
	Email *string
}
