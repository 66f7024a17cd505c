package consumer

import (
	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
)

// MessageParser turns a raw queue message body into an analytics event
type MessageParser interface {
	Parse(body []byte) (*domain.AnalyticsEvent, error)
}
