package consumer

import (
	"context"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
)

// Envelope carries an analytics event together with the callbacks that
// settle its queue message
type Envelope struct {
	Event     *domain.AnalyticsEvent
	MessageID string
	ack       func(context.Context) error
	nack      func(context.Context) error
}

func NewEnvelope(event *domain.AnalyticsEvent, messageID string, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		Event:     event,
		MessageID: messageID,
		ack:       ack,
		nack:      nack,
	}
}

// Ack removes the message from the queue
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack == nil {
		return nil
	}
	return e.ack(ctx)
}

// Nack returns the message to the queue for redelivery
func (e *Envelope) Nack(ctx context.Context) error {
	if e.nack == nil {
		return nil
	}
	return e.nack(ctx)
}
