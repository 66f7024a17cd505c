package consumer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Ceir-Ceir/Tanami-Leki/internal/domain"
)

// JSONEventParser decodes analytics events published by the tracking API
type JSONEventParser struct{}

func NewJSONEventParser() *JSONEventParser {
	return &JSONEventParser{}
}

// Parse decodes body and checks the fields the mirror is keyed on. A missing
// version is derived from created_at.
func (p *JSONEventParser) Parse(body []byte) (*domain.AnalyticsEvent, error) {
	var event domain.AnalyticsEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	switch {
	case event.EventID == "":
		return nil, errors.New("message has no event_id")
	case event.AnonymousID == "":
		return nil, errors.New("message has no anonymous_id")
	case event.CreatedAt.IsZero():
		return nil, errors.New("message has no created_at")
	}

	if event.Version == 0 {
		event.Version = uint64(event.CreatedAt.UnixNano())
	}

	return &event, nil
}
