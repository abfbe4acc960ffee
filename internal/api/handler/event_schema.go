package handler

import (
	"strings"
	"time"

	"github.com/bookly/event-booking/internal/core/domain"
)

// createEventRequest keeps price as a pointer so a missing price is told apart from 0.
type createEventRequest struct {
	Title       string   `json:"title"       validate:"max=200"`
	Date        string   `json:"date"`
	Description string   `json:"description" validate:"max=5000"`
	Price       *float64 `json:"price"`
}

// Accepted layouts for an event date, tried in order.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseEventDate returns the zero time for an empty value so the service reports it as missing.
func parseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewValidationError("date must be RFC 3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD")
}
