package domain

import "time"

// Booking records that a user holds a place at an event.
// At most one booking exists per (UserID, EventID).
type Booking struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	EventID   int64     `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}
