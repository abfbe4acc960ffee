package ports

import (
	"context"
	"time"

	"github.com/bookly/event-booking/internal/core/domain"
)

// CreateEventInput is the DTO passed from the transport layer to EventService.
// Price is a pointer so a missing price can be told apart from zero.
type CreateEventInput struct {
	Title       string
	Date        time.Time
	Description string
	Price       *float64
}

// EventService implements event listing, creation and booking.
type EventService interface {
	CreateEvent(ctx context.Context, in CreateEventInput) (*domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	BookEvent(ctx context.Context, eventID, userID int64) (*domain.Booking, error)
}
