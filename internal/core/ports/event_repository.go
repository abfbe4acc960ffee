package ports

import (
	"context"

	"github.com/bookly/event-booking/internal/core/domain"
)

// EventRepository persists events.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)
	// List returns every event ordered by ascending date. It never returns nil on success.
	List(ctx context.Context) ([]domain.Event, error)
	// FindByID returns domain.ErrEventNotFound when the event does not exist.
	FindByID(ctx context.Context, id int64) (*domain.Event, error)
}

// BookingRepository persists bookings.
type BookingRepository interface {
	// Create inserts a booking. A (user_id, event_id) uniqueness violation is
	// reported as domain.ErrDuplicateBooking and a missing event as
	// domain.ErrEventNotFound.
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// EventListCache holds a short-lived copy of the full event list.
//
// Entries belong to a generation. Get reports the current generation, also on
// a miss, and Set stores under the generation it is given. Invalidate moves to
// a new generation, so a list read from the store before an invalidation can
// never be served after it.
type EventListCache interface {
	// Get returns (nil, gen, false, nil) on a miss.
	Get(ctx context.Context) (events []domain.Event, gen int64, ok bool, err error)
	Set(ctx context.Context, gen int64, events []domain.Event) error
	Invalidate(ctx context.Context) error
}
