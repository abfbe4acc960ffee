package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookly/event-booking/internal/core/domain"
)

// BookingRepository records reservations. The (user_id, event_id) pair is unique.
type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	const query = `
		INSERT INTO bookings (user_id, event_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	created := *booking
	err := r.pool.QueryRow(ctx, query, booking.UserID, booking.EventID).
		Scan(&created.ID, &created.CreatedAt)
	switch {
	case err == nil:
		return &created, nil
	case isUniqueViolation(err, constraintBookingsPair):
		return nil, domain.ErrDuplicateBooking
	case isForeignKeyViolation(err, constraintBookingsEventRef):
		return nil, domain.ErrEventNotFound
	case isForeignKeyViolation(err, constraintBookingsUserRef):
		return nil, domain.ErrUnauthenticated
	default:
		return nil, fmt.Errorf("insert booking: %w", err)
	}
}
