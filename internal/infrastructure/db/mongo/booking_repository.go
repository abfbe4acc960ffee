package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bookly/event-booking/internal/core/domain"
)

type BookingRepository struct {
	coll   *mongo.Collection
	events *mongo.Collection
	ids    *sequence
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{
		coll:   db.Collection(collectionBookings),
		events: db.Collection(collectionEvents),
		ids:    newSequence(db, collectionBookings),
	}
}

type bookingDoc struct {
	ID        int64     `bson:"_id"`
	UserID    int64     `bson:"user_id"`
	EventID   int64     `bson:"event_id"`
	CreatedAt time.Time `bson:"created_at"`
}

// Create records the reservation. Events are never deleted, so checking the
// referenced event before the insert stands in for a foreign key; the unique
// (user_id, event_id) index settles concurrent duplicates.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	n, err := r.events.CountDocuments(ctx, bson.M{"_id": booking.EventID})
	if err != nil {
		return nil, fmt.Errorf("check event: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrEventNotFound
	}

	id, err := r.ids.next(ctx)
	if err != nil {
		return nil, err
	}
	doc := bookingDoc{
		ID:        id,
		UserID:    booking.UserID,
		EventID:   booking.EventID,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateBooking
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	return &domain.Booking{ID: doc.ID, UserID: doc.UserID, EventID: doc.EventID, CreatedAt: doc.CreatedAt}, nil
}
