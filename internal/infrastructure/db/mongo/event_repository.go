package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookly/event-booking/internal/core/domain"
)

type EventRepository struct {
	coll *mongo.Collection
	ids  *sequence
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{coll: db.Collection(collectionEvents), ids: newSequence(db, collectionEvents)}
}

type eventDoc struct {
	ID          int64     `bson:"_id"`
	Title       string    `bson:"title"`
	Date        time.Time `bson:"date"`
	Description string    `bson:"description"`
	Price       float64   `bson:"price"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d eventDoc) toDomain() domain.Event {
	return domain.Event{
		ID:          d.ID,
		Title:       d.Title,
		Date:        d.Date.UTC(),
		Description: d.Description,
		Price:       d.Price,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	id, err := r.ids.next(ctx)
	if err != nil {
		return nil, err
	}
	// BSON dates carry millisecond precision.
	doc := eventDoc{
		ID:          id,
		Title:       event.Title,
		Date:        event.Date.UTC().Truncate(time.Millisecond),
		Description: event.Description,
		Price:       event.Price,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	created := doc.toDomain()
	return &created, nil
}

// List returns all events sorted by date ascending, then by id.
func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cur.Close(ctx)

	events := make([]domain.Event, 0)
	for cur.Next(ctx) {
		var doc eventDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		events = append(events, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) FindByID(ctx context.Context, id int64) (*domain.Event, error) {
	var doc eventDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	e := doc.toDomain()
	return &e, nil
}
