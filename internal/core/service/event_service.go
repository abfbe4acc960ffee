package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookly/event-booking/internal/core/domain"
	"github.com/bookly/event-booking/internal/core/ports"
)

type eventService struct {
	events   ports.EventRepository
	bookings ports.BookingRepository
	cache    ports.EventListCache
	log      zerolog.Logger
}

// NewEventService returns an EventService implementation. cache may be nil.
func NewEventService(
	events ports.EventRepository,
	bookings ports.BookingRepository,
	cache ports.EventListCache,
	log zerolog.Logger,
) ports.EventService {
	if cache == nil {
		cache = noopCache{}
	}
	return &eventService{
		events:   events,
		bookings: bookings,
		cache:    cache,
		log:      log,
	}
}

// CreateEvent validates and stores a new event, then drops the cached list.
func (s *eventService) CreateEvent(ctx context.Context, in ports.CreateEventInput) (*domain.Event, error) {
	event := &domain.Event{
		Title:       strings.TrimSpace(in.Title),
		Date:        in.Date.UTC(),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   time.Now().UTC(),
	}

	var problems []string
	if event.Title == "" {
		problems = append(problems, "title is required")
	}
	if in.Date.IsZero() {
		problems = append(problems, "date is required")
	}
	if event.Description == "" {
		problems = append(problems, "description is required")
	}
	switch {
	case in.Price == nil:
		problems = append(problems, "price is required")
	case *in.Price <= 0:
		problems = append(problems, "price must be greater than 0")
	default:
		event.Price = *in.Price
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}

	created, err := s.events.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate events cache")
	}

	s.log.Info().Int64("event_id", created.ID).Str("title", created.Title).Msg("event created")
	return created, nil
}

// ListEvents returns all events by ascending date, serving from the cache when possible.
func (s *eventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	// gen is taken before the store query; a concurrent CreateEvent bumps it.
	cached, gen, ok, cacheErr := s.cache.Get(ctx)
	if cacheErr != nil {
		s.log.Warn().Err(cacheErr).Msg("events cache read failed, querying store")
	} else if ok {
		return cached, nil
	}

	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []domain.Event{}
	}

	if cacheErr == nil {
		if err := s.cache.Set(ctx, gen, events); err != nil {
			s.log.Warn().Err(err).Msg("failed to populate events cache")
		}
	}
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	if id <= 0 {
		return nil, domain.ErrEventNotFound
	}
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return event, nil
}

// BookEvent records a booking of eventID for userID. Uniqueness of the pair
// is left to the store; a violation surfaces as domain.ErrDuplicateBooking.
func (s *eventService) BookEvent(ctx context.Context, eventID, userID int64) (*domain.Booking, error) {
	if userID <= 0 {
		return nil, domain.ErrUnauthenticated
	}
	if eventID <= 0 {
		return nil, domain.ErrEventNotFound
	}

	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("book event %d: %w", eventID, err)
	}

	booking, err := s.bookings.Create(ctx, &domain.Booking{
		UserID:    userID,
		EventID:   eventID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("book event %d: %w", eventID, err)
	}

	s.log.Info().Int64("event_id", eventID).Int64("user_id", userID).Msg("booking confirmed")
	return booking, nil
}

type noopCache struct{}

func (noopCache) Get(context.Context) ([]domain.Event, int64, bool, error) { return nil, 0, false, nil }
func (noopCache) Set(context.Context, int64, []domain.Event) error         { return nil }
func (noopCache) Invalidate(context.Context) error                         { return nil }
