// Package memory keeps users, events and bookings in process memory. It backs
// local development and end-to-end tests; data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bookly/event-booking/internal/core/domain"
)

type bookingKey struct {
	userID  int64
	eventID int64
}

// Store is a mutex-guarded set of tables. A single lock serialises writes so
// uniqueness checks and inserts happen atomically.
type Store struct {
	mu sync.RWMutex

	users       map[int64]domain.User
	usersByMail map[string]int64
	events      map[int64]domain.Event
	bookings    map[bookingKey]domain.Booking

	nextUserID    int64
	nextEventID   int64
	nextBookingID int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       make(map[int64]domain.User),
		usersByMail: make(map[string]int64),
		events:      make(map[int64]domain.Event),
		bookings:    make(map[bookingKey]domain.Booking),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Events() *EventRepository     { return &EventRepository{s: s} }
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByMail[user.Email]; taken {
		return nil, domain.ErrDuplicateEmail
	}
	s.nextUserID++
	created := *user
	created.ID = s.nextUserID
	created.CreatedAt = s.now()
	s.users[created.ID] = created
	s.usersByMail[created.Email] = created.ID
	return &created, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByMail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := s.users[id]
	return &u, nil
}

type EventRepository struct{ s *Store }

func (r *EventRepository) Create(_ context.Context, event *domain.Event) (*domain.Event, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	created := *event
	created.ID = s.nextEventID
	created.Date = created.Date.UTC()
	created.CreatedAt = s.now()
	s.events[created.ID] = created
	return &created, nil
}

func (r *EventRepository) List(_ context.Context) ([]domain.Event, error) {
	s := r.s
	s.mu.RLock()
	events := make([]domain.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	s.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date) {
			return events[i].ID < events[j].ID
		}
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

func (r *EventRepository) FindByID(_ context.Context, id int64) (*domain.Event, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return &e, nil
}

type BookingRepository struct{ s *Store }

func (r *BookingRepository) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[booking.EventID]; !ok {
		return nil, domain.ErrEventNotFound
	}
	if _, ok := s.users[booking.UserID]; !ok {
		return nil, domain.ErrUnauthenticated
	}
	key := bookingKey{userID: booking.UserID, eventID: booking.EventID}
	if _, dup := s.bookings[key]; dup {
		return nil, domain.ErrDuplicateBooking
	}

	s.nextBookingID++
	created := *booking
	created.ID = s.nextBookingID
	created.CreatedAt = s.now()
	s.bookings[key] = created
	return &created, nil
}
