package mongo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bookly/event-booking/internal/core/domain"
)

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	endpoint, err := container.PortEndpoint(ctx, "27017/tcp", "mongodb")
	require.NoError(t, err)

	client, db, err := Connect(ctx, Config{URI: endpoint, Database: "booking_test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	require.NoError(t, EnsureIndexes(ctx, db))
	return db
}

func TestMongoRepositories(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	events := NewEventRepository(db)
	bookings := NewBookingRepository(db)

	t.Run("users", func(t *testing.T) {
		u, err := users.Create(ctx, &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "h", Role: domain.RoleUser})
		require.NoError(t, err)
		require.EqualValues(t, 1, u.ID)

		_, err = users.Create(ctx, &domain.User{Name: "Ada2", Email: "ada@example.com", PasswordHash: "h", Role: domain.RoleUser})
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)

		found, err := users.FindByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, found.ID)

		_, err = users.FindByEmail(ctx, "ghost@example.com")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("events ordered by date", func(t *testing.T) {
		late, err := events.Create(ctx, &domain.Event{Title: "late", Date: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), Description: "d", Price: 10})
		require.NoError(t, err)
		early, err := events.Create(ctx, &domain.Event{Title: "early", Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Description: "d", Price: 5.5})
		require.NoError(t, err)

		list, err := events.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, early.ID, list[0].ID)
		require.Equal(t, late.ID, list[1].ID)

		_, err = events.FindByID(ctx, 999)
		require.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("bookings unique per pair", func(t *testing.T) {
		e, err := events.Create(ctx, &domain.Event{Title: "show", Date: time.Now().Add(time.Hour), Description: "d", Price: 1})
		require.NoError(t, err)

		_, err = bookings.Create(ctx, &domain.Booking{UserID: 1, EventID: e.ID})
		require.NoError(t, err)
		_, err = bookings.Create(ctx, &domain.Booking{UserID: 1, EventID: e.ID})
		require.ErrorIs(t, err, domain.ErrDuplicateBooking)
		_, err = bookings.Create(ctx, &domain.Booking{UserID: 2, EventID: e.ID})
		require.NoError(t, err)
		_, err = bookings.Create(ctx, &domain.Booking{UserID: 1, EventID: e.ID + 1000})
		require.ErrorIs(t, err, domain.ErrEventNotFound)
	})
}

func TestSequenceIsPerCollection(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()

	a := newSequence(db, "a")
	b := newSequence(db, "b")
	for i := int64(1); i <= 3; i++ {
		got, err := a.next(ctx)
		require.NoError(t, err)
		require.Equal(t, i, got, fmt.Sprintf("sequence a step %d", i))
	}
	got, err := b.next(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, got)
}
