package ports

import (
	"context"

	"github.com/bookly/event-booking/internal/core/domain"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts the user and returns it with its assigned ID.
	// A unique-email violation is reported as domain.ErrDuplicateEmail.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail returns domain.ErrUserNotFound when no user has that email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
