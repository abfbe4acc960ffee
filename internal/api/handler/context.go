package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bookly/event-booking/internal/api/middleware"
	"github.com/bookly/event-booking/internal/core/domain"
)

// ctxIdentity returns the caller identity attached by the Auth middleware.
// Its absence means the route was mounted without Auth.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok || identity.UserID <= 0 {
		return nil, domain.ErrUnauthenticated
	}
	return identity, nil
}
