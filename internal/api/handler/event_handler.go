package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bookly/event-booking/internal/api/metrics"
	"github.com/bookly/event-booking/internal/core/domain"
	"github.com/bookly/event-booking/internal/core/ports"
)

// EventHandler serves the /api/events routes.
type EventHandler struct {
	events ports.EventService
}

func NewEventHandler(events ports.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// Create handles POST /api/events. Admin only.
//
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createEventRequest  true  "Event"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /api/events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	date, err := parseEventDate(req.Date)
	if err != nil {
		return err
	}

	_, err = h.events.CreateEvent(c.Request().Context(), ports.CreateEventInput{
		Title:       req.Title,
		Date:        date,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return err
	}

	metrics.EventsCreatedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Event created successfully"})
}

// List handles GET /api/events.
//
// @Summary      List events by ascending date
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.Event
// @Failure      500  {object}  messageResponse
// @Router       /api/events [get]
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.events.ListEvents(c.Request().Context())
	if err != nil {
		return err
	}
	if events == nil {
		events = []domain.Event{}
	}
	return c.JSON(http.StatusOK, events)
}

// Get handles GET /api/events/:id.
//
// @Summary      Get one event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Event ID"
// @Success      200  {object}  domain.Event
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/events/{id} [get]
func (h *EventHandler) Get(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}

	event, err := h.events.GetEvent(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// Book handles POST /api/events/:id/book for the authenticated caller.
//
// @Summary      Book an event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Event ID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/events/{id}/book [post]
func (h *EventHandler) Book(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := eventID(c)
	if err != nil {
		metrics.BookingsTotal.WithLabelValues("not_found").Inc()
		return err
	}

	if _, err := h.events.BookEvent(c.Request().Context(), id, identity.UserID); err != nil {
		metrics.BookingsTotal.WithLabelValues(bookingResult(err)).Inc()
		return err
	}

	metrics.BookingsTotal.WithLabelValues("confirmed").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Booking confirmed successfully"})
}

// eventID parses the :id path parameter. Anything that is not a positive
// integer cannot name an event.
func eventID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrEventNotFound
	}
	return id, nil
}

func bookingResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateBooking):
		return "duplicate"
	case errors.Is(err, domain.ErrEventNotFound):
		return "not_found"
	default:
		return "error"
	}
}
