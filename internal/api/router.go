package api

import (
	"net"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/bookly/event-booking/docs"
	"github.com/bookly/event-booking/internal/api/handler"
	"github.com/bookly/event-booking/internal/api/middleware"
	"github.com/bookly/event-booking/internal/core/ports"
)

const metricsSubsystem = "http"

// Deps carries everything the router wires together.
type Deps struct {
	Auth   ports.AuthService
	Events ports.EventService
	Tokens ports.TokenVerifier

	// Health checks run by /health/ready, keyed by dependency name.
	Health map[string]handler.Checker

	Log zerolog.Logger

	// AuthRateLimitPerMinute throttles /api/auth per client IP. 0 disables it.
	AuthRateLimitPerMinute int
	// TrustedProxies may set X-Forwarded-For; everyone else is identified by peer address.
	TrustedProxies []*net.IPNet

	// Registerer and Gatherer default to the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.IPExtractor = middleware.ClientIP(d.TrustedProxies)

	registerer := d.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.AccessLog(d.Log))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authHandler := handler.NewAuthHandler(d.Auth)
	eventHandler := handler.NewEventHandler(d.Events)
	requireAuth := middleware.Auth(d.Tokens)

	// --- Auth routes ---
	auth := e.Group("/api/auth", middleware.RateLimit(d.AuthRateLimitPerMinute))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Event routes ---
	events := e.Group("/api/events")
	events.GET("", eventHandler.List)
	events.POST("", eventHandler.Create, requireAuth, middleware.AdminOnly())
	events.GET("/:id", eventHandler.Get, requireAuth)
	events.POST("/:id/book", eventHandler.Book, requireAuth)

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(d.Health).Readiness)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
