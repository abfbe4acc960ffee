package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bookly/event-booking/internal/api"
	"github.com/bookly/event-booking/internal/core/service"
	"github.com/bookly/event-booking/internal/pkg/config"
	"github.com/bookly/event-booking/pkg/logger"
)

const startupTimeout = 30 * time.Second

var serverPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Connect to the store selected by STORE_DRIVER (postgres, mongo or memory)
- Apply migrations when DB_AUTO_MIGRATE is true
- Create the bootstrap admin when ADMIN_EMAIL and ADMIN_PASSWORD are set
- Shut down gracefully on SIGINT/SIGTERM`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverPort, "port", "", "listen port; overrides PORT")
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if serverPort != "" {
		cfg.Port = serverPort
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "event-booking",
		Env:     cfg.Env,
	})
	log.Info().Str("version", Version).Msg("starting event booking server")

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	store, err := openBackend(startCtx, cfg, logger.For("store"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		store.Close(closeCtx)
	}()

	tokens := service.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authSvc := service.NewAuthService(store.users, tokens, service.AuthOptions{
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
	}, logger.For("auth"))
	eventSvc := service.NewEventService(store.events, store.bookings, store.cache, logger.For("events"))

	if cfg.BootstrapAdmin() {
		if err := bootstrapAdmin(startCtx, authSvc, cfg, log); err != nil {
			log.Error().Err(err).Msg("admin bootstrap failed")
		}
	}

	proxies, err := cfg.TrustedProxyNets()
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Auth:                   authSvc,
		Events:                 eventSvc,
		Tokens:                 tokens,
		Health:                 store.checks,
		Log:                    logger.For("http"),
		AuthRateLimitPerMinute: cfg.Auth.RateLimitPerMinute,
		TrustedProxies:         proxies,
	})

	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func bootstrapAdmin(ctx context.Context, auth *service.AuthService, cfg *config.Config, log zerolog.Logger) error {
	created, err := auth.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("email", cfg.Auth.AdminEmail).Msg("bootstrap admin created")
	} else {
		log.Debug().Str("email", cfg.Auth.AdminEmail).Msg("bootstrap admin already present")
	}
	return nil
}
