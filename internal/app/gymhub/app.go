// Package gymhub wires the service together: storage, migrations, cache,
// the Stripe client, the business services and the HTTP server.
package gymhub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/gymhub/gymhub/internal/cache"
	"github.com/gymhub/gymhub/internal/config"
	"github.com/gymhub/gymhub/internal/lib/jwt"
	"github.com/gymhub/gymhub/internal/migrations"
	authservice "github.com/gymhub/gymhub/internal/services/auth"
	gymplanservice "github.com/gymhub/gymhub/internal/services/gymplan"
	paymentservice "github.com/gymhub/gymhub/internal/services/payment"
	signatureservice "github.com/gymhub/gymhub/internal/services/signature"
	"github.com/gymhub/gymhub/internal/storage/repository"
	stripeclient "github.com/gymhub/gymhub/internal/stripe"
)

// App holds the assembled service.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New builds the App from configuration: it opens the database, applies
// migrations, connects the cache and assembles services and routes.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	gateway := stripeclient.NewClient(cfg.Stripe.SecretKey)

	accessMaker := jwt.NewMaker(cfg.Tokens.AccessSecret, cfg.Tokens.AccessTTL)
	refreshMaker := jwt.NewMaker(cfg.Tokens.RefreshSecret, cfg.Tokens.RefreshTTL)

	authSvc := authservice.New(db, gateway, accessMaker, refreshMaker, logger)
	gymplanSvc := gymplanservice.New(db, cacheRedis, logger)
	signatureSvc := signatureservice.New(db, logger)
	paymentSvc := paymentservice.New(db, gateway, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, accessMaker, cfg.Stripe.WebhookSecret,
		authSvc, gymplanSvc, signatureSvc, paymentSvc)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
