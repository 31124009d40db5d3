package newsletteroptin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/newsletter-optin/internal/cache"
	"github.com/magabrotheeeer/newsletter-optin/internal/config"
	"github.com/magabrotheeeer/newsletter-optin/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/newsletter-optin/internal/lib/sl"
	libsmtp "github.com/magabrotheeeer/newsletter-optin/internal/lib/smtp"
	"github.com/magabrotheeeer/newsletter-optin/internal/migrations"
	senderservice "github.com/magabrotheeeer/newsletter-optin/internal/services/sender"
	subservice "github.com/magabrotheeeer/newsletter-optin/internal/services/subscription"
	"github.com/magabrotheeeer/newsletter-optin/internal/storage/repository"
)

type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
	rabbitConn *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	transport := libsmtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(transport, cfg.PublicURL, logger)

	var rabbitConn *amqp.Connection
	var events subservice.EventPublisher
	if cfg.RabbitURL != "" {
		rabbitConn, err = rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(rabbitConn)
		if err != nil {
			return nil, err
		}
		events = rabbitmq.NewEventPublisher(ch)
	}

	subscriptionService := subservice.NewSubscriptionService(db, cacheRedis, senderService, events, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, subscriptionService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		cache:      cacheRedis,
		rabbitConn: rabbitConn,
	}, nil
}

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
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	if err := a.cache.Db.Close(); err != nil {
		a.logger.Error("failed to close redis client", sl.Err(err))
	}
	if a.rabbitConn != nil {
		if err := a.rabbitConn.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
}
