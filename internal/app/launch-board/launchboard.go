// Package launchboard собирает HTTP-приложение: хранилище, кеш, брокер,
// сервисы и маршруты, и управляет жизненным циклом сервера.
package launchboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/launchboard/launch-board/internal/cache"
	"github.com/launchboard/launch-board/internal/config"
	"github.com/launchboard/launch-board/internal/lemonsqueezy"
	"github.com/launchboard/launch-board/internal/lib/jwt"
	"github.com/launchboard/launch-board/internal/lib/rabbitmq"
	"github.com/launchboard/launch-board/internal/migrations"
	authservice "github.com/launchboard/launch-board/internal/services/auth"
	commentservice "github.com/launchboard/launch-board/internal/services/comment"
	newsletterservice "github.com/launchboard/launch-board/internal/services/newsletter"
	paymentservice "github.com/launchboard/launch-board/internal/services/payment"
	productservice "github.com/launchboard/launch-board/internal/services/product"
	"github.com/launchboard/launch-board/internal/storage/repository"
)

// App инкапсулирует зависимости HTTP-приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает приложение: подключает Postgres, прогоняет миграции, поднимает
// Redis и RabbitMQ, собирает сервисы и маршруты.
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

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	providerClient := lemonsqueezy.NewClient(cfg.LemonSqueezy.APIKey, cfg.LemonSqueezy.StoreID)

	publisher := rabbitmq.NewPublisher(ch)

	authService := authservice.NewAuthService(db, jwtMaker)
	productService := productservice.NewProductService(db, cacheRedis, publisher, logger)
	commentService := commentservice.NewCommentService(db, publisher, logger)
	paymentService := paymentservice.New(db, providerClient, cacheRedis, cfg.LemonSqueezy, logger)
	newsletterService := newsletterservice.New(db)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, db,
		authService, productService, commentService, paymentService, newsletterService)

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
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
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
		if chErr := a.ch.Close(); chErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", chErr))
		}
		if connErr := a.conn.Close(); connErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", connErr))
		}
		if dbErr := a.db.DB.Close(); dbErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", dbErr))
		}
		return err
	}
}
