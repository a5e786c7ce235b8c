package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	handlers "github.com/sm8ta/mongo_user_service/internal/adapter/handler/http"
	"github.com/sm8ta/mongo_user_service/internal/adapter/mongodb"
	"github.com/sm8ta/mongo_user_service/internal/adapter/mongodb/repository"
	"github.com/sm8ta/mongo_user_service/internal/adapter/prometheus"
	"github.com/sm8ta/mongo_user_service/internal/config"
	"github.com/sm8ta/mongo_user_service/internal/core/ports"
	"github.com/sm8ta/mongo_user_service/internal/core/services"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// App owns the process-wide resources: the Mongo client and the HTTP server.
type App struct {
	log         ports.LoggerPort
	mongoClient *mongo.Client
	httpServer  *http.Server
}

func New(ctx context.Context, cfg *config.Container, log ports.LoggerPort) (*App, error) {
	const op = "app.New"

	// Connect DB
	client, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("Connected to MongoDB", map[string]interface{}{
		"database":   cfg.Mongo.Database,
		"collection": cfg.Mongo.Collection,
	})

	a, err := newWithClient(ctx, cfg, log, client)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func newWithClient(ctx context.Context, cfg *config.Container, log ports.LoggerPort, client *mongo.Client) (*App, error) {
	userRepo := repository.NewUserRepository(
		client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection),
	)

	indexCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		return nil, err
	}

	// Validate
	userValidator, err := services.NewUserValidator(validator.New())
	if err != nil {
		return nil, err
	}

	// Observability
	metrics := prometheus.NewPrometheusAdapter(cfg.App.Name, prometheus.NewRegistry())

	// User
	userService := services.NewUserService(userRepo, log, userValidator)
	userHandler := handlers.NewUserHandler(userService, log, metrics)
	healthHandler := handlers.NewHealthHandler(mongodb.Pinger(client))

	router, err := handlers.NewRouter(cfg.HTTP, log, metrics, userHandler, healthHandler)
	if err != nil {
		return nil, err
	}

	return &App{
		log:         log,
		mongoClient: client,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.HTTP.URL, cfg.HTTP.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Run blocks serving HTTP until Stop is called.
func (a *App) Run() error {
	const op = "app.Run"

	a.log.Info("Starting the HTTP server", map[string]interface{}{
		"addr": a.httpServer.Addr,
	})

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Stop drains in-flight requests and then releases the Mongo client.
func (a *App) Stop(ctx context.Context) error {
	const op = "app.Stop"

	a.log.Info("Stopping the HTTP server", map[string]interface{}{
		"op": op,
	})

	shutdownErr := a.httpServer.Shutdown(ctx)
	disconnectErr := a.mongoClient.Disconnect(ctx)

	if err := errors.Join(shutdownErr, disconnectErr); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
