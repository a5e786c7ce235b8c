package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/sm8ta/mongo_user_service/docs"
	"github.com/sm8ta/mongo_user_service/internal/adapter/logger"
	"github.com/sm8ta/mongo_user_service/internal/app"
	"github.com/sm8ta/mongo_user_service/internal/config"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

// @title User Service API
// @version 1.0
// @description CRUD API для пользователей поверх MongoDB

// @host localhost:3000
// @BasePath /

const shutdownTimeout = 10 * time.Second

const (
	portFlag     = "port"
	mongoURIFlag = "mongo-uri"
)

// overrides carries command-line values that win over the environment. Empty means unset.
type overrides struct {
	port     string
	mongoURI string
}

// newServeFlags is called per command tree: cobraflags binds each flag value once.
func newServeFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		portFlag: &cobraflags.StringFlag{
			Name:       portFlag,
			Value:      "",
			Usage:      "HTTP port, overrides HTTP_PORT",
			Persistent: true,
		},
		mongoURIFlag: &cobraflags.StringFlag{
			Name:       mongoURIFlag,
			Value:      "",
			Usage:      "MongoDB connection string, overrides MONGO_URI",
			Persistent: true,
		},
	}
}

func main() {
	if err := newRootCommand(serve).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand builds the CLI. The root and serve share one persistent flag set and both call run.
func newRootCommand(run func(ctx context.Context, o overrides) error) *cobra.Command {
	flags := newServeFlags()

	runE := func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), overrides{
			port:     flags[portFlag].GetString(),
			mongoURI: flags[mongoURIFlag].GetString(),
		})
	}

	rootCmd := &cobra.Command{
		Use:          "user-service",
		Short:        "HTTP CRUD service for users stored in MongoDB",
		SilenceUsage: true,
		RunE:         runE, // serving is the default action
	}
	cobraflags.RegisterMap(rootCmd, flags)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runE,
	})
	return rootCmd
}

func serve(ctx context.Context, o overrides) error {
	// Loading environment
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if o.port != "" {
		cfg.HTTP.Port = o.port
	}
	if o.mongoURI != "" {
		cfg.Mongo.URI = o.mongoURI
	}

	// Set logger
	loggerAdapter := logger.NewLoggerAdapter(cfg.App.Env)
	loggerAdapter.Info("Starting the application", map[string]interface{}{
		"app": cfg.App.Name,
		"env": cfg.App.Env,
	})

	application, err := app.New(ctx, cfg, loggerAdapter)
	if err != nil {
		loggerAdapter.Error("Failed to initialize application", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Run()
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	loggerAdapter.Info("Application is running", nil)

	var runErr error
	select {
	case <-stop:
	case runErr = <-errCh:
		if runErr != nil {
			loggerAdapter.Error("HTTP server failed", map[string]interface{}{
				"error": runErr.Error(),
			})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Stop(ctx); err != nil {
		loggerAdapter.Error("Shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	loggerAdapter.Info("Application stopped", nil)
	return runErr
}
