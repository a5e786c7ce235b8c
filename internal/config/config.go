package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type (
	Container struct {
		App   *App
		HTTP  *HTTP
		Mongo *Mongo
	}

	App struct {
		Name string
		Env  string
	}

	HTTP struct {
		Env            string
		Port           string
		AllowedOrigins string
		URL            string
	}

	Mongo struct {
		URI            string
		Database       string
		Collection     string
		ConnectTimeout time.Duration
	}
)

const (
	defaultAppName        = "user-service"
	defaultEnv            = "local"
	defaultHTTPPort       = "3000"
	defaultAllowedOrigins = "*"
	defaultMongoURI       = "mongodb://127.0.0.1:27017"
	defaultMongoDatabase  = "testdb"
	defaultCollection     = "users"
	defaultConnectTimeout = 10 * time.Second
)

func New() (*Container, error) {
	if os.Getenv("APP_ENV") != "prod" {
		// .env is optional for local runs
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	app := &App{
		Name: getEnv("APP_NAME", defaultAppName),
		Env:  getEnv("APP_ENV", defaultEnv),
	}

	http := &HTTP{
		Port:           getEnv("HTTP_PORT", defaultHTTPPort),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", defaultAllowedOrigins),
		URL:            os.Getenv("HTTP_URL"),
		Env:            app.Env,
	}

	connectTimeout := defaultConnectTimeout
	if raw := os.Getenv("MONGO_CONNECT_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MONGO_CONNECT_TIMEOUT %q: %w", raw, err)
		}
		connectTimeout = d
	}

	mongo := &Mongo{
		URI:            getEnv("MONGO_URI", defaultMongoURI),
		Database:       getEnv("MONGO_DATABASE", defaultMongoDatabase),
		Collection:     getEnv("MONGO_COLLECTION", defaultCollection),
		ConnectTimeout: connectTimeout,
	}

	return &Container{
		App:   app,
		HTTP:  http,
		Mongo: mongo,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
