package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_NAME", "HTTP_PORT", "HTTP_URL", "ALLOWED_ORIGINS",
		"MONGO_URI", "MONGO_DATABASE", "MONGO_COLLECTION", "MONGO_CONNECT_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
	// prod skips the .env lookup
	t.Setenv("APP_ENV", "prod")
}

func TestNewDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "user-service", cfg.App.Name)
	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, "prod", cfg.HTTP.Env)
	assert.Equal(t, "3000", cfg.HTTP.Port)
	assert.Equal(t, "*", cfg.HTTP.AllowedOrigins)
	assert.Empty(t, cfg.HTTP.URL)
	assert.Equal(t, "mongodb://127.0.0.1:27017", cfg.Mongo.URI)
	assert.Equal(t, "testdb", cfg.Mongo.Database)
	assert.Equal(t, "users", cfg.Mongo.Collection)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
}

func TestNewOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_NAME", "users-api")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("HTTP_URL", "0.0.0.0")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("MONGO_DATABASE", "prod_db")
	t.Setenv("MONGO_COLLECTION", "people")
	t.Setenv("MONGO_CONNECT_TIMEOUT", "3s")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "users-api", cfg.App.Name)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.URL)
	assert.Equal(t, "http://a.test,http://b.test", cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "mongodb://mongo:27017", cfg.Mongo.URI)
	assert.Equal(t, "prod_db", cfg.Mongo.Database)
	assert.Equal(t, "people", cfg.Mongo.Collection)
	assert.Equal(t, 3*time.Second, cfg.Mongo.ConnectTimeout)
}

func TestNewInvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_CONNECT_TIMEOUT", "soon")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_CONNECT_TIMEOUT")
}
