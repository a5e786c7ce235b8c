package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/sm8ta/mongo_user_service/internal/core/ports"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type LoggerAdapter struct {
	logger *slog.Logger
}

func NewLoggerAdapter(env string) ports.LoggerPort {
	return New(env, os.Stdout)
}

// New builds a logger writing to w. Prod gets JSON at info level, everything else text at debug level.
func New(env string, w io.Writer) ports.LoggerPort {
	var log *slog.Logger

	switch env {
	case envLocal, envDev:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return &LoggerAdapter{
		logger: log,
	}
}

func (l *LoggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.log(context.Background(), slog.LevelInfo, msg, fields)
}

func (l *LoggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.log(context.Background(), slog.LevelError, msg, fields)
}

func (l *LoggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.log(context.Background(), slog.LevelDebug, msg, fields)
}

func (l *LoggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.log(context.Background(), slog.LevelWarn, msg, fields)
}

func (l *LoggerAdapter) InfoContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *LoggerAdapter) ErrorContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *LoggerAdapter) log(ctx context.Context, level slog.Level, msg string, fields map[string]interface{}) {
	if fields == nil {
		l.logger.Log(ctx, level, msg)
		return
	}
	l.logger.Log(ctx, level, msg, slog.Any("fields", fields))
}

var _ ports.LoggerPort = (*LoggerAdapter)(nil)
