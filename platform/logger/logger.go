// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// RepIDKey is the context key for the representative ID
	RepIDKey contextKey = "rep_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with request_id and rep_id extracted from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{Logger: newLogger.With(slog.String("request_id", requestID))}
	}

	if repID, ok := ctx.Value(RepIDKey).(string); ok && repID != "" {
		newLogger = newLogger.WithRepID(repID)
	}

	return newLogger
}

// WithRepID returns a logger scoped to a representative.
func (l *Logger) WithRepID(repID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("rep_id", repID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// CycleEvent logs a daily-cycle event (start, backfill, completion).
func (l *Logger) CycleEvent(event, repID, date string, count int) {
	l.Info("cycle_event",
		slog.String("event", event),
		slog.String("rep_id", repID),
		slog.String("date", date),
		slog.Int("count", count),
	)
}

// ActivityRecorded logs a recorded outreach activity.
func (l *Logger) ActivityRecorded(repID, contactID, activityType string) {
	l.Info("activity_recorded",
		slog.String("rep_id", repID),
		slog.String("contact_id", contactID),
		slog.String("activity_type", activityType),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
