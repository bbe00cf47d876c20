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
	// TenantKey is the context key for the resolved tenant name
	TenantKey contextKey = "tenant"
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

// WithContext returns a logger with context values extracted.
// Supports request_id and tenant from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if tenant, ok := ctx.Value(TenantKey).(string); ok && tenant != "" {
		newLogger = newLogger.WithTenant(tenant)
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// WithTenant returns a logger scoped to a tenant (razón social)
func (l *Logger) WithTenant(tenant string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("tenant", tenant)),
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

// HTTPError logs an HTTP error
func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

// CRMError logs a failed call against a tenant's CRM account
func (l *Logger) CRMError(operation, tenant string, err error) {
	l.Error("crm_error",
		slog.String("operation", operation),
		slog.String("tenant", tenant),
		slog.String("error", err.Error()),
	)
}

// ConfigError logs a configuration problem an operator must act on
func (l *Logger) ConfigError(key string, err error) {
	l.Error("config_error",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// DriftDetected logs newly observed options on a monitored CRM property
func (l *Logger) DriftDetected(objectType, property string, count int) {
	l.Warn("drift_detected",
		slog.String("object_type", objectType),
		slog.String("property", property),
		slog.Int("added_options", count),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
