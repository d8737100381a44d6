// internal/logger/operation.go
package logger

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WithOperation returns a logger scoped to one user action (view load, buy, withdraw).
func WithOperation(l *zap.Logger, operation string) *zap.Logger {
	return l.With(
		zap.String("operation", operation),
		zap.String("correlation_id", uuid.New().String()),
	)
}

// TrackPerformance logs the duration of an operation at debug level.
func TrackPerformance(l *zap.Logger, operation string) (end func()) {
	start := time.Now()
	l.Debug("Starting operation", zap.String("operation", operation))

	return func() {
		duration := time.Since(start)
		l.Debug("Operation completed",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.Float64("duration_ms", float64(duration.Microseconds())/1000),
		)
	}
}
