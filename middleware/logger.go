package middleware

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/wsforge/wsforge/extractor"
	"github.com/wsforge/wsforge/message"
)

// LoggerMiddleware logs each dispatched message with its connection id,
// frame kind, processing duration, and outcome.
type LoggerMiddleware struct {
	logger zerolog.Logger
	level  zerolog.Level
}

// NewLogger creates a LoggerMiddleware at zerolog.InfoLevel.
func NewLogger(logger zerolog.Logger) *LoggerMiddleware {
	return &LoggerMiddleware{logger: logger, level: zerolog.InfoLevel}
}

// WithLevel sets the log level used for routine (non-error) log lines.
func (l *LoggerMiddleware) WithLevel(level zerolog.Level) *LoggerMiddleware {
	l.level = level
	return l
}

// Handle implements Middleware.
func (l *LoggerMiddleware) Handle(ctx *extractor.Context, next Next) (*message.Message, error) {
	start := time.Now()
	connID := ctx.Conn.ID()
	kind := ctx.Message.Kind()

	l.logger.WithLevel(l.level).Str("conn_id", connID).Str("kind", kind.String()).Msg("received message")

	resp, err := next(ctx)
	elapsed := time.Since(start)

	if err != nil {
		l.logger.Error().Str("conn_id", connID).Dur("elapsed", elapsed).Err(err).Msg("dispatch failed")
		return resp, err
	}
	if resp != nil {
		l.logger.WithLevel(l.level).Str("conn_id", connID).Dur("elapsed", elapsed).Msg("sent response")
	} else {
		l.logger.WithLevel(l.level).Str("conn_id", connID).Dur("elapsed", elapsed).Msg("processed without response")
	}
	return resp, err
}
