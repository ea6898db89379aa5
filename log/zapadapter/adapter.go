// Package zapadapter provides a logger that writes to a go.uber.org/zap.Logger.
package zapadapter

import (
	"context"

	"github.com/pgkit/pgsession"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (pl *Logger) Log(ctx context.Context, level pgsession.LogLevel, msg string, data map[string]interface{}) {
	fields := make([]zapcore.Field, len(data))
	i := 0
	for k, v := range data {
		fields[i] = zap.Any(k, v)
		i++
	}

	switch level {
	case pgsession.LogLevelTrace:
		pl.logger.Debug(msg, append(fields, zap.Stringer("PGSESSION_LOG_LEVEL", level))...)
	case pgsession.LogLevelDebug:
		pl.logger.Debug(msg, fields...)
	case pgsession.LogLevelInfo:
		pl.logger.Info(msg, fields...)
	case pgsession.LogLevelWarn:
		pl.logger.Warn(msg, fields...)
	case pgsession.LogLevelError:
		pl.logger.Error(msg, fields...)
	default:
		pl.logger.Error(msg, append(fields, zap.Stringer("INVALID_PGSESSION_LOG_LEVEL", level))...)
	}
}
