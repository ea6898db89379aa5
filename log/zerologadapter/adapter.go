// Package zerologadapter provides a logger that writes to a github.com/rs/zerolog.
package zerologadapter

import (
	"context"

	"github.com/pgkit/pgsession"
	"github.com/rs/zerolog"
)

type Logger struct {
	logger     zerolog.Logger
	withModule bool
}

// Option modifies the logger when passed to NewLogger.
type Option interface {
	apply(*Logger)
}

type optionFunc func(*Logger)

func (f optionFunc) apply(l *Logger) { f(l) }

// WithoutModule disables the "module":"pgsession" field the logger adds by default.
func WithoutModule() Option {
	return optionFunc(func(l *Logger) {
		l.withModule = false
	})
}

// NewLogger accepts a zerolog.Logger as input and returns a new custom pgsession logging
// fascade as output.
func NewLogger(logger zerolog.Logger, options ...Option) *Logger {
	l := &Logger{logger: logger, withModule: true}
	for _, opt := range options {
		opt.apply(l)
	}
	if l.withModule {
		l.logger = l.logger.With().Str("module", "pgsession").Logger()
	}
	return l
}

func (pl *Logger) Log(ctx context.Context, level pgsession.LogLevel, msg string, data map[string]interface{}) {
	var zlevel zerolog.Level
	switch level {
	case pgsession.LogLevelNone:
		zlevel = zerolog.NoLevel
	case pgsession.LogLevelError:
		zlevel = zerolog.ErrorLevel
	case pgsession.LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case pgsession.LogLevelInfo:
		zlevel = zerolog.InfoLevel
	case pgsession.LogLevelDebug:
		zlevel = zerolog.DebugLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	log := pl.logger.With().Fields(data).Logger()
	log.WithLevel(zlevel).Msg(msg)
}
