// Package logrusadapter provides a logger that writes to a github.com/sirupsen/logrus.Logger
// log.
package logrusadapter

import (
	"context"

	"github.com/pgkit/pgsession"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	l logrus.FieldLogger
}

func NewLogger(l logrus.FieldLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pgsession.LogLevel, msg string, data map[string]interface{}) {
	var logger logrus.FieldLogger
	if data != nil {
		logger = l.l.WithFields(data)
	} else {
		logger = l.l
	}

	switch level {
	case pgsession.LogLevelTrace:
		logger.WithField("PGSESSION_LOG_LEVEL", level).Debug(msg)
	case pgsession.LogLevelDebug:
		logger.Debug(msg)
	case pgsession.LogLevelInfo:
		logger.Info(msg)
	case pgsession.LogLevelWarn:
		logger.Warn(msg)
	case pgsession.LogLevelError:
		logger.Error(msg)
	default:
		logger.WithField("INVALID_PGSESSION_LOG_LEVEL", level).Error(msg)
	}
}
