package main

import (
	"fmt"
	"log/slog"
)

// slogLogger adapts slog to paper.Logger.
type slogLogger struct {
	log *slog.Logger
}

func newLogger(log *slog.Logger) *slogLogger {
	if log == nil {
		log = slog.Default()
	}
	return &slogLogger{log: log.With("component", "qpaper")}
}

func (l *slogLogger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l *slogLogger) Infof(format string, args ...any) {
	l.log.Info(fmt.Sprintf(format, args...))
}

func (l *slogLogger) Errorf(format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...))
}
