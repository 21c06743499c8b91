package logger

import (
	"go.uber.org/zap"
)

var Log *zap.Logger

func NewLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	Log = l
	return l
}

// Named returns a child logger tagged with the owning service.
func Named(l *zap.Logger, service string) *zap.Logger {
	return l.With(zap.String("service", service))
}
