package util

import (
	"go.uber.org/zap"
)

var (
	Logger *hypLogger
)

func init() {
	l, _ := zap.NewProduction()
	Logger = &hypLogger{
		l.Sugar(),
	}
}

type hypLogger struct {
	*zap.SugaredLogger
}
