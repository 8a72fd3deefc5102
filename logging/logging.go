// Package logging builds the zap loggers used across the storefront and
// adapts them for the Temporal SDK.
package logging

import (
	"go.uber.org/zap"
)

// New returns a development logger when dev is set, otherwise a production
// logger. Development loggers panic on DPanic, which the stores use to
// report invalid actions.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Must is New that panics on error, for use in main functions.
func Must(dev bool) *zap.Logger {
	logger, err := New(dev)
	if err != nil {
		panic(err)
	}
	return logger
}
