// Package log provides leveled, structured logging on top of go-kit/log.
package log

import (
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Logger is the key/value logger used throughout flakeid.
type Logger interface {
	Log(keyvals ...interface{}) error
}

func Debug(logger Logger) Logger { return level.Debug(logger) }
func Info(logger Logger) Logger  { return level.Info(logger) }
func Error(logger Logger) Logger { return level.Error(logger) }

// With returns a logger that includes keyvals in every entry.
func With(logger Logger, keyvals ...interface{}) Logger { return log.With(logger, keyvals...) }

// Component tags every entry of logger with the name of a subsystem.
func Component(logger Logger, name string) Logger { return log.With(logger, "component", name) }

// Nop returns a logger that discards everything.
func Nop() Logger { return log.NewNopLogger() }
