// Package log provides the process-wide logger, a pattern-formatted
// logrus wrapper.
package log

import (
	"os"
	"sync"

	"firestige.xyz/layerspy/internal/config"
)

type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})

	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	Panic(args ...interface{})
	Panicf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsTraceEnabled() bool
	IsDebugEnabled() bool
	IsInfoEnabled() bool
}

const (
	defaultPattern = "%time [%level] %field %msg%n"
	defaultTime    = "2006-01-02 15:04:05.000"
)

var (
	once   sync.Once
	mu     sync.RWMutex
	logger Logger = mustDefault()
)

func mustDefault() Logger {
	l, err := New(config.LogConfig{Level: "info", Pattern: defaultPattern, Time: defaultTime}, os.Stderr)
	if err != nil {
		panic(err)
	}
	return l
}

// GetLogger returns the process logger. Before Init it logs info and above
// to stderr.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger replaces the process logger.
func SetLogger(l Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Init builds the process logger from cfg. Only the first call has an effect.
// Log lines go to stderr so they never interleave with decoded output on
// stdout.
func Init(cfg config.LogConfig) error {
	var err error
	once.Do(func() {
		var l Logger
		if l, err = New(cfg, os.Stderr); err == nil {
			SetLogger(l)
		}
	})
	return err
}
