// Package log provides centralized logging functionality using zap logger.
package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu         sync.RWMutex
	log        *zap.SugaredLogger
	baseLogger *zap.Logger
)

// Init initializes the package-level logger
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	baseLogger = zapLogger
	log = zapLogger.Sugar()
	return nil
}

// logger returns the package logger, creating a production logger on first
// use if Init was never called.
func logger() *zap.SugaredLogger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		log = baseLogger.Sugar()
	}
	return log
}

// GetZapLogger returns the base zap logger for cases where it's needed (like GORM)
func GetZapLogger() *zap.Logger {
	logger()
	mu.RLock()
	defer mu.RUnlock()
	return baseLogger
}

// GetSugaredLogger returns the sugared logger instance
func GetSugaredLogger() *zap.SugaredLogger {
	return logger()
}

// Named returns a child logger for one component.
func Named(name string) *zap.SugaredLogger {
	return logger().Named(name)
}

// Sync flushes any buffered log entries
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if log != nil {
		log.Sync()
	}
}

// Package-level convenience functions
func Debug(args ...interface{}) {
	logger().Debug(args...)
}

func Debugf(template string, args ...interface{}) {
	logger().Debugf(template, args...)
}

func Debugw(msg string, keysAndValues ...interface{}) {
	logger().Debugw(msg, keysAndValues...)
}

func Info(args ...interface{}) {
	logger().Info(args...)
}

func Infof(template string, args ...interface{}) {
	logger().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	logger().Infow(msg, keysAndValues...)
}

func Warn(args ...interface{}) {
	logger().Warn(args...)
}

func Warnf(template string, args ...interface{}) {
	logger().Warnf(template, args...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	logger().Warnw(msg, keysAndValues...)
}

func Error(args ...interface{}) {
	logger().Error(args...)
}

func Errorf(template string, args ...interface{}) {
	logger().Errorf(template, args...)
}

func Errorw(msg string, keysAndValues ...interface{}) {
	logger().Errorw(msg, keysAndValues...)
}

func Fatal(args ...interface{}) {
	logger().Fatal(args...)
}

func Fatalf(template string, args ...interface{}) {
	logger().Fatalf(template, args...)
}
