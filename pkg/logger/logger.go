// Package logger provides the process-wide zap logger for the comps service.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu       sync.RWMutex
	instance *zap.Logger
)

// InitError represents logger initialization errors.
type InitError struct {
	Op  string // the operation that failed
	Err error  // the underlying error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("logger: %s failed: %v", e.Op, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Init builds a production JSON logger at the given level ("debug", "info",
// "warn", "error"). An empty level means info.
func Init(level string) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return &InitError{Op: "parse level", Err: err}
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := cfg.Build()
	if err != nil {
		return &InitError{Op: "build", Err: err}
	}

	mu.Lock()
	instance = l
	mu.Unlock()
	return nil
}

// Get returns the global logger, creating a production logger on first use.
func Get() *zap.Logger {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		return l
	}

	if err := Init(""); err != nil {
		return zap.NewNop()
	}
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Sync flushes buffered entries. Safe to call on an uninitialized logger.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return nil
	}
	return instance.Sync()
}
