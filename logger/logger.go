// package logger holds the process-wide structured logger used by every engine component.
// Components take an optional *zap.Logger through their builder options and fall back to Named.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu sync.Mutex

	// Log is the process-wide logger. It is a no-op logger until Init is called.
	Log = zap.NewNop()
)

// Init replaces the process-wide logger with one writing at the given level.
//
// Parameters:
//   - level: a zap level name ("debug", "info", "warn", "error"); empty means "info"
//   - development: if true, uses zap's human-readable development encoder
//
// Returns:
//   - error: error if the level is unknown or the logger cannot be built
func Init(level string, development bool) error {
	var lvl zapcore.Level
	if level == "" {
		level = "info"
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	Log = l
	return nil
}

// Named returns a child of the process-wide logger tagged with the given component name.
//
// Parameters:
//   - name: the component name
//
// Returns:
//   - *zap.Logger: the named logger
func Named(name string) *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return Log.Named(name)
}

// Sync flushes any buffered log entries. Errors from syncing stderr are ignored.
func Sync() {
	mu.Lock()
	l := Log
	mu.Unlock()
	_ = l.Sync()
}
