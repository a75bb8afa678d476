// Package obslog provides the package-level structured logging facade used
// across the authorization core, wrapping log/slog the way the rest of the
// fleet's services do.
package obslog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	current = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// SetDefault replaces the process-wide logger. Intended for the demo binary
// and tests; components never construct their own handler.
func SetDefault(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

func logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Debug logs at debug level with structured key/value pairs.
func Debug(msg string, args ...any) { logger().Debug(msg, args...) }

// Debugf logs at debug level with printf-style formatting.
func Debugf(format string, args ...any) { logger().Debug(fmt.Sprintf(format, args...)) }

// Info logs at info level with structured key/value pairs.
func Info(msg string, args ...any) { logger().Info(msg, args...) }

// Infof logs at info level with printf-style formatting.
func Infof(format string, args ...any) { logger().Info(fmt.Sprintf(format, args...)) }

// Warn logs at warn level with structured key/value pairs.
func Warn(msg string, args ...any) { logger().Warn(msg, args...) }

// Warnf logs at warn level with printf-style formatting.
func Warnf(format string, args ...any) { logger().Warn(fmt.Sprintf(format, args...)) }

// Error logs at error level with structured key/value pairs.
func Error(msg string, args ...any) { logger().Error(msg, args...) }

// Errorf logs at error level with printf-style formatting.
func Errorf(format string, args ...any) { logger().Error(fmt.Sprintf(format, args...)) }

// With returns a logger bound to the given context-free key/value pairs,
// for call sites that want to avoid repeating identifiers across a block of
// related log lines.
func With(args ...any) *slog.Logger {
	return logger().With(args...)
}

// DebugCtx logs at debug level, honoring handlers that inspect ctx (trace
// id propagation, etc).
func DebugCtx(ctx context.Context, msg string, args ...any) { logger().DebugContext(ctx, msg, args...) }

// InfoCtx logs at info level, honoring handlers that inspect ctx.
func InfoCtx(ctx context.Context, msg string, args ...any) { logger().InfoContext(ctx, msg, args...) }

// WarnCtx logs at warn level, honoring handlers that inspect ctx.
func WarnCtx(ctx context.Context, msg string, args ...any) { logger().WarnContext(ctx, msg, args...) }
