// Package log provides leveled logging for idbridge on top of log/slog.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"sync"
	"sync/atomic"
)

type (
	// Level is the log level for the logs.
	Level = slog.Level

	// Handler is the log handler function.
	Handler = func(_ context.Context, _ Level, format string, args ...interface{})
)

const (
	// ErrorLevel level. Used for errors that should definitely be noted.
	ErrorLevel = slog.LevelError
	// WarnLevel level. Non-critical entries that deserve eyes.
	WarnLevel = slog.LevelWarn
	// NoticeLevel level. Normal but significant conditions. slog doesn't have a Notice level,
	// so we use the average between Info and Warn.
	NoticeLevel = (slog.LevelInfo + slog.LevelWarn) / 2
	// InfoLevel level. General operational entries about what's going on inside the application.
	InfoLevel = slog.LevelInfo
	// DebugLevel level. Very verbose logging, such as every lookup attempt.
	DebugLevel = slog.LevelDebug
)

var (
	logLevelMu = sync.RWMutex{}
	logLevel   = NoticeLevel

	output atomic.Pointer[io.Writer]
)

var allLevels = []Level{DebugLevel, InfoLevel, NoticeLevel, WarnLevel, ErrorLevel}

func slogAdapter(slogFunc func(ctx context.Context, msg string, args ...interface{})) Handler {
	return func(ctx context.Context, _ Level, format string, args ...interface{}) {
		slogFunc(ctx, fmt.Sprintf(format, args...))
	}
}

var defaultHandlers = map[Level]Handler{
	DebugLevel: slogAdapter(slog.DebugContext),
	InfoLevel:  slogAdapter(slog.InfoContext),
	NoticeLevel: func(ctx context.Context, _ Level, format string, args ...interface{}) {
		slog.Log(ctx, NoticeLevel, fmt.Sprintf(format, args...))
	},
	WarnLevel:  slogAdapter(slog.WarnContext),
	ErrorLevel: slogAdapter(slog.ErrorContext),
}

var (
	handlers   = maps.Clone(defaultHandlers)
	handlersMu = sync.RWMutex{}
)

func init() {
	SetOutput(os.Stderr)
}

// GetLevel gets the standard logger level.
func GetLevel() Level {
	logLevelMu.RLock()
	defer logLevelMu.RUnlock()
	return logLevel
}

// IsLevelEnabled checks if the log level is greater than the level param.
func IsLevelEnabled(level Level) bool {
	return slog.Default().Enabled(context.Background(), level)
}

// SetLevel sets the standard logger level and returns the previous one.
func SetLevel(level Level) (oldLevel Level) {
	logLevelMu.Lock()
	oldLevel = logLevel
	logLevel = level
	logLevelMu.Unlock()

	if out := output.Load(); out != nil {
		SetOutput(*out)
	}
	return oldLevel
}

// SetOutput sets the log output.
func SetOutput(out io.Writer) {
	output.Store(&out)
	slog.SetDefault(slog.New(NewSimpleHandler(out, GetLevel())))
}

// SetHandler defines the handler function for all log levels.
// A nil handler restores the default ones.
func SetHandler(handler Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()

	if handler == nil {
		handlers = maps.Clone(defaultHandlers)
		return
	}
	for _, level := range allLevels {
		handlers[level] = handler
	}
}

func logf(ctx context.Context, level Level, format string, args ...interface{}) {
	if !slog.Default().Enabled(ctx, level) {
		return
	}

	handlersMu.RLock()
	handler := handlers[level]
	handlersMu.RUnlock()

	handler(ctx, level, format, args...)
}

// Debugf outputs messages with the level [DebugLevel] (when that is enabled).
func Debugf(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, DebugLevel, format, args...)
}

// Infof outputs messages with the level [InfoLevel] (when that is enabled).
func Infof(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, InfoLevel, format, args...)
}

// Noticef outputs messages with the level [NoticeLevel] (when that is enabled).
func Noticef(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, NoticeLevel, format, args...)
}

// Warningf outputs messages with the level [WarnLevel] (when that is enabled).
func Warningf(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, WarnLevel, format, args...)
}

// Error outputs args with the level [ErrorLevel], formatted as by fmt.Sprint.
func Error(ctx context.Context, args ...interface{}) {
	logf(ctx, ErrorLevel, "%s", fmt.Sprint(args...))
}
