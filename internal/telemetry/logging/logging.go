// Package logging wraps log/slog with the level/format configuration and
// package-level default logger idiom used throughout the reference stack,
// scaled down to the handful of fields the storage engine actually emits:
// corruption events and compaction lifecycle transitions.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Config selects the level and output format of the package-level logger.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

var (
	mu            sync.RWMutex
	slogger       *slog.Logger
	currentLevel  atomic.Int32
	currentFormat atomic.Value
)

func init() {
	currentLevel.Store(int32(slog.LevelInfo))
	currentFormat.Store("text")
	reconfigure()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func reconfigure() {
	mu.Lock()
	defer mu.Unlock()

	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.Level(currentLevel.Load()))
	opts := &slog.HandlerOptions{Level: levelVar}

	format, _ := currentFormat.Load().(string)
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slogger = slog.New(handler)
}

// Init (re)configures the package-level logger.
func Init(cfg Config) {
	currentLevel.Store(int32(parseLevel(cfg.Level)))
	if cfg.Format != "" {
		currentFormat.Store(strings.ToLower(cfg.Format))
	}
	reconfigure()
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// With returns a logger carrying the given structured attributes, e.g.
// logging.With(logging.DataDir(dir)).Info("opened backend").
func With(args ...any) *slog.Logger {
	return get().With(args...)
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

// Structured field helpers for the attributes this engine actually logs.

func Position(p uint64) slog.Attr   { return slog.Uint64("position", p) }
func DataDir(path string) slog.Attr { return slog.String("data_dir", path) }
func Path(path string) slog.Attr    { return slog.String("path", path) }
func Count(n int) slog.Attr         { return slog.Int("count", n) }
func Err(err error) slog.Attr       { return slog.Any("error", err) }
func Operation(op string) slog.Attr { return slog.String("op", op) }
