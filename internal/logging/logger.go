// Package logging provides categorized file-based logging for shopadmin.
// The dashboard owns the terminal while it runs, so diagnostics go to files
// under <data-dir>/logs, one file per category per day. Logging is gated by
// the debug flag in the application config; when disabled every call is a
// silent no-op.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/system.
type Category string

const (
	CategoryBoot   Category = "boot"   // Startup and shutdown
	CategorySess   Category = "auth"   // Session authority, sign-in/out
	CategoryStore  Category = "store"  // Document store operations
	CategoryLoader Category = "loader" // Entity loaders, staleness decisions
	CategoryUI     Category = "ui"     // Page router, modal lifecycle
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	enabled   bool
	logLevel  = LevelInfo
	stateMu   sync.RWMutex
)

// Initialize sets up the logging directory. Call once at startup with the
// application data directory and the config debug flag. When debug is
// false this is a no-op and all loggers stay silent.
func Initialize(dataDir string, debug bool, level string) error {
	stateMu.Lock()
	enabled = debug
	switch level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	stateMu.Unlock()

	if !debug {
		return nil
	}
	if dataDir == "" {
		return fmt.Errorf("data directory required")
	}
	logsDir = filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== shopadmin logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	return nil
}

// IsDebugMode returns whether file logging is enabled.
func IsDebugMode() bool {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return enabled
}

// Get returns (or creates) a logger for the given category. Returns a
// no-op logger when debug mode is disabled.
func Get(category Category) *Logger {
	if !IsDebugMode() || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation a matter of deleting old files.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message. Always written when the logger exists.
func (l *Logger) Error(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes every open log file. Call on shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for cat, l := range loggers {
		if l.file != nil {
			_ = l.file.Close()
		}
		delete(loggers, cat)
	}
}

// Convenience helpers for the hot categories.

func Boot(format string, args ...any)        { Get(CategoryBoot).Info(format, args...) }
func Store(format string, args ...any)       { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...any)  { Get(CategoryStore).Debug(format, args...) }
func Loader(format string, args ...any)      { Get(CategoryLoader).Info(format, args...) }
func LoaderDebug(format string, args ...any) { Get(CategoryLoader).Debug(format, args...) }
func Sess(format string, args ...any)        { Get(CategorySess).Info(format, args...) }
func UI(format string, args ...any)          { Get(CategoryUI).Info(format, args...) }
func UIDebug(format string, args ...any)     { Get(CategoryUI).Debug(format, args...) }

// Timer measures an operation's duration for the performance trail.
type Timer struct {
	category  Category
	operation string
	start     time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, operation: operation, start: time.Now()}
}

// Stop ends timing and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	Get(t.category).Debug("%s took %v", t.operation, d)
	return d
}
