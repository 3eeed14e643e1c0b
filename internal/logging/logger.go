// Package logging provides categorized file-based logging for the FoodChain
// dashboards. Logs are written to <state dir>/logs with one file per category
// per day. File logging keeps diagnostics off the terminal, which the
// dashboards own while running. When not initialized every logger is a no-op.
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
	CategoryBoot     Category = "boot"     // startup, config, shutdown
	CategoryAPI      Category = "api"      // backend HTTP calls
	CategoryVoice    Category = "voice"    // speech capture/playback lifecycle
	CategoryDispatch Category = "dispatch" // intent dispatch and fallback
	CategoryRoute    Category = "route"    // road routing
	CategoryScenario Category = "scenario" // what-if recomputation
	CategoryAlert    Category = "alert"    // alert escalation
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	logLevel  = LevelInfo
	enabled   bool
)

// Logger writes category-tagged lines to its own file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

// Initialize sets up file logging under stateDir. level is one of
// debug/info/warn/error; anything else falls back to info. Calling with an
// empty stateDir leaves logging disabled.
func Initialize(stateDir, level string) error {
	if stateDir == "" {
		return nil
	}
	logsDir = filepath.Join(stateDir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}

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
	enabled = true

	Get(CategoryBoot).Info("logging initialized dir=%s level=%s", logsDir, level)
	return nil
}

// Get returns (or creates) the logger for a category. Returns a no-op logger
// when logging is disabled or the file cannot be opened.
func Get(category Category) *Logger {
	if !enabled || logsDir == "" {
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
	filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category)
	file, err := os.OpenFile(filepath.Join(logsDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open log file: %v\n", err)
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
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always written if the logger is live).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// Debug logs a debug message to a category's logger.
func Debug(category Category, format string, args ...interface{}) {
	Get(category).Debug(format, args...)
}

// Info logs an informational message to a category's logger.
func Info(category Category, format string, args ...interface{}) {
	Get(category).Info(format, args...)
}

// Warn logs a warning message to a category's logger.
func Warn(category Category, format string, args ...interface{}) {
	Get(category).Warn(format, args...)
}

// Error logs an error message to a category's logger.
func Error(category Category, format string, args ...interface{}) {
	Get(category).Error(format, args...)
}

// CloseAll closes all open log files. Call at shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
	enabled = false
}
