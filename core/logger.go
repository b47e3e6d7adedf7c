package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelOff
)

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LogLevelDebug, nil
	case "INFO", "":
		return LogLevelInfo, nil
	case "WARN", "WARNING":
		return LogLevelWarn, nil
	case "ERROR":
		return LogLevelError, nil
	case "OFF", "NONE":
		return LogLevelOff, nil
	default:
		return LogLevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidParameter, s)
	}
}

// Logger is the leveled logger used across the pipelines.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// DefaultLogger writes "[LEVEL] component: message" lines through a log.Logger.
type DefaultLogger struct {
	level     LogLevel
	component string
	parent    *DefaultLogger // level source for named loggers
	logger    *log.Logger
	mu        sync.RWMutex
}

// NewLogger creates a new logger instance
func NewLogger(output io.Writer, level LogLevel) *DefaultLogger {
	return &DefaultLogger{
		level:  level,
		logger: log.New(output, "", log.LstdFlags),
	}
}

// Named returns a logger sharing this one's output and level that tags
// every line with component.
func (l *DefaultLogger) Named(component string) *DefaultLogger {
	return &DefaultLogger{
		component: component,
		parent:    l,
		logger:    l.logger,
	}
}

func (l *DefaultLogger) SetLevel(level LogLevel) {
	if l.parent != nil {
		l.parent.SetLevel(level)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *DefaultLogger) GetLevel() LogLevel {
	if l.parent != nil {
		return l.parent.GetLevel()
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetOutput redirects the logger.
func (l *DefaultLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

func (l *DefaultLogger) log(level LogLevel, format string, args ...any) {
	if level < l.GetLevel() {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		l.logger.Printf("[%s] %s: %s", level, l.component, msg)
		return
	}
	l.logger.Printf("[%s] %s", level, msg)
}

func (l *DefaultLogger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

func (l *DefaultLogger) Info(format string, args ...any) {
	l.log(LogLevelInfo, format, args...)
}

func (l *DefaultLogger) Warn(format string, args ...any) {
	l.log(LogLevelWarn, format, args...)
}

func (l *DefaultLogger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}

var globalLogger = NewLogger(os.Stderr, LogLevelInfo)

// DefaultLog returns the process wide logger.
func DefaultLog() *DefaultLogger {
	return globalLogger
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	globalLogger.SetLevel(level)
}

// GetLogLevel returns the current global log level
func GetLogLevel() LogLevel {
	return globalLogger.GetLevel()
}

func Debug(format string, args ...any) {
	globalLogger.Debug(format, args...)
}

func Info(format string, args ...any) {
	globalLogger.Info(format, args...)
}

func Warn(format string, args ...any) {
	globalLogger.Warn(format, args...)
}

func Error(format string, args ...any) {
	globalLogger.Error(format, args...)
}

func init() {
	if levelStr := os.Getenv("QUEUELAB_LOG_LEVEL"); levelStr != "" {
		if level, err := ParseLogLevel(levelStr); err == nil {
			SetLogLevel(level)
		}
	}

	// Keep test output quiet.
	if strings.HasSuffix(os.Args[0], ".test") {
		SetLogLevel(LogLevelError)
	}
}
