package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/panyam/queuelab/core"
)

// ConsoleLogger wraps core.Logger with emoji prefixes and colored events.
type ConsoleLogger struct {
	core.Logger
	useEmojis bool
}

func NewConsoleLogger(output io.Writer, level core.LogLevel) *ConsoleLogger {
	return &ConsoleLogger{
		Logger:    core.NewLogger(output, level),
		useEmojis: true,
	}
}

func (l *ConsoleLogger) SetUseEmojis(use bool) {
	l.useEmojis = use
}

var (
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed, color.Bold)
	startColor   = color.New(color.FgCyan)
	stopColor    = color.New(color.FgYellow)
)

// Event logs an info line with an optional emoji, painted with c when set.
func (l *ConsoleLogger) Event(emoji string, c *color.Color, format string, args ...any) {
	prefix := ""
	if l.useEmojis && emoji != "" {
		prefix = emoji + " "
	}
	msg := fmt.Sprintf(format, args...)
	if c != nil {
		msg = c.Sprint(msg)
	}
	l.Info("%s%s", prefix, msg)
}

func (l *ConsoleLogger) Success(format string, args ...any) {
	l.Event("✅", successColor, format, args...)
}

func (l *ConsoleLogger) Failure(format string, args ...any) {
	l.Event("❌", failureColor, format, args...)
}

func (l *ConsoleLogger) Start(format string, args ...any) {
	l.Event("🚀", startColor, format, args...)
}

func (l *ConsoleLogger) Stop(format string, args ...any) {
	l.Event("🛑", stopColor, format, args...)
}

// consoleLogger is the process wide logger behind the package functions.
var consoleLogger = NewConsoleLogger(os.Stdout, core.LogLevelInfo)

func SetLogLevel(level core.LogLevel) {
	consoleLogger.SetLevel(level)
}

func Success(format string, args ...any) { consoleLogger.Success(format, args...) }
func Failure(format string, args ...any) { consoleLogger.Failure(format, args...) }
func Start(format string, args ...any)   { consoleLogger.Start(format, args...) }
func Stop(format string, args ...any)    { consoleLogger.Stop(format, args...) }
func Debug(format string, args ...any)   { consoleLogger.Debug(format, args...) }
func Warn(format string, args ...any)    { consoleLogger.Warn(format, args...) }
func Error(format string, args ...any)   { consoleLogger.Error(format, args...) }

func init() {
	if level, err := core.ParseLogLevel(os.Getenv("QUEUELAB_LOG_LEVEL")); err == nil {
		SetLogLevel(level)
	}
	// Plain output under go test and when QUEUELAB_NO_EMOJI is set.
	if os.Getenv("QUEUELAB_NO_EMOJI") != "" || strings.HasSuffix(os.Args[0], ".test") {
		consoleLogger.SetUseEmojis(false)
	}
	if strings.HasSuffix(os.Args[0], ".test") {
		SetLogLevel(core.LogLevelError)
	}
}
