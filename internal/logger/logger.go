// internal/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// Log levels
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// String returns the upper-case name of the level
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a level name such as "debug" or "WARN" to a LogLevel
func ParseLevel(name string) (LogLevel, error) {
	for lvl, n := range levelNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return lvl, nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", name)
}

// sink is shared between a logger and the component loggers derived from it
type sink struct {
	mu         sync.Mutex
	level      LogLevel
	outputs    map[LogLevel][]io.Writer
	showFile   bool
	timeFormat string
	files      []*os.File
}

// Logger writes levelled messages, optionally tagged with a component name
type Logger struct {
	*sink
	component string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// GetLogger returns the default logger instance. It writes to stderr so that
// command output on stdout stays machine readable.
func GetLogger() *Logger {
	once.Do(func() {
		defaultLogger = NewLogger(INFO)
		defaultLogger.AddOutput(INFO, os.Stderr)
	})
	return defaultLogger
}

// NewLogger creates a new logger instance with the specified minimum log level
func NewLogger(level LogLevel) *Logger {
	return &Logger{
		sink: &sink{
			level:      level,
			outputs:    make(map[LogLevel][]io.Writer),
			timeFormat: "2006-01-02 15:04:05",
			showFile:   true,
		},
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewLogger(ERROR + 1)
}

// Named returns a logger sharing outputs and level with l whose messages are
// prefixed with the component name
func (l *Logger) Named(component string) *Logger {
	if l.component != "" {
		component = l.component + "." + component
	}
	return &Logger{sink: l.sink, component: component}
}

// SetLevel changes the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetTimeFormat sets the time format string used in log messages
func (l *Logger) SetTimeFormat(format string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timeFormat = format
}

// SetShowFile enables or disables showing file and line information in logs
func (l *Logger) SetShowFile(show bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.showFile = show
}

// AddOutput adds an output writer receiving messages at level and above
func (l *Logger) AddOutput(level LogLevel, w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputs[level] = append(l.outputs[level], w)
}

// ResetOutputs removes every output, e.g. before a TUI takes over the terminal
func (l *Logger) ResetOutputs() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputs = make(map[LogLevel][]io.Writer)
}

// AddFileOutput adds a file output for the specified log level
func (l *Logger) AddFileOutput(level LogLevel, filename string) error {
	// Ensure directory exists
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.AddOutput(level, file)
	l.mu.Lock()
	l.files = append(l.files, file)
	l.mu.Unlock()
	return nil
}

// Close closes any files opened by AddFileOutput
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.files = nil
	return firstErr
}

// getCallerInfo returns the file and line number of the caller
func getCallerInfo() string {
	_, file, line, ok := runtime.Caller(4) // Skip getCallerInfo, formatMessage, log and the level method
	if !ok {
		return "???:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// formatMessage formats a log message with timestamp, level, component and caller info
func (l *Logger) formatMessage(level LogLevel, msg string) string {
	var b strings.Builder
	b.WriteString(time.Now().Format(l.timeFormat))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("]")

	if l.component != "" {
		b.WriteString(" ")
		b.WriteString(l.component)
	}
	if l.showFile {
		b.WriteString(" ")
		b.WriteString(getCallerInfo())
	}

	b.WriteString(" - ")
	b.WriteString(msg)
	return b.String()
}

// log writes a message to all configured outputs for the given level
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	var msg string
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	} else {
		msg = format
	}

	formattedMsg := l.formatMessage(level, msg)

	for lvl, writers := range l.outputs {
		if level >= lvl {
			for _, w := range writers {
				fmt.Fprintln(w, formattedMsg)
			}
		}
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// Global convenience functions that use the default logger

func Debug(format string, args ...interface{}) {
	GetLogger().Debug(format, args...)
}

func Info(format string, args ...interface{}) {
	GetLogger().Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	GetLogger().Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	GetLogger().Error(format, args...)
}

// SetGlobalLevel sets the level for the default logger
func SetGlobalLevel(level LogLevel) {
	GetLogger().SetLevel(level)
}
