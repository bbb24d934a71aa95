package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// SimpleLogger writes one line per entry in text or JSON format.
type SimpleLogger struct {
	mu      *sync.Mutex
	level   LogLevel
	format  string
	service string
	output  io.Writer
	fields  map[string]interface{}
	now     func() time.Time
}

// Option configures a SimpleLogger.
type Option func(*SimpleLogger)

// WithOutput sets the destination writer (defaults to os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(l *SimpleLogger) {
		if w != nil {
			l.output = w
		}
	}
}

// WithFormat selects "text" or "json".
func WithFormat(format string) Option {
	return func(l *SimpleLogger) {
		l.format = strings.ToLower(format)
	}
}

// WithLevel sets the minimum level by name.
func WithLevel(level string) Option {
	return func(l *SimpleLogger) {
		l.level = ParseLevel(level)
	}
}

// WithService tags every entry with a service name.
func WithService(name string) Option {
	return func(l *SimpleLogger) {
		l.service = name
	}
}

// NewSimpleLogger creates a logger. Level and format default to the
// MYMARKET_LOG_LEVEL and MYMARKET_LOG_FORMAT environment variables.
func NewSimpleLogger(opts ...Option) *SimpleLogger {
	l := &SimpleLogger{
		mu:      &sync.Mutex{},
		level:   ParseLevel(GetLogLevel()),
		format:  GetLogFormat(),
		service: "mymarket",
		output:  os.Stdout,
		fields:  make(map[string]interface{}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewDefaultLogger creates a new default logger instance
func NewDefaultLogger() Logger {
	return NewSimpleLogger()
}

// Debug logs a debug message
func (l *SimpleLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(DebugLevel, msg, fields)
}

// Info logs an info message
func (l *SimpleLogger) Info(msg string, fields map[string]interface{}) {
	l.log(InfoLevel, msg, fields)
}

// Warn logs a warning message
func (l *SimpleLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(WarnLevel, msg, fields)
}

// Error logs an error message
func (l *SimpleLogger) Error(msg string, fields map[string]interface{}) {
	l.log(ErrorLevel, msg, fields)
}

// SetLevel sets the logging level
func (l *SimpleLogger) SetLevel(level string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = ParseLevel(level)
}

// With returns a child logger carrying additional fields. The child shares
// the parent's writer and lock.
func (l *SimpleLogger) With(fields map[string]interface{}) Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &SimpleLogger{
		mu:      l.mu,
		level:   l.level,
		format:  l.format,
		service: l.service,
		output:  l.output,
		fields:  newFields,
		now:     l.now,
	}
}

func (l *SimpleLogger) log(level LogLevel, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	timestamp := l.now().Format(time.RFC3339)
	if l.format == "json" {
		l.logJSON(timestamp, level, msg, merged)
		return
	}
	l.logText(timestamp, level, msg, merged)
}

func (l *SimpleLogger) logJSON(timestamp string, level LogLevel, msg string, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"timestamp": timestamp,
		"level":     level.String(),
		"service":   l.service,
		"message":   msg,
	}
	for k, v := range fields {
		if _, reserved := entry[k]; reserved {
			continue
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry[k] = v
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.output, "%s [ERROR] [%s] failed to encode log entry: %v\n", timestamp, l.service, err)
		return
	}
	fmt.Fprintln(l.output, string(data))
}

func (l *SimpleLogger) logText(timestamp string, level LogLevel, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := fields[k]
		if s, ok := v.(string); ok && strings.ContainsAny(s, " \t") {
			fmt.Fprintf(&b, " %s=%q", k, s)
			continue
		}
		fmt.Fprintf(&b, " %s=%v", k, v)
	}

	fmt.Fprintf(l.output, "%s [%s] [%s] %s%s\n", timestamp, level.String(), l.service, msg, b.String())
}

// GetLogLevel gets the current log level from environment
func GetLogLevel() string {
	level := os.Getenv("MYMARKET_LOG_LEVEL")
	if level == "" {
		return "INFO"
	}
	return level
}

// GetLogFormat gets the output format from environment
func GetLogFormat() string {
	format := os.Getenv("MYMARKET_LOG_FORMAT")
	if format == "" {
		return "text"
	}
	return strings.ToLower(format)
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
