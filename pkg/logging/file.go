package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat parses a log format string, defaulting to text
func ParseFormat(s string) Format {
	if s == string(FormatJSON) {
		return FormatJSON
	}
	return FormatText
}

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSizeMB is the size in megabytes that triggers rotation
	MaxSizeMB int
	// MaxBackups is the maximum number of rotated files to keep
	MaxBackups int
	// Compress gzips rotated files
	Compress bool
}

// DefaultFileLoggerConfig returns the action log defaults: 50 MB per
// file and two backups.
func DefaultFileLoggerConfig(path string) FileLoggerConfig {
	return FileLoggerConfig{
		Path:       path,
		Format:     FormatText,
		Level:      InfoLevel,
		MaxSizeMB:  50,
		MaxBackups: 2,
	}
}

// LogrusLogger implements Logger on top of logrus
type LogrusLogger struct {
	entry   *logrus.Entry
	rotator *lumberjack.Logger // nil unless writing to a file
}

// NewFileLogger creates a logger writing to a size-rotated file
func NewFileLogger(config FileLoggerConfig) (*LogrusLogger, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("log file path is required")
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// lumberjack opens lazily; fail now rather than on the first write
	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	file.Close()

	maxSize := config.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 50
	}

	rotator := &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    maxSize,
		MaxBackups: config.MaxBackups,
		Compress:   config.Compress,
	}

	logger := newLogrus(rotator, config.Format, config.Level)
	logger.rotator = rotator
	return logger, nil
}

// NewConsoleLogger creates a logger writing to w (stderr when nil)
func NewConsoleLogger(w io.Writer, format Format, level Level) *LogrusLogger {
	if w == nil {
		w = os.Stderr
	}
	return newLogrus(w, format, level)
}

// NewNullLogger creates a logger that drops every entry without formatting it
func NewNullLogger() *LogrusLogger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetLevel(logrus.PanicLevel)
	return &LogrusLogger{entry: logrus.NewEntry(base)}
}

func newLogrus(w io.Writer, format Format, level Level) *LogrusLogger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(toLogrusLevel(level))

	if format == FormatJSON {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&lineFormatter{})
	}

	return &LogrusLogger{entry: logrus.NewEntry(base)}
}

// Debug logs a debug message
func (l *LogrusLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.with(ctx, fields).Debug(msg)
}

// Info logs an info message
func (l *LogrusLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.with(ctx, fields).Info(msg)
}

// Warn logs a warning message
func (l *LogrusLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.with(ctx, fields).Warn(msg)
}

// Error logs an error message
func (l *LogrusLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	entry := l.with(ctx, fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}

// WithFields returns a logger with additional fields
func (l *LogrusLogger) WithFields(fields Fields) Logger {
	return &LogrusLogger{
		entry:   l.entry.WithFields(logrus.Fields(fields)),
		rotator: l.rotator,
	}
}

// Rotate closes the current log file and starts a new one
func (l *LogrusLogger) Rotate() error {
	if l.rotator == nil {
		return nil
	}
	return l.rotator.Rotate()
}

// Close closes the log file, if any
func (l *LogrusLogger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

func (l *LogrusLogger) with(ctx context.Context, fields Fields) *logrus.Entry {
	entry := l.entry
	if ctx != nil {
		entry = entry.WithContext(ctx)
	}
	if len(fields) > 0 {
		entry = entry.WithFields(logrus.Fields(fields))
	}
	return entry
}

// lineFormatter renders "timestamp [LEVEL] message key=value ..."
type lineFormatter struct{}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	b.WriteString(entry.Time.UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteString(" [")
	b.WriteString(levelString(fromLogrusLevel(entry.Level)))
	b.WriteString("] ")
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := entry.Data[k]
		if err, ok := v.(error); ok {
			fmt.Fprintf(&b, " %s=%q", k, err.Error())
			continue
		}
		fmt.Fprintf(&b, " %s=%v", k, v)
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func toLogrusLevel(level Level) logrus.Level {
	switch level {
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func fromLogrusLevel(level logrus.Level) Level {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return DebugLevel
	case logrus.InfoLevel:
		return InfoLevel
	case logrus.WarnLevel:
		return WarnLevel
	default:
		return ErrorLevel
	}
}
