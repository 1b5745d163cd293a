package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-yetichat"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const component = "yetichat"

// Options configures New.
type Options struct {
	Level string
	// File enables rotating file output when set.
	File   string
	Output io.Writer
}

var _ yetichat.Logger = (*Logger)(nil)

// Logger adapts a logrus logger to yetichat.Logger.
type Logger struct {
	entry  *logrus.Entry
	closer io.Closer
}

// New builds a Logger writing to Output, stdout by default, or to a
// rotating file when File is set.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	base := logrus.New()
	base.SetLevel(level)
	base.SetFormatter(&LineFormatter{})

	var closer io.Closer
	switch {
	case opts.File != "":
		if dir := filepath.Dir(opts.File); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("logging: failed to create log directory: %w", err)
			}
		}
		writer := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		base.SetOutput(writer)
		closer = writer
	case opts.Output != nil:
		base.SetOutput(opts.Output)
	default:
		base.SetOutput(os.Stdout)
	}

	return &Logger{
		entry:  base.WithField("component", component),
		closer: closer,
	}, nil
}

// ParseLevel maps a level name to a logrus level, empty means info.
func ParseLevel(level string) (logrus.Level, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		return logrus.InfoLevel, nil
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("logging: %w", err)
	}
	return parsed, nil
}

// WithField returns a child logger carrying key on every entry.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// LineFormatter renders entries as
// [2025-12-23 20:14:04] [info ] message key=value
type LineFormatter struct{}

// Format implements logrus.Formatter.
func (f *LineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	buffer := entry.Buffer
	if buffer == nil {
		buffer = &bytes.Buffer{}
	}

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}

	fmt.Fprintf(buffer, "[%s] [%-5s] %s",
		entry.Time.Format("2006-01-02 15:04:05"),
		level,
		strings.TrimRight(entry.Message, "\r\n"))

	for _, key := range sortedKeys(entry.Data) {
		if key == "component" {
			continue
		}
		fmt.Fprintf(buffer, " %s=%v", key, entry.Data[key])
	}
	buffer.WriteByte('\n')

	return buffer.Bytes(), nil
}

func sortedKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
