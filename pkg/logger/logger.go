// Package logger provides structured logging for the configure/build pipeline
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger interface for abstracted logging
type Logger interface {
	Info(message string, fields ...Field)
	Error(message string, fields ...Field)
	Warn(message string, fields ...Field)
	Debug(message string, fields ...Field)
	WithStep(step string) Logger
}

// Field represents a structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// WithField creates a new field
func WithField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// StepLogger implements Logger with pipeline-step awareness
type StepLogger struct {
	logger *logrus.Logger
	step   string
	mu     sync.RWMutex
}

// ConsoleFormatter formats log lines for terminal output
type ConsoleFormatter struct {
	TimestampFormat string
	DisableColors   bool
}

// Format implements logrus.Formatter
func (f *ConsoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestamp := entry.Time.Format(f.TimestampFormat)

	var levelColor *color.Color
	var levelText string

	switch entry.Level {
	case logrus.ErrorLevel:
		levelColor = color.New(color.FgRed, color.Bold)
		levelText = "ERR!"
	case logrus.WarnLevel:
		levelColor = color.New(color.FgYellow, color.Bold)
		levelText = "WARN"
	case logrus.DebugLevel:
		levelColor = color.New(color.FgWhite, color.Faint)
		levelText = "verb"
	default:
		levelColor = color.New(color.FgCyan)
		levelText = "info"
	}

	// Step prefix, e.g. [configure] or [build]
	stepPrefix := ""
	if step, ok := entry.Data["step"]; ok {
		stepPrefix = fmt.Sprintf("[%s] ", color.New(color.FgBlue).Sprint(step))
		delete(entry.Data, "step")
	}

	var output string
	if f.DisableColors {
		output = fmt.Sprintf("gyp [%s] %s: %s%s", timestamp, levelText, stepPrefix, entry.Message)
	} else {
		output = fmt.Sprintf("gyp [%s] %s: %s%s",
			timestamp,
			levelColor.Sprint(levelText),
			stepPrefix,
			entry.Message,
		)
	}

	if len(entry.Data) > 0 {
		fields := " {"
		first := true
		for k, v := range entry.Data {
			if !first {
				fields += ", "
			}
			fields += fmt.Sprintf("%s=%v", k, v)
			first = false
		}
		fields += "}"
		output += color.New(color.FgWhite, color.Faint).Sprint(fields)
	}

	return []byte(output + "\n"), nil
}

// CreateLogger creates a new logger instance
func CreateLogger(logLevel string) Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	log.SetFormatter(&ConsoleFormatter{
		TimestampFormat: "15:04:05",
		DisableColors:   false,
	})

	return &StepLogger{
		logger: log,
	}
}

// CreateLoggerWithOutput creates a logger with custom output (for testing)
func CreateLoggerWithOutput(logLevel string, output io.Writer) Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	log.SetFormatter(&ConsoleFormatter{
		TimestampFormat: "15:04:05",
		DisableColors:   true,
	})
	log.SetOutput(output)

	return &StepLogger{
		logger: log,
	}
}

// WithStep creates a new logger scoped to a pipeline step
func (l *StepLogger) WithStep(step string) Logger {
	return &StepLogger{
		logger: l.logger,
		step:   step,
	}
}

// convertFields converts Field slice to logrus.Fields
func (l *StepLogger) convertFields(fields []Field) logrus.Fields {
	result := make(logrus.Fields)
	if l.step != "" {
		result["step"] = l.step
	}
	for _, f := range fields {
		result[f.Key] = f.Value
	}
	return result
}

// Info logs an info message
func (l *StepLogger) Info(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Info(message)
}

// Error logs an error message
func (l *StepLogger) Error(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Error(message)
}

// Warn logs a warning message
func (l *StepLogger) Warn(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Warn(message)
}

// Debug logs a debug message
func (l *StepLogger) Debug(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Debug(message)
}
