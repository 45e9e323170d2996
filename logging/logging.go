// Package logging provides the structured logging infrastructure shared by
// every workrecap package: a package-level logrus logger with intelligent
// stdout/stderr stream routing, and a ContextLogger wrapper for accumulating
// fields (component, date, stage) across a call chain.
package logging

import (
	"bytes"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// OutputSplitter routes error-level log records to stderr and everything
// else to stdout, so container log collectors can apply different handling
// per stream.
type OutputSplitter struct{}

func (s *OutputSplitter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("level=error")) || bytes.Contains(p, []byte(`"level":"error"`)) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// Logger is the process-wide logrus instance. Services should not create
// their own *logrus.Logger; they should wrap Logger in a ContextLogger.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(&OutputSplitter{})
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// Configure applies the deployment-chosen level and format to Logger. format
// is "json" or "text"; unrecognised values fall back to text.
func Configure(level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)

	if format == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}
}

// ContextLogger accumulates structured fields and forwards to Logger.
type ContextLogger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// New creates a ContextLogger seeded with a component name.
func New(component string) *ContextLogger {
	return &ContextLogger{
		logger: Logger,
		fields: logrus.Fields{"component": component},
	}
}

// WithField returns a copy of the logger with an added field.
func (c *ContextLogger) WithField(key string, value interface{}) *ContextLogger {
	next := make(logrus.Fields, len(c.fields)+1)
	for k, v := range c.fields {
		next[k] = v
	}
	next[key] = value
	return &ContextLogger{logger: c.logger, fields: next}
}

// WithFields returns a copy of the logger with multiple added fields.
func (c *ContextLogger) WithFields(fields map[string]interface{}) *ContextLogger {
	next := make(logrus.Fields, len(c.fields)+len(fields))
	for k, v := range c.fields {
		next[k] = v
	}
	for k, v := range fields {
		next[k] = v
	}
	return &ContextLogger{logger: c.logger, fields: next}
}

// WithError returns a copy of the logger with the error's message attached.
func (c *ContextLogger) WithError(err error) *ContextLogger {
	return c.WithField("error", err.Error())
}

func (c *ContextLogger) Debug(args ...interface{}) { c.logger.WithFields(c.fields).Debug(args...) }
func (c *ContextLogger) Info(args ...interface{})  { c.logger.WithFields(c.fields).Info(args...) }
func (c *ContextLogger) Warn(args ...interface{})  { c.logger.WithFields(c.fields).Warn(args...) }
func (c *ContextLogger) Error(args ...interface{}) { c.logger.WithFields(c.fields).Error(args...) }

func (c *ContextLogger) Debugf(format string, args ...interface{}) {
	c.logger.WithFields(c.fields).Debugf(format, args...)
}
func (c *ContextLogger) Infof(format string, args ...interface{}) {
	c.logger.WithFields(c.fields).Infof(format, args...)
}
func (c *ContextLogger) Warnf(format string, args ...interface{}) {
	c.logger.WithFields(c.fields).Warnf(format, args...)
}
func (c *ContextLogger) Errorf(format string, args ...interface{}) {
	c.logger.WithFields(c.fields).Errorf(format, args...)
}

// LogOperation logs the start/end of a named operation with duration,
// mirroring the teacher's common.LogOperation helper.
func LogOperation(logger *ContextLogger, operation string, fn func() error) error {
	start := time.Now()
	logger.WithField("operation", operation).Debug("operation started")

	err := fn()

	entry := logger.WithFields(map[string]interface{}{
		"operation":   operation,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("operation failed")
		return err
	}
	entry.Info("operation completed")
	return nil
}
