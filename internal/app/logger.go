package app

import (
	"fmt"
	"io"
	"os"
)

// Logger interface for app and infra layers
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// defaultLogger writes directly to its output. Debug lines are dropped
// unless debug is set; levels are otherwise not filtered.
type defaultLogger struct {
	output io.Writer
	debug  bool
}

func (l *defaultLogger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	fmt.Fprintf(l.output, "DEBUG: "+format+"\n", args...)
}

func (l *defaultLogger) Info(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "INFO: "+format+"\n", args...)
}

func (l *defaultLogger) Warn(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "WARN: "+format+"\n", args...)
}

func (l *defaultLogger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "ERROR: "+format+"\n", args...)
}

// NewWriterLogger returns an unlevelled Logger writing every message,
// Debug included, to w. Tests use it to capture diagnostic output.
func NewWriterLogger(w io.Writer) Logger {
	return &defaultLogger{output: w, debug: true}
}

// nopLogger drops everything
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// NopLogger returns a Logger that discards all messages
func NopLogger() Logger {
	return nopLogger{}
}

// globalLogger is the logger instance used by app and infra layers.
// Until the CLI installs its levelled logger, Debug output is discarded.
var globalLogger Logger = &defaultLogger{output: os.Stderr}

// SetLogger sets the global logger for app layer
func SetLogger(logger Logger) {
	if logger != nil {
		globalLogger = logger
	}
}

// GetLogger returns the current logger
func GetLogger() Logger {
	return globalLogger
}
