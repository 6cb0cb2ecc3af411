package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

var (
	globalLogger *Logger

	trackerMu     sync.RWMutex
	globalTracker errors.Tracker
)

// Logger wraps zap.SugaredLogger with optional error tracking
type Logger struct {
	*zap.SugaredLogger
	errorTracker errors.Tracker
	tags         map[string]string
}

// Init builds the process logger. Production uses JSON output; any other
// env gets the colored console encoder. An unparsable level falls back to info.
func Init(level string, env string) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if env == "production" {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	z, err := cfg.Build(zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return err
	}

	globalLogger = New(z)
	return nil
}

// New wraps an existing zap logger. Used by tests and tools that build their own core.
func New(z *zap.Logger) *Logger {
	return &Logger{SugaredLogger: z.Sugar()}
}

// SetErrorTracker installs the process-wide tracker. It also reaches child
// loggers derived before the call.
func SetErrorTracker(tracker errors.Tracker) {
	trackerMu.Lock()
	globalTracker = tracker
	trackerMu.Unlock()
}

// tracker prefers a tracker set on l, then the process-wide one
func (l *Logger) tracker() errors.Tracker {
	if l.errorTracker != nil {
		return l.errorTracker
	}
	trackerMu.RLock()
	defer trackerMu.RUnlock()
	return globalTracker
}

// Get returns the global logger
func Get() *Logger {
	if globalLogger == nil {
		z, _ := zap.NewDevelopment()
		globalLogger = New(z)
	}
	return globalLogger
}

// With creates a child logger with additional fields.
// A "component" or "agent" field is also attached as a tag to tracked errors.
func (l *Logger) With(args ...interface{}) *Logger {
	tags := make(map[string]string, len(l.tags)+1)
	for k, v := range l.tags {
		tags[k] = v
	}
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if key == "component" || key == "agent" {
			tags[key] = fmt.Sprint(args[i+1])
		}
	}

	return &Logger{
		SugaredLogger: l.SugaredLogger.With(args...),
		errorTracker:  l.errorTracker,
		tags:          tags,
	}
}

// Error logs an error and optionally sends it to error tracker
func (l *Logger) Error(args ...interface{}) {
	l.SugaredLogger.Error(args...)
	l.capture(fmt.Errorf("%s", fmt.Sprint(args...)))
}

// Errorf logs a formatted error and optionally sends it to error tracker
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.SugaredLogger.Errorf(template, args...)
	l.capture(fmt.Errorf(template, args...))
}

// Errorw logs a message with key-value pairs and optionally sends it to error tracker.
// When one of the values is an error it is reported instead of the message.
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, keysAndValues...)

	var err error
	for _, v := range keysAndValues {
		if e, ok := v.(error); ok {
			err = errors.Wrap(e, msg)
			break
		}
	}
	if err == nil {
		err = errors.New(msg)
	}
	l.capture(err)
}

func (l *Logger) capture(err error) {
	tracker := l.tracker()
	if tracker == nil {
		return
	}
	_ = tracker.CaptureError(context.Background(), err, l.mergeTags(nil))
}

func (l *Logger) mergeTags(extra map[string]string) map[string]string {
	tags := map[string]string{"component": "logger"}
	for k, v := range l.tags {
		tags[k] = v
	}
	for k, v := range extra {
		tags[k] = v
	}
	return tags
}

// Sync flushes any buffered log entries
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
