package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// ctxKey carries the workflow request id into captured events
type ctxKey struct{}

// WithRequestID attaches a request id that CaptureError adds as a tag
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// Tracker implements error tracking via Sentry
type Tracker struct {
	hub *sentry.Hub
}

var _ errors.Tracker = (*Tracker)(nil)

// New creates a new Sentry tracker. The release is reported with every event.
func New(dsn, environment, release string) (*Tracker, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return nil, err
	}

	return &Tracker{
		hub: sentry.CurrentHub(),
	}, nil
}

// CaptureError reports err with tags and the request id carried by ctx
func (t *Tracker) CaptureError(ctx context.Context, err error, tags map[string]string) error {
	t.scoped(ctx, tags, func(hub *sentry.Hub, _ *sentry.Scope) {
		hub.CaptureException(err)
	})
	return nil
}

// CaptureMessage reports a non-error event at level
func (t *Tracker) CaptureMessage(ctx context.Context, message string, level errors.Level, tags map[string]string) error {
	t.scoped(ctx, tags, func(hub *sentry.Hub, scope *sentry.Scope) {
		scope.SetLevel(sentryLevels[level])
		hub.CaptureMessage(message)
	})
	return nil
}

// scoped runs capture on a cloned hub so tags never leak between events
func (t *Tracker) scoped(ctx context.Context, tags map[string]string, capture func(*sentry.Hub, *sentry.Scope)) {
	hub := t.hub.Clone()
	scope := hub.Scope()
	scope.SetTags(tags)
	if requestID, ok := ctx.Value(ctxKey{}).(string); ok && requestID != "" {
		scope.SetTag("request_id", requestID)
	}
	capture(hub, scope)
}

// AddBreadcrumb records a workflow step (status publish, provider call) on the shared hub
func (t *Tracker) AddBreadcrumb(ctx context.Context, message string, category string, level errors.Level, data map[string]interface{}) {
	t.hub.AddBreadcrumb(&sentry.Breadcrumb{
		Message:  message,
		Category: category,
		Level:    sentryLevels[level],
		Data:     data,
	}, &sentry.BreadcrumbHint{})
}

// Flush waits for all pending events to be sent
func (t *Tracker) Flush(ctx context.Context) error {
	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !sentry.Flush(timeout) {
		return errors.Wrap(errors.ErrTimeout, "sentry flush")
	}
	return nil
}

var sentryLevels = map[errors.Level]sentry.Level{
	errors.LevelDebug:   sentry.LevelDebug,
	errors.LevelInfo:    sentry.LevelInfo,
	errors.LevelWarning: sentry.LevelWarning,
	errors.LevelError:   sentry.LevelError,
	errors.LevelFatal:   sentry.LevelFatal,
}
