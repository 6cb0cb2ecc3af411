package noop

import (
	"context"
	"sync/atomic"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Tracker drops everything it is given. It still counts captures so local
// runs without a DSN can report how many errors would have been sent.
type Tracker struct {
	captured atomic.Int64
}

var _ errors.Tracker = (*Tracker)(nil)

func New() *Tracker {
	return &Tracker{}
}

func (t *Tracker) CaptureError(context.Context, error, map[string]string) error {
	t.captured.Add(1)
	return nil
}

func (t *Tracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	t.captured.Add(1)
	return nil
}

func (t *Tracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {}

func (t *Tracker) Flush(context.Context) error {
	return nil
}

// Captured returns the number of errors and messages dropped so far
func (t *Tracker) Captured() int64 {
	return t.captured.Load()
}
