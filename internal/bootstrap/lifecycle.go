package bootstrap

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/artifacts"
	chclient "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/clickhouse"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/kafka"
	pgclient "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/postgres"
	redisclient "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/redis"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/api"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

const (
	shutdownTimeout   = 60 * time.Second
	httpDrainTimeout  = 5 * time.Second
	goroutineTimeout  = 10 * time.Second
	trackerFlushLimit = 3 * time.Second
)

// resources are the components Shutdown releases. Any of them may be nil
// when the agent role does not use it.
type resources struct {
	server    *api.Server
	consumers []*kafka.Consumer
	producer  *kafka.Producer
	artifacts artifacts.Store
	pg        *pgclient.Client
	ch        *chclient.Client
	redis     *redisclient.Client
	tracker   errors.Tracker
}

// Lifecycle tears the process down in dependency order
type Lifecycle struct {
	timeout time.Duration
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{timeout: shutdownTimeout}
}

type shutdownStep struct {
	title string
	run   func(ctx context.Context) error
}

// Shutdown stops intake first, drains handlers, and closes the stores last.
// The producer outlives the consumers because a draining handler may still publish.
func (l *Lifecycle) Shutdown(wg *sync.WaitGroup, cancel context.CancelFunc, res resources, log *logger.Logger) {
	ctx, done := context.WithTimeout(context.Background(), l.timeout)
	defer done()

	steps := []shutdownStep{
		{"Stopping HTTP server", func(ctx context.Context) error {
			if res.server == nil {
				return nil
			}
			httpCtx, httpCancel := context.WithTimeout(ctx, httpDrainTimeout)
			defer httpCancel()
			return res.server.Shutdown(httpCtx)
		}},
		{"Closing Kafka consumers", func(context.Context) error {
			cancel()
			return closeConsumers(res.consumers)
		}},
		{"Waiting for goroutines", func(context.Context) error {
			return waitGroup(wg, goroutineTimeout)
		}},
		{"Closing Kafka producer", func(context.Context) error {
			if res.producer == nil {
				return nil
			}
			return res.producer.Close()
		}},
		{"Closing artifact store", func(context.Context) error {
			if c, ok := res.artifacts.(io.Closer); ok {
				return c.Close()
			}
			return nil
		}},
		{"Flushing error tracker", func(ctx context.Context) error {
			if res.tracker == nil {
				return nil
			}
			if dropped, ok := res.tracker.(interface{ Captured() int64 }); ok {
				log.Infow("Error tracker disabled", "dropped_events", dropped.Captured())
			}
			flushCtx, flushCancel := context.WithTimeout(ctx, trackerFlushLimit)
			defer flushCancel()
			return res.tracker.Flush(flushCtx)
		}},
		{"Syncing logs", func(context.Context) error {
			// stdout/stderr sync errors are noise on most platforms
			_ = logger.Sync()
			return nil
		}},
		{"Closing database connections", func(context.Context) error {
			return closeStores(res)
		}},
	}

	for i, step := range steps {
		log.Infof("[%d/%d] %s...", i+1, len(steps), step.title)
		if err := step.run(ctx); err != nil {
			log.Errorw("Shutdown step failed", "step", step.title, "error", err)
			continue
		}
		log.Infof("✓ %s done", step.title)
	}

	log.Info("✅ Graceful shutdown complete")
}

func closeConsumers(consumers []*kafka.Consumer) error {
	var errs errors.MultiError
	for _, c := range consumers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs.Add(errors.Wrapf(err, "consumer %s", c.Topic()))
		}
	}
	return errs.ToError()
}

func waitGroup(wg *sync.WaitGroup, timeout time.Duration) error {
	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-time.After(timeout):
		return errors.Newf("goroutines still running after %s", timeout)
	}
}

// closeStores closes every configured store and reports all failures together
func closeStores(res resources) error {
	var errs errors.MultiError
	if res.pg != nil {
		errs.Add(errors.Wrap(res.pg.Close(), "postgres"))
	}
	if res.ch != nil {
		errs.Add(errors.Wrap(res.ch.Close(), "clickhouse"))
	}
	if res.redis != nil {
		errs.Add(errors.Wrap(res.redis.Close(), "redis"))
	}
	return errs.ToError()
}
