package artifacts

import (
	"context"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/config"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Backends selectable with ARTIFACT_BACKEND
const (
	BackendGCS   = "gcs"
	BackendLocal = "local"
)

// Store persists rendered report text
type Store interface {
	// Put writes content under key and returns its fully qualified location
	Put(ctx context.Context, key string, content []byte) (string, error)

	// Backend names the storage backend for metrics and logs
	Backend() string
}

// New opens the configured store
func New(ctx context.Context, cfg config.ArtifactsConfig) (Store, error) {
	switch cfg.Backend {
	case BackendGCS, "":
		return NewGCSStore(ctx, cfg.Bucket)
	case BackendLocal:
		return NewLocalStore(cfg.LocalDir)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported artifact backend %q", cfg.Backend)
	}
}
