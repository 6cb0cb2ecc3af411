package artifacts

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// GCSStore writes artifacts to a Cloud Storage bucket
type GCSStore struct {
	client *storage.Client
	bucket string
	log    *logger.Logger
}

var _ Store = (*GCSStore)(nil)

// NewGCSStore creates a store using application default credentials
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.NewValidationError("bucket", "is required", nil)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create storage client")
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
		log:    logger.Get().With("component", "artifacts_gcs"),
	}, nil
}

func (s *GCSStore) Backend() string { return BackendGCS }

func (s *GCSStore) Put(ctx context.Context, key string, content []byte) (uri string, err error) {
	defer func() { metrics.RecordArtifactWrite(BackendGCS, err) }()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"

	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return "", errors.Wrapf(err, "failed to write gs://%s/%s", s.bucket, key)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to finalize gs://%s/%s", s.bucket, key)
	}

	uri = fmt.Sprintf("gs://%s/%s", s.bucket, key)
	s.log.Debugw("Artifact stored", "uri", uri, "bytes", len(content))
	return uri, nil
}

// Close releases the storage client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
