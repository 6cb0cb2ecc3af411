package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// LocalStore writes artifacts below a directory. Used for development runs.
type LocalStore struct {
	root string
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(dir string) (*LocalStore, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve artifact dir")
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Backend() string { return BackendLocal }

func (s *LocalStore) Put(_ context.Context, key string, content []byte) (uri string, err error) {
	defer func() { metrics.RecordArtifactWrite(BackendLocal, err) }()

	path := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", errors.NewValidationError("key", "escapes the artifact directory", key)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "create artifact dir")
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errors.Wrapf(err, "write artifact %s", key)
	}

	return "file://" + filepath.ToSlash(path), nil
}
