package cloud

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/memvault/memvault/pkg/domain/interfaces"
)

// FileStore keeps image blobs as plain files under a base directory.
// Locators are paths relative to that directory.
type FileStore struct {
	baseDir string
}

var _ interfaces.ObjectStore = (*FileStore)(nil)

func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create object store directory",
			goerr.V("dir", baseDir))
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (x *FileStore) Read(ctx context.Context, location string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(x.baseDir, location))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object", goerr.V("location", location))
	}
	return data, nil
}

func (x *FileStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(x.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create object directory", goerr.V("name", name))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", goerr.Wrap(err, "failed to write object", goerr.V("name", name))
	}
	return name, nil
}

func (x *FileStore) Remove(ctx context.Context, location string) error {
	if err := os.Remove(filepath.Join(x.baseDir, location)); err != nil && !os.IsNotExist(err) {
		return goerr.Wrap(err, "failed to remove object", goerr.V("location", location))
	}
	return nil
}
