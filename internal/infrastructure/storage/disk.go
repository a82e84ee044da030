package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

// DiskStore keeps photos as plain files in one directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes r to a temporary file and renames it into place, so readers
// never observe a partial photo.
func (s *DiskStore) Save(_ context.Context, name string, r io.Reader) error {
	if err := validName(name); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return domain.StoreError("save photo", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return domain.StoreError("save photo", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.StoreError("save photo", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return domain.StoreError("save photo", err)
	}
	return nil
}

func (s *DiskStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if err := validName(name); err != nil {
		return nil, domain.NotFoundf("photo %s", name)
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFoundf("photo %s", name)
	}
	if err != nil {
		return nil, domain.StoreError("open photo", err)
	}
	return f, nil
}
