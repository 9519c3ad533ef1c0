package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/accessflow/internal/filex"
)

// FileRepository stores every key as <dir>/<escaped key>.json.
type FileRepository struct {
	dir string
}

// NewFileRepository creates dir if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare storage dir: %w", err)
	}
	return &FileRepository{dir: abs}, nil
}

func (r *FileRepository) path(key string) string {
	return filepath.Join(r.dir, url.PathEscape(key)+".json")
}

func (r *FileRepository) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(r.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file[%s]: %w", key, err)
	}
	return b, nil
}

func (r *FileRepository) Set(_ context.Context, key string, value []byte) error {
	if err := filex.WriteFileAtomic(r.path(key), value, 0o600); err != nil {
		return fmt.Errorf("failed to set file[%s]: %w", key, err)
	}
	return nil
}

func (r *FileRepository) Delete(_ context.Context, key string) error {
	err := os.Remove(r.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file[%s]: %w", key, err)
	}
	return nil
}
