package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// FileStorage stores each key as a JSON file in a directory. Writes go
// through a temporary file and a rename so a crash never leaves a torn value.
type FileStorage struct {
	dir   string
	quota int
}

// NewFileStorage creates the directory if needed. quota <= 0 means no limit
// on the size of a single value.
func NewFileStorage(dir string, quota int) (*FileStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("file storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Backend: "file", Op: "mkdir", Key: dir, Cause: err}
	}
	return &FileStorage{dir: dir, quota: quota}, nil
}

// Dir returns the state directory.
func (f *FileStorage) Dir() string {
	return f.dir
}

func (f *FileStorage) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, key)
	return filepath.Join(f.dir, safe+".json")
}

// Get implements Storage.
func (f *FileStorage) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Backend: "file", Op: "get", Key: key, Cause: err}
	}
	return data, nil
}

// Set implements Storage.
func (f *FileStorage) Set(_ context.Context, key string, value []byte) error {
	if f.quota > 0 && len(value) > f.quota {
		return ErrQuotaExceeded
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return f.writeError(key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return f.writeError(key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return f.writeError(key, err)
	}
	if err := tmp.Close(); err != nil {
		return f.writeError(key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		return f.writeError(key, err)
	}
	return nil
}

func (f *FileStorage) writeError(key string, err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return &StorageError{Backend: "file", Op: "set", Key: key, Cause: err}
}

// Remove implements Storage.
func (f *FileStorage) Remove(_ context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Backend: "file", Op: "remove", Key: key, Cause: err}
	}
	return nil
}

// Close implements Storage.
func (f *FileStorage) Close() error {
	return nil
}
