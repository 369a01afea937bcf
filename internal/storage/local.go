package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// localStorage implements Storage on the local filesystem under a base
// directory. Location handles are paths relative to that directory.
type localStorage struct {
	baseDir string
}

// NewLocal creates a filesystem-backed Storage rooted at baseDir, creating
// the directory if it does not exist.
func NewLocal(baseDir string) (Storage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("local storage base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &localStorage{baseDir: baseDir}, nil
}

// Save writes content to a new file named after name. The file is created
// exclusively so a colliding name fails instead of overwriting; the partial
// file is removed on any write failure.
func (l *localStorage) Save(ctx context.Context, r io.Reader, name string, size int64) (string, error) {
	path, err := l.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("object %q already exists", name)
		}
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close file: %w", err)
	}
	return name, nil
}

// Retrieve opens the file under location for streaming.
func (l *localStorage) Retrieve(ctx context.Context, location string) (io.ReadCloser, error) {
	path, err := l.resolve(location)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes the file under location. A missing file reports found=false.
func (l *localStorage) Delete(ctx context.Context, location string) (bool, error) {
	path, err := l.resolve(location)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove file: %w", err)
	}
	return true, nil
}

// resolve maps a location handle to an absolute path, rejecting handles that
// escape the base directory.
func (l *localStorage) resolve(location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("location is required")
	}
	path := filepath.Join(l.baseDir, filepath.FromSlash(location))
	rel, err := filepath.Rel(l.baseDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid location %q", location)
	}
	return path, nil
}
