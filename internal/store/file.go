package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/verte-zerg/signglove/internal/forest"
)

// File stores the artifact as a single file. Writes go to a temp file in the
// same directory and are renamed into place, so readers never observe a
// partially written model.
type File struct {
	path string
}

// NewFile returns a repository backed by the file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the artifact location.
func (f *File) Path() string {
	return f.path
}

// SaveModel implements Repository.
func (f *File) SaveModel(_ context.Context, m *forest.Forest) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, ModelName+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp model: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := forest.Encode(writer, m); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush model: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync model: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close model: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

// LoadModel implements Repository.
func (f *File) LoadModel(_ context.Context) (*forest.Forest, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only model.
			_ = cerr
		}
	}()
	m, err := forest.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", f.path, err)
	}
	return m, nil
}
