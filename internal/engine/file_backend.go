package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Name() string { return "file:" + f.path }

func (f *FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Write stages data in a sibling temp file, fsyncs it and renames it over the
// target.
func (f *FileBackend) Write(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmpFile := f.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, f.path)
}

func (f *FileBackend) Close() error { return nil }
