package store

import (
	"context"
	"os"
	"path/filepath"
)

// FileBackend keeps the document in a local JSON file. A missing file reads
// as the empty document so a fresh deployment starts clean.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Fetch(ctx context.Context) ([]byte, error) {
	raw, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return []byte(`{"servers":{}}`), nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (b *FileBackend) Put(ctx context.Context, raw []byte) error {
	// Write-then-rename so a crash mid-save never truncates the document.
	tmp := b.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, b.path)
}
