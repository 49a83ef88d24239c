// Package filesystem stores exported blobs as files under a root directory.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"adda/internal/ports"
)

// BlobStore implements ports.BlobStore with one file per blob.
// "bronze/tasks/tasks_x.json" is written to <root>/bronze/tasks/tasks_x.json.
type BlobStore struct {
	root string
}

var _ ports.BlobStore = (*BlobStore)(nil)

// NewBlobStore creates a store rooted at root
func NewBlobStore(root string) *BlobStore {
	// Expand ~ to home directory
	if strings.HasPrefix(root, "~") {
		home, _ := os.UserHomeDir()
		root = filepath.Join(home, root[1:])
	}
	return &BlobStore{root: root}
}

// Root returns the directory blobs are written under
func (s *BlobStore) Root() string {
	return s.root
}

// Put writes data through a temp file and a rename, so readers never see a partial blob
func (s *BlobStore) Put(ctx context.Context, name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Get reads a blob back
func (s *BlobStore) Get(name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// path maps a blob name to a file, refusing names that escape the root
func (s *BlobStore) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || filepath.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob name: %q", name)
	}
	return filepath.Join(s.root, clean), nil
}
