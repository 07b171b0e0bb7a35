// internal/storage/storage.go
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore is the narrow surface the discussion subsystem needs: store a
// byte stream under a generated path, delete by path, check by path.
type FileStore interface {
	Save(name string, r io.Reader) (path string, err error)
	Delete(path string) error
	Exists(path string) bool
}

// LocalStore keeps files on the local disk under a base directory.
type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// Save writes the stream under a uuid-prefixed name so uploads never collide.
func (s *LocalStore) Save(name string, r io.Reader) (string, error) {
	stored := uuid.New().String() + "_" + filepath.Base(name)
	path := filepath.Join(s.baseDir, stored)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

func (s *LocalStore) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
