// Package storage provides opaque blob storage addressed by path.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore is the file storage boundary. Records in the relational store
// reference blobs by key only; the store owns the bytes.
type BlobStore interface {
	Save(key string, data []byte) error
	Remove(key string) error
	Exists(key string) bool
}

// DiskStore stores blobs as files under a root directory.
type DiskStore struct {
	root string
}

// NewDiskStore returns a BlobStore rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{root: dir}
}

func (s *DiskStore) resolve(key string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(key))
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") || strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Save writes data under key, creating parent directories as needed.
func (s *DiskStore) Save(key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Remove deletes the blob stored under key. Removing an absent key is not an
// error; the caller treats blob removal as best-effort cleanup.
func (s *DiskStore) Remove(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether a blob is stored under key.
func (s *DiskStore) Exists(key string) bool {
	path, err := s.resolve(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
