package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// KeyValueStore is the client storage the chat history lives in. A missing
// key is reported with ok=false and a nil error.
type KeyValueStore interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// MemoryStore is a KeyValueStore held in memory. It is safe for concurrent
// use.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[string]string
	writes int
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

func (s *MemoryStore) GetItem(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryStore) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	s.writes++
	return nil
}

func (s *MemoryStore) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	s.writes++
	return nil
}

// Writes returns how many mutations the store has seen
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// FileStore keeps each key in <dir>/<key>.json. Writes go through a
// temporary file and a rename so a crash never leaves a torn value.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a FileStore
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StorageError{Path: dir, Op: "open", Err: err}
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory values are stored in
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStore) GetItem(key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Path: p, Op: "read", Err: err}
	}
	return string(data), true, nil
}

func (s *FileStore) SetItem(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return &StorageError{Path: p, Op: "write", Err: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return &StorageError{Path: p, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StorageError{Path: p, Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, p); err != nil {
		return &StorageError{Path: p, Op: "write", Err: err}
	}
	return nil
}

func (s *FileStore) RemoveItem(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Path: p, Op: "remove", Err: err}
	}
	return nil
}
