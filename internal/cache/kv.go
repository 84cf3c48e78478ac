package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// KeyValue is the string-keyed durable storage primitive underneath the
// profile cache. Get returns (nil, false, nil) for a missing key.
type KeyValue interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// FileKV stores each key as a file under a directory. Writes go through
// a temp file and rename so a crash mid-write never leaves a torn value.
type FileKV struct {
	dir string
}

// NewFileKV creates the directory if needed and returns a FileKV over it.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

func (f *FileKV) Set(key string, value []byte) error {
	p := f.path(key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

func (f *FileKV) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// MemoryKV is an in-memory KeyValue for tests.
type MemoryKV struct {
	values map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	delete(m.values, key)
	return nil
}
