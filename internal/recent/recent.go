// Package recent keeps the ids of recently viewed products.
package recent

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rohanthewiz/serr"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultLimit caps how many ids are remembered.
const DefaultLimit = 12

// Store is the previously-viewed-items collaborator.
type Store interface {
	List() ([]string, error)
	Add(id string) error
	Clear() error
}

type record struct {
	IDs       []string  `msgpack:"ids"`
	UpdatedAt time.Time `msgpack:"updated_at"`
}

// FileStore persists ids as msgpack, most recent first.
type FileStore struct {
	mu    sync.Mutex
	path  string
	limit int
}

// NewFileStore creates a store at path. The file is created on first Add.
func NewFileStore(path string, limit int) *FileStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &FileStore{path: path, limit: limit}
}

// List returns the remembered ids; a missing file means none.
func (s *FileStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.load()
	if err != nil {
		return nil, err
	}
	return rec.IDs, nil
}

// Add moves id to the front, dropping duplicates and anything past the limit.
func (s *FileStore) Add(id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load()
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(rec.IDs)+1)
	ids = append(ids, id)
	for _, existing := range rec.IDs {
		if existing != id {
			ids = append(ids, existing)
		}
	}
	if len(ids) > s.limit {
		ids = ids[:s.limit]
	}
	return s.save(record{IDs: ids, UpdatedAt: time.Now()})
}

// Clear forgets everything.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return serr.Wrap(err, "failed to clear recently viewed")
	}
	return nil
}

func (s *FileStore) load() (record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return record{}, nil
	}
	if err != nil {
		return record{}, serr.Wrap(err, "failed to read recently viewed")
	}
	var rec record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return record{}, serr.Wrap(err, "failed to decode recently viewed")
	}
	return rec, nil
}

func (s *FileStore) save(rec record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return serr.Wrap(err, "failed to create recently viewed directory")
	}
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return serr.Wrap(err, "failed to encode recently viewed")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return serr.Wrap(err, "failed to write recently viewed")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return serr.Wrap(err, "failed to replace recently viewed")
	}
	return nil
}

// Memory is an in-process Store.
type Memory struct {
	mu  sync.Mutex
	ids []string
}

// NewMemory seeds a Memory store.
func NewMemory(ids ...string) *Memory {
	return &Memory{ids: append([]string(nil), ids...)}
}

func (m *Memory) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids...), nil
}

func (m *Memory) Add(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{id}
	for _, existing := range m.ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	if len(out) > DefaultLimit {
		out = out[:DefaultLimit]
	}
	m.ids = out
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	m.ids = nil
	m.mu.Unlock()
	return nil
}
