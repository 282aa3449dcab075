// Package state persists per-surface message ids across restarts so a
// restarted process edits its existing status messages instead of
// reposting.
package state

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// FileStore stores the surface-name to message-id mapping as a JSON
// file, written atomically via a temp file and rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the given path. The file is
// created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted mapping. A missing file is not an error; it
// yields an empty map. A corrupt file is also treated as empty rather
// than blocking startup.
func (s *FileStore) Load() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var m map[string]string
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return map[string]string{}, nil
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// Save writes the mapping atomically.
func (s *FileStore) Save(m map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
