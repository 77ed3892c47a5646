package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the configuration record as a JSON file at a fixed
// path. It is safe for concurrent use.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the record path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted record. A missing file, unparseable content, or
// a record violating the configured invariant all yield (nil, nil): the
// device treats them as "unconfigured" rather than failing the boot.
func (s *FileStore) Load() (*DeviceConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg DeviceConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		// Malformed record is treated as absent.
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		// A configured record with missing network fields cannot drive a
		// join attempt; treat it as absent too.
		return nil, nil
	}

	return &cfg, nil
}

// Save writes the full record, creating the parent directory if needed.
func (s *FileStore) Save(cfg *DeviceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Erase removes the record file.
func (s *FileStore) Erase() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Compile-time interface satisfaction check.
var _ Store = (*FileStore)(nil)
