package config

import "sync"

// MemoryStore is an in-memory implementation of the Store interface.
// This is primarily useful for testing; FailSaves and FailLoads inject
// storage failures.
type MemoryStore struct {
	mu     sync.RWMutex
	record *DeviceConfig

	// FailSaves makes Save return SaveErr without storing.
	FailSaves bool

	// FailLoads makes Load return LoadErr.
	FailLoads bool

	// SaveErr and LoadErr are the injected errors. Defaults apply when nil.
	SaveErr error
	LoadErr error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored record, or (nil, nil) when empty.
func (s *MemoryStore) Load() (*DeviceConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailLoads {
		return nil, s.loadErr()
	}
	if s.record == nil {
		return nil, nil
	}

	cfg := *s.record
	return &cfg, nil
}

// Save stores a copy of the record.
func (s *MemoryStore) Save(cfg *DeviceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSaves {
		return s.saveErr()
	}

	stored := *cfg
	s.record = &stored
	return nil
}

// Erase drops the stored record.
func (s *MemoryStore) Erase() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = nil
	return nil
}

func (s *MemoryStore) saveErr() error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	return errSaveInjected
}

func (s *MemoryStore) loadErr() error {
	if s.LoadErr != nil {
		return s.LoadErr
	}
	return errLoadInjected
}

var (
	errSaveInjected = errInjected("injected save failure")
	errLoadInjected = errInjected("injected load failure")
)

type errInjected string

func (e errInjected) Error() string { return string(e) }

// Compile-time interface satisfaction check.
var _ Store = (*MemoryStore)(nil)
