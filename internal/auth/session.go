package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Key under which the current role is persisted.
const ROLE_KEY = "estateWatchUserRole"

var ErrStorageUnavailable = errors.New("session storage unavailable")

// Backend persists the single role record. Implementations must be safe
// to call from a single session goroutine.
type Backend interface {
	Load(key string) (string, bool, error)
	Save(key string, value string) error
	Clear(key string) error
}

// SessionStore holds the authenticated role for the session. Reads and
// writes go through the backend; if the backend fails the store logs a
// warning once and degrades to memory-only for the rest of the session.
type SessionStore struct {
	mu      sync.RWMutex
	backend Backend
	role    Role
	set     bool

	degraded bool
	logger   *slog.Logger
}

func NewSessionStore(backend Backend) *SessionStore {
	s := &SessionStore{
		backend: backend,
		logger:  slog.With("component", "session"),
	}

	if backend == nil {
		s.degraded = true
		return s
	}

	value, ok, err := backend.Load(ROLE_KEY)
	if err != nil {
		s.degrade(err)
		return s
	}
	if ok {
		role, err := ParseRole(value)
		if err != nil {
			s.logger.Warn("Ignoring unrecognized persisted role", "value", value)
			return s
		}
		s.role = role
		s.set = true
	}
	return s
}

// Role returns the current role. The second value is false if no role
// has been set or it has been cleared.
func (s *SessionStore) Role() (Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role, s.set
}

// SetRole persists role as the session identity.
func (s *SessionStore) SetRole(role Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role: %q", role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = role
	s.set = true

	if s.degraded {
		return nil
	}
	if err := s.backend.Save(ROLE_KEY, role.String()); err != nil {
		s.degrade(err)
	}
	return nil
}

// Clear removes the persisted role (logout).
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = ""
	s.set = false

	if s.degraded {
		return
	}
	if err := s.backend.Clear(ROLE_KEY); err != nil {
		s.degrade(err)
	}
}

// Degraded reports whether the store has fallen back to memory-only.
func (s *SessionStore) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

func (s *SessionStore) degrade(err error) {
	s.degraded = true
	s.logger.Warn("Session storage unavailable, continuing in-memory only", "error", err)
}

// ---------------------------------------------------------------------------
// File backend
// ---------------------------------------------------------------------------

// FileBackend stores session values as a small JSON document on disk.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return values, nil
}

func (f *FileBackend) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (f *FileBackend) Load(key string) (string, bool, error) {
	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

func (f *FileBackend) Save(key string, value string) error {
	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileBackend) Clear(key string) error {
	values, err := f.read()
	if err != nil {
		return err
	}
	delete(values, key)
	return f.write(values)
}
