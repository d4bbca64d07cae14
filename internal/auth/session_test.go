package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store := NewSessionStore(NewFileBackend(path))
	if _, ok := store.Role(); ok {
		t.Fatal("fresh store should have no role")
	}

	if err := store.SetRole(RoleEstateManager); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	role, ok := store.Role()
	if !ok || role != RoleEstateManager {
		t.Fatalf("Role() = %q, %v", role, ok)
	}

	// A new store over the same file sees the persisted role
	reopened := NewSessionStore(NewFileBackend(path))
	role, ok = reopened.Role()
	if !ok || role != RoleEstateManager {
		t.Fatalf("persisted Role() = %q, %v", role, ok)
	}

	reopened.Clear()
	if _, ok := reopened.Role(); ok {
		t.Fatal("role survives Clear")
	}

	// And the clear is persisted too
	third := NewSessionStore(NewFileBackend(path))
	if _, ok := third.Role(); ok {
		t.Fatal("cleared role came back after reopen")
	}
}

func TestSessionStoreRejectsInvalidRole(t *testing.T) {
	store := NewSessionStore(NewFileBackend(filepath.Join(t.TempDir(), "session.json")))
	if err := store.SetRole(Role("Janitor")); err == nil {
		t.Fatal("expected error for invalid role")
	}
}

// brokenBackend fails every operation.
type brokenBackend struct{}

func (brokenBackend) Load(key string) (string, bool, error) {
	return "", false, ErrStorageUnavailable
}
func (brokenBackend) Save(key, value string) error { return ErrStorageUnavailable }
func (brokenBackend) Clear(key string) error       { return ErrStorageUnavailable }

func TestSessionStoreDegradesToMemory(t *testing.T) {
	store := NewSessionStore(brokenBackend{})
	if !store.Degraded() {
		t.Fatal("store with a failing backend should be degraded")
	}

	// Degraded store still works for the rest of the session
	if err := store.SetRole(RoleResident); err != nil {
		t.Fatalf("SetRole on degraded store: %v", err)
	}
	role, ok := store.Role()
	if !ok || role != RoleResident {
		t.Fatalf("Role() = %q, %v", role, ok)
	}

	store.Clear()
	if _, ok := store.Role(); ok {
		t.Fatal("role survives Clear on degraded store")
	}
}

func TestFileBackendErrors(t *testing.T) {
	// Corrupt file surfaces as ErrStorageUnavailable
	path := filepath.Join(t.TempDir(), "session.json")
	backend := NewFileBackend(path)
	if err := backend.Save(ROLE_KEY, "Resident"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("corrupting file: %v", err)
	}
	if _, _, err := backend.Load(ROLE_KEY); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
