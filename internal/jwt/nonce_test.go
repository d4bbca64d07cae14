package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestNonceStore(t *testing.T) {
	store := NewNonceStore()
	defer store.Close()

	if err := store.Put("n1", time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !store.Exists("n1") {
		t.Fatal("stored nonce not found")
	}

	ok, err := store.Consume("n1")
	if err != nil || !ok {
		t.Fatalf("Consume: ok=%v err=%v", ok, err)
	}

	// Consumed nonces are gone
	if store.Exists("n1") {
		t.Fatal("nonce survived consume")
	}
	ok, err = store.Consume("n1")
	if ok {
		t.Fatal("nonce consumed twice")
	}
	var missing *NonceMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected NonceMissingError, got %v", err)
	}
}

func TestNonceStoreExpiry(t *testing.T) {
	store := NewNonceStore()
	defer store.Close()

	if err := store.Put("short", time.Millisecond); err != nil {
		t.Fatalf("Put: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if store.Exists("short") {
		t.Fatal("expired nonce still reported as existing")
	}
}

func TestNonceStoreRejectsZeroTTL(t *testing.T) {
	store := NewNonceStore()
	defer store.Close()

	if err := store.Put("n1", 0); err == nil {
		t.Fatal("expected error for zero TTL")
	}
}
