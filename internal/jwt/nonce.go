package jwt

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Session token ids (jti) are tracked server-side so logout actually
// invalidates a token instead of waiting for expiry.

// Number of random bytes. 16 → 128-bit
const NONCE_SIZE = 16

// janitorInterval is how often expired nonces are purged.
const janitorInterval = time.Minute

type NonceMissingError struct {
	Nonce string
}

func (e *NonceMissingError) Error() string {
	return fmt.Sprintf("nonce not found: %s", e.Nonce)
}

// NonceStore holds live session nonces in a map protected by a RWMutex.
// Expiration is handled by a background janitor goroutine.
type NonceStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time // value = expiry timestamp
	stop    chan struct{}
}

func NewNonceStore() *NonceStore {
	ns := &NonceStore{
		entries: make(map[string]time.Time),
		stop:    make(chan struct{}),
	}
	go ns.janitor()
	return ns
}

func (m *NonceStore) Put(nonce string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be > 0")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[nonce] = time.Now().Add(ttl)
	return nil
}

// Consume verifies and deletes the nonce. Returns true if the nonce
// existed and was still live.
func (m *NonceStore) Consume(nonce string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.entries[nonce]
	if !ok {
		return false, &NonceMissingError{Nonce: nonce}
	}
	delete(m.entries, nonce)
	if time.Now().After(exp) {
		return false, nil
	}
	return true, nil
}

func (m *NonceStore) Exists(nonce string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exp, ok := m.entries[nonce]
	if !ok {
		return false
	}
	return !time.Now().After(exp)
}

func (m *NonceStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for k, exp := range m.entries {
				if now.After(exp) {
					slog.Debug("Purging expired session nonce")
					delete(m.entries, k)
				}
			}
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// Close stops the janitor
func (m *NonceStore) Close() {
	close(m.stop)
}

func generateNonceToken() (string, error) {
	b := make([]byte, NONCE_SIZE)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
