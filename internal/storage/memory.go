package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"estatewatch/internal/visitor"
)

// MemoryProvider keeps everything in maps behind a RWMutex. Used by
// tests and as the degraded mode when persistent storage is down.
type MemoryProvider struct {
	mu       sync.RWMutex
	records  []visitor.Visitor // newest-first
	profiles map[string]Profile
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		profiles: make(map[string]Profile),
	}
}

func (m *MemoryProvider) Close() error {
	return nil
}

func (m *MemoryProvider) List(ctx context.Context) ([]visitor.Visitor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]visitor.Visitor, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MemoryProvider) Get(ctx context.Context, id string) (*visitor.Visitor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.records {
		if m.records[i].ID == id {
			v := m.records[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (m *MemoryProvider) Insert(ctx context.Context, v visitor.Visitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]visitor.Visitor{v}, m.records...)
	return nil
}

func (m *MemoryProvider) Update(ctx context.Context, v visitor.Visitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == v.ID {
			m.records[i] = v
			return nil
		}
	}
	return nil
}

func (m *MemoryProvider) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemoryProvider) ListProfiles(ctx context.Context) ([]Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryProvider) UpsertProfile(ctx context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.UpdatedAt = time.Now().UTC()
	if existing, ok := m.profiles[p.Email]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CreatedAt = p.UpdatedAt
	}
	m.profiles[p.Email] = p
	return nil
}
