package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"estatewatch/internal/visitor"
)

// localDocument is the on-disk shape. The top-level keys are fixed;
// dates are stored as RFC3339 strings and reconstructed on load.
type localDocument struct {
	Visitors []visitor.Visitor `json:"estateWatchResidentVisitors"`
	Profiles []Profile         `json:"estateWatchProfiles,omitempty"`
}

// LocalFileProvider persists the whole collection as one JSON document.
// Mutations are write-through: the in-memory state is only replaced
// after the file write succeeds, so a failed write leaves the store at
// its last-known-good state.
type LocalFileProvider struct {
	mu   sync.RWMutex
	path string
	doc  localDocument
}

func NewLocalFileProvider(path string) (*LocalFileProvider, error) {
	p := &LocalFileProvider{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read visitor file: %w", err)
		}
		return p, nil
	}
	if err := json.Unmarshal(data, &p.doc); err != nil {
		return nil, fmt.Errorf("failed to parse visitor file: %w", err)
	}
	return p, nil
}

func (p *LocalFileProvider) Close() error {
	return nil
}

func (p *LocalFileProvider) persist(doc localDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode visitor file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data folder: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write visitor file: %w", err)
	}
	return nil
}

func (p *LocalFileProvider) List(ctx context.Context) ([]visitor.Visitor, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]visitor.Visitor, len(p.doc.Visitors))
	copy(out, p.doc.Visitors)
	return out, nil
}

func (p *LocalFileProvider) Get(ctx context.Context, id string) (*visitor.Visitor, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for i := range p.doc.Visitors {
		if p.doc.Visitors[i].ID == id {
			v := p.doc.Visitors[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (p *LocalFileProvider) Insert(ctx context.Context, v visitor.Visitor) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.doc
	next.Visitors = append([]visitor.Visitor{v}, p.doc.Visitors...)
	if err := p.persist(next); err != nil {
		return err
	}
	p.doc = next
	return nil
}

func (p *LocalFileProvider) Update(ctx context.Context, v visitor.Visitor) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.doc
	next.Visitors = make([]visitor.Visitor, len(p.doc.Visitors))
	copy(next.Visitors, p.doc.Visitors)
	for i := range next.Visitors {
		if next.Visitors[i].ID == v.ID {
			next.Visitors[i] = v
			break
		}
	}
	if err := p.persist(next); err != nil {
		return err
	}
	p.doc = next
	return nil
}

func (p *LocalFileProvider) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.doc
	next.Visitors = make([]visitor.Visitor, 0, len(p.doc.Visitors))
	for _, v := range p.doc.Visitors {
		if v.ID != id {
			next.Visitors = append(next.Visitors, v)
		}
	}
	if err := p.persist(next); err != nil {
		return err
	}
	p.doc = next
	return nil
}

func (p *LocalFileProvider) ListProfiles(ctx context.Context) ([]Profile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Profile, len(p.doc.Profiles))
	copy(out, p.doc.Profiles)
	return out, nil
}

func (p *LocalFileProvider) UpsertProfile(ctx context.Context, profile Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	profile.UpdatedAt = time.Now().UTC()

	next := p.doc
	next.Profiles = make([]Profile, len(p.doc.Profiles))
	copy(next.Profiles, p.doc.Profiles)

	found := false
	for i := range next.Profiles {
		if next.Profiles[i].Email == profile.Email {
			// Keep the original identity on replace
			profile.ID = next.Profiles[i].ID
			profile.CreatedAt = next.Profiles[i].CreatedAt
			next.Profiles[i] = profile
			found = true
			break
		}
	}
	if !found {
		if profile.ID == "" {
			profile.ID = uuid.NewString()
		}
		profile.CreatedAt = profile.UpdatedAt
		next.Profiles = append(next.Profiles, profile)
	}

	if err := p.persist(next); err != nil {
		return err
	}
	p.doc = next
	return nil
}
