package storage

import (
	"context"
	"log/slog"

	"estatewatch/internal/config"
	"estatewatch/internal/visitor"
)

// Provider is the persistence surface for visitor records and profiles.
// The visitor methods satisfy visitor.Store.
type Provider interface {
	Close() error

	// Visitor record methods
	List(ctx context.Context) ([]visitor.Visitor, error)
	Get(ctx context.Context, id string) (*visitor.Visitor, error)
	Insert(ctx context.Context, v visitor.Visitor) error
	Update(ctx context.Context, v visitor.Visitor) error
	Delete(ctx context.Context, id string) error

	// Profile methods
	ListProfiles(ctx context.Context) ([]Profile, error)
	UpsertProfile(ctx context.Context, p Profile) error
}

// NewProvider builds a provider from the storage configuration. SQLite
// wins when both backends are configured. Falls back to the in-memory
// provider (with a warning) when persistent storage cannot be opened, so
// a storage failure degrades the session instead of killing it.
func NewProvider(cfg *config.Storage) Provider {
	switch {
	case cfg.SQLite != nil:
		provider, err := NewSQLiteProvider(cfg)
		if err != nil {
			slog.Warn("SQLite storage unavailable, continuing in-memory only", "error", err)
			return NewMemoryProvider()
		}
		if err := provider.runMigrations("sqlite3"); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			provider.Close()
			return nil
		}
		return provider

	case cfg.LocalFile != nil:
		provider, err := NewLocalFileProvider(cfg.LocalFile.Path)
		if err != nil {
			slog.Warn("Local file storage unavailable, continuing in-memory only", "error", err)
			return NewMemoryProvider()
		}
		return provider

	default:
		slog.Error("Unsupported storage configuration", "config", cfg)
	}

	return nil
}
