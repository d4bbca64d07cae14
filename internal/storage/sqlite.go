package storage

import (
	"estatewatch/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteProvider struct {
	*SQLProvider
}

func NewSQLiteProvider(cfg *config.Storage) (*SQLiteProvider, error) {
	sqlProvider, err := NewSQLProvider("sqlite3", cfg.SQLite.Path)
	if err != nil {
		return nil, err
	}
	return &SQLiteProvider{SQLProvider: sqlProvider}, nil
}
