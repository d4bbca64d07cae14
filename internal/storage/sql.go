package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"estatewatch/internal/visitor"
)

type SQLProvider struct {
	db *sqlx.DB

	logger *slog.Logger
}

func NewSQLProvider(driverName string, dataSource string) (*SQLProvider, error) {
	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil, err
	}

	logger := slog.With("component", "storage")

	return &SQLProvider{
		db:     db,
		logger: logger,
	}, nil
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

const sqlSelectVisitors = `
	SELECT id, name, purpose, access_code, authorized_by, status,
	       authorization_date, visit_date, entry_time, exit_time
	FROM visitors`

func (p *SQLProvider) List(ctx context.Context) ([]visitor.Visitor, error) {
	var records []visitor.Visitor
	err := p.db.SelectContext(ctx, &records, sqlSelectVisitors+` ORDER BY authorization_date DESC`)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (p *SQLProvider) Get(ctx context.Context, id string) (*visitor.Visitor, error) {
	var v visitor.Visitor
	err := p.db.GetContext(ctx, &v, sqlSelectVisitors+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (p *SQLProvider) Insert(ctx context.Context, v visitor.Visitor) error {
	now := time.Now().UTC()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO visitors (id, name, purpose, access_code, authorized_by, status,
		                      authorization_date, visit_date, entry_time, exit_time,
		                      created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Purpose, v.AccessCode, v.AuthorizedBy, v.Status,
		v.AuthorizationDate, v.VisitDate, v.EntryTime, v.ExitTime,
		now, now,
	)
	return err
}

func (p *SQLProvider) Update(ctx context.Context, v visitor.Visitor) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE visitors
		SET name = ?, purpose = ?, access_code = ?, authorized_by = ?, status = ?,
		    authorization_date = ?, visit_date = ?, entry_time = ?, exit_time = ?,
		    updated_at = ?
		WHERE id = ?`,
		v.Name, v.Purpose, v.AccessCode, v.AuthorizedBy, v.Status,
		v.AuthorizationDate, v.VisitDate, v.EntryTime, v.ExitTime,
		time.Now().UTC(), v.ID,
	)
	return err
}

func (p *SQLProvider) Delete(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM visitors WHERE id = ?`, id)
	return err
}

func (p *SQLProvider) ListProfiles(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	err := p.db.SelectContext(ctx, &profiles, `
		SELECT id, email, role, created_at, updated_at
		FROM profiles ORDER BY email`)
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (p *SQLProvider) UpsertProfile(ctx context.Context, profile Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET role = excluded.role, updated_at = excluded.updated_at`,
		profile.ID, profile.Email, profile.Role, now, now,
	)
	return err
}

// GetSchemaVersion returns the highest applied migration version, 0 for
// an empty database.
func (p *SQLProvider) GetSchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := p.db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err != nil {
		return 0, err
	}
	return version, nil
}
