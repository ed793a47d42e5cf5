package store

import (
	"context"
	"database/sql"
	"errors"

	"sitedata/pkg/logger"
)

// PostgresBackend stores documents in a site_documents table, one row per
// name, upserted on every write.
type PostgresBackend struct {
	DB *sql.DB
}

func NewPostgresBackend(db *sql.DB) (*PostgresBackend, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS site_documents (
		name TEXT PRIMARY KEY,
		content BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		logger.Sugar.Errorf("Failed to ensure site_documents table: %v", err)
		return nil, err
	}
	return &PostgresBackend{DB: db}, nil
}

func (p *PostgresBackend) Read(ctx context.Context, name string) ([]byte, error) {
	var content []byte
	err := p.DB.QueryRowContext(ctx, "SELECT content FROM site_documents WHERE name = $1", name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to read document %s: %v", name, err)
		return nil, err
	}
	return content, nil
}

func (p *PostgresBackend) Write(ctx context.Context, name string, data []byte) error {
	_, err := p.DB.ExecContext(ctx, `INSERT INTO site_documents (name, content, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET content = $2, updated_at = NOW()`, name, data)
	if err != nil {
		logger.Sugar.Errorf("Failed to write document %s: %v", name, err)
	}
	return err
}
