package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresBackendRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	backend := &PostgresBackend{DB: db}

	mock.ExpectQuery("SELECT content FROM site_documents WHERE name = \\$1").
		WithArgs("events").
		WillReturnRows(sqlmock.NewRows([]string{"content"}).AddRow([]byte(`[{"id":"e1"}]`)))

	data, err := backend.Read(context.Background(), "events")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"e1"}]`, string(data))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackendReadAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	backend := &PostgresBackend{DB: db}

	mock.ExpectQuery("SELECT content FROM site_documents WHERE name = \\$1").
		WithArgs("reflections").
		WillReturnRows(sqlmock.NewRows([]string{"content"}))

	_, err = backend.Read(context.Background(), "reflections")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackendWriteUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	backend := &PostgresBackend{DB: db}

	mock.ExpectExec("INSERT INTO site_documents").
		WithArgs("gallery", []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, backend.Write(context.Background(), "gallery", []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
