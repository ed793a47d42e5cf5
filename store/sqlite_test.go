package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteBackendRoundTrip(t *testing.T) {
	backend, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	_, err = backend.Read(ctx, "events")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, backend.Write(ctx, "events", []byte(`[{"id":"e1"}]`)))
	data, err := backend.Read(ctx, "events")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"e1"}]`, string(data))

	// Overwrite replaces the previous content.
	require.NoError(t, backend.Write(ctx, "events", []byte(`[]`)))
	data, err = backend.Read(ctx, "events")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
