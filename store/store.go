package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sitedata/config"
	"sitedata/config/database"
	"sitedata/notify"
	"sitedata/pkg/logger"
)

// EmptyDocument is what readers see for a document that is absent,
// unreachable, or malformed. The three cases are indistinguishable by
// design: "nothing yet" is a valid state for every site section.
const EmptyDocument = "[]"

// ErrNotFound is returned by backends when a named document has never
// been written.
var ErrNotFound = errors.New("document not found")

// Backend reads and writes one named JSON document against a concrete
// remote store. Read returns ErrNotFound for an absent document and must
// not invent content; Write replaces the remote object and must surface
// every failure.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// MarkerSource supplies the last-known version marker for a document,
// used by backends that need a cache-busting token on reads.
type MarkerSource interface {
	Marker(name string) string
}

// Client is the public surface over the active backend: Get never fails,
// Save never fails silently.
type Client struct {
	backend  Backend
	notifier *notify.Notifier
}

func NewClient(backend Backend, notifier *notify.Notifier) *Client {
	return &Client{backend: backend, notifier: notifier}
}

// Backend returns the adapter this client writes through.
func (c *Client) Backend() Backend {
	return c.backend
}

// Get fetches the named document. Any read failure, an absent document,
// and a malformed remote body all degrade to the empty document; Get
// never returns an error.
func (c *Client) Get(ctx context.Context, name string) json.RawMessage {
	data, err := c.backend.Read(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Sugar.Warnf("Read of %s failed, serving empty document: %v", name, err)
		}
		return json.RawMessage(EmptyDocument)
	}
	if !json.Valid(data) {
		logger.Sugar.Warnf("Document %s is not valid JSON, serving empty document", name)
		return json.RawMessage(EmptyDocument)
	}
	return data
}

// Save serializes value, writes it through the backend and, only on
// success, announces the change. Failures propagate to the caller and
// suppress the announcement.
func (c *Client) Save(ctx context.Context, name string, value any) error {
	data, err := Serialize(value)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", name, err)
	}
	if err := c.backend.Write(ctx, name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if c.notifier != nil {
		c.notifier.Announce(name)
	}
	return nil
}

// Serialize renders value as JSON bytes. Strings, byte slices and raw
// messages are treated as pre-serialized JSON and passed through;
// everything else is marshalled.
func Serialize(value any) ([]byte, error) {
	switch v := value.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(v)
	}
}

// NewBackend constructs the one backend this deployment runs on. markers
// may be nil; it is only consulted by the HTTP backend for cache busting.
func NewBackend(cfg *config.Config, markers MarkerSource) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryBackend(), nil
	case config.BackendS3:
		return NewS3Backend(S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
	case config.BackendPostgres:
		db, err := database.Connect(cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		return NewPostgresBackend(db)
	case config.BackendSQLite:
		return NewSQLiteBackend(cfg.SQLitePath)
	case config.BackendGit:
		return NewGitBackend(GitConfig{
			RepoPath: cfg.GitRepoPath,
			Name:     cfg.GitName,
			Email:    cfg.GitEmail,
		})
	case config.BackendHTTP:
		return NewHTTPBackend(HTTPConfig{
			ReadBaseURL: cfg.ReadBaseURL,
			ProxyURL:    cfg.ProxyURL,
			IDToken:     cfg.IDToken,
			Markers:     markers,
		}), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
