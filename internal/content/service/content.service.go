package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sitedata/config"
	"sitedata/store"
)

// ErrUnknownDocument rejects reads and writes outside the deployment's
// configured document set.
var ErrUnknownDocument = errors.New("unknown document")

// ErrInvalidContent rejects write bodies that cannot be stored as a
// document: empty, the JSON null, or not JSON at all.
var ErrInvalidContent = errors.New("invalid content")

// ContentService sits between the HTTP surface and the document store,
// enforcing the closed name set. No document schema is enforced: the
// documents are opaque JSON and validation belongs to the editors.
type ContentService struct {
	Client *store.Client
	Cfg    *config.Config
}

func NewContentService(client *store.Client, cfg *config.Config) *ContentService {
	return &ContentService{Client: client, Cfg: cfg}
}

// GetDocument serves the named document, degrading to the empty document
// on every read failure.
func (s *ContentService) GetDocument(ctx context.Context, name string) (json.RawMessage, error) {
	if !s.Cfg.ValidName(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, name)
	}
	return s.Client.Get(ctx, name), nil
}

// SaveDocument replaces the named document.
func (s *ContentService) SaveDocument(ctx context.Context, name string, data json.RawMessage) error {
	if !s.Cfg.ValidName(name) {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, name)
	}
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("%w: content cannot be empty", ErrInvalidContent)
	}
	if !json.Valid(data) {
		return fmt.Errorf("%w: content is not valid JSON", ErrInvalidContent)
	}
	return s.Client.Save(ctx, name, data)
}

// Names returns the closed set of documents this deployment serves.
func (s *ContentService) Names() []string {
	names := make([]string, len(s.Cfg.Names))
	copy(names, s.Cfg.Names)
	return names
}

// Export collects every document into one object, for admin download.
func (s *ContentService) Export(ctx context.Context) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(s.Cfg.Names))
	for _, name := range s.Cfg.Names {
		out[name] = s.Client.Get(ctx, name)
	}
	return out
}
