package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPBackend is the hosted-blob pairing: documents are read straight
// from their public URL and written through the signed proxy endpoint,
// which re-verifies the identity token server-side. The signing secret
// never lives in this process.
type HTTPBackend struct {
	client      *http.Client
	readBaseURL string
	proxyURL    string
	idToken     string
	markers     MarkerSource
}

type HTTPConfig struct {
	// Base URL the public objects are served under; the document path
	// site-data/<name>.json is appended.
	ReadBaseURL string
	// Endpoint accepting POST {name, data, idToken}.
	ProxyURL string
	// Identity token presented to the proxy on writes.
	IDToken string
	// Optional marker source for cache busting on reads.
	Markers MarkerSource

	// optional, defaults to 30s
	Timeout time.Duration
}

type proxyRequest struct {
	Name    string          `json:"name"`
	Data    json.RawMessage `json:"data"`
	IDToken string          `json:"idToken"`
}

type proxyResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func NewHTTPBackend(config HTTPConfig) *HTTPBackend {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPBackend{
		client:      &http.Client{Timeout: timeout},
		readBaseURL: config.ReadBaseURL,
		proxyURL:    config.ProxyURL,
		idToken:     config.IDToken,
		markers:     config.Markers,
	}
}

func (h *HTTPBackend) Read(ctx context.Context, name string) ([]byte, error) {
	target := h.readBaseURL + "/" + objectKey(name)
	if h.markers != nil {
		if marker := h.markers.Marker(name); marker != "" {
			target += "?v=" + url.QueryEscape(marker)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	// Defeat intermediary caches; the v= parameter covers CDNs that
	// ignore these headers.
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, name)
	}
	return io.ReadAll(resp.Body)
}

func (h *HTTPBackend) Write(ctx context.Context, name string, data []byte) error {
	body, err := json.Marshal(proxyRequest{Name: name, Data: data, IDToken: h.idToken})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.proxyURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("proxy write for %s failed: %w", name, err)
	}
	defer resp.Body.Close()

	var out proxyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && resp.StatusCode == http.StatusOK {
		return fmt.Errorf("proxy returned unreadable response for %s: %w", name, err)
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("proxy rejected write for %s: %s", name, msg)
	}
	return nil
}
