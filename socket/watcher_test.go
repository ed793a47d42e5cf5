package socket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitedata/notify"
)

// The watcher is the cross-process leg: announcements written in the
// server process must surface on a remote notifier's local bus.
func TestWatcherFeedsLocalNotifier(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	notifier := notify.New()
	events, cancel := notifier.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	watcher := NewWatcher(wsURL+"/ws?name=events", notifier)
	go watcher.Run(ctx)

	// Wait for the watcher to connect before signalling.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, hub.Signal(notify.Event{Type: notify.TypeUpdated, Name: "events", TS: "424242"}))

	select {
	case ev := <-events:
		assert.Equal(t, "events", ev.Name)
		assert.Equal(t, "424242", ev.TS)
		assert.Equal(t, "424242", notifier.Marker("events"), "delivered marker must be adopted for cache busting")
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never delivered the announcement")
	}
}
