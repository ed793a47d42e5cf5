package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitedata/notify"
)

// Helper function to read one announcement from a WebSocket connection
// with a timeout.
func readEvent(t *testing.T, conn *websocket.Conn) notify.Event {
	t.Helper()
	var ev notify.Event
	// Set a deadline to avoid tests hanging forever.
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	err = json.Unmarshal(p, &ev)
	require.NoError(t, err, "Failed to unmarshal announcement JSON")
	return ev
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, p, err := conn.ReadMessage()
	require.Error(t, err, "expected no message, got %s", p)
}

func TestHubFansOutAnnouncements(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	// Two consumers of "events", one of "gallery".
	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?name=events", nil)
	require.NoError(t, err, "Client 1 failed to connect")
	defer conn1.Close()

	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?name=events", nil)
	require.NoError(t, err, "Client 2 failed to connect")
	defer conn2.Close()

	conn3, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?name=gallery", nil)
	require.NoError(t, err, "Client 3 failed to connect")
	defer conn3.Close()

	// Give the hub a moment to register all three.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, hub.Signal(notify.Event{Type: notify.TypeUpdated, Name: "events", TS: "1735689600000"}))

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		ev := readEvent(t, conn)
		assert.Equal(t, notify.TypeUpdated, ev.Type)
		assert.Equal(t, "events", ev.Name)
		assert.Equal(t, "1735689600000", ev.TS)
	}

	// The gallery room hears nothing about events.
	expectSilence(t, conn3)
}

func TestWildcardRoomHearsEverything(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, hub.Signal(notify.Event{Type: notify.TypeUpdated, Name: "reflections", TS: "1"}))
	assert.Equal(t, "reflections", readEvent(t, conn).Name)

	require.NoError(t, hub.Signal(notify.Event{Type: notify.TypeUpdated, Name: "gallery-albums", TS: "2"}))
	assert.Equal(t, "gallery-albums", readEvent(t, conn).Name)
}
