package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitedata/config"
	"sitedata/notify"
	"sitedata/socket"
	"sitedata/store"
)

const testSecret = "router-secret"

func newTestServer(t *testing.T) (*httptest.Server, *store.Client) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:  testSecret,
		AdminEmail: "admin@example.com",
		Names:      config.DefaultNames,
	}
	notifier := notify.New()
	client := store.NewClient(store.NewMemoryBackend(), notifier)

	hub := socket.NewHub()
	go hub.Run()
	notifier.SetRemote(hub)

	server := httptest.NewServer(Setup(cfg, client, hub))
	t.Cleanup(server.Close)
	return server, client
}

func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "admin@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestExportRequiresAuth(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/site-data/export")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/site-data/export", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out, len(config.DefaultNames))
}

// A save through the HTTP API must reach a websocket subscriber in
// another process before its fallback timer ever fires.
func TestSaveNotifiesWebsocketSubscribers(t *testing.T) {
	server, _ := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?name=reflections", nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)

	body := `{"name":"reflections","data":[{"id":"r1"}],"idToken":"` + adminToken(t) + `"}`
	resp, err := http.Post(server.URL+"/api/site-data/save", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev notify.Event
	require.NoError(t, json.Unmarshal(p, &ev))
	assert.Equal(t, notify.TypeUpdated, ev.Type)
	assert.Equal(t, "reflections", ev.Name)
}

func TestCORSPreflight(t *testing.T) {
	server, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, server.URL+"/api/site-data/save", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
