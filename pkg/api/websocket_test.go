package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsMessage mirrors Message with the snapshot left undecoded.
type wsMessage struct {
	Type     string          `json:"type"`
	Version  uint64          `json:"version"`
	Outcome  string          `json:"outcome"`
	Error    string          `json:"error"`
	Snapshot json.RawMessage `json:"snapshot"`
}

func value(m prometheus.Metric) float64 {
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		return -1
	}
	if g := out.GetGauge(); g != nil {
		return g.GetValue()
	}
	return out.GetCounter().GetValue()
}

func dialWS(t *testing.T, env *testEnv, origin string) (*websocket.Conn, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(env.handler)
	t.Cleanup(ts.Close)

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, ts
}

func readUntil(t *testing.T, conn *websocket.Conn, kind string) wsMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %q", kind)
		if msg.Type == kind {
			return msg
		}
	}
}

func TestWebSocket_InitialSnapshot(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := dialWS(t, env, "")

	msg := readUntil(t, conn, MessageSnapshot)
	assert.Equal(t, uint64(1), msg.Version)
	assert.Contains(t, string(msg.Snapshot), `"nodes"`)

	assert.Eventually(t, func() bool {
		return value(env.metrics.WebSocketClients) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestWebSocket_ClickCommand(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := dialWS(t, env, "")
	readUntil(t, conn, MessageSnapshot)

	require.NoError(t, conn.WriteJSON(Command{Type: CommandClick, Nodes: []string{"peer-0"}}))
	reply := readUntil(t, conn, MessageClick)
	assert.Equal(t, "selected", reply.Outcome)
	assert.Contains(t, string(reply.Snapshot), `"selectedNodeId":"peer-0"`)

	require.NoError(t, conn.WriteJSON(Command{Type: "bogus"}))
	errMsg := readUntil(t, conn, MessageError)
	assert.Contains(t, errMsg.Error, "bogus")
}

func TestWebSocket_BroadcastsHTTPChanges(t *testing.T) {
	env := newTestEnv(t)
	conn, ts := dialWS(t, env, "")
	readUntil(t, conn, MessageSnapshot)

	resp, err := http.Post(ts.URL+"/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg := readUntil(t, conn, MessageLoaded)
	assert.Equal(t, uint64(2), msg.Version)

	resp, err = http.Post(ts.URL+"/click", "application/json", strings.NewReader(`{"nodes":["peer-3"]}`))
	require.NoError(t, err)
	resp.Body.Close()

	msg = readUntil(t, conn, MessageSelection)
	assert.Contains(t, string(msg.Snapshot), `"selectedNodeId":"peer-3"`)
	assert.Greater(t, value(env.metrics.WebSocketMessagesTotal), 0.0)
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	header := http.Header{"Origin": []string{"http://evil.example"}}
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocket_AllowsConfiguredOrigin(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := dialWS(t, env, "http://ui.example")
	readUntil(t, conn, MessageSnapshot)
}

func TestWebSocket_CloseDisconnectsClients(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := dialWS(t, env, "")
	readUntil(t, conn, MessageSnapshot)

	env.server.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	assert.Eventually(t, func() bool { return env.server.hub.count() == 0 }, time.Second, 5*time.Millisecond)
}
