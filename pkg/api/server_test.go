package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/metrics"
	"github.com/dd0wney/cluso-eyeball/pkg/records"
	"github.com/dd0wney/cluso-eyeball/pkg/source"
	"github.com/dd0wney/cluso-eyeball/pkg/workspace"
)

var testRecords = source.StaticRecords{
	{PeerHost: "10.0.0.2", Protocol: "https", Port: "443", ByteCount: 6e7, IsMalicious: true,
		Direction: records.DirectionToClient, Scope: records.ScopeExternal},
	{PeerHost: "10.0.0.3", Protocol: "dns", Port: "53", ByteCount: 100,
		Direction: records.DirectionBoth},
}

type switchableRecords struct {
	fail atomic.Bool
}

func (s *switchableRecords) Records(ctx context.Context) ([]records.ConnectionRecord, error) {
	if s.fail.Load() {
		return nil, errors.New("feed unavailable")
	}
	return testRecords.Records(ctx)
}

type testEnv struct {
	ws      *workspace.Workspace
	server  *Server
	handler http.Handler
	metrics *metrics.Registry
	recs    *switchableRecords
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	var n atomic.Int64
	ids := graph.IDFunc(func() string { return fmt.Sprintf("peer-%d", n.Add(1)-1) })

	reg := metrics.NewRegistry()
	recs := &switchableRecords{}
	ws, err := workspace.New(workspace.Sources{
		Records: recs,
		Summary: source.StaticSummary(records.HostSummary{AppID: "Web"}),
	}, workspace.WithBuildOptions(graph.WithIDGenerator(ids)), workspace.WithMetrics(reg))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go ws.Run(ctx)

	require.Eventually(t, ws.Loaded, 2*time.Second, 5*time.Millisecond)

	srv, err := NewServer(ws, Config{Version: "test", Metrics: reg, CORSOrigins: []string{"http://ui.example"}})
	require.NoError(t, err)

	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-ws.Done()
	})
	return &testEnv{ws: ws, server: srv, handler: srv.Handler(), metrics: reg, recs: recs}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// clickBody and selectionBody mirror the responses without the detail
// interfaces, which cannot be decoded.
type clickBody struct {
	Outcome  string `json:"outcome"`
	Snapshot struct {
		Version      uint64 `json:"version"`
		SelectedText string `json:"selectedText"`
		Selection    struct {
			SelectedNodeID string `json:"selectedNodeId"`
		} `json:"selection"`
		Menu *struct {
			Label string `json:"label"`
		} `json:"menu"`
	} `json:"snapshot"`
}

type selectionBody struct {
	NodeID        string   `json:"nodeId"`
	Label         string   `json:"label"`
	MenuOpen      bool     `json:"menuOpen"`
	SelectedNodes []string `json:"selectedNodes"`
	Menu          *struct {
		Items []struct {
			Action string `json:"action"`
		} `json:"items"`
	} `json:"menu"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNewServer_RequiresWorkspace(t *testing.T) {
	_, err := NewServer(nil, Config{})
	assert.Error(t, err)
}

func TestHandleGraph(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/graph", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-Graph-Version"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body struct {
		Version uint64 `json:"version"`
		Graph   struct {
			Nodes []map[string]any `json:"nodes"`
			Edges []map[string]any `json:"edges"`
		} `json:"graph"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(1), body.Version)
	assert.Len(t, body.Graph.Nodes, 3)
	assert.Len(t, body.Graph.Edges, 3)
}

func TestHandleGraphDOT(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/graph.dot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/vnd.graphviz")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "digraph"), rec.Body.String())
	assert.Contains(t, rec.Body.String(), "10.0.0.2")
}

func TestHandleGraph_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/graph", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestClickFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/click", `{"nodes":["peer-0"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	click := decode[clickBody](t, rec)
	assert.Equal(t, "selected", click.Outcome)
	assert.Equal(t, "peer-0", click.Snapshot.Selection.SelectedNodeID)
	require.NotNil(t, click.Snapshot.Menu)

	rec = env.do(t, http.MethodGet, "/selection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sel := decode[selectionBody](t, rec)
	assert.Equal(t, "10.0.0.2", sel.Label)
	assert.Equal(t, []string{"10.0.0.2"}, sel.SelectedNodes)
	assert.True(t, sel.MenuOpen)
	require.NotNil(t, sel.Menu)
	assert.Len(t, sel.Menu.Items, 7)

	rec = env.do(t, http.MethodGet, "/menu", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/click", `{"nodes":["peer-0"]}`)
	click = decode[clickBody](t, rec)
	assert.Equal(t, "toggled_off", click.Outcome)

	rec = env.do(t, http.MethodGet, "/menu", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/click", "")
	require.Equal(t, http.StatusOK, rec.Code)
	click = decode[clickBody](t, rec)
	assert.Equal(t, "cleared", click.Outcome)
	assert.Equal(t, workspace.NoSelectionText, click.Snapshot.SelectedText)
}

func TestClick_BadBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/click", `{"nodes":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/click", `{"bogus":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCloseMenuReturnsToIdle(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/click", `{"nodes":["peer-1"]}`)
	rec := env.do(t, http.MethodPost, "/menu/close", "")
	require.Equal(t, http.StatusOK, rec.Code)

	sel := decode[selectionBody](t, rec)
	assert.False(t, sel.MenuOpen)
	assert.Empty(t, sel.NodeID)
	assert.Empty(t, sel.SelectedNodes)
	assert.Nil(t, sel.Menu)
}

func TestInvoke(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/menu/invoke", `{"action":"expand"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.do(t, http.MethodPost, "/click", `{"nodes":["peer-0"]}`)

	rec = env.do(t, http.MethodPost, "/menu/invoke", `{"action":"expand"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[InvokeResponse](t, rec)
	assert.Equal(t, "Expand 10.0.0.2", resp.Result)

	rec = env.do(t, http.MethodPost, "/menu/invoke", `{"action":"reboot"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/menu/invoke", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[struct {
		Version uint64 `json:"version"`
	}](t, rec)
	assert.Equal(t, uint64(2), snap.Version)

	env.recs.fail.Store(true)
	rec = env.do(t, http.MethodPost, "/refresh", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = env.do(t, http.MethodGet, "/graph", "")
	assert.Equal(t, "2", rec.Header().Get("X-Graph-Version"), "failed refresh keeps the last graph")
}

func TestGraphQLRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/graphql", `{"query":"{ stats { peers } }"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"stats":{"peers":2}}}`, rec.Body.String())
}

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{"/health/ready", "/health/live"} {
		rec := env.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)

		var resp struct {
			Status  string `json:"status"`
			Version string `json:"version"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status, path)
		assert.Equal(t, "test", resp.Version)
	}
}

func TestMetricsRoute(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/graph", "")
	env.do(t, http.MethodGet, "/not-a-route", "")

	rec := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `route="graph"`)
	assert.Contains(t, body, `route="other"`)
	assert.NotContains(t, body, `path=`)
	assert.NotContains(t, body, "not-a-route")
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/click", nil)
	req.Header.Set("Origin", "http://ui.example")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://ui.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/click", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	env := newTestEnv(t)

	big := bytes.Repeat([]byte("a"), 2<<20)
	req := httptest.NewRequest(http.MethodPost, "/click", bytes.NewReader(big))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestClosedWorkspace(t *testing.T) {
	ws, err := workspace.New(workspace.Sources{Records: testRecords})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	go ws.Run(ctx)
	cancel()
	<-ws.Done()

	srv, err := NewServer(ws, Config{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graph", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
