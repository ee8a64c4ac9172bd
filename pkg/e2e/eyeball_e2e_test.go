package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-eyeball/pkg/api"
	"github.com/dd0wney/cluso-eyeball/pkg/graph"
	"github.com/dd0wney/cluso-eyeball/pkg/logging"
	"github.com/dd0wney/cluso-eyeball/pkg/metrics"
	"github.com/dd0wney/cluso-eyeball/pkg/source"
	"github.com/dd0wney/cluso-eyeball/pkg/style"
	"github.com/dd0wney/cluso-eyeball/pkg/workspace"
)

type graphBody struct {
	Version uint64 `json:"version"`
	Graph   struct {
		Nodes []struct {
			ID          string `json:"id"`
			Label       string `json:"label"`
			BorderWidth int    `json:"borderWidth"`
		} `json:"nodes"`
		Edges []struct {
			From  string  `json:"from"`
			To    string  `json:"to"`
			Width float64 `json:"width"`
			Color struct {
				Color string `json:"color"`
			} `json:"color"`
		} `json:"edges"`
		Stats struct {
			Peers          int `json:"peers"`
			MaliciousPeers int `json:"maliciousPeers"`
		} `json:"stats"`
	} `json:"graph"`
	SelectedText string `json:"selectedText"`
}

func (g graphBody) nodeID(t *testing.T, label string) string {
	t.Helper()
	for _, n := range g.Graph.Nodes {
		if n.Label == label {
			return n.ID
		}
	}
	t.Fatalf("no node labelled %s", label)
	return ""
}

// startStack serves the sample feeds over HTTP and runs the full API in
// front of a workspace reading them.
func startStack(t *testing.T) string {
	t.Helper()

	dataDir := filepath.Join("..", "..", "data")
	if _, err := os.Stat(filepath.Join(dataDir, "sampleData.json")); err != nil {
		t.Skipf("sample data unavailable: %v", err)
	}
	feeds := httptest.NewServer(http.FileServer(http.Dir(dataDir)))
	t.Cleanup(feeds.Close)

	ctx := context.Background()
	logger := logging.NewNopLogger()
	reg := metrics.NewRegistry()

	rf, err := source.Open(ctx, feeds.URL+"/sampleData.json", source.Options{})
	require.NoError(t, err)
	sf, err := source.Open(ctx, feeds.URL+"/Request.json", source.Options{})
	require.NoError(t, err)

	ws, err := workspace.New(workspace.Sources{
		Records: source.NewRecords(rf, logger, reg),
		Summary: source.NewSummary(sf, logger, reg),
	}, workspace.WithLogger(logger), workspace.WithMetrics(reg))
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	go ws.Run(runCtx)
	require.Eventually(t, ws.Loaded, 5*time.Second, 10*time.Millisecond)

	srv, err := api.NewServer(ws, api.Config{Version: "e2e", Logger: logger, Metrics: reg})
	require.NoError(t, err)
	front := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		front.Close()
		srv.Close()
		cancel()
		<-ws.Done()
	})
	return front.URL
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, v))
}

func postJSON(t *testing.T, url, body string) (int, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

// TestInvestigationWorkflow walks an analyst through loading the sample
// feed, selecting a malicious peer and using its menu.
func TestInvestigationWorkflow(t *testing.T) {
	baseURL := startStack(t)

	var g graphBody
	getJSON(t, baseURL+"/graph", &g)

	// five peers plus hostA; two Both records add an edge each
	require.Len(t, g.Graph.Nodes, 6)
	assert.Len(t, g.Graph.Edges, 7)
	assert.Equal(t, 5, g.Graph.Stats.Peers)
	assert.Equal(t, 2, g.Graph.Stats.MaliciousPeers)
	assert.Equal(t, workspace.NoSelectionText, g.SelectedText)

	bad := g.nodeID(t, "198.51.100.23")
	for _, e := range g.Graph.Edges {
		assert.LessOrEqual(t, e.Width, style.MaxEdgeWidth)
		if e.From == bad || e.To == bad {
			assert.Equal(t, style.Red, e.Color.Color)
		}
	}

	code, body := postJSON(t, baseURL+"/click", fmt.Sprintf(`{"nodes":[%q]}`, bad))
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Contains(t, string(body), `"outcome":"selected"`)

	getJSON(t, baseURL+"/graph", &g)
	assert.Equal(t, "198.51.100.23", g.SelectedText)
	for _, n := range g.Graph.Nodes {
		if n.ID == bad || n.ID == graph.CentralID {
			assert.Equal(t, style.HighlightBorderWidth, n.BorderWidth, n.Label)
		} else {
			assert.Equal(t, style.BaseBorderWidth, n.BorderWidth, n.Label)
		}
	}

	code, body = postJSON(t, baseURL+"/menu/invoke", `{"action":"expand"}`)
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Contains(t, string(body), "Expand 198.51.100.23")

	code, _ = postJSON(t, baseURL+"/menu/close", "")
	require.Equal(t, http.StatusOK, code)

	code, body = postJSON(t, baseURL+"/click", `{"nodes":[]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"outcome":"cleared"`)

	var dot bytes.Buffer
	resp, err := http.Get(baseURL + "/graph.dot")
	require.NoError(t, err)
	_, err = dot.ReadFrom(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, dot.String(), "hostA")

	code, _ = postJSON(t, baseURL+"/refresh", "")
	assert.Equal(t, http.StatusOK, code)
}

// TestConcurrentClicks hammers the click endpoint and checks the
// workspace still answers consistently afterwards.
func TestConcurrentClicks(t *testing.T) {
	baseURL := startStack(t)

	var g graphBody
	getJSON(t, baseURL+"/graph", &g)
	require.NotEmpty(t, g.Graph.Nodes)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := g.Graph.Nodes[i%len(g.Graph.Nodes)].ID
			resp, err := http.Post(baseURL+"/click", "application/json",
				bytes.NewBufferString(fmt.Sprintf(`{"nodes":[%q]}`, id)))
			if err != nil {
				errs <- err
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errs <- fmt.Errorf("click %s: status %d", id, resp.StatusCode)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	var after graphBody
	getJSON(t, baseURL+"/graph", &after)
	highlighted := 0
	for _, n := range after.Graph.Nodes {
		if n.BorderWidth == style.HighlightBorderWidth {
			highlighted++
		}
	}
	// at most one peer plus hostA
	assert.LessOrEqual(t, highlighted, 2)
}
