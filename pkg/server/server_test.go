package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/cooc/pkg/interact"
	"github.com/vanderheijden86/cooc/pkg/metrics"
	"github.com/vanderheijden86/cooc/pkg/model"
	"github.com/vanderheijden86/cooc/pkg/testutil"
)

type graphBody struct {
	Title   string `json:"title"`
	Hovered string `json:"hovered"`
	Nodes   []struct {
		ID           string  `json:"id"`
		Opacity      float64 `json:"opacity"`
		LabelVisible bool    `json:"label_visible"`
	} `json:"nodes"`
	Links []struct {
		Opacity float64 `json:"opacity"`
	} `json:"links"`
}

func newTestServer(t *testing.T, load LoadFunc) (*Server, *interact.Session) {
	t.Helper()
	session, err := interact.NewSession(testutil.QuickStar(3), interact.DefaultOptions())
	require.NoError(t, err)
	session.Settle(300)
	return New(session, Config{Title: "test", Load: load, Metrics: metrics.NewRegistry()}), session
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeGraph(t *testing.T, rec *httptest.ResponseRecorder) graphBody {
	t.Helper()
	var g graphBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	return g
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 4, resp.Nodes)
	assert.Equal(t, 3, resp.Links)
}

func TestGraph_RestingState(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/api/graph", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/json")
	g := decodeGraph(t, rec)
	assert.Equal(t, "test", g.Title)
	assert.Empty(t, g.Hovered)
	require.Len(t, g.Nodes, 4)
	require.Len(t, g.Links, 3)
	for _, n := range g.Nodes {
		assert.Equal(t, 1.0, n.Opacity)
	}
	for _, l := range g.Links {
		assert.Equal(t, 0.6, l.Opacity)
	}
}

func TestEvents_HoverDimsNonNeighbors(t *testing.T) {
	s, _ := newTestServer(t, nil)
	spoke := testutil.NodeID(1)

	rec := do(t, s, http.MethodPost, "/api/events", `{"type":"hover_enter","node":"`+spoke+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	g := decodeGraph(t, rec)
	assert.Equal(t, spoke, g.Hovered)

	byID := map[string]float64{}
	for _, n := range g.Nodes {
		byID[n.ID] = n.Opacity
	}
	assert.Equal(t, 1.0, byID[spoke])
	assert.Equal(t, 1.0, byID[testutil.NodeID(0)], "hub is a neighbor")
	assert.Equal(t, 0.1, byID[testutil.NodeID(2)])
	assert.Equal(t, 0.1, byID[testutil.NodeID(3)])

	rec = do(t, s, http.MethodPost, "/api/events", `{"type":"hover_leave","node":"`+spoke+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, n := range decodeGraph(t, rec).Nodes {
		assert.Equal(t, 1.0, n.Opacity)
	}
}

func TestEvents_Errors(t *testing.T) {
	s, _ := newTestServer(t, nil)
	tests := []struct {
		name string
		body string
	}{
		{"unknown type", `{"type":"explode"}`},
		{"missing node", `{"type":"hover_enter"}`},
		{"unknown node", `{"type":"drag_start","node":"nope"}`},
		{"bad zoom", `{"type":"zoom","factor":0}`},
		{"malformed", `{"type":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/events", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestEvents_DragPinsNode(t *testing.T) {
	s, session := newTestServer(t, nil)
	id := testutil.NodeID(2)

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/events", `{"type":"drag_start","node":"`+id+`"}`).Code)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/events", `{"type":"drag_move","node":"`+id+`","x":42,"y":24}`).Code)

	n := session.Graph().NodeByID(id)
	require.NotNil(t, n)
	assert.True(t, n.Pinned())
	assert.Equal(t, 42.0, *n.FX)
	assert.Equal(t, 24.0, *n.FY)
	assert.True(t, session.Running())

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/events", `{"type":"drag_end","node":"`+id+`"}`).Code)
	assert.False(t, n.Pinned())
}

func TestSnapshots(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/graph.svg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Body.String(), "<svg")
	assert.Equal(t, 4, strings.Count(rec.Body.String(), "<circle"))

	rec = do(t, s, http.MethodGet, "/graph.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestStats(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/api/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		NodeCount  int `json:"node_count"`
		LinkCount  int `json:"link_count"`
		Components int `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.NodeCount)
	assert.Equal(t, 3, stats.LinkCount)
	assert.Equal(t, 1, stats.Components)
}

func TestReload(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s, _ := newTestServer(t, nil)
		assert.Equal(t, http.StatusNotImplemented, do(t, s, http.MethodPost, "/api/reload", "").Code)
	})

	t.Run("failure keeps graph", func(t *testing.T) {
		s, session := newTestServer(t, func(context.Context) (*model.Graph, error) {
			return nil, errors.New("disk on fire")
		})
		before := session.Graph()
		rec := do(t, s, http.MethodPost, "/api/reload", "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "disk on fire")
		assert.Same(t, before, session.Graph())
	})

	t.Run("success swaps graph", func(t *testing.T) {
		s, session := newTestServer(t, func(context.Context) (*model.Graph, error) {
			return testutil.QuickStar(5), nil
		})
		rec := do(t, s, http.MethodPost, "/api/reload", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Len(t, decodeGraph(t, rec).Nodes, 6)
		assert.Len(t, session.Graph().Nodes, 6)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)
	do(t, s, http.MethodGet, "/healthz", "")
	do(t, s, http.MethodPost, "/api/events", `{"type":"pan","dx":5}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `cooc_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
	assert.Contains(t, body, `cooc_interaction_events_total{status="ok",type="pan"} 1`)
	assert.Contains(t, body, "cooc_graph_nodes 4")
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/nope", "").Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	session, err := interact.NewSession(testutil.QuickStar(2), interact.DefaultOptions())
	require.NoError(t, err)
	s := New(session, Config{Addr: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
