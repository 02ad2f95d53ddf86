package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/annel0/voxel-pathlab/internal/eventbus"
	"github.com/annel0/voxel-pathlab/internal/harness"
	"github.com/annel0/voxel-pathlab/internal/render"
	"github.com/annel0/voxel-pathlab/internal/route"
	"github.com/annel0/voxel-pathlab/internal/scenario"
	"github.com/annel0/voxel-pathlab/internal/solver"
	"github.com/annel0/voxel-pathlab/internal/storage"
	"github.com/annel0/voxel-pathlab/internal/vec"
	"github.com/annel0/voxel-pathlab/internal/world"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	rest     *RestServer
	scene    *render.Scene
	history  *storage.MemoryHistory
	webhooks *OutboundWebhookManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	scene := render.NewScene()
	history := storage.NewMemoryHistory(50)

	found := solver.SolverFunc(func(_ context.Context, req solver.Request) (solver.Outcome, error) {
		path := []vec.Vec3{req.Start(), req.Goal()}
		return solver.Outcome{Kind: solver.Found, Result: route.Result{Path: path}, Stats: solver.Stats{PathLength: len(path)}}, nil
	})

	session, err := harness.NewSession(harness.Config{
		World:      world.NewWorld(scene),
		Catalog:    scenario.Default(),
		Algorithms: solver.DefaultAlgorithms(),
		Solver:     found,
		History:    history,
	})
	require.NoError(t, err)
	session.Run(context.Background())
	t.Cleanup(session.Stop)

	webhooks := NewOutboundWebhookManager("test")
	webhooks.retryDelay = time.Millisecond
	t.Cleanup(webhooks.Close)

	rest := NewRestServer(Config{
		Session:  session,
		History:  history,
		Loop:     render.NewLoop(scene, 60),
		Webhooks: webhooks,
		Registry: prometheus.NewRegistry(),
		Service:  "pathlab_test",
	})
	return &testServer{rest: rest, scene: scene, history: history, webhooks: webhooks}
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.rest.Handler().ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestScenarioEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []scenarioView
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, scenario.Default().Len())
	assert.Equal(t, "simple", list[0].Key)

	w, env = ts.do(t, http.MethodPost, "/api/scenarios/volcano", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Zero(t, ts.scene.Len(), "неизвестный сценарий не трогает мир")

	w, _ = ts.do(t, http.MethodPost, "/api/scenarios/maze", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotZero(t, ts.scene.Len())
}

func TestFindPathEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodPost, "/api/find-path", `{"algorithm":"astar"}`)
	assert.Equal(t, http.StatusConflict, w.Code, "сценарий ещё не загружен")

	ts.do(t, http.MethodPost, "/api/scenarios/simple", "")

	w, _ = ts.do(t, http.MethodPost, "/api/find-path", `{"algorithm":"warp"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := ts.do(t, http.MethodPost, "/api/find-path", `{"algorithm":"ida","maxIterations":50,"heuristicType":"chebyshev"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var rep harness.Report
	require.NoError(t, json.Unmarshal(env.Data, &rep))
	assert.Equal(t, harness.StatusPathFound, rep.Status)
	assert.Equal(t, "Heuristic: chebyshev, Max Iterations: 50", rep.Options)
	assert.Equal(t, 2, rep.Marked)

	w, env = ts.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st harness.State
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, "simple", st.Scenario)
	assert.Equal(t, 2, st.Markers)

	w, _ = ts.do(t, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	_, env = ts.do(t, http.MethodGet, "/api/status", "")
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Zero(t, st.Markers)
}

func TestCompareEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/scenarios/algorithmComparison", "")

	w, env := ts.do(t, http.MethodPost, "/api/compare", `{"algorithms":["astar","greedy"],"avoidWater":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var cmp harness.Comparison
	require.NoError(t, json.Unmarshal(env.Data, &cmp))
	require.Len(t, cmp.Results, 2)
	assert.Equal(t, "Greedy Best-First", cmp.Results[1].Name)
}

func TestWorldSnapshotIsCompressed(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/scenarios/simple", "")

	w, env := ts.do(t, http.MethodGet, "/api/world", "")
	require.Equal(t, http.StatusOK, w.Code)
	var dump struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dump))

	req := httptest.NewRequest(http.MethodGet, "/api/world/snapshot", nil)
	rec := httptest.NewRecorder()
	ts.rest.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zstd", rec.Header().Get("Content-Type"))

	var blocks []world.Entry
	require.NoError(t, storage.DecodeJSON(rec.Body.Bytes(), &blocks))
	assert.Len(t, blocks, dump.Count)
}

func TestHistoryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/scenarios/simple", "")
	ts.do(t, http.MethodPost, "/api/find-path", `{"algorithm":"bfs"}`)
	ts.do(t, http.MethodPost, "/api/find-path", `{"algorithm":"dijkstra"}`)

	for _, q := range []string{"abc", "0", "-1", "1001"} {
		w, _ := ts.do(t, http.MethodGet, "/api/history?limit="+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}

	w, env := ts.do(t, http.MethodGet, "/api/history?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Runs  []storage.Run `json:"runs"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Runs, 1)
	assert.Equal(t, "dijkstra", page.Runs[0].Algorithm)
	assert.Equal(t, 2, page.Total)
}

func TestHealthAndServerInfo(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := ts.do(t, http.MethodGet, "/api/server", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info ServerInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "running", info.Status)
	assert.Positive(t, info.Goroutines)

	w, _ = ts.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pathlab_test_http_request_duration_seconds")
}

func TestOutboundWebhookDelivery(t *testing.T) {
	ts := newTestServer(t)

	received := make(chan *http.Request, 1)
	bodies := make(chan []byte, 1)
	receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- r
		bodies <- body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer receiver.Close()

	payload := `{"name":"ci","url":"` + receiver.URL + `","secret":"s3cret","events":["PathResolved"]}`
	w, _ := ts.do(t, http.MethodPost, "/api/webhooks", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/webhooks", `{"name":"broken"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Событие другого типа не доставляется
	other, err := eventbus.NewEnvelope("test", eventbus.EventWorldReset, map[string]string{})
	require.NoError(t, err)
	ts.webhooks.Enqueue(other)

	ev, err := eventbus.NewEnvelope("test", eventbus.EventPathResolved, map[string]string{"status": "path_found"})
	require.NoError(t, err)
	ts.webhooks.Enqueue(ev)

	select {
	case r := <-received:
		body := <-bodies
		assert.Equal(t, eventbus.EventPathResolved, r.Header.Get("X-Event-Type"))
		assert.Equal(t, generateSignature(body, "s3cret"), r.Header.Get("X-Webhook-Signature"))

		var got eventbus.Envelope
		require.NoError(t, json.NewDecoder(bytes.NewReader(body)).Decode(&got))
		assert.Equal(t, ev.ID, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook не получил событие")
	}

	require.Eventually(t, func() bool {
		hooks := ts.webhooks.GetWebhooks()
		return len(hooks) == 1 && hooks[0].Delivered == 1
	}, time.Second, 10*time.Millisecond)

	w, _ = ts.do(t, http.MethodDelete, "/api/webhooks/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = ts.do(t, http.MethodDelete, "/api/webhooks/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSceneStreamSendsCurrentFrame(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/scenarios/simple", "")

	srv := httptest.NewServer(ts.rest.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/scene"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame render.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.NotEmpty(t, frame.Meshes)
	assert.LessOrEqual(t, len(frame.Meshes), ts.scene.Len())
}
