package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inspektor-gadget/website/internal/config"
	"github.com/inspektor-gadget/website/internal/foundation/errors"
	"github.com/inspektor-gadget/website/internal/importer"
	"github.com/inspektor-gadget/website/internal/metrics"
	"github.com/inspektor-gadget/website/internal/state"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []importer.Options
	ran   chan struct{}
	err   error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{ran: make(chan struct{}, 10)}
}

func (f *fakeRunner) Run(_ context.Context, opts importer.Options) (*importer.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()
	f.ran <- struct{}{}
	return &importer.Result{RunID: "run-1"}, f.err
}

type fakeHistory struct {
	imports []state.Import
	limit   int
}

func (f *fakeHistory) ListImports(_ context.Context, limit int) ([]state.Import, error) {
	f.limit = limit
	return f.imports, nil
}

func testConfig() config.DaemonConfig {
	return config.DaemonConfig{Schedule: "0 0 1 1 *", Listen: "127.0.0.1:0"}
}

func TestHandler_Health(t *testing.T) {
	d := New(testConfig(), newFakeRunner(), nil, nil)

	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "0 0 1 1 *", health.Schedule)
	assert.False(t, health.Running)
	assert.Nil(t, health.LastRun)
}

func TestHandler_ListImports(t *testing.T) {
	history := &fakeHistory{imports: []state.Import{{RunID: "r1", Version: "latest", Status: state.StatusSuccess}}}
	d := New(testConfig(), newFakeRunner(), history, nil)

	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/imports?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, history.limit)

	var got []state.Import
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].RunID)

	rec = httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/imports?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp errors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, string(errors.CategoryValidation), errResp.Code)
}

func TestHandler_ListImportsWithoutHistory(t *testing.T) {
	d := New(testConfig(), newFakeRunner(), nil, nil)
	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/imports", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_TriggerImport(t *testing.T) {
	d := New(testConfig(), newFakeRunner(), nil, nil)
	h := d.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/imports", strings.NewReader(`{"force": true, "only": ["latest"]}`)))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"queued": true}`, rec.Body.String())

	queued := <-d.triggers
	assert.Equal(t, importer.Options{Force: true, Only: []string{"latest"}}, queued.opts)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/imports", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/imports", nil))
	assert.JSONEq(t, `{"queued": false}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/imports", strings.NewReader(`{not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Metrics(t *testing.T) {
	reg := prom.NewRegistry()
	metrics.NewPrometheusRecorder(reg).SetConcurrency(3)
	d := New(testConfig(), newFakeRunner(), nil, reg)

	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "igdocs_import_concurrency 3")
}

func TestRun_ImportsAtStartupAndStops(t *testing.T) {
	runner := newFakeRunner()
	d := New(testConfig(), runner, nil, nil)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	select {
	case <-runner.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("startup import did not run")
	}
	require.Eventually(t, func() bool { return d.LastRun() != nil }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "startup", d.LastRun().Trigger)
	assert.Equal(t, "run-1", d.LastRun().RunID)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestRun_InvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Schedule = "every now and then"
	err := New(cfg, newFakeRunner(), nil, nil).Run(t.Context())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestRun_ListenFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Listen = "127.0.0.1:not-a-port"
	err := New(cfg, newFakeRunner(), nil, nil).Run(t.Context())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryDaemon))
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := requestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/imports", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Admin request", entry["msg"])
	assert.Equal(t, http.MethodPost, entry["method"])
	assert.Equal(t, "/imports", entry["path"])
	assert.InDelta(t, float64(http.StatusTeapot), entry["status"], 0)
}
