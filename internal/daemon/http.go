package daemon

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	ferrors "github.com/inspektor-gadget/website/internal/foundation/errors"
	"github.com/inspektor-gadget/website/internal/importer"
	"github.com/inspektor-gadget/website/internal/logfields"
	"github.com/inspektor-gadget/website/internal/metrics"
	"github.com/inspektor-gadget/website/internal/state"
	"github.com/inspektor-gadget/website/internal/version"
)

const defaultHistoryLimit = 20

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string     `json:"status"`
	Version  string     `json:"version"`
	Uptime   string     `json:"uptime"`
	Schedule string     `json:"schedule"`
	Running  bool       `json:"running"`
	LastRun  *RunStatus `json:"last_run,omitempty"`
}

// TriggerRequest is the optional body of POST /imports.
type TriggerRequest struct {
	Force bool     `json:"force"`
	Only  []string `json:"only"`
}

// TriggerResponse is the body of a POST /imports response.
type TriggerResponse struct {
	Queued bool `json:"queued"`
}

// Handler returns the admin API router.
func (d *Daemon) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(slog.Default()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", d.handleHealth)
	r.Get("/imports", d.handleListImports)
	r.Post("/imports", d.handleTriggerImport)
	r.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(d.registry))
	return r
}

// requestLogger logs every admin request at debug level.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.LogAttrs(r.Context(), slog.LevelDebug, "Admin request",
				logfields.Method(r.Method),
				logfields.Path(r.URL.Path),
				logfields.Status(ww.Status()),
				logfields.DurationMS(float64(time.Since(start).Milliseconds())),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (d *Daemon) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  version.Version,
		Uptime:   time.Since(d.startedAt).Truncate(time.Second).String(),
		Schedule: d.cfg.Schedule,
		Running:  d.running.Load(),
		LastRun:  d.LastRun(),
	})
}

func (d *Daemon) handleListImports(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			d.errors.WriteErrorResponse(w, r, ferrors.ValidationError("limit must be a non-negative integer").
				WithContext("limit", raw).Build())
			return
		}
		limit = n
	}
	if d.history == nil {
		writeJSON(w, http.StatusOK, []state.Import{})
		return
	}
	imports, err := d.history.ListImports(r.Context(), limit)
	if err != nil {
		d.errors.WriteErrorResponse(w, r, ferrors.StateError("failed to read import history").WithCause(err).Build())
		return
	}
	if imports == nil {
		imports = []state.Import{}
	}
	writeJSON(w, http.StatusOK, imports)
}

func (d *Daemon) handleTriggerImport(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		d.errors.WriteErrorResponse(w, r, ferrors.ValidationError("invalid request body").WithCause(err).Build())
		return
	}
	queued := d.Trigger("api", importer.Options{Force: req.Force, Only: req.Only})
	writeJSON(w, http.StatusAccepted, TriggerResponse{Queued: queued})
}
