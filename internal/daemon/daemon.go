// Package daemon runs imports on a cron schedule and serves a small admin
// HTTP API for health checks, metrics and the import history.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/inspektor-gadget/website/internal/config"
	ferrors "github.com/inspektor-gadget/website/internal/foundation/errors"
	"github.com/inspektor-gadget/website/internal/importer"
	"github.com/inspektor-gadget/website/internal/logfields"
	"github.com/inspektor-gadget/website/internal/state"
)

const shutdownTimeout = 10 * time.Second

// Runner runs an import. *importer.Importer implements it.
type Runner interface {
	Run(ctx context.Context, opts importer.Options) (*importer.Result, error)
}

// History lists past imports. *state.Store implements it.
type History interface {
	ListImports(ctx context.Context, limit int) ([]state.Import, error)
}

// RunStatus describes the most recent daemon-triggered run.
type RunStatus struct {
	RunID      string    `json:"run_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Trigger    string    `json:"trigger"`
	Error      string    `json:"error,omitempty"`
}

type trigger struct {
	source string
	opts   importer.Options
}

// Daemon schedules imports and serves the admin API.
type Daemon struct {
	cfg      config.DaemonConfig
	runner   Runner
	history  History
	registry *prom.Registry
	errors   *ferrors.HTTPErrorAdapter

	triggers  chan trigger
	running   atomic.Bool
	startedAt time.Time

	mu      sync.RWMutex
	lastRun *RunStatus
}

// New creates a daemon. history and reg may be nil.
func New(cfg config.DaemonConfig, runner Runner, history History, reg *prom.Registry) *Daemon {
	return &Daemon{
		cfg:       cfg,
		runner:    runner,
		history:   history,
		registry:  reg,
		errors:    ferrors.NewHTTPErrorAdapter(nil),
		triggers:  make(chan trigger, 1),
		startedAt: time.Now(),
	}
}

// Trigger queues an import. It returns false when one is already queued.
func (d *Daemon) Trigger(source string, opts importer.Options) bool {
	select {
	case d.triggers <- trigger{source: source, opts: opts}:
		slog.Info("Import queued", slog.String("trigger", source))
		return true
	default:
		slog.Debug("Import already queued", slog.String("trigger", source))
		return false
	}
}

// LastRun returns the most recent run, or nil before the first one.
func (d *Daemon) LastRun() *RunStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.lastRun == nil {
		return nil
	}
	rs := *d.lastRun
	return &rs
}

// Run starts the scheduler, the admin server and the import worker, and
// blocks until ctx is done. An initial import is queued at startup.
func (d *Daemon) Run(ctx context.Context) error {
	scheduler, err := d.newScheduler()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", d.cfg.Listen)
	if err != nil {
		_ = scheduler.Shutdown()
		return ferrors.DaemonError("failed to listen").WithCause(err).
			WithContext("listen", d.cfg.Listen).Build()
	}
	srv := &http.Server{
		Handler:      d.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Admin server listening", slog.String("listen", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	scheduler.Start()
	slog.Info("Scheduler started", logfields.Schedule(d.cfg.Schedule))
	d.Trigger("startup", importer.Options{})

	var workerDone sync.WaitGroup
	workerDone.Add(1)
	go func() {
		defer workerDone.Done()
		d.work(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = ferrors.DaemonError("admin server failed").WithCause(err).Build()
		}
	}

	slog.Info("Shutting down daemon")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Admin server shutdown failed", logfields.Error(err))
	}
	if err := scheduler.Shutdown(); err != nil {
		slog.Warn("Scheduler shutdown failed", logfields.Error(err))
	}
	workerDone.Wait()
	return runErr
}

func (d *Daemon) newScheduler() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.CronJob(d.cfg.Schedule, false),
		gocron.NewTask(func() { d.Trigger("schedule", importer.Options{}) }),
		gocron.WithName("scheduled-import"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid daemon.schedule").
			WithContext("schedule", d.cfg.Schedule).Fatal().Build()
	}
	return s, nil
}

// work runs queued imports one at a time until ctx is done.
func (d *Daemon) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-d.triggers:
			d.runOnce(ctx, t)
		}
	}
}

func (d *Daemon) runOnce(ctx context.Context, t trigger) {
	d.running.Store(true)
	defer d.running.Store(false)

	rs := &RunStatus{StartedAt: time.Now(), Trigger: t.source}
	res, err := d.runner.Run(ctx, t.opts)
	rs.FinishedAt = time.Now()
	if res != nil {
		rs.RunID = res.RunID
	}
	if err != nil {
		rs.Error = err.Error()
		slog.Error("Scheduled import failed", slog.String("trigger", t.source), logfields.Error(err))
	}

	d.mu.Lock()
	d.lastRun = rs
	d.mu.Unlock()
}
