package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/inspektor-gadget/website/internal/config"
	"github.com/inspektor-gadget/website/internal/events"
	"github.com/inspektor-gadget/website/internal/importer"
	"github.com/inspektor-gadget/website/internal/logfields"
	"github.com/inspektor-gadget/website/internal/metrics"
	"github.com/inspektor-gadget/website/internal/state"
)

// Global is bound into every command's Run method.
type Global struct {
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"igdocs.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Fetch      FetchCmd      `cmd:"" help:"Clone the configured docs repositories and import them into the site"`
	AddVersion AddVersionCmd `cmd:"" name:"add-version" help:"Add a released version to the site config, rotating out the oldest"`
	Render     RenderCmd     `cmd:"" help:"Resolve version placeholders in a file or directory"`
	Watch      WatchCmd      `cmd:"" help:"Re-render a directory whenever it changes"`
	Daemon     DaemonCmd     `cmd:"" help:"Run scheduled imports and serve the admin API"`
	Status     StatusCmd     `cmd:"" help:"Show the import history"`
	Init       InitCmd       `cmd:"" help:"Write an example configuration file"`

	cfg    *config.Config
	cfgErr error
}

// AfterApply runs after flag parsing. It loads the configuration once and
// installs the default logger. A broken configuration only fails the
// commands that need it.
func (c *CLI) AfterApply() error {
	c.cfg, c.cfgErr = config.LoadOrDefault(c.Config)

	logging := config.LoggingConfig{}
	if c.cfgErr == nil {
		logging = c.cfg.Logging
	}
	slog.SetDefault(logging.NewLogger(os.Stderr, c.Verbose))
	return nil
}

// LoadConfig returns the configuration loaded in AfterApply.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if c.cfg == nil && c.cfgErr == nil {
		c.cfg, c.cfgErr = config.LoadOrDefault(c.Config)
	}
	return c.cfg, c.cfgErr
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// importStack bundles the importer with the resources it owns.
type importStack struct {
	importer  *importer.Importer
	store     *state.Store
	publisher events.Publisher
	registry  *prom.Registry
}

// newImportStack wires an importer to the state store, the event publisher and
// a fresh Prometheus registry.
func newImportStack(cfg *config.Config, site *config.SiteConfig) (*importStack, error) {
	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return nil, err
	}
	pub, err := events.NewPublisher(cfg.Events)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	imp := importer.New(cfg, site).
		WithStore(store).
		WithPublisher(pub).
		WithRecorder(metrics.NewPrometheusRecorder(reg))
	return &importStack{importer: imp, store: store, publisher: pub, registry: reg}, nil
}

func (r *importStack) Close() {
	if err := r.publisher.Close(); err != nil {
		slog.Warn("Failed to close event publisher", logfields.Error(err))
	}
	if err := r.store.Close(); err != nil {
		slog.Warn("Failed to close state store", logfields.Error(err))
	}
}
