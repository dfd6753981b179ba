package commands

import (
	"context"
	"log/slog"

	"github.com/inspektor-gadget/website/internal/config"
	"github.com/inspektor-gadget/website/internal/daemon"
	"github.com/inspektor-gadget/website/internal/importer"
	"github.com/inspektor-gadget/website/internal/logfields"
	"github.com/inspektor-gadget/website/internal/watch"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	NoWatch bool `help:"Do not reload the site config when it changes"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	site, err := config.LoadSite(cfg.SiteConfig)
	if err != nil {
		return err
	}
	rt, err := newImportStack(cfg, site)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signalContext()
	defer cancel()

	dm := daemon.New(cfg.Daemon, rt.importer, rt.store, rt.registry)

	if !d.NoWatch {
		w, err := watch.New(cfg.SiteConfig, reloadSite(cfg.SiteConfig, rt.importer, dm))
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				slog.Error("Site config watcher stopped", logfields.Error(err))
			}
		}()
	}

	slog.Info("Starting daemon",
		logfields.Schedule(cfg.Daemon.Schedule),
		slog.String("listen", cfg.Daemon.Listen))
	return dm.Run(ctx)
}

// reloadSite re-reads the site config and queues an import with it. An
// invalid file keeps the previous config.
func reloadSite(path string, imp *importer.Importer, dm *daemon.Daemon) watch.ChangeFunc {
	return func(context.Context) error {
		site, err := config.LoadSite(path)
		if err != nil {
			return err
		}
		imp.SetSite(site)
		slog.Info("Site config reloaded", logfields.File(path), slog.Int("versions", len(site.ExternalDocs())))
		dm.Trigger("config", importer.Options{})
		return nil
	}
}
