package commands

import (
	"fmt"
	"io"

	"github.com/inspektor-gadget/website/internal/config"
	"github.com/inspektor-gadget/website/internal/importer"
)

// FetchCmd implements the 'fetch' command.
type FetchCmd struct {
	Force bool     `help:"Import versions even when their commit did not change"`
	Only  []string `help:"Import only the named versions" placeholder:"NAME"`
}

func (f *FetchCmd) Run(g *Global, root *CLI) error {
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

	res, err := rt.importer.Run(ctx, importer.Options{Force: f.Force, Only: f.Only})
	printResult(g.Stdout, res)
	return err
}

func printResult(w io.Writer, res *importer.Result) {
	if res == nil {
		return
	}
	for _, vr := range res.Versions {
		switch {
		case vr.Err != nil:
			_, _ = fmt.Fprintf(w, "%-10s failed: %v\n", vr.Version, vr.Err)
		case vr.Skipped:
			_, _ = fmt.Fprintf(w, "%-10s unchanged at %s\n", vr.Version, short(vr.Commit))
		default:
			_, _ = fmt.Fprintf(w, "%-10s %d documents, %d changed, %d placeholders -> %s\n",
				vr.Version, vr.Documents, vr.Changed, vr.Placeholders, vr.Root)
		}
	}
}

func short(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
