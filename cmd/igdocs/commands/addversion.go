package commands

import (
	"fmt"

	"github.com/inspektor-gadget/website/internal/config"
)

// AddVersionCmd implements the 'add-version' command.
type AddVersionCmd struct {
	Version string `arg:"" help:"Released version, e.g. v0.41.0"`
	Max     int    `help:"Maximum number of versions kept in the site config (defaults to max_versions)"`
}

func (a *AddVersionCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	maxVersions := a.Max
	if maxVersions <= 0 {
		maxVersions = cfg.MaxVersions
	}
	if err := config.AddVersion(cfg.SiteConfig, a.Version, maxVersions); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Added %s to %s\n", a.Version, cfg.SiteConfig)
	return nil
}
