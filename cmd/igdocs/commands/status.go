package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/inspektor-gadget/website/internal/state"
)

// StatusCmd implements the 'status' command.
type StatusCmd struct {
	Limit int `short:"n" default:"20" help:"Number of imports to show (0 for all)"`
}

func (s *StatusCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	imports, err := store.ListImports(context.Background(), s.Limit)
	if err != nil {
		return err
	}
	if len(imports) == 0 {
		_, _ = fmt.Fprintln(g.Stdout, "No imports recorded")
		return nil
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tVERSION\tSTATUS\tCOMMIT\tDOCS\tCHANGED\tPLACEHOLDERS\tDURATION")
	for _, imp := range imports {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			imp.StartedAt.Local().Format("2006-01-02 15:04:05"),
			imp.Version,
			statusText(imp.Status),
			short(imp.Commit),
			imp.Documents,
			imp.Changed,
			imp.Placeholders,
			imp.Duration().Round(time.Millisecond),
		)
	}
	return tw.Flush()
}

func statusText(s state.Status) string {
	switch s {
	case state.StatusSuccess:
		return color.New(color.FgGreen).Sprint(string(s))
	case state.StatusFailed:
		return color.New(color.FgRed).Sprint(string(s))
	default:
		return color.New(color.FgYellow).Sprint(string(s))
	}
}
