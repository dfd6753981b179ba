package commands

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/inspektor-gadget/website/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Src string `arg:"" type:"existingdir" help:"Directory to watch"`
	Out string `short:"o" required:"" type:"path" help:"Output directory"`
	As  string `help:"Site path used to pick the version (defaults to SRC)"`
}

func (w *WatchCmd) Run(_ *Global, _ *CLI) error {
	if err := renderTree(w.Src, w.Out, w.As); err != nil {
		return err
	}

	watcher, err := watch.New(w.Src, func(context.Context) error {
		return renderTree(w.Src, w.Out, w.As)
	}, watch.WithFilter(outsideDir(w.Out)))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return watcher.Run(ctx)
}

// outsideDir rejects events below dir so rendering into the watched tree
// does not retrigger itself.
func outsideDir(dir string) func(string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil
	}
	prefix := abs + string(filepath.Separator)
	return func(p string) bool {
		return p != abs && !strings.HasPrefix(p, prefix)
	}
}
