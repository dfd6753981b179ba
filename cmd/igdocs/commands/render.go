package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/inspektor-gadget/website/internal/foundation/errors"
	"github.com/inspektor-gadget/website/internal/logfields"
	"github.com/inspektor-gadget/website/internal/pipeline"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Path string `arg:"" help:"Markdown file or directory to render"`
	Out  string `short:"o" help:"Output file or directory (stdout for a single file when empty)"`
	As   string `help:"Site path used to pick the version, e.g. versioned_docs/version-v0.40.0 (defaults to PATH)"`
}

func (r *RenderCmd) Run(g *Global, _ *CLI) error {
	info, err := os.Stat(r.Path)
	if err != nil {
		return errors.FileSystemError("failed to stat render path").WithCause(err).
			WithContext("path", r.Path).Build()
	}
	if info.IsDir() {
		return r.renderDir()
	}
	return r.renderFile(g)
}

func (r *RenderCmd) renderFile(g *Global) error {
	content, err := os.ReadFile(r.Path)
	if err != nil {
		return errors.FileSystemError("failed to read file").WithCause(err).
			WithContext("path", r.Path).Build()
	}
	as := r.As
	if as == "" {
		as = filepath.ToSlash(r.Path)
	}
	out, n, err := pipeline.RenderFile(content, as)
	if err != nil {
		return err
	}
	if r.Out == "" {
		_, err := g.Stdout.Write(out)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.Out), 0o755); err != nil {
		return errors.FileSystemError("failed to create output directory").WithCause(err).
			WithContext("path", r.Out).Build()
	}
	if err := os.WriteFile(r.Out, out, 0o644); err != nil {
		return errors.FileSystemError("failed to write output").WithCause(err).
			WithContext("path", r.Out).Build()
	}
	slog.Info("Rendered file", logfields.File(r.Out), logfields.Placeholders(n))
	return nil
}

func (r *RenderCmd) renderDir() error {
	if r.Out == "" {
		return errors.ValidationError("--out is required when rendering a directory").
			WithContext("path", r.Path).Build()
	}
	return renderTree(r.Path, r.Out, r.As)
}

func renderTree(src, out, as string) error {
	stats, err := pipeline.RenderDir(afero.NewOsFs(), src, out, as)
	if err != nil {
		return err
	}
	slog.Info("Rendered directory",
		logfields.Path(out),
		slog.Int("files", stats.Files),
		logfields.Documents(stats.Documents),
		logfields.Placeholders(stats.Placeholders))
	return nil
}
