package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/inspektor-gadget/website/internal/logfields"
)

// DefaultDir is used when no workspace directory is configured.
const DefaultDir = "external-docs"

// Manager owns the clone workspace directory.
type Manager struct {
	dir string
}

// NewManager returns a manager for dir, or DefaultDir when dir is empty.
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = DefaultDir
	}
	return &Manager{dir: dir}
}

// Create ensures the workspace directory exists. Existing clones are kept.
func (m *Manager) Create() error {
	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	slog.Debug("Using workspace", logfields.Path(m.dir))
	return nil
}

// Path returns the workspace directory.
func (m *Manager) Path() string {
	return m.dir
}

// CloneName returns the directory name used for a clone of repo at branch
// imported as version name: the repository base name, an underscore, the
// branch with "/" replaced by "_", then the version name.
func CloneName(repo, branch, name string) string {
	base := path.Base(strings.TrimRight(repo, "/"))
	return base + "_" + strings.ReplaceAll(branch, "/", "_") + name
}

// CloneDir returns the clone directory for the given entry.
func (m *Manager) CloneDir(repo, branch, name string) string {
	return filepath.Join(m.dir, CloneName(repo, branch, name))
}

// Prune removes clone directories whose names are not in keep. It returns the
// removed names. Files and hidden entries are left alone.
func (m *Manager) Prune(keep []string) ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	wanted := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		wanted[k] = struct{}{}
	}
	var removed []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, ok := wanted[e.Name()]; ok {
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.dir, e.Name())); err != nil {
			return removed, fmt.Errorf("remove stale clone %s: %w", e.Name(), err)
		}
		slog.Info("Removed stale clone", logfields.Path(filepath.Join(m.dir, e.Name())))
		removed = append(removed, e.Name())
	}
	return removed, nil
}
