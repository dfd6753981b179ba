package importer

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/inspektor-gadget/website/internal/config"
	"github.com/inspektor-gadget/website/internal/events"
	"github.com/inspektor-gadget/website/internal/foundation/errors"
	"github.com/inspektor-gadget/website/internal/git"
	"github.com/inspektor-gadget/website/internal/logfields"
	"github.com/inspektor-gadget/website/internal/metrics"
	"github.com/inspektor-gadget/website/internal/state"
	"github.com/inspektor-gadget/website/internal/workspace"
)

const (
	versionsFile       = "versions.json"
	latestRoot         = "docs"
	versionedDocsDir   = "versioned_docs"
	versionedSidebars  = "versioned_sidebars"
	versionPrefix      = "version-"
	versionSidebarJSON = `{"mainSidebar": [{"type": "autogenerated","dirName": "."}]}`
)

// Syncer clones or updates a repository. *git.Client implements it.
type Syncer interface {
	Sync(ctx context.Context, url, branch, path string) (git.SyncResult, error)
}

// Store persists the import history. *state.Store implements it.
type Store interface {
	RecordImport(ctx context.Context, imp state.Import) error
	LastImport(ctx context.Context, version string) (state.Import, bool, error)
	ChangedDocuments(ctx context.Context, version string, fingerprints map[string]string) (int, error)
	ReplaceDocuments(ctx context.Context, version string, fingerprints map[string]string) error
}

// Options tune a single run.
type Options struct {
	// Force imports versions even when their commit did not change.
	Force bool
	// Only restricts the run to the named versions.
	Only []string
}

// Result summarizes a run.
type Result struct {
	RunID    string
	Versions []VersionResult
	Duration time.Duration
}

// VersionResult is the outcome of importing one external_docs entry.
type VersionResult struct {
	Version      string
	Root         string
	Commit       string
	Files        int
	Documents    int
	Changed      int
	Placeholders int
	Skipped      bool
	Dirty        bool
	Err          error
}

// Importer runs imports. Configure it with the With* methods before the
// first Run; it is safe to call Run again afterwards, but not concurrently.
type Importer struct {
	cfg  *config.Config
	site *config.SiteConfig

	siteFS    afero.Fs
	sourceFS  afero.Fs
	workspace *workspace.Manager
	git       Syncer
	store     Store
	publisher events.Publisher
	recorder  metrics.Recorder

	mu sync.Mutex
}

// New creates an importer writing below cfg.SiteDir on the local disk.
func New(cfg *config.Config, site *config.SiteConfig) *Importer {
	return &Importer{
		cfg:       cfg,
		site:      site,
		siteFS:    afero.NewBasePathFs(afero.NewOsFs(), cfg.SiteDir),
		sourceFS:  afero.NewOsFs(),
		workspace: workspace.NewManager(cfg.WorkspaceDir),
		git:       git.NewClient(cfg.Git),
		publisher: events.NoopPublisher{},
		recorder:  metrics.NoopRecorder{},
	}
}

// WithFS replaces the site output and clone source filesystems.
func (i *Importer) WithFS(site, source afero.Fs) *Importer {
	i.siteFS = site
	i.sourceFS = source
	return i
}

// WithSyncer replaces the git client.
func (i *Importer) WithSyncer(s Syncer) *Importer {
	i.git = s
	return i
}

// WithStore enables the import history and skip-unchanged.
func (i *Importer) WithStore(s Store) *Importer {
	i.store = s
	return i
}

// WithPublisher sets the event publisher.
func (i *Importer) WithPublisher(p events.Publisher) *Importer {
	i.publisher = p
	return i
}

// WithRecorder sets the metrics recorder.
func (i *Importer) WithRecorder(r metrics.Recorder) *Importer {
	i.recorder = r
	return i
}

// SetSite swaps the site config used by later runs.
func (i *Importer) SetSite(site *config.SiteConfig) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.site = site
}

// Run imports every selected external_docs entry.
func (i *Importer) Run(ctx context.Context, opts Options) (*Result, error) {
	i.mu.Lock()
	site := i.site
	i.mu.Unlock()

	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	log := slog.With(logfields.RunID(res.RunID))

	all := site.ExternalDocs()
	if len(all) == 0 {
		log.Warn("No external docs configured, nothing to import")
		return res, nil
	}
	selected, err := selectDocs(all, opts.Only)
	if err != nil {
		return res, err
	}
	if err := i.workspace.Create(); err != nil {
		return res, errors.WrapError(err, errors.CategoryFileSystem, "failed to prepare workspace").Build()
	}

	concurrency := max(i.cfg.Concurrency, 1)
	i.recorder.SetConcurrency(concurrency)
	log.Info("Starting import", slog.Int("versions", len(selected)), slog.Int("concurrency", concurrency))

	res.Versions = make([]VersionResult, len(selected))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(concurrency).WithCancelOnError().WithFirstError()
	for idx, doc := range selected {
		p.Go(func(ctx context.Context) error {
			vr := i.importVersion(ctx, log, res.RunID, doc, site.HideFolders(), opts.Force)
			res.Versions[idx] = vr
			return vr.Err
		})
	}
	runErr := p.Wait()

	res.Duration = time.Since(start)
	i.recorder.ObserveRunDuration(res.Duration)
	if runErr != nil {
		log.Error("Import failed", logfields.DurationMS(float64(res.Duration.Milliseconds())), logfields.Error(runErr))
		return res, runErr
	}

	if err := i.writeVersions(all); err != nil {
		return res, err
	}
	if len(opts.Only) == 0 {
		i.pruneWorkspace(log, all)
	}
	log.Info("Import finished", logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return res, nil
}

func selectDocs(all []config.ExternalDoc, only []string) ([]config.ExternalDoc, error) {
	if len(only) == 0 {
		return all, nil
	}
	var selected []config.ExternalDoc
	for _, name := range only {
		idx := slices.IndexFunc(all, func(d config.ExternalDoc) bool { return d.Name == name })
		if idx < 0 {
			return nil, errors.NotFoundError("unknown external docs version").
				WithContext("version", name).Build()
		}
		selected = append(selected, all[idx])
	}
	return selected, nil
}

// writeVersions writes versions.json listing every released version.
func (i *Importer) writeVersions(all []config.ExternalDoc) error {
	versions := []string{}
	for _, d := range all {
		if !d.IsLatest() {
			versions = append(versions, d.Name)
		}
	}
	data, err := json.Marshal(versions)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode versions").Build()
	}
	if err := afero.WriteFile(i.siteFS, versionsFile, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write versions.json").Build()
	}
	return nil
}

func (i *Importer) pruneWorkspace(log *slog.Logger, all []config.ExternalDoc) {
	keep := make([]string, 0, len(all))
	for _, d := range all {
		keep = append(keep, workspace.CloneName(d.Repo, d.Branch, d.Name))
	}
	removed, err := i.workspace.Prune(keep)
	if err != nil {
		log.Warn("Failed to prune workspace", logfields.Error(err))
		return
	}
	if len(removed) > 0 {
		log.Info("Pruned stale clones", slog.Int("count", len(removed)))
	}
}

// DestRoot returns the site-relative directory version name is imported to.
func DestRoot(name string) string {
	if name == config.LatestName {
		return latestRoot
	}
	return filepath.ToSlash(filepath.Join(versionedDocsDir, versionPrefix+name))
}

// SidebarPath returns the site-relative versioned sidebar file for name.
func SidebarPath(name string) string {
	return filepath.ToSlash(filepath.Join(versionedSidebars, versionPrefix+name+"-sidebars.json"))
}
