package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/inspektor-gadget/website/internal/config"
	"github.com/inspektor-gadget/website/internal/events"
	"github.com/inspektor-gadget/website/internal/foundation/errors"
	"github.com/inspektor-gadget/website/internal/git"
	"github.com/inspektor-gadget/website/internal/logfields"
	"github.com/inspektor-gadget/website/internal/metrics"
	"github.com/inspektor-gadget/website/internal/pipeline"
	"github.com/inspektor-gadget/website/internal/state"
)

// importVersion imports one external_docs entry. Failures are recorded and
// returned in the result.
func (i *Importer) importVersion(ctx context.Context, log *slog.Logger, runID string, doc config.ExternalDoc, hidden []string, force bool) VersionResult {
	start := time.Now()
	log = log.With(logfields.Version(doc.Name), logfields.Repository(doc.Repo), logfields.Branch(doc.Branch))
	vr := VersionResult{Version: doc.Name, Root: DestRoot(doc.Name)}

	cloneDir := i.workspace.CloneDir(doc.Repo, doc.Branch, doc.Name)
	sync, err := i.git.Sync(ctx, doc.Repo, doc.Branch, cloneDir)
	i.recorder.ObserveCloneDuration(doc.Name, time.Since(start), cloneResult(sync, err))
	if err != nil {
		vr.Err = err
		i.finish(ctx, log, runID, doc, start, &vr)
		return vr
	}
	vr.Commit = sync.Commit
	vr.Dirty = sync.Dirty

	if !force && i.unchanged(ctx, log, doc.Name, sync.Commit, vr.Root) {
		vr.Skipped = true
		i.finish(ctx, log, runID, doc, start, &vr)
		return vr
	}

	vr.Err = i.copyVersion(ctx, filepath.Join(cloneDir, doc.Dir), doc, hidden, &vr)
	i.finish(ctx, log, runID, doc, start, &vr)
	return vr
}

func cloneResult(res git.SyncResult, err error) metrics.CloneResultLabel {
	switch {
	case err != nil:
		return metrics.CloneFailed
	case res.Cloned:
		return metrics.CloneCloned
	case res.Dirty:
		return metrics.CloneDirty
	case res.Updated:
		return metrics.CloneUpdated
	default:
		return metrics.CloneUnchanged
	}
}

// unchanged reports whether the last import of version succeeded on the same
// commit and its output is still in place. A failed import may have left the
// version root half written, so it never counts.
func (i *Importer) unchanged(ctx context.Context, log *slog.Logger, version, commit, root string) bool {
	if i.store == nil || commit == "" {
		return false
	}
	last, ok, err := i.store.LastImport(ctx, version)
	if err != nil {
		log.Warn("Failed to read import history", logfields.Error(err))
		return false
	}
	if !ok || last.Status != state.StatusSuccess || last.Commit != commit {
		return false
	}
	exists, err := afero.DirExists(i.siteFS, root)
	if err != nil || !exists {
		return false
	}
	log.Info("Version unchanged since last import, skipping", logfields.Commit(short(commit)))
	return true
}

// copyVersion replaces the version root with the converted contents of src.
func (i *Importer) copyVersion(ctx context.Context, src string, doc config.ExternalDoc, hidden []string, vr *VersionResult) error {
	if ok, _ := afero.DirExists(i.sourceFS, src); !ok {
		return errors.NotFoundError("docs directory not found in repository").
			WithContext("version", doc.Name).
			WithContext("dir", doc.Dir).
			Build()
	}

	docs, err := i.collect(ctx, src, vr.Root, doc.Name, hidden)
	if err != nil {
		return err
	}
	processed, err := pipeline.NewProcessor().Process(docs)
	if err != nil {
		return err
	}

	if err := i.siteFS.RemoveAll(vr.Root); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove previous import").
			WithContext("path", vr.Root).Build()
	}
	written, err := pipeline.NewWriter(i.siteFS).Write(processed)
	if err != nil {
		return err
	}
	vr.Files = written

	if !doc.IsLatest() {
		if err := i.writeSidebar(doc.Name); err != nil {
			return err
		}
	}

	fingerprints := make(map[string]string)
	for _, d := range pipeline.Output(processed) {
		if d.Fingerprint == "" {
			continue
		}
		vr.Documents++
		vr.Placeholders += d.Placeholders
		fingerprints[d.Path] = d.Fingerprint
	}
	vr.Changed = vr.Documents
	if i.store != nil {
		changed, err := i.store.ChangedDocuments(ctx, doc.Name, fingerprints)
		if err != nil {
			return errors.StateError("failed to compare document fingerprints").WithCause(err).Build()
		}
		vr.Changed = changed
		if err := i.store.ReplaceDocuments(ctx, doc.Name, fingerprints); err != nil {
			return errors.StateError("failed to store document fingerprints").WithCause(err).Build()
		}
	}
	return nil
}

// collect reads every file below src, skipping .git and the hidden folders,
// into pipeline documents rooted at root.
func (i *Importer) collect(ctx context.Context, src, root, version string, hidden []string) ([]*pipeline.Document, error) {
	var docs []*pipeline.Document
	err := afero.Walk(i.sourceFS, src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" || isHidden(rel, hidden) {
				slog.Debug("Skipping folder", logfields.Path(rel), logfields.Version(version))
				return filepath.SkipDir
			}
			return nil
		}
		content, err := afero.ReadFile(i.sourceFS, p)
		if err != nil {
			return err
		}
		docs = append(docs, pipeline.NewDocument(root, rel, version, content))
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read docs").
			WithContext("path", src).Build()
	}
	return docs, nil
}

func isHidden(rel string, hidden []string) bool {
	return slices.ContainsFunc(hidden, func(h string) bool {
		h = strings.Trim(filepath.ToSlash(h), "/")
		return h != "" && (rel == h || strings.HasPrefix(rel, h+"/"))
	})
}

func (i *Importer) writeSidebar(version string) error {
	target := SidebarPath(version)
	if err := i.siteFS.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create sidebars directory").Build()
	}
	if err := afero.WriteFile(i.siteFS, target, []byte(versionSidebarJSON), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write versioned sidebar").
			WithContext("path", target).Build()
	}
	return nil
}

// finish records the outcome of a version import in logs, metrics, the
// state store and the event stream.
func (i *Importer) finish(ctx context.Context, log *slog.Logger, runID string, doc config.ExternalDoc, start time.Time, vr *VersionResult) {
	finished := time.Now()
	duration := finished.Sub(start)

	status := state.StatusSuccess
	outcome := metrics.OutcomeSuccess
	switch {
	case vr.Err != nil && ctx.Err() != nil:
		status, outcome = state.StatusFailed, metrics.OutcomeCanceled
	case vr.Err != nil:
		status, outcome = state.StatusFailed, metrics.OutcomeFailed
	case vr.Skipped:
		status, outcome = state.StatusSkipped, metrics.OutcomeSkipped
	}

	i.recorder.ObserveImportDuration(doc.Name, duration)
	i.recorder.IncImportOutcome(doc.Name, outcome)
	i.recorder.AddDocuments(doc.Name, vr.Documents)
	i.recorder.AddPlaceholders(doc.Name, vr.Placeholders)

	errText := ""
	if vr.Err != nil {
		errText = vr.Err.Error()
		log.Error("Version import failed", logfields.DurationMS(float64(duration.Milliseconds())), logfields.Error(vr.Err))
	} else if !vr.Skipped {
		log.Info("Version imported",
			logfields.Commit(short(vr.Commit)),
			logfields.Documents(vr.Documents),
			logfields.Placeholders(vr.Placeholders),
			slog.Int("changed", vr.Changed),
			logfields.DurationMS(float64(duration.Milliseconds())))
	}

	// Bookkeeping must not be lost when the run was canceled.
	bg := context.WithoutCancel(ctx)
	if i.store != nil {
		err := i.store.RecordImport(bg, state.Import{
			RunID:        runID,
			Version:      doc.Name,
			Repo:         doc.Repo,
			Branch:       doc.Branch,
			Commit:       vr.Commit,
			Documents:    vr.Documents,
			Changed:      vr.Changed,
			Placeholders: vr.Placeholders,
			StartedAt:    start,
			FinishedAt:   finished,
			Status:       status,
			Error:        errText,
		})
		if err != nil {
			log.Warn("Failed to record import", logfields.Error(err))
		}
	}
	err := i.publisher.Publish(bg, events.ImportEvent{
		RunID:     runID,
		Version:   doc.Name,
		Commit:    vr.Commit,
		Documents: vr.Documents,
		Changed:   vr.Changed,
		Status:    string(status),
		Error:     errText,
		Timestamp: finished.UTC(),
	})
	if err != nil {
		log.Warn("Failed to publish import event", logfields.Error(err))
	}
}

func short(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
