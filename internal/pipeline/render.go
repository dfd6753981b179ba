package pipeline

import (
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/inspektor-gadget/website/internal/foundation/errors"
)

// RenderStats summarizes a render.
type RenderStats struct {
	Files        int
	Documents    int
	Placeholders int
}

// RenderFile resolves the placeholders of a single document. sourcePath
// selects the version, e.g. "versioned_docs/version-v0.40.0/install.md".
func RenderFile(content []byte, sourcePath string) ([]byte, int, error) {
	if !IsMarkdownPath(sourcePath) {
		sourcePath += markdownExtension
	}
	doc := &Document{Path: sourcePath, Content: string(content)}
	if _, err := RenderOnly().Process([]*Document{doc}); err != nil {
		return nil, 0, err
	}
	return doc.Raw, doc.Placeholders, nil
}

// RenderDir renders every file below src into out on fs. Markdown files get
// their placeholders resolved, everything else is copied. Placeholders are
// resolved as if the files lived below as; an empty as uses src itself.
// When out lies inside src it is left out of the walk.
func RenderDir(fs afero.Fs, src, out, as string) (RenderStats, error) {
	var stats RenderStats
	if as == "" {
		as = filepath.ToSlash(src)
	}
	outAbs := absPath(out)

	var docs []*Document
	rels := make(map[*Document]string)
	err := afero.Walk(fs, src, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != src && (isHiddenName(info.Name()) || absPath(p) == outAbs) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHiddenName(info.Name()) {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		content, err := afero.ReadFile(fs, p)
		if err != nil {
			return err
		}
		doc := &Document{Path: path.Join(as, filepath.ToSlash(rel)), Content: string(content)}
		docs = append(docs, doc)
		rels[doc] = rel
		return nil
	})
	if err != nil {
		return stats, errors.WrapError(err, errors.CategoryFileSystem, "failed to read render source").
			WithContext("path", src).Build()
	}

	if _, err := RenderOnly().Process(docs); err != nil {
		return stats, err
	}
	for _, doc := range docs {
		target := filepath.Join(out, rels[doc])
		if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return stats, errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").
				WithContext("path", target).Build()
		}
		if err := afero.WriteFile(fs, target, doc.Raw, 0o644); err != nil {
			return stats, errors.WrapError(err, errors.CategoryFileSystem, "failed to write rendered file").
				WithContext("path", target).Build()
		}
		stats.Files++
		if doc.IsMarkdown() {
			stats.Documents++
			stats.Placeholders += doc.Placeholders
		}
	}
	return stats, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func isHiddenName(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
