package pipeline

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/inspektor-gadget/website/internal/foundation/errors"
)

// Writer persists processed documents below the root of an afero filesystem.
type Writer struct {
	fs afero.Fs
}

// NewWriter creates a writer for fs, usually an afero.BasePathFs rooted at
// the site directory.
func NewWriter(fs afero.Fs) *Writer {
	return &Writer{fs: fs}
}

// Write writes every document that is not skipped and returns how many were
// written.
func (w *Writer) Write(docs []*Document) (int, error) {
	written := 0
	for _, doc := range docs {
		if doc.Skip {
			continue
		}
		target := filepath.FromSlash(doc.Path)
		if err := w.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").
				WithContext("path", doc.Path).Build()
		}
		if err := afero.WriteFile(w.fs, target, doc.Raw, 0o644); err != nil {
			return written, errors.WrapError(err, errors.CategoryFileSystem, "failed to write document").
				WithContext("path", doc.Path).Build()
		}
		written++
	}
	return written, nil
}
