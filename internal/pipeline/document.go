// Package pipeline converts imported Markdown documents into the site's
// Docusaurus layout and resolves version placeholders.
package pipeline

import (
	"path"
	"strings"

	"github.com/inspektor-gadget/website/internal/frontmatter"
)

const (
	hugoIndexName     = "_index.md"
	indexName         = "index.md"
	categoryFileName  = "_category_.yaml"
	markdownExtension = ".md"
	mdxExtension      = ".mdx"
)

// Document represents a file being processed through the content pipeline.
type Document struct {
	// Path is the slash separated output path relative to the site root,
	// e.g. "versioned_docs/version-v0.40.0/reference/run.md".
	Path string
	// Root is the version root Path lives under, e.g. "docs".
	Root string
	// Version is the external_docs name the document was imported for.
	Version string

	// Content is the Markdown body, transformed in place.
	Content string

	// RawFrontMatter is the frontmatter without delimiters. Transforms edit
	// it line by line so untouched keys keep their exact bytes.
	RawFrontMatter []byte
	// FrontMatter is RawFrontMatter decoded when the document was parsed.
	FrontMatter    map[string]any
	HadFrontMatter bool
	Style          frontmatter.Style

	parsed bool

	// Generated is set for documents created by a transform.
	Generated bool
	// Skip drops the document from the output.
	Skip bool

	// Placeholders is the number of payloads the placeholder pass changed.
	Placeholders int
	// Fingerprint is the mdfp fingerprint of the final document.
	Fingerprint string

	// Raw is the serialized output.
	Raw []byte
}

// NewDocument creates a document for the file at rel below root.
func NewDocument(root, rel, version string, content []byte) *Document {
	return &Document{
		Path:    path.Join(root, rel),
		Root:    root,
		Version: version,
		Content: string(content),
	}
}

// Rel returns the path relative to the version root.
func (d *Document) Rel() string {
	if d.Root == "" {
		return d.Path
	}
	return strings.TrimPrefix(d.Path, d.Root+"/")
}

// Name returns the file name.
func (d *Document) Name() string { return path.Base(d.Path) }

// IsHugoIndex reports whether the document is a Hugo section index.
func (d *Document) IsHugoIndex() bool { return d.Name() == hugoIndexName }

// IsRootIndex reports whether the document is the version root index page.
func (d *Document) IsRootIndex() bool { return d.Rel() == indexName }

// IsMarkdown reports whether the document goes through the Markdown transforms.
func (d *Document) IsMarkdown() bool { return IsMarkdownPath(d.Path) }

// IsMarkdownPath reports whether p names a .md or .mdx file.
func IsMarkdownPath(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == markdownExtension || ext == mdxExtension
}

// FileTransform modifies a document in the pipeline. It may return new
// documents, which are queued and run through every transform.
// Generated documents must not create new documents.
type FileTransform func(doc *Document) ([]*Document, error)
