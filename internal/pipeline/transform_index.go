package pipeline

import (
	"log/slog"
	"path"
	"strings"

	"github.com/inspektor-gadget/website/internal/frontmatter"
	"github.com/inspektor-gadget/website/internal/logfields"
)

// convertIndex turns Hugo section indexes into their Docusaurus equivalent.
// An _index.md with body content becomes index.md. One without content is
// replaced by a generated _category_.yaml so Docusaurus renders a
// generated index page for the section.
func convertIndex(doc *Document) ([]*Document, error) {
	if !doc.IsHugoIndex() {
		return nil, nil
	}

	if hasBodyContent(doc.Content) {
		doc.Path = path.Join(path.Dir(doc.Path), indexName)
		return nil, nil
	}

	category, err := categoryDocument(doc)
	if err != nil {
		return nil, err
	}
	slog.Debug("Converted section index to category", logfields.Path(category.Path))
	doc.Skip = true
	return []*Document{category}, nil
}

// hasBodyContent reports whether body holds anything besides whitespace.
func hasBodyContent(body string) bool {
	return strings.TrimSpace(body) != ""
}

// categoryDocument builds the _category_.yaml replacing an empty _index.md.
func categoryDocument(doc *Document) (*Document, error) {
	fields := doc.FrontMatter
	dir := path.Dir(doc.Rel())

	title := frontmatter.String(fields, "title")
	if title == "" {
		title = path.Base(path.Dir(doc.Path))
	}

	slug := ""
	if dir != "." {
		slug = dir + "/"
	}

	category := map[string]any{
		"label": title,
		"link": map[string]any{
			"type":  "generated-index",
			"title": title,
			"slug":  slug,
		},
	}
	if weight, ok := frontmatter.Int(fields, "weight"); ok {
		category["position"] = weight
	}
	if description := frontmatter.String(fields, "description"); description != "" {
		category["customProps"] = map[string]any{"description": description}
	}

	raw, err := frontmatter.SerializeYAML(category, frontmatter.Style{Newline: "\n"})
	if err != nil {
		return nil, err
	}
	return &Document{
		Path:    path.Join(path.Dir(doc.Path), categoryFileName),
		Root:    doc.Root,
		Version: doc.Version,
		Raw:     raw,
	}, nil
}
