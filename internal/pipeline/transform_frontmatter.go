package pipeline

import (
	"errors"
	"log/slog"

	"github.com/inspektor-gadget/website/internal/frontmatter"
	"github.com/inspektor-gadget/website/internal/logfields"
)

// parseFrontMatter splits the YAML frontmatter from Content.
// Idempotent: a parsed document is left alone.
func parseFrontMatter(doc *Document) ([]*Document, error) {
	if doc.parsed || !doc.IsMarkdown() {
		return nil, nil
	}
	doc.parsed = true

	block, err := frontmatter.Parse([]byte(doc.Content))
	if err != nil {
		if errors.Is(err, frontmatter.ErrMissingClosingDelimiter) {
			// An unterminated block is treated as body text.
			slog.Warn("Frontmatter has no closing delimiter", logfields.Path(doc.Path))
			doc.FrontMatter = map[string]any{}
			return nil, nil
		}
		return nil, err
	}

	doc.RawFrontMatter = block.Raw
	doc.HadFrontMatter = block.Had
	doc.Style = block.Style
	doc.Content = string(block.Body)

	fields, err := block.Fields()
	if err != nil {
		slog.Warn("Frontmatter is not valid YAML, keeping it verbatim", logfields.Path(doc.Path), logfields.Error(err))
		fields = map[string]any{}
	}
	doc.FrontMatter = fields
	return nil, nil
}

// serializeDocument joins frontmatter and body into Raw.
// Idempotent: if Raw is already set, nothing happens.
func serializeDocument(doc *Document) ([]*Document, error) {
	if len(doc.Raw) > 0 {
		return nil, nil
	}
	if !doc.parsed {
		doc.Raw = []byte(doc.Content)
		return nil, nil
	}
	doc.Raw = frontmatter.Join(doc.RawFrontMatter, []byte(doc.Content), doc.HadFrontMatter, doc.Style)
	return nil, nil
}
