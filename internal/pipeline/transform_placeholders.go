package pipeline

import (
	"path"
	"strings"

	"github.com/inspektor-gadget/website/internal/doctree"
	"github.com/inspektor-gadget/website/internal/markdown"
	"github.com/inspektor-gadget/website/internal/placeholder"
)

// rewriteVersionPlaceholders resolves %IG_TAG% and %IG_BRANCH% in the body
// using the document's site path. Only text, code and link destinations are
// rewritten; images, HTML and frontmatter keep their tokens. In .mdx files the
// text children of JSX elements count as text.
func rewriteVersionPlaceholders(doc *Document) ([]*Document, error) {
	if !doc.IsMarkdown() || !placeholder.Contains(doc.Content) {
		return nil, nil
	}
	ctx := placeholder.Resolve(doc.Path)
	var opts []markdown.Option
	if strings.EqualFold(path.Ext(doc.Path), mdxExtension) {
		opts = append(opts, markdown.MDX())
	}
	out, n, err := markdown.Transform([]byte(doc.Content), func(tree *doctree.Node) {
		placeholder.RewriteWith(tree, ctx)
	}, opts...)
	if err != nil {
		return nil, err
	}
	doc.Content = string(out)
	doc.Placeholders += n
	return nil, nil
}
