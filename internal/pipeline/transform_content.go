package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/inspektor-gadget/website/internal/frontmatter"
)

const (
	weightKey          = "weight"
	sidebarPositionKey = "sidebar_position"
)

// convertSidebarPosition maps Hugo weights to Docusaurus sidebar positions.
// The version root index is always placed first.
func convertSidebarPosition(doc *Document) ([]*Document, error) {
	if !doc.IsMarkdown() || len(doc.RawFrontMatter) == 0 {
		return nil, nil
	}
	if doc.IsRootIndex() {
		doc.RawFrontMatter, _ = frontmatter.ReplaceKey(doc.RawFrontMatter, weightKey, sidebarPositionKey, "1")
		return nil, nil
	}
	doc.RawFrontMatter, _ = frontmatter.RenameKey(doc.RawFrontMatter, weightKey, sidebarPositionKey)
	return nil, nil
}

// rewriteHugoLinks points links at section indexes to the section itself
// and drops links with an empty destination.
func rewriteHugoLinks(doc *Document) ([]*Document, error) {
	if !doc.IsMarkdown() {
		return nil, nil
	}
	doc.Content = strings.ReplaceAll(doc.Content, hugoIndexName, "")
	doc.Content = strings.ReplaceAll(doc.Content, "]()", "")
	return nil, nil
}

var (
	admonitionPattern = regexp.MustCompile(`> \[!(\w+)\]\n((?:> ?.*\n)+)`)
	quotePrefix       = regexp.MustCompile(`(?m)^> ?`)
	lowerCaser        = cases.Lower(language.Und)
)

// convertAdmonitions turns GitHub style alert blockquotes (`> [!NOTE]`)
// into Docusaurus admonition fences (`:::note`).
func convertAdmonitions(doc *Document) ([]*Document, error) {
	if !doc.IsMarkdown() || !strings.Contains(doc.Content, "> [!") {
		return nil, nil
	}
	doc.Content = ConvertAdmonitions(doc.Content)
	return nil, nil
}

// ConvertAdmonitions rewrites every `> [!TYPE]` blockquote in s.
func ConvertAdmonitions(s string) string {
	return admonitionPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := admonitionPattern.FindStringSubmatch(match)
		kind := lowerCaser.String(m[1])
		body := quotePrefix.ReplaceAllString(m[2], "")
		return ":::" + kind + "\n\n" + body + "\n:::\n"
	})
}
