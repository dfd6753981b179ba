// Package placeholder rewrites the version placeholders documentation authors
// use to reference container image tags and source branches.
//
// Two tokens are recognized:
//   - %IG_TAG%: the image tag. "vX.Y.Z" for released docs, "latest" otherwise.
//   - %IG_BRANCH%: the source branch. "vX.Y.Z" for released docs, "main" otherwise.
//
// Released docs are identified by a "version-vX.Y.Z" fragment in the source path.
package placeholder

import (
	"regexp"
	"strings"

	"github.com/inspektor-gadget/website/internal/doctree"
)

const (
	TagToken    = "%IG_TAG%"
	BranchToken = "%IG_BRANCH%"

	DefaultTag    = "latest"
	DefaultBranch = "main"
)

// versionPattern is unanchored: the fragment may appear anywhere
// in the path, and the numeric groups are not range checked.
var versionPattern = regexp.MustCompile(`version-v(\d+\.\d+\.\d+)`)

// Context holds the values substituted for the placeholder tokens.
type Context struct {
	Tag    string
	Branch string
}

// Resolve derives the substitution values for a source path. Paths without a
// version fragment resolve to the latest/main defaults.
func Resolve(sourcePath string) Context {
	m := versionPattern.FindStringSubmatch(sourcePath)
	if m == nil {
		return Context{Tag: DefaultTag, Branch: DefaultBranch}
	}
	v := "v" + m[1]
	return Context{Tag: v, Branch: v}
}

// Versioned reports whether the context came from a released docs path.
func (c Context) Versioned() bool { return c.Tag != DefaultTag }

// Replace substitutes every occurrence of both tokens in s.
func (c Context) Replace(s string) string {
	if strings.Contains(s, TagToken) {
		s = strings.ReplaceAll(s, TagToken, c.Tag)
	}
	if strings.Contains(s, BranchToken) {
		s = strings.ReplaceAll(s, BranchToken, c.Branch)
	}
	return s
}

// Contains reports whether s holds either token.
func Contains(s string) bool {
	return strings.Contains(s, TagToken) || strings.Contains(s, BranchToken)
}

// Rewrite replaces the placeholder tokens in every text, inline code and code
// node payload and in every link URL of tree. The tree is modified in place
// and returned; its shape is never changed.
func Rewrite(tree *doctree.Node, sourcePath string) *doctree.Node {
	RewriteWith(tree, Resolve(sourcePath))
	return tree
}

// RewriteWith is Rewrite with an already resolved context. It returns the
// number of payloads that changed.
func RewriteWith(tree *doctree.Node, c Context) int {
	changed := 0
	doctree.Walk(tree, func(n *doctree.Node) {
		switch n.Kind {
		case doctree.KindText, doctree.KindInlineCode, doctree.KindCode:
			if v := c.Replace(n.Value); v != n.Value {
				n.Value = v
				changed++
			}
		case doctree.KindLink:
			if u := c.Replace(n.URL); u != n.URL {
				n.URL = u
				changed++
			}
		}
	})
	return changed
}
