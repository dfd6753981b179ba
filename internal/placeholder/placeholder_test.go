package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inspektor-gadget/website/internal/doctree"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		tag    string
		branch string
	}{
		{"versioned docs", "docs/version-v1.2.3/install.md", "v1.2.3", "v1.2.3"},
		{"versioned_docs root", "versioned_docs/version-v0.40.0/index.md", "v0.40.0", "v0.40.0"},
		{"current docs", "docs/current/install.md", "latest", "main"},
		{"empty path", "", "latest", "main"},
		{"two components only", "versioned_docs/version-v1.2/x.md", "latest", "main"},
		{"unanchored match in file name", "blog/notes-version-v3.0.10.md", "v3.0.10", "v3.0.10"},
		{"first match wins", "version-v1.0.0/version-v2.0.0/x.md", "v1.0.0", "v1.0.0"},
		{"large numbers kept verbatim", "version-v10.200.3000/a.md", "v10.200.3000", "v10.200.3000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Resolve(tt.path)
			assert.Equal(t, tt.tag, c.Tag)
			assert.Equal(t, tt.branch, c.Branch)
			assert.NotEmpty(t, c.Tag)
			assert.NotEmpty(t, c.Branch)
		})
	}
}

func TestRewrite_Scenarios(t *testing.T) {
	t.Run("text node in versioned docs", func(t *testing.T) {
		n := doctree.Text("Run: docker pull ig:%IG_TAG%")
		Rewrite(doctree.NewRoot().Append(n), "docs/version-v1.2.3/install.md")
		assert.Equal(t, "Run: docker pull ig:v1.2.3", n.Value)
	})

	t.Run("link URL in current docs", func(t *testing.T) {
		n := doctree.Link("https://github.com/org/repo/tree/%IG_BRANCH%/README.md", doctree.Text("readme"))
		Rewrite(doctree.NewRoot().Append(n), "docs/current/install.md")
		assert.Equal(t, "https://github.com/org/repo/tree/main/README.md", n.URL)
	})

	t.Run("inline code with repeated token", func(t *testing.T) {
		n := doctree.InlineCode("%IG_TAG% %IG_TAG%")
		Rewrite(doctree.NewRoot().Append(n), "docs/version-v0.40.0/x.md")
		assert.Equal(t, "v0.40.0 v0.40.0", n.Value)
	})

	t.Run("no placeholders", func(t *testing.T) {
		n := doctree.Text("No placeholders here.")
		Rewrite(doctree.NewRoot().Append(n), "docs/version-v0.40.0/x.md")
		assert.Equal(t, "No placeholders here.", n.Value)
	})
}

func TestRewrite_BothTokensIndependently(t *testing.T) {
	n := doctree.Code("kubectl gadget deploy --image ghcr.io/ig:%IG_TAG%\ngit checkout %IG_BRANCH%\n%IG_BRANCH%%IG_TAG%")
	Rewrite(doctree.NewRoot().Append(n), "docs/index.md")
	assert.Equal(t, "kubectl gadget deploy --image ghcr.io/ig:latest\ngit checkout main\nmainlatest", n.Value)
}

func TestRewrite_LinkTextHandledAsSeparateNode(t *testing.T) {
	text := doctree.Text("%IG_TAG% release")
	link := doctree.Link("https://example.com/%IG_TAG%", text)
	Rewrite(doctree.NewRoot().Append(doctree.Other("Paragraph", link)), "version-v0.1.0/a.md")

	assert.Equal(t, "https://example.com/v0.1.0", link.URL)
	assert.Equal(t, "v0.1.0 release", text.Value)
	assert.Empty(t, link.Value)
}

func TestRewrite_OtherNodesUntouched(t *testing.T) {
	other := doctree.Other("HTMLBlock")
	other.Value = "<b>%IG_TAG%</b>"
	other.URL = "%IG_BRANCH%"
	Rewrite(doctree.NewRoot().Append(other), "docs/x.md")

	assert.Equal(t, "<b>%IG_TAG%</b>", other.Value)
	assert.Equal(t, "%IG_BRANCH%", other.URL)
}

func TestRewrite_ShapePreserved(t *testing.T) {
	tree := doctree.NewRoot().Append(
		doctree.Other("Heading", doctree.Text("Install %IG_TAG%")),
		doctree.Other("Paragraph",
			doctree.Text("see "),
			doctree.Link("https://x/%IG_BRANCH%", doctree.InlineCode("%IG_TAG%")),
		),
		doctree.Code("%IG_TAG%"),
		doctree.Other("Image"),
	)
	before := doctree.Kinds(tree)
	count := doctree.Count(tree)

	out := Rewrite(tree, "versioned_docs/version-v0.30.0/a.md")

	require.Same(t, tree, out)
	assert.Equal(t, before, doctree.Kinds(out))
	assert.Equal(t, count, doctree.Count(out))
}

func TestRewrite_EmptyAndNilTree(t *testing.T) {
	root := doctree.NewRoot()
	assert.Same(t, root, Rewrite(root, "x"))
	assert.Nil(t, Rewrite(nil, "x"))
}

func TestRewrite_Idempotent(t *testing.T) {
	n := doctree.Text("%IG_TAG% and %IG_BRANCH%")
	tree := doctree.NewRoot().Append(n)
	Rewrite(tree, "version-v1.0.0/a.md")
	once := n.Value
	Rewrite(tree, "version-v1.0.0/a.md")
	assert.Equal(t, once, n.Value)
}

func TestRewriteWith_CountsChangedPayloads(t *testing.T) {
	tree := doctree.NewRoot().Append(
		doctree.Text("%IG_TAG%"),
		doctree.Text("plain"),
		doctree.Link("%IG_BRANCH%"),
	)
	assert.Equal(t, 2, RewriteWith(tree, Resolve("docs/a.md")))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("x %IG_TAG%"))
	assert.True(t, Contains("%IG_BRANCH%"))
	assert.False(t, Contains("%ig_tag%"))
	assert.False(t, Contains("%IG_TAG"))
}
