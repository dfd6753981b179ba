package pipeline

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFile(t *testing.T) {
	out, n, err := RenderFile([]byte("Run `ig:%IG_TAG%`\n"), "versioned_docs/version-v0.38.1/quick-start.md")
	require.NoError(t, err)
	assert.Equal(t, "Run `ig:v0.38.1`\n", string(out))
	assert.Equal(t, 1, n)

	out, n, err = RenderFile([]byte("Run `ig:%IG_TAG%`\n"), "-")
	require.NoError(t, err)
	assert.Equal(t, "Run `ig:latest`\n", string(out))
	assert.Equal(t, 1, n)
}

func TestRenderDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/a.md", []byte("[src](https://github.com/x/tree/%IG_BRANCH%)\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "src/sub/b.mdx", []byte("`%IG_TAG%`\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "src/img.png", []byte("%IG_TAG%"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "src/.a.md.swp", []byte("junk"), 0o644))

	stats, err := RenderDir(fs, "src", "out", "versioned_docs/version-v0.40.0")
	require.NoError(t, err)
	assert.Equal(t, RenderStats{Files: 3, Documents: 2, Placeholders: 2}, stats)

	a, err := afero.ReadFile(fs, "out/a.md")
	require.NoError(t, err)
	assert.Equal(t, "[src](https://github.com/x/tree/v0.40.0)\n", string(a))

	b, err := afero.ReadFile(fs, "out/sub/b.mdx")
	require.NoError(t, err)
	assert.Equal(t, "`v0.40.0`\n", string(b))

	img, err := afero.ReadFile(fs, "out/img.png")
	require.NoError(t, err)
	assert.Equal(t, "%IG_TAG%", string(img))

	exists, err := afero.Exists(fs, "out/.a.md.swp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRenderDir_DefaultsToSourcePath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "site/versioned_docs/version-v0.39.0/x.md", []byte("%IG_BRANCH%\n"), 0o644))

	_, err := RenderDir(fs, "site/versioned_docs/version-v0.39.0", "out", "")
	require.NoError(t, err)
	x, err := afero.ReadFile(fs, "out/x.md")
	require.NoError(t, err)
	assert.Equal(t, "v0.39.0\n", string(x))
}

func TestRenderDir_NestedOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "docs/a.md", []byte("%IG_TAG%\n"), 0o644))

	for range 3 {
		stats, err := RenderDir(fs, "docs", "./docs/out/", "")
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Files)
	}

	a, err := afero.ReadFile(fs, "docs/out/a.md")
	require.NoError(t, err)
	assert.Equal(t, "latest\n", string(a))

	nested, err := afero.DirExists(fs, "docs/out/out")
	require.NoError(t, err)
	assert.False(t, nested)
}

func TestRenderFile_MDXComponentChildren(t *testing.T) {
	src := []byte("<Note>\nig:%IG_TAG%\n</Note>\n")

	out, n, err := RenderFile(src, "versioned_docs/version-v0.38.1/a.mdx")
	require.NoError(t, err)
	assert.Equal(t, "<Note>\nig:v0.38.1\n</Note>\n", string(out))
	assert.Equal(t, 1, n)

	out, n, err = RenderFile(src, "versioned_docs/version-v0.38.1/a.md")
	require.NoError(t, err)
	assert.Equal(t, string(src), string(out))
	assert.Zero(t, n)
}
