package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneName(t *testing.T) {
	cases := []struct {
		repo, branch, name string
		want               string
	}{
		{"https://github.com/inspektor-gadget/inspektor-gadget", "main", "latest", "inspektor-gadget_mainlatest"},
		{"https://github.com/inspektor-gadget/inspektor-gadget", "v0.40.0", "v0.40.0", "inspektor-gadget_v0.40.0v0.40.0"},
		{"https://github.com/org/repo/", "release/1.x", "v1", "repo_release_1.xv1"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CloneName(tc.repo, tc.branch, tc.name))
	}
}

func TestManager_CreateKeepsExistingClones(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "external-docs")
	mgr := NewManager(dir)
	require.NoError(t, mgr.Create())
	assert.Equal(t, dir, mgr.Path())

	marker := filepath.Join(mgr.CloneDir("https://github.com/org/repo", "main", "latest"), "marker.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(marker), 0o750))
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o600))

	require.NoError(t, NewManager(dir).Create())
	assert.FileExists(t, marker)
}

func TestManager_DefaultDir(t *testing.T) {
	assert.Equal(t, DefaultDir, NewManager("").Path())
}

func TestManager_Prune(t *testing.T) {
	mgr := NewManager(t.TempDir())
	require.NoError(t, mgr.Create())
	for _, d := range []string{"repo_mainlatest", "repo_v1v1", "repo_v0v0", ".cache"} {
		require.NoError(t, os.MkdirAll(filepath.Join(mgr.Path(), d), 0o750))
	}
	require.NoError(t, os.WriteFile(filepath.Join(mgr.Path(), "README"), nil, 0o600))

	removed, err := mgr.Prune([]string{"repo_mainlatest", "repo_v1v1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"repo_v0v0"}, removed)
	assert.DirExists(t, filepath.Join(mgr.Path(), "repo_mainlatest"))
	assert.DirExists(t, filepath.Join(mgr.Path(), ".cache"))
	assert.FileExists(t, filepath.Join(mgr.Path(), "README"))
	assert.NoDirExists(t, filepath.Join(mgr.Path(), "repo_v0v0"))
}

func TestManager_PruneMissingDir(t *testing.T) {
	removed, err := NewManager(filepath.Join(t.TempDir(), "missing")).Prune(nil)
	require.NoError(t, err)
	assert.Empty(t, removed)
}
