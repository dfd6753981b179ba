package git

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inspektor-gadget/website/internal/config"
	"github.com/inspektor-gadget/website/internal/foundation/errors"
)

func newSourceRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	addCommit(t, repo, dir, "docs/README.md", "# Docs\n", "initial")
	return dir, repo
}

func addCommit(t *testing.T, repo *git.Repository, dir, name, content, msg string) plumbing.Hash {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash
}

func currentBranch(t *testing.T, repo *git.Repository) string {
	t.Helper()
	head, err := repo.Head()
	require.NoError(t, err)
	return head.Name().Short()
}

func testClient() *Client {
	return NewClient(config.GitConfig{MaxRetries: 0})
}

func TestSync_ClonesThenUpdates(t *testing.T) {
	src, repo := newSourceRepo(t)
	branch := currentBranch(t, repo)
	dest := filepath.Join(t.TempDir(), "clone")
	client := testClient()
	ctx := context.Background()

	res, err := client.Sync(ctx, src, branch, dest)
	require.NoError(t, err)
	assert.True(t, res.Cloned)
	assert.False(t, res.Updated)
	assert.Equal(t, "refs/heads/"+branch, res.Ref)
	assert.FileExists(t, filepath.Join(dest, "docs", "README.md"))

	res, err = client.Sync(ctx, src, branch, dest)
	require.NoError(t, err)
	assert.False(t, res.Cloned)
	assert.False(t, res.Updated)

	next := addCommit(t, repo, src, "docs/guide.md", "# Guide\n", "add guide")
	res, err = client.Sync(ctx, src, branch, dest)
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, next.String(), res.Commit)
	assert.FileExists(t, filepath.Join(dest, "docs", "guide.md"))

	head, err := HeadCommit(dest)
	require.NoError(t, err)
	assert.Equal(t, next.String(), head)
}

func TestSync_DirtyCloneIsLeftAlone(t *testing.T) {
	src, repo := newSourceRepo(t)
	branch := currentBranch(t, repo)
	dest := filepath.Join(t.TempDir(), "clone")
	client := testClient()
	ctx := context.Background()

	first, err := client.Sync(ctx, src, branch, dest)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dest, "docs", "README.md"), []byte("# Local edit\n"), 0o644))
	addCommit(t, repo, src, "docs/guide.md", "# Guide\n", "add guide")

	res, err := client.Sync(ctx, src, branch, dest)
	require.NoError(t, err)
	assert.True(t, res.Dirty)
	assert.Equal(t, first.Commit, res.Commit)
	assert.NoFileExists(t, filepath.Join(dest, "docs", "guide.md"))

	data, err := os.ReadFile(filepath.Join(dest, "docs", "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Local edit\n", string(data))
}

func TestIsDirty_IgnoresUntrackedFiles(t *testing.T) {
	src, repo := newSourceRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("scratch"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	dirty, err := IsDirty(wt)
	require.NoError(t, err)
	assert.False(t, dirty)

	require.NoError(t, os.WriteFile(filepath.Join(src, "docs", "README.md"), []byte("changed"), 0o644))
	dirty, err = IsDirty(wt)
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestResolveRef(t *testing.T) {
	src, repo := newSourceRepo(t)
	branch := currentBranch(t, repo)
	head, err := repo.Head()
	require.NoError(t, err)
	_, err = repo.CreateTag("v0.40.0", head.Hash(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := ResolveRef(ctx, src, branch, nil)
	require.NoError(t, err)
	assert.Equal(t, plumbing.NewBranchReferenceName(branch), ref)

	ref, err = ResolveRef(ctx, src, "v0.40.0", nil)
	require.NoError(t, err)
	assert.Equal(t, plumbing.NewTagReferenceName("v0.40.0"), ref)

	_, err = ResolveRef(ctx, src, "does-not-exist", nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestSync_MissingBranchIsNotRetried(t *testing.T) {
	src, _ := newSourceRepo(t)
	dest := filepath.Join(t.TempDir(), "clone")
	client := NewClient(config.GitConfig{MaxRetries: 3, RetryInitialDelay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := client.Sync(ctx, src, "nope", dest)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	assert.NoDirExists(t, dest)
}

func TestClassifyGitError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		category  errors.ErrorCategory
		retryable bool
	}{
		{"auth sentinel", transport.ErrAuthenticationRequired, errors.CategoryAuth, false},
		{"repo sentinel", transport.ErrRepositoryNotFound, errors.CategoryNotFound, false},
		{"network text", stderrors.New("dial tcp: i/o timeout"), errors.CategoryNetwork, true},
		{"rate limit", stderrors.New("429 Too Many Requests"), errors.CategoryNetwork, true},
		{"bad protocol", stderrors.New("unsupported protocol scheme"), errors.CategoryConfig, false},
		{"unknown", stderrors.New("something odd"), errors.CategoryGit, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyGitError(tt.err, "clone", "https://example.com/repo.git")
			assert.Equal(t, tt.category, errors.GetCategory(err))
			assert.Equal(t, tt.retryable, errors.IsRetryable(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, ClassifyGitError(nil, "clone", ""))
	already := errors.ValidationError("bad").Build()
	assert.Same(t, already, ClassifyGitError(already, "clone", ""))
}

func TestAuthMethod(t *testing.T) {
	m, err := authMethod(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = authMethod(&config.AuthConfig{Type: config.AuthTypeToken, Token: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "http-basic-auth", m.Name())

	_, err = authMethod(&config.AuthConfig{Type: config.AuthTypeToken})
	assert.True(t, errors.HasCategory(err, errors.CategoryAuth))

	_, err = authMethod(&config.AuthConfig{Type: config.AuthTypeSSH, KeyPath: filepath.Join(t.TempDir(), "missing")})
	assert.True(t, errors.HasCategory(err, errors.CategoryAuth))
}
