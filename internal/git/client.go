package git

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/inspektor-gadget/website/internal/config"
	ferrors "github.com/inspektor-gadget/website/internal/foundation/errors"
	"github.com/inspektor-gadget/website/internal/logfields"
	"github.com/inspektor-gadget/website/internal/retry"
)

// Client clones and updates repositories.
type Client struct {
	depth    int
	auth     *config.AuthConfig
	policy   retry.Policy
	progress io.Writer
}

// NewClient creates a client from the git section of the igdocs config.
func NewClient(cfg config.GitConfig) *Client {
	return &Client{
		depth:  cfg.ShallowDepth,
		auth:   cfg.Auth,
		policy: cfg.RetryPolicy(),
	}
}

// WithProgress makes clone and pull report progress to w.
func (c *Client) WithProgress(w io.Writer) *Client {
	c.progress = w
	return c
}

// SyncResult describes the state of a clone after Sync.
type SyncResult struct {
	Path   string
	Ref    string
	Commit string
	// Cloned is set when the clone was created by this call.
	Cloned bool
	// Updated is set when a pull moved HEAD.
	Updated bool
	// Dirty is set when the worktree had local changes and was left alone.
	Dirty bool
}

// Sync makes path a clone of url at branch, which may name a branch or a tag.
// A missing clone is created; an existing one is pulled unless dirty.
func (c *Client) Sync(ctx context.Context, url, branch, path string) (SyncResult, error) {
	var res SyncResult
	err := retry.Do(ctx, c.policy, func() error {
		var err error
		res, err = c.syncOnce(ctx, url, branch, path)
		return err
	}, func(err error) bool { return !ferrors.IsRetryable(err) }, func(attempt int, err error) {
		slog.Warn("Retrying git operation", logfields.URL(url), logfields.Branch(branch), slog.Int("attempt", attempt), logfields.Error(err))
	})
	return res, err
}

func (c *Client) syncOnce(ctx context.Context, url, branch, path string) (SyncResult, error) {
	if _, err := os.Stat(filepath.Join(path, ".git")); err != nil {
		return c.clone(ctx, url, branch, path)
	}
	return c.update(ctx, url, branch, path)
}

func (c *Client) clone(ctx context.Context, url, branch, path string) (SyncResult, error) {
	auth, err := authMethod(c.auth)
	if err != nil {
		return SyncResult{}, err
	}
	ref, err := ResolveRef(ctx, url, branch, auth)
	if err != nil {
		return SyncResult{}, err
	}
	if err := os.RemoveAll(path); err != nil {
		return SyncResult{}, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to remove existing directory").WithContext("path", path).Build()
	}

	slog.Debug("Cloning repository", logfields.URL(url), logfields.Branch(branch), logfields.Path(path))
	repo, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:           url,
		Auth:          auth,
		ReferenceName: ref,
		SingleBranch:  true,
		Depth:         c.depth,
		Tags:          git.NoTags,
		Progress:      c.progress,
	})
	if err != nil {
		_ = os.RemoveAll(path)
		return SyncResult{}, ClassifyGitError(err, "clone", url)
	}
	commit, err := headCommit(repo)
	if err != nil {
		return SyncResult{}, ClassifyGitError(err, "clone", url)
	}
	slog.Info("Repository cloned", logfields.URL(url), logfields.Branch(branch), logfields.Commit(short(commit)))
	return SyncResult{Path: path, Ref: ref.String(), Commit: commit, Cloned: true}, nil
}

func (c *Client) update(ctx context.Context, url, branch, path string) (SyncResult, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return SyncResult{}, ClassifyGitError(err, "open", url)
	}
	before, err := headCommit(repo)
	if err != nil {
		return SyncResult{}, ClassifyGitError(err, "open", url)
	}
	res := SyncResult{Path: path, Commit: before}

	wt, err := repo.Worktree()
	if err != nil {
		return SyncResult{}, ClassifyGitError(err, "worktree", url)
	}
	dirty, err := IsDirty(wt)
	if err != nil {
		return SyncResult{}, ClassifyGitError(err, "status", url)
	}
	if dirty {
		slog.Warn("Repository has local changes, not updating", logfields.Path(path))
		res.Dirty = true
		return res, nil
	}

	head, err := repo.Head()
	if err != nil {
		return SyncResult{}, ClassifyGitError(err, "open", url)
	}
	if !head.Name().IsBranch() {
		// Tag checkouts are detached and pinned to their commit.
		slog.Debug("Repository is pinned to a tag", logfields.Path(path), logfields.Branch(branch))
		res.Ref = plumbing.NewTagReferenceName(branch).String()
		return res, nil
	}
	res.Ref = head.Name().String()

	auth, err := authMethod(c.auth)
	if err != nil {
		return SyncResult{}, err
	}
	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName:    "origin",
		ReferenceName: head.Name(),
		SingleBranch:  true,
		Depth:         c.depth,
		Auth:          auth,
		Progress:      c.progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return SyncResult{}, ClassifyGitError(err, "pull", url)
	}
	after, err := headCommit(repo)
	if err != nil {
		return SyncResult{}, ClassifyGitError(err, "pull", url)
	}
	res.Commit = after
	res.Updated = after != before
	if res.Updated {
		slog.Info("Repository updated", logfields.Path(path), logfields.Commit(short(after)))
	} else {
		slog.Debug("Repository already up to date", logfields.Path(path))
	}
	return res, nil
}

// IsDirty reports whether tracked files in the worktree differ from HEAD.
// Untracked files do not count.
func IsDirty(wt *git.Worktree) (bool, error) {
	status, err := wt.Status()
	if err != nil {
		return false, err
	}
	for _, s := range status {
		if s.Worktree == git.Untracked && s.Staging == git.Untracked {
			continue
		}
		if s.Worktree != git.Unmodified || s.Staging != git.Unmodified {
			return true, nil
		}
	}
	return false, nil
}

// HeadCommit returns the HEAD commit hash of the clone at path.
func HeadCommit(path string) (string, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return "", err
	}
	return headCommit(repo)
}

func headCommit(repo *git.Repository) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

func short(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
