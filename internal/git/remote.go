package git

import (
	"context"
	"slices"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/inspektor-gadget/website/internal/foundation/errors"
)

// ResolveRef finds the full reference name of branch on the remote. Branches
// win over tags of the same name.
func ResolveRef(ctx context.Context, url, branch string, auth transport.AuthMethod) (plumbing.ReferenceName, error) {
	refs, err := ListRefs(ctx, url, auth)
	if err != nil {
		return "", err
	}
	for _, candidate := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(branch),
		plumbing.NewTagReferenceName(branch),
	} {
		if slices.Contains(refs, candidate) {
			return candidate, nil
		}
	}
	return "", errors.NotFoundError("branch or tag not found on remote").
		WithContext("url", url).
		WithContext("branch", branch).
		Build()
}

// ListRefs lists the branch and tag references advertised by the remote.
func ListRefs(ctx context.Context, url string, auth transport.AuthMethod) ([]plumbing.ReferenceName, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: auth})
	if err != nil {
		return nil, ClassifyGitError(err, "ls-remote", url)
	}
	names := make([]plumbing.ReferenceName, 0, len(refs))
	for _, ref := range refs {
		if ref.Type() == plumbing.SymbolicReference {
			continue
		}
		if ref.Name().IsBranch() || ref.Name().IsTag() {
			names = append(names, ref.Name())
		}
	}
	return names, nil
}
