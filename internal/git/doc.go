// Package git clones and updates the external documentation repositories
// with go-git.
//
// A clone is created shallow and single-ref for the configured branch or tag.
// Existing clones are pulled unless their worktree has local modifications,
// in which case the local state is kept and reported. Failures are classified
// into foundation errors so the importer can tell permanent problems (auth,
// missing repositories or refs) from transient network failures that are
// retried.
package git
