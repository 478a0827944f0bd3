package domain

import "context"

// GitSource abstracts read-only access to the version-control state of a
// local repository. The policy layer consumes only opaque strings and diff
// lines from it; how they are produced (library, subprocess, fixture) is
// an infrastructure concern.
type GitSource interface {
	// HeadContent returns the content of a file as committed at HEAD.
	// It is used to recover the baseline manifest from before an
	// external bump tool rewrote the working tree.
	HeadContent(ctx context.Context, repoDir, relPath string) (string, error)

	// DiffLines returns the lines of a textual diff between the file at
	// HEAD and the working tree, each prefixed "+", "-", or " ".
	DiffLines(ctx context.Context, repoDir, relPath string) ([]string, error)
}
