// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations — no mock frameworks.
package testdoubles

import (
	"context"

	"github.com/releasekit/releasekit/domain"
)

// ---------------------------------------------------------------------------
// SpyGitSource
// ---------------------------------------------------------------------------

// SpyGitSource implements domain.GitSource as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyGitSource struct {
	// --- HeadContent ---
	HeadContents map[string]string // relPath -> content at HEAD
	HeadErr      error
	// spy: paths that were requested
	HeadRequests []string

	// --- DiffLines ---
	Diffs   map[string][]string // relPath -> prefixed diff lines
	DiffErr error
	// spy: paths that were requested
	DiffRequests []string
}

var _ domain.GitSource = (*SpyGitSource)(nil)

func (s *SpyGitSource) HeadContent(
	_ context.Context,
	_ string,
	relPath string,
) (string, error) {
	s.HeadRequests = append(s.HeadRequests, relPath)
	if s.HeadErr != nil {
		return "", s.HeadErr
	}
	return s.HeadContents[relPath], nil
}

func (s *SpyGitSource) DiffLines(
	_ context.Context,
	_ string,
	relPath string,
) ([]string, error) {
	s.DiffRequests = append(s.DiffRequests, relPath)
	if s.DiffErr != nil {
		return nil, s.DiffErr
	}
	return s.Diffs[relPath], nil
}

// ---------------------------------------------------------------------------
// DummyGitSource — satisfies the interface but does nothing (for compile checks)
// ---------------------------------------------------------------------------

// DummyGitSource is a no-op implementation of domain.GitSource.
// Use it only for interface compliance tests or as a placeholder.
type DummyGitSource struct{}

var _ domain.GitSource = (*DummyGitSource)(nil)

func (d *DummyGitSource) HeadContent(
	_ context.Context,
	_ string,
	_ string,
) (string, error) {
	return "", nil
}

func (d *DummyGitSource) DiffLines(
	_ context.Context,
	_ string,
	_ string,
) ([]string, error) {
	return nil, nil
}
