package gitsource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/releasekit/releasekit/domain"
)

// Source implements domain.GitSource on top of a local repository. All
// reads go through the object store of the repository at repoDir; nothing
// touches the network or shells out.
type Source struct{}

// New creates a new local git source.
func New() domain.GitSource {
	return &Source{}
}

// HeadContent returns the content of relPath as committed at HEAD. A file
// that does not exist at HEAD comes back as an empty string so callers can
// treat newly added files as having an empty baseline.
func (s *Source) HeadContent(_ context.Context, repoDir, relPath string) (string, error) {
	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		return "", fmt.Errorf("failed to open repository %q: %w", repoDir, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD of %q: %w", repoDir, err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD commit: %w", err)
	}

	file, err := commit.File(relPath)
	if errors.Is(err, object.ErrFileNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up %q at HEAD: %w", relPath, err)
	}

	content, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("failed to read %q at HEAD: %w", relPath, err)
	}

	return content, nil
}

// DiffLines returns a line-level diff between relPath at HEAD and in the
// working tree, each line prefixed "+", "-", or " ". A file missing on
// either side diffs against empty content.
func (s *Source) DiffLines(ctx context.Context, repoDir, relPath string) ([]string, error) {
	oldText, err := s.HeadContent(ctx, repoDir, relPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(repoDir, relPath))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read working-tree %q: %w", relPath, err)
	}

	return diffLines(oldText, string(data)), nil
}

// Static is a GitSource whose baseline is a fixed snapshot rather than the
// repository HEAD, for callers that supply an explicit baseline file.
type Static struct {
	content string
}

// NewStatic creates a git source backed by the given snapshot.
func NewStatic(content string) domain.GitSource {
	return &Static{content: content}
}

func (s *Static) HeadContent(_ context.Context, _, _ string) (string, error) {
	return s.content, nil
}

func (s *Static) DiffLines(_ context.Context, repoDir, relPath string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(repoDir, relPath))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read working-tree %q: %w", relPath, err)
	}
	return diffLines(s.content, string(data)), nil
}

// diffLines computes a line-mode diff and flattens it into prefixed lines.
func diffLines(oldText, newText string) []string {
	dmp := diffmatchpatch.New()

	chars1, chars2, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var out []string
	for _, diff := range diffs {
		if diff.Text == "" {
			continue
		}

		prefix := " "
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffEqual:
		}

		for _, line := range strings.Split(strings.TrimSuffix(diff.Text, "\n"), "\n") {
			out = append(out, prefix+line)
		}
	}

	return out
}
