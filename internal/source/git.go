package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/konflabs/konf-server/internal/loader"
)

// GitSource reads documents out of a git repository's tree at an arbitrary
// commit, without ever checking that commit out to a working directory.
// Each snapshot argument is a commit hash (the SnapshotId of spec.md §3),
// making every read immutable and safe to memoise by the snapshot cache
// (package cache).
type GitSource struct {
	repo *git.Repository
}

// NewGitSource opens an existing local git repository (a plain clone or
// bare mirror kept up to date out of band, e.g. by a periodic fetch) rooted
// at path.
func NewGitSource(path string) (*GitSource, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open git repository at %q: %w", path, err)
	}
	return &GitSource{repo: repo}, nil
}

// Fetch updates the underlying repository's remote-tracking refs so newly
// pushed commits become resolvable as snapshots. It does not touch any
// working tree.
func (s *GitSource) Fetch(ctx context.Context) error {
	err := s.repo.FetchContext(ctx, &git.FetchOptions{Force: true})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("fetch: %w", err)
	}
	return nil
}

func (s *GitSource) commitTree(snapshot string) (*object.Tree, error) {
	hash := plumbing.NewHash(snapshot)
	commit, err := s.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotUnknown, snapshot)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree for commit %s: %w", snapshot, err)
	}
	return tree, nil
}

func (s *GitSource) List(ctx context.Context, snapshot string) ([]string, error) {
	tree, err := s.commitTree(snapshot)
	if err != nil {
		return nil, err
	}

	var names []string
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walk tree at commit %s: %w", snapshot, err)
		}
		if entry.Mode.IsFile() {
			if stripped, ok := stripConfigExtension(name); ok {
				names = append(names, stripped)
			}
		}
	}
	return names, nil
}

func (s *GitSource) Read(ctx context.Context, snapshot, name string) ([]byte, error) {
	tree, err := s.commitTree(snapshot)
	if err != nil {
		return nil, err
	}

	for _, ext := range loader.Extensions {
		entry, err := tree.File(name + ext)
		if err != nil {
			continue
		}
		reader, err := entry.Reader()
		if err != nil {
			return nil, fmt.Errorf("open blob for %q: %w", name, err)
		}
		defer reader.Close()
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("read blob for %q: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// ResolveRef resolves a ref name (branch, tag, or "HEAD") to the commit
// hash it currently points at, for callers that need to translate a
// human-friendly ref into an immutable SnapshotId.
func (s *GitSource) ResolveRef(ref string) (string, error) {
	if ref == "" || strings.EqualFold(ref, "HEAD") {
		head, err := s.repo.Head()
		if err != nil {
			return "", fmt.Errorf("resolve HEAD: %w", err)
		}
		return head.Hash().String(), nil
	}
	rev, err := s.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", ref, err)
	}
	return rev.String(), nil
}
