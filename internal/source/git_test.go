package source

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// newTestGitSource builds an in-memory git repository with one commit per
// entry in commits (applied in order), returning a GitSource over it
// alongside the commit hashes in commit order, so tests can address
// "the first commit", "the second commit", etc. without round-tripping
// through disk.
func newTestGitSource(t *testing.T, commits []map[string]string) (*GitSource, []string) {
	t.Helper()

	fs := memfs.New()
	repo, err := git.Init(memory.NewStorage(), fs)
	if err != nil {
		t.Fatalf("git.Init: %v", err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	sig := &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(0, 0)}
	var hashes []string
	for _, files := range commits {
		for path, content := range files {
			if err := util.WriteFile(fs, path, []byte(content), 0o644); err != nil {
				t.Fatalf("write %q: %v", path, err)
			}
			if _, err := w.Add(path); err != nil {
				t.Fatalf("add %q: %v", path, err)
			}
		}
		hash, err := w.Commit("snapshot", &git.CommitOptions{Author: sig})
		if err != nil {
			t.Fatalf("commit: %v", err)
		}
		hashes = append(hashes, hash.String())
	}
	return &GitSource{repo: repo}, hashes
}

func TestGitSourceListAndRead(t *testing.T) {
	src, hashes := newTestGitSource(t, []map[string]string{
		{
			"base.yaml":        "db: {host: h}",
			"common/redis.yml": "host: localhost",
			"README.md":        "not a config",
		},
	})
	snapshot := hashes[0]

	names, err := src.List(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(names)
	want := []string{"base", "common/redis"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Fatalf("List() = %v, want %v", names, want)
	}

	data, err := src.Read(context.Background(), snapshot, "common/redis")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "host: localhost" {
		t.Fatalf("Read() = %q", data)
	}
}

func TestGitSourceReadNotFound(t *testing.T) {
	src, hashes := newTestGitSource(t, []map[string]string{
		{"base.yaml": "a: 1"},
	})

	if _, err := src.Read(context.Background(), hashes[0], "missing"); err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestGitSourceUnknownSnapshot(t *testing.T) {
	src, _ := newTestGitSource(t, []map[string]string{
		{"base.yaml": "a: 1"},
	})

	if _, err := src.List(context.Background(), "0000000000000000000000000000000000000000"); err == nil {
		t.Fatal("expected error for unknown snapshot")
	}
}

func TestGitSourceReadPinsToSnapshot(t *testing.T) {
	// Two commits touch the same file; reading an older snapshot must
	// still see the content as of that commit, not the latest one.
	src, hashes := newTestGitSource(t, []map[string]string{
		{"base.yaml": "v: 1"},
		{"base.yaml": "v: 2"},
	})

	old, err := src.Read(context.Background(), hashes[0], "base")
	if err != nil {
		t.Fatalf("Read(old): %v", err)
	}
	if string(old) != "v: 1" {
		t.Fatalf("Read(old) = %q, want v: 1", old)
	}

	latest, err := src.Read(context.Background(), hashes[1], "base")
	if err != nil {
		t.Fatalf("Read(latest): %v", err)
	}
	if string(latest) != "v: 2" {
		t.Fatalf("Read(latest) = %q, want v: 2", latest)
	}
}

func TestGitSourceResolveRefHead(t *testing.T) {
	src, hashes := newTestGitSource(t, []map[string]string{
		{"base.yaml": "v: 1"},
		{"base.yaml": "v: 2"},
	})

	resolved, err := src.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef(HEAD): %v", err)
	}
	if resolved != hashes[len(hashes)-1] {
		t.Fatalf("ResolveRef(HEAD) = %q, want %q", resolved, hashes[len(hashes)-1])
	}

	resolvedEmpty, err := src.ResolveRef("")
	if err != nil {
		t.Fatalf("ResolveRef(\"\"): %v", err)
	}
	if resolvedEmpty != resolved {
		t.Fatalf("ResolveRef(\"\") = %q, want %q", resolvedEmpty, resolved)
	}
}

func TestGitSourceResolveRefUnknown(t *testing.T) {
	src, _ := newTestGitSource(t, []map[string]string{
		{"base.yaml": "v: 1"},
	})

	if _, err := src.ResolveRef("refs/heads/nope"); err == nil {
		t.Fatal("expected error for unresolvable ref")
	}
}
